// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/internal/platform/validate"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
)

// Field names used in validation errors.
const (
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldUsername         = "username"
	FieldSubscriptionType = "subscriptionType"
	FieldBillingCycle     = "billingCycle"
)

// MinPasswordLength is enforced on registration only.
const MinPasswordLength = 6

// # Dependencies

// Gateway is the backend's account API. The transport client implements it.
type Gateway interface {
	Login(ctx context.Context, credentials Credentials) (Session, error)
	Register(ctx context.Context, registration Registration) (Session, error)
	Subscribe(ctx context.Context, token string, request SubscribeRequest) (Subscription, error)
}

// SessionStore owns the current session. The commerce store implements it.
type SessionStore interface {
	Session() Session
	SetSession(ctx context.Context, session Session)
	UpdateSubscription(subscription Subscription)
}

// # Service Layer

// Service orchestrates account flows and publishes the resulting session.
type Service struct {
	gateway Gateway
	store   SessionStore
	logger  *slog.Logger
}

// NewService constructs a new [Service].
func NewService(gateway Gateway, store SessionStore, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, store: store, logger: logger}
}

/*
Login signs the shopper in and publishes the session.

Description: Input is validated before any request. On success the store
receives the session, which refetches cart, wishlist and library.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - Session: the new session
  - error: VALIDATION_ERROR or NETWORK_FAILURE
*/
func (service *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Required(FieldPassword, password)
	if !validator.Failed(FieldEmail) {
		validator.Email(FieldEmail, email)
	}
	if err := validator.Err(); err != nil {
		return SignedOut, err
	}

	session, err := service.gateway.Login(ctx, Credentials{Email: email, Password: password})
	if err != nil {
		service.logger.WarnContext(ctx, "auth_login_failed", slog.Any("error", err))
		return SignedOut, err
	}

	return service.publish(ctx, session)
}

/*
Register creates an account, signs it in and publishes the session.

Parameters:
  - ctx: context.Context
  - username, email, password: string

Returns:
  - Session: the new session
  - error: VALIDATION_ERROR or NETWORK_FAILURE
*/
func (service *Service) Register(ctx context.Context, username, email, password string) (Session, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).MaxLen(FieldUsername, username, 50)
	validator.Required(FieldEmail, email)
	if !validator.Failed(FieldEmail) {
		validator.Email(FieldEmail, email)
	}
	validator.MinLen(FieldPassword, password, MinPasswordLength)
	if err := validator.Err(); err != nil {
		return SignedOut, err
	}

	session, err := service.gateway.Register(ctx, Registration{Username: username, Email: email, Password: password})
	if err != nil {
		service.logger.WarnContext(ctx, "auth_register_failed", slog.Any("error", err))
		return SignedOut, err
	}

	return service.publish(ctx, session)
}

// Logout clears the session; the store resets every collection.
func (service *Service) Logout(ctx context.Context) {
	service.store.SetSession(ctx, SignedOut)
	service.logger.InfoContext(ctx, "auth_logged_out")
}

/*
Subscribe buys a premium or unlimited plan for the signed-in shopper.

Description: Only USER accounts may subscribe; staff roles are rejected
locally with the same FORBIDDEN the backend would return. On success the
session's subscription fields are updated in place.

Parameters:
  - ctx: context.Context
  - tier: pricing.Tier (PREMIUM or UNLIMITED)
  - cycle: pricing.BillingCycle (MONTHLY or YEARLY)

Returns:
  - Subscription: the server's view of the new plan
  - error: AUTH_REQUIRED, FORBIDDEN, VALIDATION_ERROR or NETWORK_FAILURE
*/
func (service *Service) Subscribe(ctx context.Context, tier pricing.Tier, cycle pricing.BillingCycle) (Subscription, error) {
	session := service.store.Session()
	if !session.SignedIn() {
		return Subscription{}, apperr.AuthRequired("subscribe")
	}
	if sec.ParseRole(string(session.Role)) != sec.RoleUser {
		return Subscription{}, apperr.Forbidden("Only shopper accounts can subscribe")
	}

	validator := &validate.Validator{}
	validator.OneOf(FieldSubscriptionType, string(tier), string(pricing.TierPremium), string(pricing.TierUnlimited))
	validator.OneOf(FieldBillingCycle, string(cycle), string(pricing.Monthly), string(pricing.Yearly))
	if err := validator.Err(); err != nil {
		return Subscription{}, err
	}

	request := SubscribeRequest{
		SubscriptionType: planName(tier),
		BillingCycle:     strings.ToLower(string(cycle)),
	}

	subscription, err := service.gateway.Subscribe(ctx, session.Token, request)
	if err != nil {
		service.logger.WarnContext(ctx, "subscription_failed", slog.Any("error", err))
		return Subscription{}, err
	}

	service.store.UpdateSubscription(subscription)
	service.logger.InfoContext(ctx, "subscription_activated",
		slog.String("tier", string(tier)),
		slog.String("cycle", string(cycle)),
	)
	return subscription, nil
}

func (service *Service) publish(ctx context.Context, session Session) (Session, error) {
	session = session.Normalized()
	if !session.SignedIn() {
		return SignedOut, apperr.Network(0, "Backend returned an empty token", nil)
	}

	service.store.SetSession(ctx, session)

	attrs := []any{
		slog.Int64("user_id", session.UserID),
		slog.String("role", string(session.Role)),
	}
	if expiresAt, ok := session.TokenExpiry(); ok {
		attrs = append(attrs, slog.Time("token_expires_at", expiresAt))
	}
	service.logger.InfoContext(ctx, "auth_signed_in", attrs...)
	return session, nil
}

// planName renders a tier the way the backend stores it ("Premium").
func planName(tier pricing.Tier) string {
	name := strings.ToLower(string(tier))
	return strings.ToUpper(name[:1]) + name[1:]
}
