// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package auth models the signed-in shopper and drives sign-in, registration,
sign-out and subscription purchases against the backend.

The [Session] itself is owned by the commerce store; this package only hands
new sessions to it through [SessionStore], which is what triggers the
collection refetch on sign-in and the reset on sign-out.
*/
package auth

import (
	"strings"
	"time"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
)

// # Domain Entities

// Session is the authenticated shopper. It decodes directly from the
// backend's login/register response. An empty Token means signed out.
type Session struct {
	Token                  string       `json:"token"`
	UserID                 int64        `json:"userId"`
	Username               string       `json:"username"`
	Email                  string       `json:"email"`
	Role                   sec.UserRole `json:"role"`
	SubscriptionType       *string      `json:"subscriptionType,omitempty"`
	SubscriptionExpiration *string      `json:"subscriptionExpiration,omitempty"`
}

// SignedOut is the zero session.
var SignedOut = Session{}

// SignedIn reports whether the session carries a token.
func (s Session) SignedIn() bool {
	return strings.TrimSpace(s.Token) != ""
}

// Normalized upper-cases the role as the backend is inconsistent about it.
func (s Session) Normalized() Session {
	s.Role = sec.ParseRole(string(s.Role))
	return s
}

// TokenExpiry reads the expiry claim of the access token without verifying
// it. The second value is false for opaque or malformed tokens.
func (s Session) TokenExpiry() (time.Time, bool) {
	claims, err := sec.PeekClaims(s.Token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Tier returns the pricing tier at now. A subscription whose expiration lies
// in the past no longer discounts. Bare dates are valid through that day.
func (s Session) Tier(now time.Time) pricing.Tier {
	tier := pricing.TierFor(pointer.Val(s.SubscriptionType))
	if tier == pricing.TierNone {
		return tier
	}

	raw := strings.TrimSpace(pointer.Val(s.SubscriptionExpiration))
	if raw == "" {
		return tier
	}

	expiresAt := catalog.ParseInstant(raw)
	if expiresAt.Unix() == 0 {
		return tier
	}
	if len(raw) == len(time.DateOnly) {
		expiresAt = expiresAt.AddDate(0, 0, 1)
	}
	if !now.Before(expiresAt) {
		return pricing.TierNone
	}
	return tier
}

// WithSubscription returns a copy carrying the new subscription fields.
func (s Session) WithSubscription(subscription Subscription) Session {
	s.SubscriptionType = pointer.To(subscription.SubscriptionType)
	s.SubscriptionExpiration = subscription.SubscriptionExpiration
	return s
}

// Subscription is the subscribe endpoint's response.
type Subscription struct {
	SubscriptionType       string  `json:"subscriptionType"`
	SubscriptionExpiration *string `json:"subscriptionExpiration,omitempty"`
}

// # Requests

// Credentials is the body of POST /api/auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /api/auth/register.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SubscribeRequest is the body of POST /api/subscriptions/subscribe.
type SubscribeRequest struct {
	SubscriptionType string `json:"subscriptionType"`
	BillingCycle     string `json:"billingCycle"`
}
