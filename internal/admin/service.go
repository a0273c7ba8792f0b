// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package admin drives the back-office screens: publishing and editing catalog
entries, the redact-then-delete lifecycle of a comic, and account
management.

Every operation except the two picker lists requires a signed-in ADMIN
session. Input is validated before any request is sent.
*/
package admin

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

// Gateway is the backend's admin API. The transport client implements it.
type Gateway interface {
	FetchCategories(ctx context.Context) ([]catalog.Category, error)
	FetchConditions(ctx context.Context) ([]catalog.Condition, error)

	CreateComic(ctx context.Context, token string, draft ComicDraft) (catalog.Comic, error)
	FetchAdminComics(ctx context.Context, token string) ([]catalog.Comic, error)
	UpdateComic(ctx context.Context, token string, comicID int64, draft ComicDraft) (catalog.Comic, error)
	SetComicRedacted(ctx context.Context, token string, comicID int64, redacted bool) (catalog.Comic, error)
	DeleteComic(ctx context.Context, token string, comicID int64) error

	FetchUsers(ctx context.Context, token, query string) ([]User, error)
	CreateUser(ctx context.Context, token string, request UserRequest) (User, error)
	UpdateUser(ctx context.Context, token string, userID int64, request UserRequest) (User, error)
}

// Service runs the admin operations.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs a new [Service].
func NewService(gateway Gateway, logger *slog.Logger, now func() time.Time) *Service {
	return &Service{gateway: gateway, logger: logger, now: now}
}

// authorize rejects anything but a signed-in ADMIN.
func authorize(session auth.Session, action string) error {
	if !session.SignedIn() {
		return apperr.AuthRequired(action)
	}
	if sec.ParseRole(string(session.Role)) != sec.RoleAdmin {
		return apperr.Forbidden("Only administrators can " + action)
	}
	return nil
}

// # Pickers

// Categories lists the genre picker.
func (service *Service) Categories(ctx context.Context) result.Result[[]catalog.Category] {
	categories, err := service.gateway.FetchCategories(ctx)
	if err != nil {
		service.logger.WarnContext(ctx, "categories_fetch_failed", slog.Any("error", err))
		return result.Fail[[]catalog.Category](err)
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	return result.Ok(categories)
}

// Conditions lists the print-grade picker.
func (service *Service) Conditions(ctx context.Context) result.Result[[]catalog.Condition] {
	conditions, err := service.gateway.FetchConditions(ctx)
	if err != nil {
		service.logger.WarnContext(ctx, "conditions_fetch_failed", slog.Any("error", err))
		return result.Fail[[]catalog.Condition](err)
	}
	if conditions == nil {
		conditions = []catalog.Condition{}
	}
	return result.Ok(conditions)
}

// # Catalog Management

// Comics lists every comic, redacted ones included, newest first.
func (service *Service) Comics(ctx context.Context, session auth.Session) result.Result[[]catalog.Comic] {
	if err := authorize(session, "manage the catalog"); err != nil {
		return result.Fail[[]catalog.Comic](err)
	}

	comics, err := service.gateway.FetchAdminComics(ctx, session.Token)
	if err != nil {
		service.logger.WarnContext(ctx, "admin_comics_fetch_failed", slog.Any("error", err))
		return result.Fail[[]catalog.Comic](err)
	}
	if comics == nil {
		comics = []catalog.Comic{}
	}
	return result.Ok(comics)
}

/*
Publish adds a comic to the catalog.

Description: The draft is normalized and validated first; a draft without
a title or a price never reaches the backend.

Parameters:
  - ctx: context.Context
  - session: auth.Session (must be ADMIN)
  - draft: ComicDraft

Returns:
  - catalog.Comic: the stored comic with its server-assigned id
  - error: AUTH_REQUIRED, FORBIDDEN, VALIDATION_ERROR or NETWORK_FAILURE
*/
func (service *Service) Publish(ctx context.Context, session auth.Session, draft ComicDraft) (catalog.Comic, error) {
	if err := authorize(session, "publish comics"); err != nil {
		return catalog.Comic{}, err
	}

	draft = draft.Normalized()
	if err := draft.Validate(service.now()); err != nil {
		return catalog.Comic{}, err
	}

	comic, err := service.gateway.CreateComic(ctx, session.Token, draft)
	if err != nil {
		service.logger.WarnContext(ctx, "comic_publish_failed", slog.Any("error", err))
		return catalog.Comic{}, err
	}

	service.logger.InfoContext(ctx, "comic_published",
		slog.Int64("comic_id", comic.ID),
		slog.Int64("admin_id", session.UserID),
	)
	return comic, nil
}

// Update replaces every editable field of a comic with draft.
func (service *Service) Update(ctx context.Context, session auth.Session, comicID int64, draft ComicDraft) (catalog.Comic, error) {
	if err := authorize(session, "edit comics"); err != nil {
		return catalog.Comic{}, err
	}

	draft = draft.Normalized()
	if err := draft.Validate(service.now()); err != nil {
		return catalog.Comic{}, err
	}

	comic, err := service.gateway.UpdateComic(ctx, session.Token, comicID, draft)
	if err != nil {
		service.logger.WarnContext(ctx, "comic_update_failed", slog.Int64("comic_id", comicID), slog.Any("error", err))
		return catalog.Comic{}, err
	}
	return comic, nil
}

// SetRedacted hides a comic from the storefront or brings it back.
func (service *Service) SetRedacted(ctx context.Context, session auth.Session, comicID int64, redacted bool) (catalog.Comic, error) {
	if err := authorize(session, "redact comics"); err != nil {
		return catalog.Comic{}, err
	}

	comic, err := service.gateway.SetComicRedacted(ctx, session.Token, comicID, redacted)
	if err != nil {
		service.logger.WarnContext(ctx, "comic_redaction_failed", slog.Int64("comic_id", comicID), slog.Any("error", err))
		return catalog.Comic{}, err
	}

	service.logger.InfoContext(ctx, "comic_redaction_changed",
		slog.Int64("comic_id", comicID),
		slog.Bool("redacted", redacted),
	)
	return comic, nil
}

// Delete removes a redacted comic along with every cart, wishlist and
// library line that references it. The backend refuses unredacted comics.
func (service *Service) Delete(ctx context.Context, session auth.Session, comicID int64) error {
	if err := authorize(session, "delete comics"); err != nil {
		return err
	}

	if err := service.gateway.DeleteComic(ctx, session.Token, comicID); err != nil {
		service.logger.WarnContext(ctx, "comic_delete_failed", slog.Int64("comic_id", comicID), slog.Any("error", err))
		return err
	}

	service.logger.InfoContext(ctx, "comic_deleted", slog.Int64("comic_id", comicID))
	return nil
}

// # Accounts

// Users lists accounts by username. A non-blank query matches username,
// email, first or last name.
func (service *Service) Users(ctx context.Context, session auth.Session, query string) result.Result[[]User] {
	if err := authorize(session, "manage users"); err != nil {
		return result.Fail[[]User](err)
	}

	users, err := service.gateway.FetchUsers(ctx, session.Token, strings.TrimSpace(query))
	if err != nil {
		service.logger.WarnContext(ctx, "users_fetch_failed", slog.Any("error", err))
		return result.Fail[[]User](err)
	}
	if users == nil {
		users = []User{}
	}
	return result.Ok(users)
}

// CreateUser opens an account with any role. A blank role means USER.
func (service *Service) CreateUser(ctx context.Context, session auth.Session, request UserRequest) (User, error) {
	if err := authorize(session, "manage users"); err != nil {
		return User{}, err
	}

	request = request.Normalized()
	if err := request.ValidateCreate(); err != nil {
		return User{}, err
	}

	user, err := service.gateway.CreateUser(ctx, session.Token, request)
	if err != nil {
		service.logger.WarnContext(ctx, "user_create_failed", slog.Any("error", err))
		return User{}, err
	}

	service.logger.InfoContext(ctx, "user_created",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// UpdateUser edits the fields present in request.
func (service *Service) UpdateUser(ctx context.Context, session auth.Session, userID int64, request UserRequest) (User, error) {
	if err := authorize(session, "manage users"); err != nil {
		return User{}, err
	}

	request = request.Normalized()
	if err := request.ValidateUpdate(); err != nil {
		return User{}, err
	}

	user, err := service.gateway.UpdateUser(ctx, session.Token, userID, request)
	if err != nil {
		service.logger.WarnContext(ctx, "user_update_failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return User{}, err
	}
	return user, nil
}
