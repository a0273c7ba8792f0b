// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package news reads the storefront's news feed and lets staff publish to it.

Posts expire on the server; the feed only ever contains live posts, newest
first.
*/
package news

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/internal/platform/validate"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

const (
	FieldTitle   = "title"
	FieldContent = "content"

	// MaxTitleLength bounds post titles.
	MaxTitleLength = 200
)

// Post is one news article.
type Post struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	AuthorID       int64  `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	AuthorRole     string `json:"authorRole"`
	CreatedAt      string `json:"createdAt"`
	ExpiresAt      string `json:"expiresAt"`
}

// Published returns CreatedAt as a time, or the zero epoch if unparsable.
func (p Post) Published() time.Time {
	return catalog.ParseInstant(p.CreatedAt)
}

// Draft is a post before the server assigns it an id.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Gateway is the backend's news API.
type Gateway interface {
	FetchNews(ctx context.Context) ([]Post, error)
	CreateNews(ctx context.Context, token string, draft Draft) (Post, error)
}

// Service serves the feed.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
}

// NewService constructs a new [Service].
func NewService(gateway Gateway, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// List fetches the live feed.
func (service *Service) List(ctx context.Context) result.Result[[]Post] {
	posts, err := service.gateway.FetchNews(ctx)
	if err != nil {
		service.logger.WarnContext(ctx, "news_fetch_failed", slog.Any("error", err))
		return result.Fail[[]Post](err)
	}
	if posts == nil {
		posts = []Post{}
	}
	return result.Ok(posts)
}

/*
Publish posts an article as session and returns the refreshed feed.

Description: Only EDITOR and ADMIN sessions may publish. Input is checked
before the request is sent.

Parameters:
  - ctx: context.Context
  - session: auth.Session (the author)
  - title, content: string

Returns:
  - result.Result[[]Post]: the feed after publishing
  - error: AUTH_REQUIRED, FORBIDDEN, VALIDATION_ERROR or NETWORK_FAILURE
*/
func (service *Service) Publish(ctx context.Context, session auth.Session, title, content string) (result.Result[[]Post], error) {
	if !session.SignedIn() {
		return nil, apperr.AuthRequired("publish news")
	}
	if !sec.ParseRole(string(session.Role)).AtLeast(sec.RoleEditor) {
		return nil, apperr.Forbidden("Only editors can publish news")
	}

	draft := Draft{Title: strings.TrimSpace(title), Content: strings.TrimSpace(content)}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, draft.Title).MaxLen(FieldTitle, draft.Title, MaxTitleLength)
	validator.Required(FieldContent, draft.Content)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	post, err := service.gateway.CreateNews(ctx, session.Token, draft)
	if err != nil {
		service.logger.WarnContext(ctx, "news_publish_failed", slog.Any("error", err))
		return nil, err
	}

	service.logger.InfoContext(ctx, "news_published",
		slog.Int64("post_id", post.ID),
		slog.Int64("author_id", session.UserID),
	)
	return service.List(ctx), nil
}
