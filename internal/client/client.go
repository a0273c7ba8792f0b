// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package client is the REST transport to the Bazinga backend.

A single [Client] implements every gateway the core depends on:
catalog.Source, auth.Gateway, commerce.Backend and news.Gateway.

# Error Mapping

Transport errors and non-2xx responses both surface as NETWORK_FAILURE
[apperr.AppError] values. When the backend sends a JSON body with an "error"
or "message" field, that text becomes the message; otherwise the HTTP status
text is used.

# Pacing

Outgoing calls share a token-bucket limiter sized from configuration, so a
burst of UI actions cannot flood the backend.
*/
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/config"
	"github.com/dentuss/Bazinga-Comics/internal/platform/constants"
	"github.com/dentuss/Bazinga-Comics/internal/platform/ctxutil"
)

// Client talks to the backend over HTTP/JSON. Safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	baseURL string
}

// New builds a client from the API_BASE_URL, REQUEST_TIMEOUT and
// CLIENT_RATE_LIMIT_* settings.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", constants.AppName+"/"+constants.AppVersion).
		SetLogger(restyLogger{logger: logger})

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		logger:  logger,
		baseURL: baseURL,
	}
}

// BaseURL returns the backend root, used to resolve relative image paths.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody covers both the sandbox envelope and Spring's default error JSON.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// restyLogger routes resty's own diagnostics into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error("resty_error", slog.String("detail", fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Debug("resty_warning", slog.String("detail", fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug("resty_debug", slog.String("detail", fmt.Sprintf(format, v...)))
}

// call performs one request and decodes the JSON response into T.
//
// An empty token sends no Authorization header. Bodies are always read as
// JSON, whatever Content-Type the backend sent.
func call[T any](ctx context.Context, c *Client, method, path, token string, body any) (T, error) {
	var out T

	if err := c.limiter.Wait(ctx); err != nil {
		return out, apperr.Network(0, "Request cancelled", err)
	}

	ctx, requestID := ctxutil.EnsureRequestID(ctx)
	req := c.http.R().
		SetContext(ctx).
		SetHeader(constants.HeaderXRequestID, requestID).
		ForceContentType("application/json").
		SetResult(&out).
		SetError(&errorBody{})
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil && (resp == nil || resp.RawResponse == nil) {
		c.logger.WarnContext(ctx, "api_transport_failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return out, apperr.Network(0, "", err)
	}

	if !resp.IsSuccess() {
		failure := apperr.Network(resp.StatusCode(), responseMessage(resp), nil)
		c.logger.WarnContext(ctx, "api_request_failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int(constants.FieldStatus, resp.StatusCode()),
			slog.String("request_id", requestID),
			slog.String("error", failure.Message),
		)
		return out, failure
	}

	// A decode error on an empty 2xx body just means "no payload".
	if err != nil && len(resp.Body()) > 0 {
		c.logger.WarnContext(ctx, "api_response_malformed",
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		var zero T
		return zero, apperr.Network(resp.StatusCode(), "Malformed response from server", err)
	}

	c.logger.DebugContext(ctx, "api_request_completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int(constants.FieldStatus, resp.StatusCode()),
		slog.Duration("latency", resp.Time()),
	)
	return out, nil
}

// responseMessage extracts a user-facing message from an error response.
func responseMessage(resp *resty.Response) string {
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
	}
	return http.StatusText(resp.StatusCode())
}
