// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentuss/Bazinga-Comics/internal/admin"
	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/client"
	"github.com/dentuss/Bazinga-Comics/internal/news"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/config"
	"github.com/dentuss/Bazinga-Comics/internal/platform/ctxutil"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/internal/sandbox"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Environment:        "test",
		APIBaseURL:         baseURL,
		RequestTimeout:     5 * time.Second,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		SandboxPort:        "0",
		SandboxTokenSecret: "client-test-secret-0123456789",
		SandboxTokenTTL:    time.Hour,
	}
}

// withSandbox starts a seeded sandbox and a client pointed at it.
func withSandbox(t *testing.T) (*client.Client, *sandbox.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server, err := sandbox.NewServer(ctx, testConfig(""), discard(), sandbox.WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	return client.New(testConfig(httpServer.URL+"/"), discard()), server
}

/*
TestClient_AgainstSandbox drives the full gateway surface end to end.
*/
func TestClient_AgainstSandbox(t *testing.T) {
	api, _ := withSandbox(t)
	ctx := context.Background()

	comics, err := api.FetchComics(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, comics)
	exclusive := catalog.DigitalExclusive(comics)[0]

	session, err := api.Register(ctx, auth.Registration{Username: "miles", Email: "miles@brooklyn.test", Password: "spider"})
	require.NoError(t, err)
	require.True(t, session.SignedIn())

	t.Run("cart round trip", func(t *testing.T) {
		cart, err := api.AddToCart(ctx, session.Token, exclusive.ID, 1, pricing.Original)
		require.NoError(t, err)
		require.Len(t, cart, 1)
		assert.Equal(t, pricing.Digital, cart[0].PurchaseType)

		cart, err = api.UpdateCartItem(ctx, session.Token, cart[0].ID, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, cart[0].Quantity)

		cart, err = api.RemoveCartItem(ctx, session.Token, cart[0].ID)
		require.NoError(t, err)
		assert.Empty(t, cart)
	})

	t.Run("wishlist and library", func(t *testing.T) {
		wishlist, err := api.AddToWishlist(ctx, session.Token, exclusive.ID)
		require.NoError(t, err)
		assert.Len(t, wishlist, 1)

		wishlist, err = api.RemoveFromWishlist(ctx, session.Token, exclusive.ID)
		require.NoError(t, err)
		assert.Empty(t, wishlist)

		library, err := api.AddToLibrary(ctx, session.Token, exclusive.ID)
		require.NoError(t, err)
		assert.Len(t, library, 1)

		library, err = api.FetchLibrary(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, exclusive.ID, library[0].Comic.ID)
	})

	t.Run("subscription", func(t *testing.T) {
		subscription, err := api.Subscribe(ctx, session.Token, auth.SubscribeRequest{SubscriptionType: "PREMIUM", BillingCycle: "MONTHLY"})
		require.NoError(t, err)
		assert.Equal(t, "Premium", subscription.SubscriptionType)
		assert.NotNil(t, subscription.SubscriptionExpiration)
	})

	t.Run("news", func(t *testing.T) {
		editor, err := api.Login(ctx, auth.Credentials{Email: sandbox.EditorEmail, Password: sandbox.EditorPassword})
		require.NoError(t, err)

		post, err := api.CreateNews(ctx, editor.Token, news.Draft{Title: "Launch", Content: "Bazinga Infinite is live"})
		require.NoError(t, err)
		assert.Equal(t, "editor", post.AuthorUsername)

		posts, err := api.FetchNews(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, post.ID, posts[0].ID)
	})
}

/*
TestClient_ErrorMapping checks that failures surface as NETWORK_FAILURE with
the backend's message.
*/
func TestClient_ErrorMapping(t *testing.T) {
	api, server := withSandbox(t)
	ctx := context.Background()

	t.Run("envelope error field", func(t *testing.T) {
		_, err := api.Login(ctx, auth.Credentials{Email: "nobody@nowhere.test", Password: "x"})

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperr.CodeNetworkFailure, appErr.Code)
		assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	})

	t.Run("injected failure", func(t *testing.T) {
		server.FailNext(http.MethodGet, "/api/comics", http.StatusBadGateway)

		_, err := api.FetchComics(ctx)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
	})

	t.Run("transport failure", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		_, err := client.New(testConfig(dead.URL), discard()).FetchComics(ctx)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 0, appErr.HTTPStatus)
		assert.Equal(t, "Network request failed", appErr.Message)
	})
}

/*
TestClient_Responses covers response shapes the sandbox never produces.
*/
func TestClient_Responses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		wantMessage string
	}{
		{"spring message field", http.StatusInternalServerError, `{"message":"Comic not found"}`, true, "Comic not found"},
		{"plain text failure", http.StatusServiceUnavailable, `down for maintenance`, true, "Service Unavailable"},
		{"error field wins", http.StatusUnauthorized, `{"error":"Invalid token","message":"Unauthorized"}`, true, "Invalid token"},
		{"malformed success", http.StatusOK, `{"id":`, true, "Malformed response from server"},
		{"empty success", http.StatusOK, ``, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(tt.status)
				_, _ = io.WriteString(writer, tt.body)
			}))
			defer backend.Close()

			comics, err := client.New(testConfig(backend.URL), discard()).FetchComics(context.Background())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Empty(t, comics)
				return
			}
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantMessage, appErr.Message)
		})
	}
}

/*
TestClient_Headers checks the bearer token and request id propagation.
*/
func TestClient_Headers(t *testing.T) {
	var (
		mu      sync.Mutex
		headers []http.Header
	)
	backend := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		mu.Lock()
		headers = append(headers, request.Header.Clone())
		mu.Unlock()
		_, _ = io.WriteString(writer, `[]`)
	}))
	defer backend.Close()

	api := client.New(testConfig(backend.URL), discard())

	ctx := ctxutil.WithRequestID(context.Background(), "req-42")
	_, err := api.FetchCart(ctx, "tok-123")
	require.NoError(t, err)

	_, err = api.FetchComics(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, headers, 2)

	assert.Equal(t, "Bearer tok-123", headers[0].Get("Authorization"))
	assert.Equal(t, "req-42", headers[0].Get("X-Request-ID"))

	assert.Empty(t, headers[1].Get("Authorization"))
	assert.NotEmpty(t, headers[1].Get("X-Request-ID"))
}

/*
TestClient_Admin drives the admin endpoints end to end, including the
empty 204 body of a delete.
*/
func TestClient_Admin(t *testing.T) {
	api, _ := withSandbox(t)
	ctx := context.Background()

	session, err := api.Login(ctx, auth.Credentials{Email: sandbox.AdminEmail, Password: sandbox.AdminPassword})
	require.NoError(t, err)

	categories, err := api.FetchCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	conditions, err := api.FetchConditions(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, conditions)

	comic, err := api.CreateComic(ctx, session.Token, admin.ComicDraft{
		Title:         "Spider-Gwen #1",
		PublishedYear: pointer.To(2015),
		Price:         pointer.To(3.99),
		CategoryID:    pointer.To(categories[0].ID),
		ConditionID:   pointer.To(conditions[0].ID),
	})
	require.NoError(t, err)
	assert.Equal(t, categories[0].Name, comic.CategoryName())

	comic, err = api.SetComicRedacted(ctx, session.Token, comic.ID, true)
	require.NoError(t, err)
	assert.True(t, comic.Redacted)

	listed, err := api.FetchAdminComics(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, comic.ID, listed[0].ID)

	require.NoError(t, api.DeleteComic(ctx, session.Token, comic.ID))

	err = api.DeleteComic(ctx, session.Token, comic.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNetworkFailure))
	assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)

	t.Run("users", func(t *testing.T) {
		created, err := api.CreateUser(ctx, session.Token, admin.UserRequest{
			Username: "gwen", Email: "gwen@earth65.test", Password: "drummer",
		})
		require.NoError(t, err)
		assert.Equal(t, "USER", string(created.Role))

		found, err := api.FetchUsers(ctx, session.Token, "gwen stacy")
		require.NoError(t, err)
		assert.Empty(t, found)

		found, err = api.FetchUsers(ctx, session.Token, "earth65")
		require.NoError(t, err)
		require.Len(t, found, 1)

		updated, err := api.UpdateUser(ctx, session.Token, created.ID, admin.UserRequest{Role: "EDITOR"})
		require.NoError(t, err)
		assert.Equal(t, "EDITOR", string(updated.Role))
	})
}
