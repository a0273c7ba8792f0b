// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package sandbox_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/commerce"
	"github.com/dentuss/Bazinga-Comics/internal/news"
	"github.com/dentuss/Bazinga-Comics/internal/platform/config"
	"github.com/dentuss/Bazinga-Comics/internal/platform/respond"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/internal/sandbox"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
)

// clock is a settable time source.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type harness struct {
	server *sandbox.Server
	clock  *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clk := &clock{now: time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)}
	store := sandbox.NewStore(clk.Now)
	require.NoError(t, sandbox.Seed(store, bcrypt.MinCost))

	cfg := &config.Config{
		Environment:        "test",
		SandboxPort:        "0",
		SandboxTokenSecret: "sandbox-test-secret-0123456789",
		SandboxTokenTTL:    time.Hour,
	}
	server, err := sandbox.NewServer(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		sandbox.WithStore(store), sandbox.WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)

	return &harness{server: server, clock: clk}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}

	request := httptest.NewRequest(method, path, payload)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value), recorder.Body.String())
	return value
}

func (h *harness) register(t *testing.T, email string) auth.Session {
	t.Helper()
	recorder := h.do(t, http.MethodPost, "/api/auth/register", "", auth.Registration{
		Username: "shopper", Email: email, Password: "hunter22",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	return decode[auth.Session](t, recorder)
}

func (h *harness) login(t *testing.T, email, password string) auth.Session {
	t.Helper()
	recorder := h.do(t, http.MethodPost, "/api/auth/login", "", auth.Credentials{Email: email, Password: password})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	return decode[auth.Session](t, recorder)
}

// comicByType returns the first seeded comic of the given type.
func (h *harness) comicByType(t *testing.T, comicType catalog.ComicType) catalog.Comic {
	t.Helper()
	for _, comic := range h.server.Store().Comics() {
		if comic.ComicType == comicType {
			return comic
		}
	}
	t.Fatalf("no seeded %s comic", comicType)
	return catalog.Comic{}
}

/*
TestServer_Health checks the liveness and readiness probes.
*/
func TestServer_Health(t *testing.T) {
	h := newHarness(t)

	recorder := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	ready := h.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Equal(t, "ready", decode[map[string]any](t, ready)["status"])

	t.Run("empty catalog is degraded", func(t *testing.T) {
		empty, err := sandbox.NewServer(context.Background(), &config.Config{
			SandboxTokenSecret: "sandbox-test-secret-0123456789",
			SandboxTokenTTL:    time.Hour,
		}, slog.New(slog.NewTextHandler(io.Discard, nil)), sandbox.WithStore(sandbox.NewStore(time.Now)))
		require.NoError(t, err)

		recorder := httptest.NewRecorder()
		empty.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", http.NoBody))
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})
}

/*
TestServer_Comics checks the public catalog listing.
*/
func TestServer_Comics(t *testing.T) {
	h := newHarness(t)

	recorder := h.do(t, http.MethodGet, "/api/comics", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	comics := decode[[]catalog.Comic](t, recorder)
	assert.Len(t, comics, 12)
	assert.NotEmpty(t, catalog.DigitalExclusive(comics))
}

/*
TestServer_Auth covers registration, login and their failures.
*/
func TestServer_Auth(t *testing.T) {
	h := newHarness(t)

	t.Run("register creates a free shopper", func(t *testing.T) {
		session := h.register(t, "miles@brooklyn.test")

		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "USER", string(session.Role))
		assert.Equal(t, sandbox.FreePlan, pointer.Val(session.SubscriptionType))
		assert.Nil(t, session.SubscriptionExpiration)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		recorder := h.do(t, http.MethodPost, "/api/auth/register", "", auth.Registration{
			Username: "other", Email: "MILES@brooklyn.test", Password: "x",
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Email is already registered", decode[respond.ErrorEnvelope](t, recorder).Error)
	})

	t.Run("login succeeds with the right password", func(t *testing.T) {
		session := h.login(t, "miles@brooklyn.test", "hunter22")
		assert.Equal(t, "shopper", session.Username)
	})

	t.Run("login rejects a wrong password", func(t *testing.T) {
		recorder := h.do(t, http.MethodPost, "/api/auth/login", "", auth.Credentials{
			Email: "miles@brooklyn.test", Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("private routes need a token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/cart", "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/cart", "garbage", nil).Code)
	})
}

/*
TestServer_Cart covers the cart endpoints, including the digital-exclusive
rule and quantity semantics.
*/
func TestServer_Cart(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "gwen@earth65.test").Token
	printed := h.comicByType(t, catalog.TypePhysicalCopy)
	exclusive := h.comicByType(t, catalog.TypeOnlyDigital)

	t.Run("exclusive is forced to digital", func(t *testing.T) {
		recorder := h.do(t, http.MethodPost, "/api/cart", token, map[string]any{
			"comicId": exclusive.ID, "quantity": 1, "purchaseType": "ORIGINAL",
		})
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		cart := decode[[]commerce.CartItem](t, recorder)
		require.Len(t, cart, 1)
		assert.Equal(t, pricing.Digital, cart[0].PurchaseType)
	})

	t.Run("adding the same line increments it", func(t *testing.T) {
		body := map[string]any{"comicId": printed.ID, "quantity": 1, "purchaseType": "ORIGINAL"}
		h.do(t, http.MethodPost, "/api/cart", token, body)
		cart := decode[[]commerce.CartItem](t, h.do(t, http.MethodPost, "/api/cart", token, body))

		require.Len(t, cart, 2)
		assert.Equal(t, 2, cart[1].Quantity)
		assert.Equal(t, printed.BasePrice(), cart[1].UnitPrice)
	})

	t.Run("zero quantity update deletes the line", func(t *testing.T) {
		current := decode[[]commerce.CartItem](t, h.do(t, http.MethodGet, "/api/cart", token, nil))
		require.Len(t, current, 2)

		recorder := h.do(t, http.MethodPut, "/api/cart", token, map[string]any{
			"cartItemId": current[0].ID, "quantity": 0,
		})
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Len(t, decode[[]commerce.CartItem](t, recorder), 1)
	})

	t.Run("unknown line is not found", func(t *testing.T) {
		recorder := h.do(t, http.MethodPut, "/api/cart", token, map[string]any{"cartItemId": 9999, "quantity": 2})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("delete by id and clear", func(t *testing.T) {
		current := decode[[]commerce.CartItem](t, h.do(t, http.MethodGet, "/api/cart", token, nil))
		require.Len(t, current, 1)

		h.do(t, http.MethodPost, "/api/cart", token, map[string]any{"comicId": exclusive.ID, "quantity": 1})
		removed := h.do(t, http.MethodDelete, "/api/cart/"+strconv.FormatInt(current[0].ID, 10), token, nil)
		require.Equal(t, http.StatusOK, removed.Code)
		assert.Len(t, decode[[]commerce.CartItem](t, removed), 1)

		cleared := h.do(t, http.MethodDelete, "/api/cart", token, nil)
		require.Equal(t, http.StatusOK, cleared.Code)
		assert.Empty(t, decode[[]commerce.CartItem](t, cleared))
	})
}

/*
TestServer_Collections covers the wishlist and library endpoints.
*/
func TestServer_Collections(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "kamala@jersey.test").Token
	comic := h.comicByType(t, catalog.TypePhysicalCopy)
	path := "/api/wishlist/" + strconv.FormatInt(comic.ID, 10)

	t.Run("wishlist add is idempotent", func(t *testing.T) {
		h.do(t, http.MethodPost, "/api/wishlist", token, map[string]any{"comicId": comic.ID})
		recorder := h.do(t, http.MethodPost, "/api/wishlist", token, map[string]any{"comicId": comic.ID})

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Len(t, decode[[]commerce.WishlistItem](t, recorder), 1)
	})

	t.Run("wishlist remove by comic id", func(t *testing.T) {
		recorder := h.do(t, http.MethodDelete, path, token, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, decode[[]commerce.WishlistItem](t, recorder))
	})

	t.Run("wishlist rejects unknown comics", func(t *testing.T) {
		recorder := h.do(t, http.MethodPost, "/api/wishlist", token, map[string]any{"comicId": 424242})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("library grant is idempotent", func(t *testing.T) {
		h.do(t, http.MethodPost, "/api/library", token, map[string]any{"comicId": comic.ID})
		h.do(t, http.MethodPost, "/api/library", token, map[string]any{"comicId": comic.ID})

		library := decode[[]commerce.LibraryItem](t, h.do(t, http.MethodGet, "/api/library", token, nil))
		require.Len(t, library, 1)
		assert.Equal(t, comic.ID, library[0].Comic.ID)
	})
}

/*
TestServer_Subscribe checks plan purchase and the discounted cart price.
*/
func TestServer_Subscribe(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "peter@queens.test").Token

	tests := []struct {
		name       string
		body       auth.SubscribeRequest
		wantStatus int
		wantType   string
		wantExpiry string
	}{
		{"monthly premium", auth.SubscribeRequest{SubscriptionType: "PREMIUM", BillingCycle: "MONTHLY"}, http.StatusOK, "Premium", "2024-07-10"},
		{"yearly unlimited", auth.SubscribeRequest{SubscriptionType: "unlimited", BillingCycle: "yearly"}, http.StatusOK, "Unlimited", "2025-06-10"},
		{"unknown plan", auth.SubscribeRequest{SubscriptionType: "GOLD", BillingCycle: "MONTHLY"}, http.StatusBadRequest, "", ""},
		{"unknown cycle", auth.SubscribeRequest{SubscriptionType: "PREMIUM", BillingCycle: "WEEKLY"}, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := h.do(t, http.MethodPost, "/api/subscriptions/subscribe", token, tt.body)
			require.Equal(t, tt.wantStatus, recorder.Code, recorder.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			subscription := decode[auth.Subscription](t, recorder)
			assert.Equal(t, tt.wantType, subscription.SubscriptionType)
			assert.Equal(t, tt.wantExpiry, pointer.Val(subscription.SubscriptionExpiration))
		})
	}

	t.Run("staff cannot subscribe", func(t *testing.T) {
		editor := h.login(t, sandbox.EditorEmail, sandbox.EditorPassword)
		recorder := h.do(t, http.MethodPost, "/api/subscriptions/subscribe", editor.Token,
			auth.SubscribeRequest{SubscriptionType: "PREMIUM", BillingCycle: "MONTHLY"})
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("login reflects the latest plan", func(t *testing.T) {
		session := h.login(t, "peter@queens.test", "hunter22")
		assert.Equal(t, "Unlimited", pointer.Val(session.SubscriptionType))
	})
}

/*
TestServer_News covers publishing permissions, ordering and expiry.
*/
func TestServer_News(t *testing.T) {
	h := newHarness(t)
	shopper := h.register(t, "jj@bugle.test").Token
	editor := h.login(t, sandbox.EditorEmail, sandbox.EditorPassword).Token
	admin := h.login(t, sandbox.AdminEmail, sandbox.AdminPassword).Token

	t.Run("roles below editor are refused", func(t *testing.T) {
		draft := news.Draft{Title: "Hot take", Content: "Spider-Man is a menace"}
		assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, "/api/news", "", draft).Code)
		assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodPost, "/api/news", shopper, draft).Code)
	})

	t.Run("blank title fails validation", func(t *testing.T) {
		recorder := h.do(t, http.MethodPost, "/api/news", editor, news.Draft{Title: " ", Content: "body"})

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		envelope := decode[respond.ErrorEnvelope](t, recorder)
		require.Len(t, envelope.Details, 1)
		assert.Equal(t, news.FieldTitle, envelope.Details[0].Field)
	})

	t.Run("posts are listed newest first", func(t *testing.T) {
		first := h.do(t, http.MethodPost, "/api/news", editor, news.Draft{Title: "First", Content: "one"})
		require.Equal(t, http.StatusCreated, first.Code)
		post := decode[news.Post](t, first)
		assert.Equal(t, "EDITOR", post.AuthorRole)
		assert.Equal(t, "2024-06-10T12:00:00", post.CreatedAt)
		assert.Equal(t, "2024-06-17T12:00:00", post.ExpiresAt)

		h.clock.now = h.clock.now.Add(time.Hour)
		require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/api/news", admin, news.Draft{Title: "Second", Content: "two"}).Code)

		posts := decode[[]news.Post](t, h.do(t, http.MethodGet, "/api/news", "", nil))
		require.Len(t, posts, 2)
		assert.Equal(t, "Second", posts[0].Title)
		assert.Equal(t, "First", posts[1].Title)
	})

	t.Run("expired posts disappear", func(t *testing.T) {
		h.clock.now = h.clock.now.Add(7*24*time.Hour - 30*time.Minute)

		posts := decode[[]news.Post](t, h.do(t, http.MethodGet, "/api/news", "", nil))
		require.Len(t, posts, 1)
		assert.Equal(t, "Second", posts[0].Title)
	})
}

/*
TestServer_FailNext checks one-shot fault injection.
*/
func TestServer_FailNext(t *testing.T) {
	h := newHarness(t)
	h.server.FailNext(http.MethodGet, "/api/comics", http.StatusServiceUnavailable)

	failed := h.do(t, http.MethodGet, "/api/comics", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, failed.Code)
	assert.Equal(t, "Service Unavailable", decode[respond.ErrorEnvelope](t, failed).Error)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/comics", "", nil).Code)
}
