// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package sandbox is an in-memory implementation of the Bazinga REST backend.

It serves the exact contract the storefront client speaks, so it backs both
local development (cmd/sandbox) and the client and checkout scenario tests
(via httptest). It is never the production source of truth.

Architecture:

  - Server wires the chi router, the middleware chain and the handlers.
  - Store holds every account, catalog and collection in memory.
  - FailNext injects a one-shot failure for a route, for failure tests.
*/
package sandbox

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/config"
	"github.com/dentuss/Bazinga-Comics/internal/platform/constants"
	"github.com/dentuss/Bazinga-Comics/internal/platform/middleware"
	"github.com/dentuss/Bazinga-Comics/internal/platform/respond"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"golang.org/x/crypto/bcrypt"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger

	store    *Store
	tokens   *sec.TokenService
	tokenTTL time.Duration
	hashCost int

	faultsMu sync.Mutex
	faults   map[string]int
}

// # Configuration

// Option configures a [Server].
type Option func(*Server)

// WithStore replaces the seeded store.
func WithStore(store *Store) Option {
	return func(server *Server) { server.store = store }
}

// WithHashCost sets the bcrypt cost for new accounts. Tests use
// bcrypt.MinCost to keep registration fast.
func WithHashCost(cost int) Option {
	return func(server *Server) { server.hashCost = cost }
}

// # Server Initialization

// NewServer builds the sandbox from the SANDBOX_* settings. Without
// [WithStore] the catalog and staff accounts are seeded.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...Option) (*Server, error) {
	tokens, err := sec.NewTokenService(cfg.SandboxTokenSecret, constants.AuthIssuer)
	if err != nil {
		return nil, err
	}

	server := &Server{
		log:      log,
		tokens:   tokens,
		tokenTTL: cfg.SandboxTokenTTL,
		hashCost: bcrypt.DefaultCost,
		faults:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(server)
	}

	if server.store == nil {
		server.store = NewStore(time.Now)
		if err := Seed(server.store, server.hashCost); err != nil {
			return nil, err
		}
	}

	handlers := &handlers{
		store:    server.store,
		tokens:   server.tokens,
		tokenTTL: server.tokenTTL,
		hashCost: server.hashCost,
	}

	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx, constants.SandboxRateLimitRPS, constants.SandboxRateLimitBurst))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(server.injectFaults)
	r.Use(middleware.Authenticate(tokens))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	health := &healthHandler{store: server.store, logger: log}
	r.Get("/health", health.liveness)
	r.Get("/ready", health.readiness)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Get("/comics", handlers.listComics)
		api.Get("/categories", handlers.listCategories)
		api.Get("/conditions", handlers.listConditions)
		api.Get("/news", handlers.listNews)

		api.Route("/auth", func(authRoutes chi.Router) {
			authRoutes.Post("/login", handlers.login)
			authRoutes.Post("/register", handlers.register)
		})

		api.Group(func(private chi.Router) {
			private.Use(middleware.RequireAuth)

			private.Get("/cart", handlers.getCart)
			private.Post("/cart", handlers.addToCart)
			private.Put("/cart", handlers.updateCart)
			private.Delete("/cart", handlers.clearCart)
			private.Delete("/cart/{cartItemId}", handlers.removeCartItem)

			private.Get("/wishlist", handlers.getWishlist)
			private.Post("/wishlist", handlers.addToWishlist)
			private.Delete("/wishlist/{comicId}", handlers.removeFromWishlist)

			private.Get("/library", handlers.getLibrary)
			private.Post("/library", handlers.addToLibrary)

			private.Post("/subscriptions/subscribe", handlers.subscribe)
		})

		api.With(middleware.RequireRole(sec.RoleEditor)).Post("/news", handlers.createNews)
		api.With(middleware.RequireRole(sec.RoleAdmin)).Post("/comics", handlers.createComic)

		api.Route("/admin", func(adminRoutes chi.Router) {
			adminRoutes.Use(middleware.RequireRole(sec.RoleAdmin))

			adminRoutes.Get("/comics", handlers.listAdminComics)
			adminRoutes.Put("/comics/{comicId}", handlers.updateComic)
			adminRoutes.Put("/comics/{comicId}/redaction", handlers.redactComic)
			adminRoutes.Delete("/comics/{comicId}", handlers.deleteComic)

			adminRoutes.Get("/users", handlers.listUsers)
			adminRoutes.Post("/users", handlers.createUser)
			adminRoutes.Put("/users/{userId}", handlers.updateUser)
		})
	})

	server.router = r
	server.httpServer = &http.Server{
		Addr:              ":" + cfg.SandboxPort,
		Handler:           r,
		ReadTimeout:       constants.DefaultReadTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}
	return server, nil
}

// Handler exposes the router, for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes the backing store, for seeding and assertions.
func (s *Server) Store() *Store {
	return s.store
}

// # Fault Injection

// FailNext makes the next request to method and path fail with status.
func (s *Server) FailNext(method, path string, status int) {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()
	s.faults[faultKey(method, path)] = status
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		key := faultKey(request.Method, request.URL.Path)

		s.faultsMu.Lock()
		status, armed := s.faults[key]
		delete(s.faults, key)
		s.faultsMu.Unlock()

		if armed {
			respond.Error(writer, request, &apperr.AppError{
				Code:       "INJECTED_FAILURE",
				Message:    http.StatusText(status),
				HTTPStatus: status,
			})
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func faultKey(method, path string) string {
	return strings.ToUpper(method) + " " + strings.TrimRight(path, "/")
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server. It blocks until the server is
// closed or fails.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
