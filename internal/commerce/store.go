// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package commerce

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

// Collection names, used in logs and STALE_RESPONSE messages.
const (
	NameCart     = "cart"
	NameWishlist = "wishlist"
	NameLibrary  = "library"
)

// # Configuration

// FailurePolicy decides what a collection shows after a failed request.
type FailurePolicy int

const (
	// ReplaceWithFailure swaps the list for an error state.
	ReplaceWithFailure FailurePolicy = iota

	// RetainLastGood keeps the last server list of the session on screen
	// and only reports the error to the caller.
	RetainLastGood
)

// Option configures a [Store].
type Option func(*Store)

// WithFailurePolicy selects the [FailurePolicy]. The default is ReplaceWithFailure.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(store *Store) { store.policy = policy }
}

// # State Container

// Snapshot is a consistent read of everything the store owns.
type Snapshot struct {
	Session  auth.Session
	Cart     result.Result[[]CartItem]
	Wishlist result.Result[[]WishlistItem]
	Library  result.Result[[]LibraryItem]
}

// Store owns the session and the three synchronized collections.
//
// All methods are safe for concurrent use. Network calls block only the
// calling goroutine and run under the session scope: signing out, switching
// accounts or closing the store cancels them.
type Store struct {
	backend Backend
	logger  *slog.Logger
	policy  FailurePolicy

	cart     *collection[CartItem]
	wishlist *collection[WishlistItem]
	library  *collection[LibraryItem]

	mu        sync.RWMutex
	session   auth.Session
	scope     context.Context
	endScope  context.CancelFunc
	closed    bool
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewStore constructs a signed-out [Store].
func NewStore(backend Backend, logger *slog.Logger, opts ...Option) *Store {
	scope, endScope := context.WithCancel(context.Background())

	store := &Store{
		backend:   backend,
		logger:    logger,
		cart:      newCollection[CartItem](NameCart),
		wishlist:  newCollection[WishlistItem](NameWishlist),
		library:   newCollection[LibraryItem](NameLibrary),
		scope:     scope,
		endScope:  endScope,
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// # Session

// Session returns the current session.
func (store *Store) Session() auth.Session {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.session
}

/*
SetSession applies an auth transition.

Description: When the token changes, the previous session scope is
cancelled and all three collections reset to an empty success, which also
invalidates any in-flight response. If the new session is signed in, cart,
wishlist and library are then fetched concurrently; the call returns once
all three have settled. A session with the same token only updates the
profile fields.

Parameters:
  - ctx: context.Context (bounds the refetch)
  - session: auth.Session (SignedOut to log out)
*/
func (store *Store) SetSession(ctx context.Context, session auth.Session) {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return
	}
	tokenChanged := store.session.Token != session.Token
	store.session = session
	if tokenChanged {
		store.cart.reset()
		store.wishlist.reset()
		store.library.reset()
		store.endScope()
		store.scope, store.endScope = context.WithCancel(context.Background())
	}
	store.mu.Unlock()

	store.notify()
	if !tokenChanged {
		return
	}

	if !session.SignedIn() {
		store.logger.InfoContext(ctx, "commerce_session_cleared")
		return
	}

	store.logger.InfoContext(ctx, "commerce_session_started", slog.Int64("user_id", session.UserID))

	var group errgroup.Group
	group.Go(func() error { return store.RefreshCart(ctx) })
	group.Go(func() error { return store.RefreshWishlist(ctx) })
	group.Go(func() error { return store.RefreshLibrary(ctx) })

	if err := group.Wait(); err != nil {
		store.logger.WarnContext(ctx, "commerce_initial_fetch_incomplete", slog.Any("error", err))
	}
}

// UpdateSubscription records a newly purchased plan on the session.
func (store *Store) UpdateSubscription(subscription auth.Subscription) {
	store.mu.Lock()
	store.session = store.session.WithSubscription(subscription)
	store.mu.Unlock()
	store.notify()
}

// Close signs out, cancels outstanding work and stops accepting session
// changes. The collections end as empty successes.
func (store *Store) Close() {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return
	}
	store.closed = true
	store.session = auth.SignedOut
	store.cart.reset()
	store.wishlist.reset()
	store.library.reset()
	store.endScope()
	store.mu.Unlock()

	store.notify()
}

// # Fetches

// RefreshCart refetches the cart. It is also the manual retry after an error.
func (store *Store) RefreshCart(ctx context.Context) error {
	return dispatch(ctx, store, store.cart, true, store.backend.FetchCart)
}

// RefreshWishlist refetches the wishlist.
func (store *Store) RefreshWishlist(ctx context.Context) error {
	return dispatch(ctx, store, store.wishlist, true, store.backend.FetchWishlist)
}

// RefreshLibrary refetches the library.
func (store *Store) RefreshLibrary(ctx context.Context) error {
	return dispatch(ctx, store, store.library, true, store.backend.FetchLibrary)
}

// # Cart Mutations

// AddToCart adds one copy of comic. Digital exclusives are always added as
// DIGITAL whatever purchaseType asks for.
func (store *Store) AddToCart(ctx context.Context, comic catalog.Comic, purchaseType pricing.PurchaseType) error {
	effective := pricing.EffectivePurchaseType(comic.ComicType, purchaseType)
	return dispatch(ctx, store, store.cart, false, func(ctx context.Context, token string) ([]CartItem, error) {
		return store.backend.AddToCart(ctx, token, comic.ID, 1, effective)
	})
}

// UpdateCartQuantity sets a line's quantity. Zero or negative removes the line.
func (store *Store) UpdateCartQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	if quantity <= 0 {
		return store.RemoveCartItem(ctx, cartItemID)
	}
	return dispatch(ctx, store, store.cart, false, func(ctx context.Context, token string) ([]CartItem, error) {
		return store.backend.UpdateCartItem(ctx, token, cartItemID, quantity)
	})
}

// RemoveCartItem deletes one cart line.
func (store *Store) RemoveCartItem(ctx context.Context, cartItemID int64) error {
	return dispatch(ctx, store, store.cart, false, func(ctx context.Context, token string) ([]CartItem, error) {
		return store.backend.RemoveCartItem(ctx, token, cartItemID)
	})
}

// ClearCart empties the cart.
func (store *Store) ClearCart(ctx context.Context) error {
	return dispatch(ctx, store, store.cart, false, store.backend.ClearCart)
}

// # Wishlist Mutations

// AddToWishlist saves a comic for later.
func (store *Store) AddToWishlist(ctx context.Context, comicID int64) error {
	return dispatch(ctx, store, store.wishlist, false, func(ctx context.Context, token string) ([]WishlistItem, error) {
		return store.backend.AddToWishlist(ctx, token, comicID)
	})
}

// RemoveFromWishlist drops a comic from the wishlist.
func (store *Store) RemoveFromWishlist(ctx context.Context, comicID int64) error {
	return dispatch(ctx, store, store.wishlist, false, func(ctx context.Context, token string) ([]WishlistItem, error) {
		return store.backend.RemoveFromWishlist(ctx, token, comicID)
	})
}

// MoveWishlistToCart adds the comic to the cart as ORIGINAL (DIGITAL for
// exclusives) and, once that succeeded, removes it from the wishlist.
func (store *Store) MoveWishlistToCart(ctx context.Context, comic catalog.Comic) error {
	if err := store.AddToCart(ctx, comic, pricing.Original); err != nil && !apperr.HasCode(err, apperr.CodeStaleResponse) {
		return err
	}
	return store.RemoveFromWishlist(ctx, comic.ID)
}

// # Library Mutations

// AddToLibrary grants a comic to the library. The backend treats repeated
// grants of the same comic as a no-op.
func (store *Store) AddToLibrary(ctx context.Context, comicID int64) error {
	return dispatch(ctx, store, store.library, false, func(ctx context.Context, token string) ([]LibraryItem, error) {
		return store.backend.AddToLibrary(ctx, token, comicID)
	})
}

// # Reads

// Cart returns the cart state.
func (store *Store) Cart() result.Result[[]CartItem] { return store.cart.current() }

// Wishlist returns the wishlist state.
func (store *Store) Wishlist() result.Result[[]WishlistItem] { return store.wishlist.current() }

// Library returns the library state.
func (store *Store) Library() result.Result[[]LibraryItem] { return store.library.current() }

// Snapshot returns every state at once.
func (store *Store) Snapshot() Snapshot {
	return Snapshot{
		Session:  store.Session(),
		Cart:     store.Cart(),
		Wishlist: store.Wishlist(),
		Library:  store.Library(),
	}
}

// OwnsComic reports whether the loaded library contains comicID.
func (store *Store) OwnsComic(comicID int64) bool {
	for _, item := range store.library.items() {
		if item.Comic.ID == comicID {
			return true
		}
	}
	return false
}

// InWishlist reports whether the loaded wishlist contains comicID.
func (store *Store) InWishlist(comicID int64) bool {
	for _, item := range store.wishlist.items() {
		if item.Comic.ID == comicID {
			return true
		}
	}
	return false
}

// # Observers

// Subscribe registers a listener called with a fresh [Snapshot] after every
// state change. Listeners run on the goroutine that caused the change and
// must not block. The returned func unregisters it.
func (store *Store) Subscribe(listener func(Snapshot)) (cancel func()) {
	store.mu.Lock()
	id := store.nextID
	store.nextID++
	store.listeners[id] = listener
	store.mu.Unlock()

	return func() {
		store.mu.Lock()
		delete(store.listeners, id)
		store.mu.Unlock()
	}
}

func (store *Store) notify() {
	store.mu.RLock()
	listeners := make([]func(Snapshot), 0, len(store.listeners))
	for _, listener := range store.listeners {
		listeners = append(listeners, listener)
	}
	store.mu.RUnlock()

	if len(listeners) == 0 {
		return
	}

	snapshot := store.Snapshot()
	for _, listener := range listeners {
		listener(snapshot)
	}
}

// # Dispatch

// dispatch runs one backend call against a collection.
//
// Signed-out calls fail with AUTH_REQUIRED before anything is sent. The
// response commits only if no newer request was dispatched on the same
// collection in the meantime; otherwise it is dropped and the caller gets
// STALE_RESPONSE.
func dispatch[T any](ctx context.Context, store *Store, target *collection[T], loading bool, call func(context.Context, string) ([]T, error)) error {
	// The id is reserved under the session lock so a concurrent session
	// change either sees it (and supersedes it) or happens first.
	store.mu.RLock()
	token, scope := store.session.Token, store.scope
	if token == "" {
		store.mu.RUnlock()
		return apperr.AuthRequired("sync your " + target.name)
	}
	id := target.begin(loading)
	store.mu.RUnlock()

	if loading {
		store.notify()
	}

	requestCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(scope, cancel)
	items, err := call(requestCtx, token)
	stop()
	cancel()

	if err != nil {
		err = asAppError(err)
		if !target.fail(id, err, store.policy == RetainLastGood) {
			return store.dropStale(ctx, target.name, id)
		}
		store.logger.WarnContext(ctx, "commerce_request_failed",
			slog.String("collection", target.name),
			slog.Uint64("request_id", id),
			slog.Any("error", err),
		)
		store.notify()
		return err
	}

	if !target.succeed(id, items) {
		return store.dropStale(ctx, target.name, id)
	}

	store.logger.DebugContext(ctx, "commerce_collection_updated",
		slog.String("collection", target.name),
		slog.Uint64("request_id", id),
		slog.Int("size", len(items)),
	)
	store.notify()
	return nil
}

func (store *Store) dropStale(ctx context.Context, name string, id uint64) error {
	store.logger.DebugContext(ctx, "stale_response_dropped",
		slog.String("collection", name),
		slog.Uint64("request_id", id),
	)
	return apperr.Stale(name)
}

// asAppError keeps raw transport errors away from callers.
func asAppError(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Network(0, "Request cancelled", err)
	}
	return apperr.Network(0, "", err)
}
