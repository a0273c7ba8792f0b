// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package commerce_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/commerce"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

// memoryBackend is a single-user backend that keeps canonical lists.
type memoryBackend struct {
	mu sync.Mutex

	cart     []commerce.CartItem
	wishlist []commerce.WishlistItem
	library  []commerce.LibraryItem
	nextID   int64

	calls    map[string]int
	added    []pricing.PurchaseType
	failNext map[string]error

	// beforeFetchCart runs after the cart snapshot was taken, so a blocked
	// fetch returns the list as it was when the request arrived.
	beforeFetchCart func(ctx context.Context) error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{calls: map[string]int{}, failNext: map[string]error{}}
}

func (b *memoryBackend) record(op string) error {
	b.calls[op]++
	if err, ok := b.failNext[op]; ok {
		delete(b.failNext, op)
		return err
	}
	return nil
}

func (b *memoryBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *memoryBackend) fail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext[op] = err
}

func (b *memoryBackend) FetchCart(ctx context.Context, _ string) ([]commerce.CartItem, error) {
	b.mu.Lock()
	err := b.record("FetchCart")
	items := append([]commerce.CartItem(nil), b.cart...)
	hook := b.beforeFetchCart
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (b *memoryBackend) AddToCart(_ context.Context, _ string, comicID int64, quantity int, purchaseType pricing.PurchaseType) ([]commerce.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("AddToCart"); err != nil {
		return nil, err
	}
	b.added = append(b.added, purchaseType)
	for i := range b.cart {
		if b.cart[i].Comic.ID == comicID && b.cart[i].PurchaseType == purchaseType {
			b.cart[i].Quantity += quantity
			return append([]commerce.CartItem(nil), b.cart...), nil
		}
	}
	b.nextID++
	b.cart = append(b.cart, commerce.CartItem{
		ID:           b.nextID,
		Comic:        catalog.Comic{ID: comicID},
		Quantity:     quantity,
		PurchaseType: purchaseType,
		UnitPrice:    catalog.DefaultBasePrice,
	})
	return append([]commerce.CartItem(nil), b.cart...), nil
}

func (b *memoryBackend) UpdateCartItem(_ context.Context, _ string, cartItemID int64, quantity int) ([]commerce.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("UpdateCartItem"); err != nil {
		return nil, err
	}
	for i := range b.cart {
		if b.cart[i].ID == cartItemID {
			b.cart[i].Quantity = quantity
		}
	}
	return append([]commerce.CartItem(nil), b.cart...), nil
}

func (b *memoryBackend) RemoveCartItem(_ context.Context, _ string, cartItemID int64) ([]commerce.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("RemoveCartItem"); err != nil {
		return nil, err
	}
	kept := []commerce.CartItem{}
	for _, item := range b.cart {
		if item.ID != cartItemID {
			kept = append(kept, item)
		}
	}
	b.cart = kept
	return append([]commerce.CartItem(nil), b.cart...), nil
}

func (b *memoryBackend) ClearCart(_ context.Context, _ string) ([]commerce.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ClearCart"); err != nil {
		return nil, err
	}
	b.cart = nil
	return []commerce.CartItem{}, nil
}

func (b *memoryBackend) FetchWishlist(_ context.Context, _ string) ([]commerce.WishlistItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("FetchWishlist"); err != nil {
		return nil, err
	}
	return append([]commerce.WishlistItem(nil), b.wishlist...), nil
}

func (b *memoryBackend) AddToWishlist(_ context.Context, _ string, comicID int64) ([]commerce.WishlistItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("AddToWishlist"); err != nil {
		return nil, err
	}
	b.nextID++
	b.wishlist = append(b.wishlist, commerce.WishlistItem{ID: b.nextID, Comic: catalog.Comic{ID: comicID}})
	return append([]commerce.WishlistItem(nil), b.wishlist...), nil
}

func (b *memoryBackend) RemoveFromWishlist(_ context.Context, _ string, comicID int64) ([]commerce.WishlistItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("RemoveFromWishlist"); err != nil {
		return nil, err
	}
	kept := []commerce.WishlistItem{}
	for _, item := range b.wishlist {
		if item.Comic.ID != comicID {
			kept = append(kept, item)
		}
	}
	b.wishlist = kept
	return append([]commerce.WishlistItem(nil), b.wishlist...), nil
}

func (b *memoryBackend) FetchLibrary(_ context.Context, _ string) ([]commerce.LibraryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("FetchLibrary"); err != nil {
		return nil, err
	}
	return append([]commerce.LibraryItem(nil), b.library...), nil
}

func (b *memoryBackend) AddToLibrary(_ context.Context, _ string, comicID int64) ([]commerce.LibraryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("AddToLibrary"); err != nil {
		return nil, err
	}
	for _, item := range b.library {
		if item.Comic.ID == comicID {
			return append([]commerce.LibraryItem(nil), b.library...), nil
		}
	}
	b.nextID++
	b.library = append(b.library, commerce.LibraryItem{ID: b.nextID, Comic: catalog.Comic{ID: comicID}})
	return append([]commerce.LibraryItem(nil), b.library...), nil
}

var shopper = auth.Session{Token: "tok-bruce", UserID: 1, Username: "bruce", Role: sec.RoleUser}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedInStore(t *testing.T, backend *memoryBackend, opts ...commerce.Option) *commerce.Store {
	t.Helper()
	store := commerce.NewStore(backend, discardLogger(), opts...)
	t.Cleanup(store.Close)
	store.SetSession(context.Background(), shopper)
	return store
}

func cartOf(t *testing.T, store *commerce.Store) []commerce.CartItem {
	t.Helper()
	items, ok := result.Data(store.Cart())
	require.True(t, ok, "cart is not in a success state")
	return items
}

/*
TestStore_SignedOut rejects every mutation before it reaches the backend.
*/
func TestStore_SignedOut(t *testing.T) {
	backend := newMemoryBackend()
	store := commerce.NewStore(backend, discardLogger())
	defer store.Close()
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"add_to_cart", func() error { return store.AddToCart(ctx, catalog.Comic{ID: 1}, pricing.Original) }},
		{"update_quantity", func() error { return store.UpdateCartQuantity(ctx, 1, 2) }},
		{"clear_cart", func() error { return store.ClearCart(ctx) }},
		{"add_to_wishlist", func() error { return store.AddToWishlist(ctx, 1) }},
		{"add_to_library", func() error { return store.AddToLibrary(ctx, 1) }},
		{"refresh_library", func() error { return store.RefreshLibrary(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperr.HasCode(tt.run(), apperr.CodeAuthRequired))
		})
	}

	assert.Empty(t, backend.calls)
	assert.Equal(t, result.Ok([]commerce.CartItem{}), store.Cart())
}

/*
TestStore_SetSession fetches every collection on login and resets on logout.
*/
func TestStore_SetSession(t *testing.T) {
	backend := newMemoryBackend()
	backend.cart = []commerce.CartItem{{ID: 10, Comic: catalog.Comic{ID: 1}, Quantity: 2, UnitPrice: 4.99}}
	backend.library = []commerce.LibraryItem{{ID: 11, Comic: catalog.Comic{ID: 2}}}

	store := signedInStore(t, backend)

	assert.Len(t, cartOf(t, store), 1)
	assert.True(t, store.OwnsComic(2))
	assert.Equal(t, 1, backend.count("FetchCart"))
	assert.Equal(t, 1, backend.count("FetchWishlist"))
	assert.Equal(t, 1, backend.count("FetchLibrary"))

	t.Run("same_token_does_not_refetch", func(t *testing.T) {
		renamed := shopper
		renamed.Username = "batman"
		store.SetSession(context.Background(), renamed)

		assert.Equal(t, 1, backend.count("FetchCart"))
		assert.Equal(t, "batman", store.Session().Username)
	})

	t.Run("logout_resets", func(t *testing.T) {
		store.SetSession(context.Background(), auth.SignedOut)

		snapshot := store.Snapshot()
		assert.False(t, snapshot.Session.SignedIn())
		assert.Equal(t, result.Ok([]commerce.CartItem{}), snapshot.Cart)
		assert.Equal(t, result.Ok([]commerce.WishlistItem{}), snapshot.Wishlist)
		assert.Equal(t, result.Ok([]commerce.LibraryItem{}), snapshot.Library)
		assert.False(t, store.OwnsComic(2))
	})
}

/*
TestStore_StaleResponseDropped lets only the newest request on a collection
commit, whatever order the responses arrive in.
*/
func TestStore_StaleResponseDropped(t *testing.T) {
	backend := newMemoryBackend()
	store := signedInStore(t, backend)

	started := make(chan struct{})
	release := make(chan struct{})
	backend.mu.Lock()
	backend.beforeFetchCart = func(ctx context.Context) error {
		close(started)
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	backend.mu.Unlock()

	fetched := make(chan error, 1)
	go func() { fetched <- store.RefreshCart(context.Background()) }()
	<-started

	require.NoError(t, store.AddToCart(context.Background(), catalog.Comic{ID: 7}, pricing.Original))
	close(release)

	err := <-fetched
	assert.True(t, apperr.HasCode(err, apperr.CodeStaleResponse))

	items := cartOf(t, store)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].Comic.ID)
}

/*
TestStore_LogoutDuringRequest cancels in-flight work and keeps the reset state.
*/
func TestStore_LogoutDuringRequest(t *testing.T) {
	backend := newMemoryBackend()
	backend.cart = []commerce.CartItem{{ID: 1, Comic: catalog.Comic{ID: 3}, Quantity: 1}}
	store := signedInStore(t, backend)

	started := make(chan struct{})
	backend.mu.Lock()
	backend.beforeFetchCart = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	backend.mu.Unlock()

	fetched := make(chan error, 1)
	go func() { fetched <- store.RefreshCart(context.Background()) }()
	<-started

	store.SetSession(context.Background(), auth.SignedOut)

	select {
	case err := <-fetched:
		assert.True(t, apperr.HasCode(err, apperr.CodeStaleResponse))
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled on logout")
	}
	assert.Equal(t, result.Ok([]commerce.CartItem{}), store.Cart())
}

/*
TestStore_FailurePolicy compares the two failure presentations.
*/
func TestStore_FailurePolicy(t *testing.T) {
	seed := []commerce.CartItem{{ID: 1, Comic: catalog.Comic{ID: 3}, Quantity: 1}}

	t.Run("replace_with_failure", func(t *testing.T) {
		backend := newMemoryBackend()
		backend.cart = seed
		store := signedInStore(t, backend)

		backend.fail("FetchCart", errors.New("connection reset"))
		err := store.RefreshCart(context.Background())

		require.True(t, apperr.HasCode(err, apperr.CodeNetworkFailure))
		assert.Equal(t, "Network request failed", result.Message(store.Cart()))
	})

	t.Run("retain_last_good", func(t *testing.T) {
		backend := newMemoryBackend()
		backend.cart = seed
		store := signedInStore(t, backend, commerce.WithFailurePolicy(commerce.RetainLastGood))

		backend.fail("FetchCart", errors.New("connection reset"))
		err := store.RefreshCart(context.Background())

		require.True(t, apperr.HasCode(err, apperr.CodeNetworkFailure))
		assert.Len(t, cartOf(t, store), 1)
	})

	t.Run("retain_without_prior_success", func(t *testing.T) {
		backend := newMemoryBackend()
		backend.fail("FetchCart", apperr.Network(503, "Service Unavailable", nil))
		store := signedInStore(t, backend, commerce.WithFailurePolicy(commerce.RetainLastGood))

		assert.Equal(t, "Service Unavailable", result.Message(store.Cart()))
	})

	t.Run("mutation_failure_then_retry", func(t *testing.T) {
		backend := newMemoryBackend()
		store := signedInStore(t, backend)

		backend.fail("AddToCart", apperr.Network(500, "Server error", nil))
		err := store.AddToCart(context.Background(), catalog.Comic{ID: 4}, pricing.Original)
		require.Error(t, err)
		assert.Equal(t, "Server error", result.Message(store.Cart()))

		require.NoError(t, store.RefreshCart(context.Background()))
		assert.Empty(t, cartOf(t, store))
	})
}

/*
TestStore_CartMutations covers coercion and quantity routing.
*/
func TestStore_CartMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("exclusive_forced_digital", func(t *testing.T) {
		backend := newMemoryBackend()
		store := signedInStore(t, backend)

		exclusive := catalog.Comic{ID: 9, ComicType: catalog.TypeOnlyDigital}
		require.NoError(t, store.AddToCart(ctx, exclusive, pricing.Original))

		assert.Equal(t, []pricing.PurchaseType{pricing.Digital}, backend.added)
		assert.Equal(t, pricing.Digital, cartOf(t, store)[0].PurchaseType)
	})

	for _, quantity := range []int{0, -1} {
		t.Run(fmt.Sprintf("quantity_%d_removes", quantity), func(t *testing.T) {
			backend := newMemoryBackend()
			store := signedInStore(t, backend)
			require.NoError(t, store.AddToCart(ctx, catalog.Comic{ID: 1}, pricing.Original))
			line := cartOf(t, store)[0]

			require.NoError(t, store.UpdateCartQuantity(ctx, line.ID, quantity))

			assert.Zero(t, backend.count("UpdateCartItem"))
			assert.Equal(t, 1, backend.count("RemoveCartItem"))
			assert.Empty(t, cartOf(t, store))
		})
	}

	t.Run("quantity_update", func(t *testing.T) {
		backend := newMemoryBackend()
		store := signedInStore(t, backend)
		require.NoError(t, store.AddToCart(ctx, catalog.Comic{ID: 1}, pricing.Digital))
		line := cartOf(t, store)[0]

		require.NoError(t, store.UpdateCartQuantity(ctx, line.ID, 3))

		assert.Equal(t, 3, cartOf(t, store)[0].Quantity)
		assert.InDelta(t, 3*catalog.DefaultBasePrice, commerce.CartTotal(cartOf(t, store)), 1e-9)
	})

	t.Run("clear", func(t *testing.T) {
		backend := newMemoryBackend()
		store := signedInStore(t, backend)
		require.NoError(t, store.AddToCart(ctx, catalog.Comic{ID: 1}, pricing.Original))
		require.NoError(t, store.ClearCart(ctx))
		assert.Empty(t, cartOf(t, store))
	})
}

/*
TestStore_MoveWishlistToCart adds as ORIGINAL then drops the wishlist entry.
*/
func TestStore_MoveWishlistToCart(t *testing.T) {
	backend := newMemoryBackend()
	backend.wishlist = []commerce.WishlistItem{{ID: 5, Comic: catalog.Comic{ID: 42}}}
	store := signedInStore(t, backend)
	require.True(t, store.InWishlist(42))

	require.NoError(t, store.MoveWishlistToCart(context.Background(), catalog.Comic{ID: 42}))

	assert.False(t, store.InWishlist(42))
	items := cartOf(t, store)
	require.Len(t, items, 1)
	assert.Equal(t, pricing.Original, items[0].PurchaseType)

	t.Run("cart_failure_keeps_wishlist", func(t *testing.T) {
		require.NoError(t, store.AddToWishlist(context.Background(), 43))
		backend.fail("AddToCart", errors.New("down"))

		err := store.MoveWishlistToCart(context.Background(), catalog.Comic{ID: 43})
		assert.Error(t, err)
		assert.True(t, store.InWishlist(43))
	})
}

/*
TestStore_AddToLibrary is idempotent on the backend.
*/
func TestStore_AddToLibrary(t *testing.T) {
	backend := newMemoryBackend()
	store := signedInStore(t, backend)

	require.NoError(t, store.AddToLibrary(context.Background(), 8))
	require.NoError(t, store.AddToLibrary(context.Background(), 8))

	library, ok := result.Data(store.Library())
	require.True(t, ok)
	assert.Len(t, library, 1)
	assert.True(t, store.OwnsComic(8))
}

/*
TestStore_Subscribe delivers snapshots until cancelled.
*/
func TestStore_Subscribe(t *testing.T) {
	backend := newMemoryBackend()
	store := signedInStore(t, backend)

	var mu sync.Mutex
	var seen []commerce.Snapshot
	cancel := store.Subscribe(func(snapshot commerce.Snapshot) {
		mu.Lock()
		seen = append(seen, snapshot)
		mu.Unlock()
	})

	require.NoError(t, store.AddToWishlist(context.Background(), 3))

	mu.Lock()
	require.Len(t, seen, 1)
	wishlist, ok := result.Data(seen[0].Wishlist)
	mu.Unlock()
	require.True(t, ok)
	assert.Len(t, wishlist, 1)

	cancel()
	require.NoError(t, store.AddToWishlist(context.Background(), 4))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 1)
}

/*
TestStore_UpdateSubscription changes the tier without touching collections.
*/
func TestStore_UpdateSubscription(t *testing.T) {
	backend := newMemoryBackend()
	store := signedInStore(t, backend)

	store.UpdateSubscription(auth.Subscription{SubscriptionType: "Unlimited"})

	assert.Equal(t, pricing.TierUnlimited, store.Session().Tier(time.Now()))
	assert.Equal(t, 1, backend.count("FetchCart"))
}

/*
TestStore_CloseSignsOut leaves every collection empty after Close, and a later
sign-out keeps it that way.
*/
func TestStore_CloseSignsOut(t *testing.T) {
	backend := newMemoryBackend()
	backend.wishlist = []commerce.WishlistItem{{ID: 5, Comic: catalog.Comic{ID: 42}}}
	store := signedInStore(t, backend)
	require.NoError(t, store.AddToCart(context.Background(), catalog.Comic{ID: 1}, pricing.Original))

	store.Close()
	store.SetSession(context.Background(), auth.SignedOut)

	assert.False(t, store.Session().SignedIn())
	assert.Empty(t, cartOf(t, store))

	wishlist, ok := result.Data(store.Wishlist())
	require.True(t, ok)
	assert.Empty(t, wishlist)

	library, ok := result.Data(store.Library())
	require.True(t, ok)
	assert.Empty(t, library)
}
