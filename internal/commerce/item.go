// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package commerce holds the shopper's cart, wishlist and library and keeps
them consistent with the backend.

Each collection is a [result.Result] tri-state. Collections are never patched
locally: every successful fetch or mutation adopts the server's list
wholesale. The [Store] is the only writer.
*/
package commerce

import (
	"context"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/pkg/slice"
)

// # Domain Entities

// CartItem is a cart line. UnitPrice is the server's snapshot at add time.
type CartItem struct {
	ID           int64                `json:"id"`
	Comic        catalog.Comic        `json:"comic"`
	Quantity     int                  `json:"quantity"`
	PurchaseType pricing.PurchaseType `json:"purchaseType"`
	UnitPrice    float64              `json:"unitPrice"`
}

// Line converts the item for total calculations.
func (i CartItem) Line() pricing.Line {
	return pricing.Line{UnitPrice: i.UnitPrice, Quantity: i.Quantity}
}

// WishlistItem is a saved-for-later comic.
type WishlistItem struct {
	ID    int64         `json:"id"`
	Comic catalog.Comic `json:"comic"`
}

// LibraryItem is a comic the shopper owns digitally.
type LibraryItem struct {
	ID    int64         `json:"id"`
	Comic catalog.Comic `json:"comic"`
}

// CartLines maps items to pricing lines.
func CartLines(items []CartItem) []pricing.Line {
	return slice.Map(items, CartItem.Line)
}

// CartTotal sums a cart without rounding.
func CartTotal(items []CartItem) float64 {
	return pricing.Total(CartLines(items))
}

// # Dependencies

// Backend is the remote API behind the store. Every call returns the
// canonical collection after the operation. The transport client
// implements it.
type Backend interface {
	FetchCart(ctx context.Context, token string) ([]CartItem, error)
	AddToCart(ctx context.Context, token string, comicID int64, quantity int, purchaseType pricing.PurchaseType) ([]CartItem, error)
	UpdateCartItem(ctx context.Context, token string, cartItemID int64, quantity int) ([]CartItem, error)
	RemoveCartItem(ctx context.Context, token string, cartItemID int64) ([]CartItem, error)
	ClearCart(ctx context.Context, token string) ([]CartItem, error)

	FetchWishlist(ctx context.Context, token string) ([]WishlistItem, error)
	AddToWishlist(ctx context.Context, token string, comicID int64) ([]WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, token string, comicID int64) ([]WishlistItem, error)

	FetchLibrary(ctx context.Context, token string) ([]LibraryItem, error)
	AddToLibrary(ctx context.Context, token string, comicID int64) ([]LibraryItem, error)
}
