// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dentuss/Bazinga-Comics/internal/admin"
	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/commerce"
	"github.com/dentuss/Bazinga-Comics/internal/news"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
)

const (
	pathComics    = "/api/comics"
	pathLogin     = "/api/auth/login"
	pathRegister  = "/api/auth/register"
	pathCart      = "/api/cart"
	pathWishlist  = "/api/wishlist"
	pathLibrary   = "/api/library"
	pathNews      = "/api/news"
	pathSubscribe = "/api/subscriptions/subscribe"

	pathCategories  = "/api/categories"
	pathConditions  = "/api/conditions"
	pathAdminComics = "/api/admin/comics"
	pathAdminUsers  = "/api/admin/users"
)

// # Request Bodies

type cartRequest struct {
	ComicID      int64                `json:"comicId,omitempty"`
	CartItemID   int64                `json:"cartItemId,omitempty"`
	Quantity     int                  `json:"quantity"`
	PurchaseType pricing.PurchaseType `json:"purchaseType,omitempty"`
}

type comicRequest struct {
	ComicID int64 `json:"comicId"`
}

type redactionRequest struct {
	Redacted bool `json:"redacted"`
}

func itemPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

// # Catalog

// FetchComics implements catalog.Source.
func (c *Client) FetchComics(ctx context.Context) ([]catalog.Comic, error) {
	return call[[]catalog.Comic](ctx, c, http.MethodGet, pathComics, "", nil)
}

// # Account

// Login implements auth.Gateway.
func (c *Client) Login(ctx context.Context, credentials auth.Credentials) (auth.Session, error) {
	return call[auth.Session](ctx, c, http.MethodPost, pathLogin, "", credentials)
}

// Register implements auth.Gateway.
func (c *Client) Register(ctx context.Context, registration auth.Registration) (auth.Session, error) {
	return call[auth.Session](ctx, c, http.MethodPost, pathRegister, "", registration)
}

// Subscribe implements auth.Gateway.
func (c *Client) Subscribe(ctx context.Context, token string, request auth.SubscribeRequest) (auth.Subscription, error) {
	return call[auth.Subscription](ctx, c, http.MethodPost, pathSubscribe, token, request)
}

// # Cart

// FetchCart implements commerce.Backend.
func (c *Client) FetchCart(ctx context.Context, token string) ([]commerce.CartItem, error) {
	return call[[]commerce.CartItem](ctx, c, http.MethodGet, pathCart, token, nil)
}

// AddToCart implements commerce.Backend.
func (c *Client) AddToCart(ctx context.Context, token string, comicID int64, quantity int, purchaseType pricing.PurchaseType) ([]commerce.CartItem, error) {
	body := cartRequest{ComicID: comicID, Quantity: quantity, PurchaseType: purchaseType}
	return call[[]commerce.CartItem](ctx, c, http.MethodPost, pathCart, token, body)
}

// UpdateCartItem implements commerce.Backend.
func (c *Client) UpdateCartItem(ctx context.Context, token string, cartItemID int64, quantity int) ([]commerce.CartItem, error) {
	body := cartRequest{CartItemID: cartItemID, Quantity: quantity}
	return call[[]commerce.CartItem](ctx, c, http.MethodPut, pathCart, token, body)
}

// RemoveCartItem implements commerce.Backend.
func (c *Client) RemoveCartItem(ctx context.Context, token string, cartItemID int64) ([]commerce.CartItem, error) {
	return call[[]commerce.CartItem](ctx, c, http.MethodDelete, itemPath(pathCart, cartItemID), token, nil)
}

// ClearCart implements commerce.Backend.
func (c *Client) ClearCart(ctx context.Context, token string) ([]commerce.CartItem, error) {
	return call[[]commerce.CartItem](ctx, c, http.MethodDelete, pathCart, token, nil)
}

// # Wishlist

// FetchWishlist implements commerce.Backend.
func (c *Client) FetchWishlist(ctx context.Context, token string) ([]commerce.WishlistItem, error) {
	return call[[]commerce.WishlistItem](ctx, c, http.MethodGet, pathWishlist, token, nil)
}

// AddToWishlist implements commerce.Backend.
func (c *Client) AddToWishlist(ctx context.Context, token string, comicID int64) ([]commerce.WishlistItem, error) {
	return call[[]commerce.WishlistItem](ctx, c, http.MethodPost, pathWishlist, token, comicRequest{ComicID: comicID})
}

// RemoveFromWishlist implements commerce.Backend.
func (c *Client) RemoveFromWishlist(ctx context.Context, token string, comicID int64) ([]commerce.WishlistItem, error) {
	return call[[]commerce.WishlistItem](ctx, c, http.MethodDelete, itemPath(pathWishlist, comicID), token, nil)
}

// # Library

// FetchLibrary implements commerce.Backend.
func (c *Client) FetchLibrary(ctx context.Context, token string) ([]commerce.LibraryItem, error) {
	return call[[]commerce.LibraryItem](ctx, c, http.MethodGet, pathLibrary, token, nil)
}

// AddToLibrary implements commerce.Backend.
func (c *Client) AddToLibrary(ctx context.Context, token string, comicID int64) ([]commerce.LibraryItem, error) {
	return call[[]commerce.LibraryItem](ctx, c, http.MethodPost, pathLibrary, token, comicRequest{ComicID: comicID})
}

// # News

// FetchNews implements news.Gateway.
func (c *Client) FetchNews(ctx context.Context) ([]news.Post, error) {
	return call[[]news.Post](ctx, c, http.MethodGet, pathNews, "", nil)
}

// CreateNews implements news.Gateway.
func (c *Client) CreateNews(ctx context.Context, token string, draft news.Draft) (news.Post, error) {
	return call[news.Post](ctx, c, http.MethodPost, pathNews, token, draft)
}

// # Admin

// FetchCategories implements admin.Gateway.
func (c *Client) FetchCategories(ctx context.Context) ([]catalog.Category, error) {
	return call[[]catalog.Category](ctx, c, http.MethodGet, pathCategories, "", nil)
}

// FetchConditions implements admin.Gateway.
func (c *Client) FetchConditions(ctx context.Context) ([]catalog.Condition, error) {
	return call[[]catalog.Condition](ctx, c, http.MethodGet, pathConditions, "", nil)
}

// CreateComic implements admin.Gateway.
func (c *Client) CreateComic(ctx context.Context, token string, draft admin.ComicDraft) (catalog.Comic, error) {
	return call[catalog.Comic](ctx, c, http.MethodPost, pathComics, token, draft)
}

// FetchAdminComics implements admin.Gateway.
func (c *Client) FetchAdminComics(ctx context.Context, token string) ([]catalog.Comic, error) {
	return call[[]catalog.Comic](ctx, c, http.MethodGet, pathAdminComics, token, nil)
}

// UpdateComic implements admin.Gateway.
func (c *Client) UpdateComic(ctx context.Context, token string, comicID int64, draft admin.ComicDraft) (catalog.Comic, error) {
	return call[catalog.Comic](ctx, c, http.MethodPut, itemPath(pathAdminComics, comicID), token, draft)
}

// SetComicRedacted implements admin.Gateway.
func (c *Client) SetComicRedacted(ctx context.Context, token string, comicID int64, redacted bool) (catalog.Comic, error) {
	path := itemPath(pathAdminComics, comicID) + "/redaction"
	return call[catalog.Comic](ctx, c, http.MethodPut, path, token, redactionRequest{Redacted: redacted})
}

// DeleteComic implements admin.Gateway. The backend answers 204.
func (c *Client) DeleteComic(ctx context.Context, token string, comicID int64) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, itemPath(pathAdminComics, comicID), token, nil)
	return err
}

// FetchUsers implements admin.Gateway.
func (c *Client) FetchUsers(ctx context.Context, token, query string) ([]admin.User, error) {
	path := pathAdminUsers
	if query != "" {
		path += "?" + url.Values{"query": {query}}.Encode()
	}
	return call[[]admin.User](ctx, c, http.MethodGet, path, token, nil)
}

// CreateUser implements admin.Gateway.
func (c *Client) CreateUser(ctx context.Context, token string, request admin.UserRequest) (admin.User, error) {
	return call[admin.User](ctx, c, http.MethodPost, pathAdminUsers, token, request)
}

// UpdateUser implements admin.Gateway.
func (c *Client) UpdateUser(ctx context.Context, token string, userID int64, request admin.UserRequest) (admin.User, error) {
	return call[admin.User](ctx, c, http.MethodPut, itemPath(pathAdminUsers, userID), token, request)
}

var (
	_ catalog.Source   = (*Client)(nil)
	_ auth.Gateway     = (*Client)(nil)
	_ commerce.Backend = (*Client)(nil)
	_ news.Gateway     = (*Client)(nil)
	_ admin.Gateway    = (*Client)(nil)
)
