// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package sandbox

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dentuss/Bazinga-Comics/internal/admin"
	"github.com/dentuss/Bazinga-Comics/internal/news"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	requestutil "github.com/dentuss/Bazinga-Comics/internal/platform/request"
	"github.com/dentuss/Bazinga-Comics/internal/platform/respond"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/internal/platform/validate"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
)

// # Handler

// handlers serves the REST surface on top of [Store].
type handlers struct {
	store    *Store
	tokens   *sec.TokenService
	tokenTTL time.Duration
	hashCost int
}

type cartBody struct {
	ComicID      int64  `json:"comicId"`
	CartItemID   int64  `json:"cartItemId"`
	Quantity     int    `json:"quantity"`
	PurchaseType string `json:"purchaseType"`
}

type comicBody struct {
	ComicID int64 `json:"comicId"`
}

// # Catalog and News

func (h *handlers) listComics(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, h.store.VisibleComics())
}

func (h *handlers) listCategories(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, h.store.Categories())
}

func (h *handlers) listConditions(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, h.store.Conditions())
}

func (h *handlers) listNews(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, h.store.News())
}

func (h *handlers) createNews(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var draft news.Draft
	if err := requestutil.DecodeJSON(request, &draft); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(news.FieldTitle, draft.Title).
		MaxLen(news.FieldTitle, draft.Title, news.MaxTitleLength).
		Required(news.FieldContent, draft.Content)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := h.store.CreateNews(claims.UserID, news.Draft{
		Title:   strings.TrimSpace(draft.Title),
		Content: strings.TrimSpace(draft.Content),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusCreated, post)
}

// # Account

func (h *handlers) login(writer http.ResponseWriter, request *http.Request) {
	var credentials auth.Credentials
	if err := requestutil.DecodeJSON(request, &credentials); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, found := h.store.AccountByEmail(credentials.Email)
	if !found || !sec.CheckPasswordHash(credentials.Password, account.PasswordHash) {
		respond.Error(writer, request, apperr.Unauthorized("Invalid email or password"))
		return
	}
	h.issue(writer, request, account)
}

func (h *handlers) register(writer http.ResponseWriter, request *http.Request) {
	var registration auth.Registration
	if err := requestutil.DecodeJSON(request, &registration); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("username", registration.Username).
		Required("email", registration.Email).
		Email("email", registration.Email).
		Required("password", registration.Password)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	hash, err := sec.HashPassword(registration.Password, h.hashCost)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := h.store.CreateAccount(strings.TrimSpace(registration.Username), registration.Email, hash, sec.RoleUser)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	h.issue(writer, request, account)
}

// issue signs a token for account and writes the session response.
func (h *handlers) issue(writer http.ResponseWriter, request *http.Request, account *Account) {
	token, err := h.tokens.GenerateAccessToken(account.ID, account.Username, account.Email, account.Role, h.tokenTTL)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account.session(token))
}

func (h *handlers) subscribe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body auth.SubscribeRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tier := pricing.TierFor(body.SubscriptionType)
	if tier == pricing.TierNone {
		respond.Error(writer, request, apperr.ValidationError("Unknown subscription type",
			apperr.FieldError{Field: "subscriptionType", Message: "must be PREMIUM or UNLIMITED"}))
		return
	}
	cycle, ok := pricing.ParseBillingCycle(body.BillingCycle)
	if !ok {
		respond.Error(writer, request, apperr.ValidationError("Unknown billing cycle",
			apperr.FieldError{Field: "billingCycle", Message: "must be MONTHLY or YEARLY"}))
		return
	}

	subscription, err := h.store.Subscribe(claims.UserID, cases.Title(language.English).String(string(tier)), cycle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, subscription)
}

// # Cart

func (h *handlers) getCart(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, h.store.Cart(claims.UserID))
}

func (h *handlers) addToCart(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body cartBody
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cart, err := h.store.AddToCart(claims.UserID, body.ComicID, body.Quantity, pricing.ParsePurchaseType(body.PurchaseType))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cart)
}

func (h *handlers) updateCart(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body cartBody
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cart, err := h.store.UpdateCartItem(claims.UserID, body.CartItemID, body.Quantity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cart)
}

func (h *handlers) removeCartItem(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cartItemID, err := requestutil.ParamID(request, "cartItemId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, h.store.RemoveCartItem(claims.UserID, cartItemID))
}

func (h *handlers) clearCart(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, h.store.ClearCart(claims.UserID))
}

// # Wishlist

func (h *handlers) getWishlist(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, h.store.Wishlist(claims.UserID))
}

func (h *handlers) addToWishlist(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body comicBody
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := h.store.AddToWishlist(claims.UserID, body.ComicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

func (h *handlers) removeFromWishlist(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comicID, err := requestutil.ParamID(request, "comicId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := h.store.RemoveFromWishlist(claims.UserID, comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

// # Library

func (h *handlers) getLibrary(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, h.store.Library(claims.UserID))
}

func (h *handlers) addToLibrary(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body comicBody
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := h.store.AddToLibrary(claims.UserID, body.ComicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

// # Admin

type redactionBody struct {
	Redacted bool `json:"redacted"`
}

// decodeDraft reads, normalizes and validates a comic draft.
func (h *handlers) decodeDraft(request *http.Request) (admin.ComicDraft, error) {
	var draft admin.ComicDraft
	if err := requestutil.DecodeJSON(request, &draft); err != nil {
		return admin.ComicDraft{}, err
	}
	draft = draft.Normalized()
	if err := draft.Validate(h.store.now()); err != nil {
		return admin.ComicDraft{}, err
	}
	return draft, nil
}

func (h *handlers) createComic(writer http.ResponseWriter, request *http.Request) {
	draft, err := h.decodeDraft(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := h.store.CreateComic(draft)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusCreated, comic)
}

func (h *handlers) listAdminComics(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, h.store.AdminComics())
}

func (h *handlers) updateComic(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.ParamID(request, "comicId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	draft, err := h.decodeDraft(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := h.store.UpdateComic(comicID, draft)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comic)
}

func (h *handlers) redactComic(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.ParamID(request, "comicId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body redactionBody
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := h.store.SetComicRedacted(comicID, body.Redacted)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comic)
}

func (h *handlers) deleteComic(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.ParamID(request, "comicId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := h.store.DeleteComic(comicID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listUsers(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, h.store.Users(strings.TrimSpace(request.URL.Query().Get("query"))))
}

func (h *handlers) createUser(writer http.ResponseWriter, request *http.Request) {
	var body admin.UserRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	body = body.Normalized()
	if err := body.ValidateCreate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	hash, err := sec.HashPassword(body.Password, h.hashCost)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := h.store.CreateUser(body, hash)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (h *handlers) updateUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ParamID(request, "userId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body admin.UserRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	body = body.Normalized()
	if err := body.ValidateUpdate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var hash string
	if strings.TrimSpace(body.Password) != "" {
		if hash, err = sec.HashPassword(body.Password, h.hashCost); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	user, err := h.store.UpdateUser(userID, body, hash)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}
