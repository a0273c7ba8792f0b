// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/checkout"
	"github.com/dentuss/Bazinga-Comics/internal/commerce"
	"github.com/dentuss/Bazinga-Comics/internal/news"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/constants"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/pkg/convert"
	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"comics":    comicsCmd,
	"facets":    facetsCmd,
	"quote":     quoteCmd,
	"plans":     plansCmd,
	"news":      newsCmd,
	"register":  registerCmd,
	"subscribe": subscribeCmd,
	"cart":      cartCmd,
	"wishlist":  wishlistCmd,
	"library":   libraryCmd,
	"checkout":  checkoutCmd,
	"publish":   publishCmd,

	"categories":    categoriesCmd,
	"conditions":    conditionsCmd,
	"publish-comic": publishComicCmd,
	"edit-comic":    editComicCmd,
	"admin-comics":  adminComicsCmd,
	"redact":        redactCmd,
	"delete-comic":  deleteComicCmd,
	"users":         usersCmd,
	"create-user":   createUserCmd,
	"set-role":      setRoleCmd,
}

// # Helpers

// failed turns a Failure into its error; other variants give nil.
func failed[T any](r result.Result[T]) error {
	if state, ok := r.(result.Failure[T]); ok {
		if state.Err != nil {
			return state.Err
		}
		return errors.New(state.Message)
	}
	return nil
}

// signIn logs in with the global credentials. The store refetches every
// collection before it returns.
func (a *app) signIn(ctx context.Context, action string) error {
	if a.email == "" {
		return apperr.AuthRequired(action)
	}
	_, err := a.auth.Login(ctx, a.email, a.password)
	return err
}

// tier is the signed-in shopper's tier, or none.
func (a *app) tier() pricing.Tier {
	return a.store.Session().Tier(time.Now())
}

func (a *app) loadCatalog(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StartupTimeout)
	defer cancel()
	return failed(a.catalog.Load(ctx))
}

func (a *app) findComic(raw string) (catalog.Comic, error) {
	id, ok := convert.ToInt64OK(raw)
	if !ok {
		return catalog.Comic{}, apperr.ValidationError("Invalid comic id " + raw)
	}
	comic, found := a.catalog.Find(id)
	if !found {
		return catalog.Comic{}, apperr.NotFound("Comic")
	}
	return comic, nil
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func printComics(out io.Writer, heading string, comics []catalog.Comic, tier pricing.Tier) {
	fmt.Fprintf(out, "%s (%d)\n", heading, len(comics))
	w := table(out)
	for _, comic := range comics {
		quote := pricing.QuoteComic(comic, tier)
		prices := make([]string, 0, len(quote.Options))
		for _, option := range quote.Options {
			prices = append(prices, string(option.PurchaseType)+" "+pricing.Label(option.Price))
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", comic.ID, comic.Title, pointer.Val(comic.Author), strings.Join(prices, ", "))
	}
	_ = w.Flush()
}

// # Catalog

func comicsCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("comics", pflag.ContinueOnError)
	search := fs.String("search", "", "free-text search")
	series := fs.String("series", "", "series facet")
	character := fs.String("character", "", "main character facet")
	creator := fs.String("creator", "", "creator facet")
	digital := fs.Bool("digital", false, "digital exclusives only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if a.email != "" {
		if err := a.signIn(ctx, "see your prices"); err != nil {
			return err
		}
	}
	if err := a.loadCatalog(ctx); err != nil {
		return err
	}

	query := catalog.Query{Search: *search, DigitalOnly: *digital, Facet: catalog.NoFacet}
	switch {
	case *series != "":
		query.Facet = catalog.FacetSelection{Type: catalog.FacetSeries, Value: *series}
	case *character != "":
		query.Facet = catalog.FacetSelection{Type: catalog.FacetCharacter, Value: *character}
	case *creator != "":
		query.Facet = catalog.FacetSelection{Type: catalog.FacetCreator, Value: *creator}
	}

	view := a.catalog.Browse(query)
	tier := a.tier()
	if view.Filtered {
		printComics(a.out, "Results", view.Results, tier)
		return nil
	}
	printComics(a.out, "New arrivals", view.Sections.NewArrivals, tier)
	printComics(a.out, "Digital reads", view.Sections.DigitalReads, tier)
	printComics(a.out, "All comics", view.Sections.All, tier)
	return nil
}

func facetsCmd(ctx context.Context, a *app, _ []string) error {
	if err := a.loadCatalog(ctx); err != nil {
		return err
	}
	facets := a.catalog.Facets()
	fmt.Fprintf(a.out, "Series:     %s\n", strings.Join(facets.Series, " | "))
	fmt.Fprintf(a.out, "Characters: %s\n", strings.Join(facets.Characters, " | "))
	fmt.Fprintf(a.out, "Creators:   %s\n", strings.Join(facets.Creators, " | "))
	return nil
}

func quoteCmd(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: quote <comicId>")
	}
	if a.email != "" {
		if err := a.signIn(ctx, "see your prices"); err != nil {
			return err
		}
	}
	if err := a.loadCatalog(ctx); err != nil {
		return err
	}
	comic, err := a.findComic(args[0])
	if err != nil {
		return err
	}

	tier := a.tier()
	fmt.Fprintf(a.out, "%s (base %s, tier %s)\n", comic.Title, pricing.Format(comic.BasePrice()), tier)
	for _, option := range pricing.QuoteComic(comic, tier).Options {
		fmt.Fprintf(a.out, "  %-8s %s\n", option.PurchaseType, pricing.Label(option.Price))
	}
	return nil
}

func plansCmd(_ context.Context, a *app, _ []string) error {
	w := table(a.out)
	fmt.Fprintln(w, "PLAN\tMONTHLY\tYEARLY")
	for _, tier := range []pricing.Tier{pricing.TierPremium, pricing.TierUnlimited} {
		monthly, _ := pricing.PlanPrice(tier, pricing.Monthly)
		yearly, _ := pricing.PlanPrice(tier, pricing.Yearly)
		fmt.Fprintf(w, "%s\t%s\t%s\n", tier, pricing.Format(monthly), pricing.Format(yearly))
	}
	return w.Flush()
}

// # News

func printNews(out io.Writer, feed result.Result[[]news.Post]) error {
	if err := failed(feed); err != nil {
		return err
	}
	posts, _ := result.Data(feed)
	if len(posts) == 0 {
		fmt.Fprintln(out, "No news yet.")
	}
	for _, post := range posts {
		fmt.Fprintf(out, "%s  %s (by %s)\n    %s\n", post.CreatedAt, post.Title, post.AuthorUsername, post.Content)
	}
	return nil
}

func newsCmd(ctx context.Context, a *app, _ []string) error {
	return printNews(a.out, a.news.List(ctx))
}

func publishCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("publish", pflag.ContinueOnError)
	title := fs.String("title", "", "headline")
	content := fs.String("content", "", "body")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.signIn(ctx, "publish news"); err != nil {
		return err
	}

	feed, err := a.news.Publish(ctx, a.store.Session(), *title, *content)
	if err != nil {
		return err
	}
	return printNews(a.out, feed)
}

// # Account

func registerCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	username := fs.String("username", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := a.auth.Register(ctx, *username, a.email, a.password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s, plan %s)\n", session.Username, session.Role, pointer.Fallback(session.SubscriptionType, "none"))
	return nil
}

func subscribeCmd(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: subscribe <PREMIUM|UNLIMITED> <MONTHLY|YEARLY>")
	}
	if err := a.signIn(ctx, "subscribe"); err != nil {
		return err
	}

	tier := pricing.Tier(strings.ToUpper(strings.TrimSpace(args[0])))
	cycle := pricing.BillingCycle(strings.ToUpper(strings.TrimSpace(args[1])))
	subscription, err := a.auth.Subscribe(ctx, tier, cycle)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Subscribed to %s until %s\n", subscription.SubscriptionType, pointer.Fallback(subscription.SubscriptionExpiration, "further notice"))
	return nil
}

// # Collections

func printCart(out io.Writer, cart result.Result[[]commerce.CartItem]) error {
	if err := failed(cart); err != nil {
		return err
	}
	items, _ := result.Data(cart)
	if len(items) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}

	w := table(out)
	fmt.Fprintln(w, "LINE\tCOMIC\tFORMAT\tQTY\tUNIT\tSUBTOTAL")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.Comic.Title, item.PurchaseType, item.Quantity,
			pricing.Label(item.UnitPrice), pricing.Format(item.Line().Subtotal()))
	}
	fmt.Fprintf(w, "\t\t\t\tTOTAL\t%s\n", pricing.Format(commerce.CartTotal(items)))
	return w.Flush()
}

func cartCmd(ctx context.Context, a *app, args []string) error {
	if err := a.signIn(ctx, "view your cart"); err != nil {
		return err
	}
	if len(args) == 0 {
		return printCart(a.out, a.store.Cart())
	}

	var err error
	switch action := args[0]; {
	case action == "add" && (len(args) == 2 || len(args) == 3):
		if err = a.loadCatalog(ctx); err != nil {
			return err
		}
		comic, findErr := a.findComic(args[1])
		if findErr != nil {
			return findErr
		}
		purchaseType := pricing.Original
		if len(args) == 3 {
			purchaseType = pricing.ParsePurchaseType(args[2])
		}
		err = a.store.AddToCart(ctx, comic, purchaseType)
	case action == "set" && len(args) == 3:
		quantity := convert.ToIntD(args[2], -1)
		if quantity < 0 {
			return apperr.ValidationError("Quantity must be a whole number")
		}
		err = a.store.UpdateCartQuantity(ctx, convert.ToInt64(args[1]), quantity)
	case action == "remove" && len(args) == 2:
		err = a.store.RemoveCartItem(ctx, convert.ToInt64(args[1]))
	case action == "clear" && len(args) == 1:
		err = a.store.ClearCart(ctx)
	default:
		return errors.New("usage: cart [add <comicId> [ORIGINAL|DIGITAL] | set <lineId> <qty> | remove <lineId> | clear]")
	}
	if err != nil {
		return err
	}
	return printCart(a.out, a.store.Cart())
}

func wishlistCmd(ctx context.Context, a *app, args []string) error {
	if err := a.signIn(ctx, "view your wishlist"); err != nil {
		return err
	}

	if len(args) == 2 {
		if err := a.loadCatalog(ctx); err != nil {
			return err
		}
		comic, err := a.findComic(args[1])
		if err != nil {
			return err
		}

		switch args[0] {
		case "add":
			err = a.store.AddToWishlist(ctx, comic.ID)
		case "remove":
			err = a.store.RemoveFromWishlist(ctx, comic.ID)
		case "move":
			err = a.store.MoveWishlistToCart(ctx, comic)
		default:
			return errors.New("usage: wishlist [add|remove|move <comicId>]")
		}
		if err != nil {
			return err
		}
	} else if len(args) != 0 {
		return errors.New("usage: wishlist [add|remove|move <comicId>]")
	}

	wishlist := a.store.Wishlist()
	if err := failed(wishlist); err != nil {
		return err
	}
	items, _ := result.Data(wishlist)
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your wishlist is empty.")
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "  %d\t%s\n", item.Comic.ID, item.Comic.Title)
	}
	return nil
}

func libraryCmd(ctx context.Context, a *app, _ []string) error {
	if err := a.signIn(ctx, "view your library"); err != nil {
		return err
	}

	library := a.store.Library()
	if err := failed(library); err != nil {
		return err
	}
	items, _ := result.Data(library)
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your library is empty.")
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "  %d\t%s\n", item.Comic.ID, item.Comic.Title)
	}
	return nil
}

// # Checkout

func checkoutCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("checkout", pflag.ContinueOnError)
	var form checkout.Form
	fs.StringVar(&form.FirstName, "first", "", "first name")
	fs.StringVar(&form.LastName, "last", "", "last name")
	fs.StringVar(&form.Email, "contact", a.email, "contact email")
	fs.StringVar(&form.Address, "address", "", "street address")
	fs.StringVar(&form.City, "city", "", "city")
	fs.StringVar(&form.Zip, "zip", "", "postal code")
	fs.StringVar(&form.CardNumber, "card", "", "16-digit card number")
	fs.StringVar(&form.Expiry, "expiry", "", "card expiry, MM/YY")
	fs.StringVar(&form.CVV, "cvv", "", "3-digit CVV")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.signIn(ctx, "complete your purchase"); err != nil {
		return err
	}

	flow, err := checkout.NewFlow(a.store,
		checkout.WithPaymentDelay(a.cfg.PaymentDelay),
		checkout.WithLogger(a.log),
	)
	if err != nil {
		return err
	}
	if flow.Enter() == checkout.RouteCart {
		return checkout.ErrEmptyCart
	}

	summary := flow.Summary()
	if err := printCart(a.out, a.store.Cart()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n%s\n", summary.PayLabel, checkout.ProcessingLabel)

	receipt, err := flow.Submit(ctx, form)
	if err != nil {
		return err
	}
	if !receipt.Complete() {
		fmt.Fprintf(a.out, "%d library grants failed, retrying\n", len(receipt.Failed))
		if receipt, err = flow.RetryGrants(ctx); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "Order complete: paid %s for %d lines\n", summary.DisplayTotal, len(receipt.Items))
	fmt.Fprintf(a.out, "  added to library: %d, already owned: %d, failed: %d\n",
		len(receipt.Granted), len(receipt.Skipped), len(receipt.Failed))
	if !receipt.CartCleared {
		fmt.Fprintln(a.out, "  the cart could not be cleared, check it before your next order")
	}
	return nil
}
