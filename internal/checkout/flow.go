// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package checkout

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dentuss/Bazinga-Comics/internal/commerce"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/constants"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

// # Domain Enums

// Phase is the state of the payment sequence.
type Phase string

const (
	PhaseIdle          Phase = "IDLE"
	PhaseProcessing    Phase = "PROCESSING"
	PhaseOrderComplete Phase = "ORDER_COMPLETE"
)

// Route tells the caller which screen to show.
type Route string

const (
	RouteCheckout Route = "checkout"
	RouteCart     Route = "cart"
	RouteCatalog  Route = "catalog"
)

// ProcessingLabel replaces the pay button text while the payment runs.
const ProcessingLabel = "Processing..."

var (
	// ErrAlreadyProcessing rejects a second submit while one is running.
	ErrAlreadyProcessing = apperr.Conflict("Payment is already processing")

	// ErrOrderComplete rejects submits after the order went through.
	ErrOrderComplete = apperr.Conflict("Order is already complete")

	// ErrEmptyCart rejects a submit with nothing to pay for.
	ErrEmptyCart = apperr.ValidationError("Your cart is empty")
)

// # Dependencies

// Commerce is the part of the commerce store checkout needs.
type Commerce interface {
	Session() auth.Session
	Cart() result.Result[[]commerce.CartItem]
	OwnsComic(comicID int64) bool
	AddToLibrary(ctx context.Context, comicID int64) error
	ClearCart(ctx context.Context) error
}

// Clock returns the current time. Expiry checks use it.
type Clock func() time.Time

// # Configuration

// Option configures a [Flow].
type Option func(*Flow)

// WithClock replaces time.Now.
func WithClock(clock Clock) Option {
	return func(flow *Flow) { flow.clock = clock }
}

// WithPaymentDelay sets the simulated payment time. Zero skips the wait.
func WithPaymentDelay(delay time.Duration) Option {
	return func(flow *Flow) { flow.delay = delay }
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(flow *Flow) { flow.logger = logger }
}

// # Results

// GrantFailure is a DIGITAL comic that could not be added to the library.
type GrantFailure struct {
	ComicID int64
	Err     error
}

// Receipt describes a completed order.
type Receipt struct {
	// Items is the cart as it was paid for.
	Items []commerce.CartItem
	Total float64

	// Granted lists comics added to the library by this order.
	Granted []int64
	// Skipped lists DIGITAL comics the shopper already owned.
	Skipped []int64
	// Failed lists grants that can be retried with [Flow.RetryGrants].
	Failed []GrantFailure

	// CartCleared is false when clearing the cart failed after payment.
	CartCleared bool
}

// Complete reports whether every DIGITAL line is now in the library.
func (r *Receipt) Complete() bool {
	return len(r.Failed) == 0
}

// clone copies r so callers never share the flow's receipt.
func (r *Receipt) clone() *Receipt {
	if r == nil {
		return nil
	}
	copied := *r
	copied.Items = slices.Clone(r.Items)
	copied.Granted = slices.Clone(r.Granted)
	copied.Skipped = slices.Clone(r.Skipped)
	copied.Failed = slices.Clone(r.Failed)
	return &copied
}

// Summary is what the order panel renders.
type Summary struct {
	Items        []commerce.CartItem
	Total        float64
	DisplayTotal string
	PayLabel     string
}

// # Flow

/*
Flow is one visit to the checkout screen.

	Idle --submit(valid)--> Processing --delay, grants, clear--> OrderComplete
	  ^                                                              |
	  +---------------------- ContinueShopping ----------------------+

An invalid submit stays Idle and turns field errors on. While Processing the
flow works from the cart as it was when payment started.
*/
type Flow struct {
	commerce Commerce
	clock    Clock
	delay    time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	phase      Phase
	showErrors bool
	granted    map[int64]bool
	receipt    *Receipt
}

// NewFlow opens checkout for the current session. Signed-out shoppers get
// AUTH_REQUIRED.
func NewFlow(store Commerce, opts ...Option) (*Flow, error) {
	if !store.Session().SignedIn() {
		return nil, apperr.AuthRequired("complete your purchase")
	}

	flow := &Flow{
		commerce: store,
		clock:    time.Now,
		delay:    constants.DefaultPaymentDelay,
		logger:   slog.Default(),
		phase:    PhaseIdle,
		granted:  make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(flow)
	}
	return flow, nil
}

// Phase returns the current phase.
func (flow *Flow) Phase() Phase {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.phase
}

// ShowErrors reports whether field errors should be rendered.
func (flow *Flow) ShowErrors() bool {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.showErrors
}

// FieldErrors returns the message per failing field, or nil before the first
// submit attempt.
func (flow *Flow) FieldErrors(form Form) map[string]string {
	if !flow.ShowErrors() {
		return nil
	}
	return fieldMessages(form.Validate(flow.clock()))
}

// Receipt returns a copy of the last order's receipt, or nil.
func (flow *Flow) Receipt() *Receipt {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.receipt.clone()
}

// # Navigation

// Enter decides whether the checkout screen may be shown.
func (flow *Flow) Enter() Route {
	return flow.Guard()
}

// Guard re-evaluates navigation after a cart change. An Idle checkout with
// an empty cart sends the shopper back to the cart.
func (flow *Flow) Guard() Route {
	flow.mu.Lock()
	phase := flow.phase
	flow.mu.Unlock()

	if phase == PhaseIdle && len(flow.cartItems()) == 0 {
		return RouteCart
	}
	return RouteCheckout
}

// ContinueShopping leaves the checkout and resets the flow.
func (flow *Flow) ContinueShopping() Route {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	flow.phase = PhaseIdle
	flow.showErrors = false
	flow.receipt = nil
	flow.granted = make(map[int64]bool)
	return RouteCatalog
}

// Summary totals the live cart. Rounding happens only in DisplayTotal.
func (flow *Flow) Summary() Summary {
	items := flow.cartItems()
	total := commerce.CartTotal(items)

	label := "Pay " + pricing.Format(total)
	if flow.Phase() == PhaseProcessing {
		label = ProcessingLabel
	}

	return Summary{
		Items:        items,
		Total:        total,
		DisplayTotal: pricing.Format(total),
		PayLabel:     label,
	}
}

// # Payment

/*
Submit validates the form and, when it passes, runs the payment sequence.

Description: After the simulated delay every DIGITAL comic in the paid cart
is granted to the library, one at a time. Comics the shopper already owns are
skipped. A failed grant does not stop the order; it is listed in the receipt
for [Flow.RetryGrants]. The cart is then cleared and the flow moves to
OrderComplete.

Parameters:
  - ctx: context.Context (cancelling during the delay returns to Idle)
  - form: Form

Returns:
  - *Receipt: the completed order
  - error: VALIDATION_ERROR, AUTH_REQUIRED, CONFLICT or the ctx error
*/
func (flow *Flow) Submit(ctx context.Context, form Form) (*Receipt, error) {
	flow.mu.Lock()
	switch flow.phase {
	case PhaseProcessing:
		flow.mu.Unlock()
		return nil, ErrAlreadyProcessing
	case PhaseOrderComplete:
		flow.mu.Unlock()
		return nil, ErrOrderComplete
	}

	flow.showErrors = true
	if err := form.Validate(flow.clock()); err != nil {
		flow.mu.Unlock()
		return nil, err
	}
	if !flow.commerce.Session().SignedIn() {
		flow.mu.Unlock()
		return nil, apperr.AuthRequired("complete your purchase")
	}

	items := flow.cartItems()
	if len(items) == 0 {
		flow.mu.Unlock()
		return nil, ErrEmptyCart
	}

	flow.phase = PhaseProcessing
	flow.mu.Unlock()

	receipt := &Receipt{Items: items, Total: commerce.CartTotal(items)}
	flow.logger.InfoContext(ctx, "checkout_payment_started",
		slog.Int("items", len(items)),
		slog.String("total", pricing.Format(receipt.Total)),
	)

	if err := flow.wait(ctx); err != nil {
		flow.setPhase(PhaseIdle)
		flow.logger.InfoContext(ctx, "checkout_payment_cancelled")
		return nil, err
	}

	for _, comicID := range digitalComics(items) {
		flow.grant(ctx, receipt, comicID)
	}

	receipt.CartCleared = true
	if err := flow.commerce.ClearCart(ctx); err != nil && !apperr.HasCode(err, apperr.CodeStaleResponse) {
		receipt.CartCleared = false
		flow.logger.WarnContext(ctx, "checkout_clear_cart_failed", slog.Any("error", err))
	}

	flow.mu.Lock()
	flow.phase = PhaseOrderComplete
	flow.receipt = receipt
	flow.mu.Unlock()

	flow.logger.InfoContext(ctx, "checkout_order_complete",
		slog.Int("granted", len(receipt.Granted)),
		slog.Int("skipped", len(receipt.Skipped)),
		slog.Int("failed", len(receipt.Failed)),
	)
	return receipt.clone(), nil
}

// RetryGrants re-runs the library grant for comics that failed. Grants that
// already went through are not repeated. The stored receipt is replaced, not
// edited, so copies handed out earlier stay unchanged.
func (flow *Flow) RetryGrants(ctx context.Context) (*Receipt, error) {
	flow.mu.Lock()
	receipt := flow.receipt.clone()
	flow.mu.Unlock()

	if receipt == nil {
		return nil, apperr.NotFound("Order")
	}

	failed := receipt.Failed
	receipt.Failed = nil
	for _, failure := range failed {
		flow.grant(ctx, receipt, failure.ComicID)
	}

	flow.mu.Lock()
	flow.receipt = receipt
	flow.mu.Unlock()

	flow.logger.InfoContext(ctx, "checkout_grants_retried",
		slog.Int("retried", len(failed)),
		slog.Int("still_failed", len(receipt.Failed)),
	)
	return receipt.clone(), nil
}

// grant adds one comic to the library unless this order or an earlier
// purchase already put it there.
func (flow *Flow) grant(ctx context.Context, receipt *Receipt, comicID int64) {
	flow.mu.Lock()
	done := flow.granted[comicID]
	flow.mu.Unlock()

	if done || flow.commerce.OwnsComic(comicID) {
		receipt.Skipped = append(receipt.Skipped, comicID)
		return
	}

	err := flow.commerce.AddToLibrary(ctx, comicID)
	if err != nil && !apperr.HasCode(err, apperr.CodeStaleResponse) {
		receipt.Failed = append(receipt.Failed, GrantFailure{ComicID: comicID, Err: err})
		flow.logger.WarnContext(ctx, "checkout_grant_failed",
			slog.Int64("comic_id", comicID),
			slog.Any("error", err),
		)
		return
	}

	flow.mu.Lock()
	flow.granted[comicID] = true
	flow.mu.Unlock()
	receipt.Granted = append(receipt.Granted, comicID)
}

func (flow *Flow) wait(ctx context.Context) error {
	if flow.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(flow.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (flow *Flow) setPhase(phase Phase) {
	flow.mu.Lock()
	flow.phase = phase
	flow.mu.Unlock()
}

func (flow *Flow) cartItems() []commerce.CartItem {
	items, _ := result.Data(flow.commerce.Cart())
	return items
}

// digitalComics returns the distinct comics bought as DIGITAL, in cart order.
func digitalComics(items []commerce.CartItem) []int64 {
	seen := make(map[int64]bool)
	var comics []int64
	for _, item := range items {
		if item.PurchaseType != pricing.Digital || seen[item.Comic.ID] {
			continue
		}
		seen[item.Comic.ID] = true
		comics = append(comics, item.Comic.ID)
	}
	return comics
}
