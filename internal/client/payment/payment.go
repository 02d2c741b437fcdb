// Package payment drives the credit top-up flow through an external payment
// widget. Exactly one product exists: a fixed credit pack at a fixed price.
// The trigger owns no state beyond whether the payment affordance is
// currently shown.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/betterimg/betterimg/internal/logging"
)

const (
	// CreditPack is the number of credits granted per confirmed capture.
	CreditPack = 100

	// PackPrice is the fixed price of the pack, in the widget's currency.
	PackPrice = "5.00"

	// PackDescription appears on the payment order.
	PackDescription = "100 credits for betterimg.art"
)

var (
	ErrPaymentFailed = errors.New("payment failed")
	ErrNoOrderShown  = errors.New("no payment in progress")
)

// Order carries the fixed create-order parameters this client supplies to
// the widget.
type Order struct {
	Description string
	Value       string
}

// Capture is the widget's confirmation of a completed payment.
type Capture struct {
	OrderID string
	Status  string
}

// Widget is the external payment collaborator. Implementations render a
// checkout for the order and later capture it.
type Widget interface {
	CreateOrder(ctx context.Context, order Order) (orderID, approveURL string, err error)
	CaptureOrder(ctx context.Context, orderID string) (*Capture, error)
}

// CreditAdder funds the ledger once a capture is confirmed.
type CreditAdder interface {
	AddCredits(ctx context.Context, amount int) (int, error)
}

type Trigger struct {
	widget  Widget
	credits CreditAdder
	log     logging.Logger

	mu      sync.Mutex
	shown   bool
	orderID string
}

func NewTrigger(widget Widget, credits CreditAdder, log logging.Logger) *Trigger {
	return &Trigger{widget: widget, credits: credits, log: log.With("component", "payment")}
}

// Shown reports whether the payment affordance is currently presented.
func (t *Trigger) Shown() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shown
}

// Show creates the fixed-price order with the widget and presents the
// affordance. The returned URL is where the buyer approves the payment.
func (t *Trigger) Show(ctx context.Context) (approveURL string, err error) {
	order := Order{Description: PackDescription, Value: PackPrice}

	orderID, approveURL, err := t.widget.CreateOrder(ctx, order)
	if err != nil {
		t.log.Error(ctx, "order creation failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	t.mu.Lock()
	t.shown = true
	t.orderID = orderID
	t.mu.Unlock()

	t.log.Info(ctx, "payment affordance shown", "order_id", orderID)
	return approveURL, nil
}

// Confirm captures the shown order. On success the credit pack is added and
// the affordance hides. On payment error the affordance stays shown so the
// buyer can retry.
func (t *Trigger) Confirm(ctx context.Context) (balance int, err error) {
	t.mu.Lock()
	orderID := t.orderID
	shown := t.shown
	t.mu.Unlock()

	if !shown {
		return 0, ErrNoOrderShown
	}

	capture, err := t.widget.CaptureOrder(ctx, orderID)
	if err != nil {
		t.log.Error(ctx, "payment capture failed", "order_id", orderID, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	// payment is captured at this point: the affordance hides even if the
	// credit write below fails, which the caller surfaces separately
	t.hide()
	t.log.Info(ctx, "payment captured", "order_id", capture.OrderID, "status", capture.Status)

	balance, err = t.credits.AddCredits(ctx, CreditPack)
	if err != nil {
		return balance, err
	}
	return balance, nil
}

// Cancel hides the affordance without a purchase. Idempotent.
func (t *Trigger) Cancel() {
	t.hide()
}

func (t *Trigger) hide() {
	t.mu.Lock()
	t.shown = false
	t.orderID = ""
	t.mu.Unlock()
}
