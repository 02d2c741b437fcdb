package cli

import (
	"context"
	"fmt"

	"github.com/betterimg/betterimg/internal/client/payment"
	"github.com/betterimg/betterimg/internal/common"
)

// Status prints the dashboard line: email, projected balance and whether an
// avatar is attached.
func (a *App) Status(ctx context.Context) error {
	identity := a.session.Current()
	if identity == nil {
		printlnFn("Not logged in")
		return common.ErrorNoActiveSession
	}

	avatarNote := "default avatar"
	if identity.HasAvatar() {
		avatarNote = fmt.Sprintf("%d bytes", len(identity.Avatar))
	}
	printlnFn(fmt.Sprintf("%s | credits: %d | avatar: %s", identity.Email, a.credits.Balance(), avatarNote))

	if a.payments.Shown() {
		printlnFn("Payment in progress: type 'confirm' to complete or 'cancel' to abort")
	}
	return nil
}

// Buy starts a credit-pack purchase: an order is created with the checkout
// service and the approval URL is printed. The purchase stays pending until
// the user confirms or cancels.
func (a *App) Buy(ctx context.Context) error {
	if !a.session.Active() {
		printlnFn("Log in first")
		return common.ErrorNoActiveSession
	}

	approveURL, err := a.payments.Show(ctx)
	if err != nil {
		a.views.SetError(err.Error())
		printlnFn("Could not start the purchase:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Buy %d credits for $%s", payment.CreditPack, payment.PackPrice))
	printlnFn("Approve the payment at: " + approveURL)
	printlnFn("Then type 'confirm' to complete, or 'cancel' to abort")
	return nil
}

// Confirm captures the pending purchase and reports the new balance. On a
// payment error the purchase stays pending so the user can retry.
func (a *App) Confirm(ctx context.Context) error {
	balance, err := a.payments.Confirm(ctx)
	if err != nil {
		a.views.SetError(err.Error())
		printlnFn("Payment not completed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Payment complete. New balance: %d credits", balance))
	return nil
}

// CancelPayment abandons the pending purchase, if any. Idempotent.
func (a *App) CancelPayment(ctx context.Context) error {
	a.payments.Cancel()
	printlnFn("Payment cancelled")
	return nil
}
