// Package ledger maintains the in-memory projection of the active identity's
// credit balance and applies top-ups through the credential store. Credits
// can only be added; nothing in the client spends them.
package ledger

import (
	"context"
	"fmt"

	"github.com/betterimg/betterimg/internal/client/session"
	"github.com/betterimg/betterimg/internal/client/store"
	"github.com/betterimg/betterimg/internal/common"
	"github.com/betterimg/betterimg/internal/logging"
)

type Ledger struct {
	store   store.Store
	session *session.Manager
	log     logging.Logger
}

func New(st store.Store, sess *session.Manager, log logging.Logger) *Ledger {
	return &Ledger{store: st, session: sess, log: log.With("component", "ledger")}
}

// Balance returns the projected balance of the active identity, or 0 when
// nobody is logged in.
func (l *Ledger) Balance() int {
	if identity := l.session.Current(); identity != nil {
		return identity.Credits
	}
	return 0
}

// AddCredits adds amount to the active identity's balance and returns the
// new balance. The projection is only refreshed after the store confirms
// the write; on persistence failure the previous balance stands and the
// error is surfaced for the view layer to display.
func (l *Ledger) AddCredits(ctx context.Context, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", common.ErrorValidation)
	}

	identity := l.session.Current()
	if identity == nil {
		return 0, common.ErrorNoActiveSession
	}

	updated, err := l.store.UpdateCredits(ctx, identity.ID, identity.Credits+amount)
	if err != nil {
		l.log.Error(ctx, "credit update failed", "amount", amount, "error", err)
		return identity.Credits, fmt.Errorf("add credits: %w", err)
	}

	l.session.Replace(updated)
	l.log.Info(ctx, "credits added", "amount", amount, "balance", updated.Credits)
	return updated.Credits, nil
}
