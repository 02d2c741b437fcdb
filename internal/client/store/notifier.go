package store

import (
	"sort"
	"sync"

	"github.com/betterimg/betterimg/internal/client/models"
)

// AuthNotifier is a small fan-out helper both store implementations embed to
// satisfy the OnAuthChange contract. Listeners are invoked synchronously on
// the caller's goroutine, in registration order.
type AuthNotifier struct {
	mu   sync.Mutex
	subs map[int]AuthChangeFunc
	next int
}

func (n *AuthNotifier) OnAuthChange(fn AuthChangeFunc) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]AuthChangeFunc)
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// NotifyAuthChange delivers the transition to every registered listener.
func (n *AuthNotifier) NotifyAuthChange(token string, identity *models.Identity) {
	n.mu.Lock()
	ids := make([]int, 0, len(n.subs))
	for id := range n.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]AuthChangeFunc, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, n.subs[id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(token, identity)
	}
}
