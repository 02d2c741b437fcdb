// Package session tracks the currently authenticated identity and exposes
// the login/register/logout/restore operations. It is the only writer of
// session state; the view and the credit ledger read it through Current and
// the Subscribe contract.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/betterimg/betterimg/internal/client/avatar"
	"github.com/betterimg/betterimg/internal/client/models"
	"github.com/betterimg/betterimg/internal/client/repositories/metadata"
	"github.com/betterimg/betterimg/internal/client/store"
	"github.com/betterimg/betterimg/internal/common"
	"github.com/betterimg/betterimg/internal/logging"
)

// StartingCredits is the balance granted to every new identity.
const StartingCredits = 10

// markerKey is the metadata key under which the session marker persists
// across program runs.
const markerKey = "session_token"

// ChangeFunc receives the active identity after every session transition,
// or nil after logout.
type ChangeFunc func(identity *models.Identity)

type Manager struct {
	store         store.Store
	marker        metadata.Repository
	avatars       avatar.Generator
	log           logging.Logger
	avatarTimeout time.Duration

	mu      sync.Mutex
	current *models.Identity
	subs    map[int]ChangeFunc
	nextSub int

	cancelAuthWatch func()
}

func NewManager(st store.Store, marker metadata.Repository, avatars avatar.Generator, log logging.Logger, avatarTimeout time.Duration) *Manager {
	return &Manager{
		store:         st,
		marker:        marker,
		avatars:       avatars,
		log:           log.With("component", "session"),
		avatarTimeout: avatarTimeout,
		subs:          make(map[int]ChangeFunc),
	}
}

// Start registers the manager on the store's auth-state stream so the
// active-identity view stays in sync with the store. Call exactly once;
// Close tears the registration down.
func (m *Manager) Start() {
	m.cancelAuthWatch = m.store.OnAuthChange(func(_ string, identity *models.Identity) {
		m.setCurrent(identity)
	})
}

func (m *Manager) Close() error {
	if m.cancelAuthWatch != nil {
		m.cancelAuthWatch()
		m.cancelAuthWatch = nil
	}
	return m.store.Close()
}

// Login verifies the credential against the store and persists the session
// marker. On failure the session is left unchanged and the caller receives
// common.ErrorInvalidCredentials (or ErrorUnavailable / ErrorValidation).
func (m *Manager) Login(ctx context.Context, email string, password []byte) error {
	if email == "" || len(password) == 0 {
		return common.ErrorEmptyFields
	}

	_, token, err := m.store.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}

	if err := m.marker.Set(ctx, markerKey, []byte(token)); err != nil {
		// the session is live either way; only restore-after-restart is lost
		m.log.Warn(ctx, "failed to persist session marker", "error", err)
	}

	m.log.Info(ctx, "login successful", "email", email)
	return nil
}

// Register creates a new identity and logs it in.
//
// Order of operations: local validation, uniqueness check, identity creation
// with StartingCredits and no avatar, bounded avatar provisioning, implicit
// login. The avatar step runs strictly before the login so the dashboard
// never renders while the record can still change underneath it, and its
// failure never fails the registration.
func (m *Manager) Register(ctx context.Context, email string, password, confirm []byte) error {
	if email == "" || len(password) == 0 || len(confirm) == 0 {
		return common.ErrorEmptyFields
	}
	if string(password) != string(confirm) {
		return common.ErrorPasswordMismatch
	}

	if _, err := m.store.GetByEmail(ctx, email); err == nil {
		return common.ErrorEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) && !errors.Is(err, common.ErrorUnavailable) {
		return fmt.Errorf("uniqueness check: %w", err)
	}

	identity, err := m.store.CreateIdentity(ctx, email, password, StartingCredits, nil)
	if err != nil {
		return err
	}
	m.log.Info(ctx, "identity created", "email", email, "credits", identity.Credits)

	m.provisionAvatar(ctx, identity)

	return m.Login(ctx, email, password)
}

// provisionAvatar makes the one best-effort generation attempt for a fresh
// identity. Failures and timeouts are logged and swallowed.
func (m *Manager) provisionAvatar(ctx context.Context, identity *models.Identity) {
	if m.avatars == nil {
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, m.avatarTimeout)
	defer cancel()

	img, err := m.avatars.Generate(genCtx, avatar.PromptFor(identity.Email))
	if err != nil {
		m.log.Warn(ctx, "avatar generation failed", "email", identity.Email, "error", err)
		return
	}

	if _, err := m.store.UpdateAvatar(ctx, identity.ID, img); err != nil {
		m.log.Warn(ctx, "failed to attach avatar", "email", identity.Email, "error", err)
		return
	}
	m.log.Info(ctx, "avatar attached", "email", identity.Email, "bytes", len(img))
}

// Logout clears the active identity and the persisted marker. Idempotent;
// never fails visibly.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.marker.Delete(ctx, markerKey); err != nil {
		m.log.Warn(ctx, "failed to delete session marker", "error", err)
	}
	m.store.ClearAuth()
	m.log.Info(ctx, "logged out")
}

// Restore consults the persisted session marker once at startup and
// reactivates the matching identity. A missing or stale marker is a normal
// state: the session is simply left empty and nil is returned.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.marker.Get(ctx, markerKey)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			m.log.Warn(ctx, "failed to read session marker", "error", err)
		}
		return nil
	}
	if len(token) == 0 {
		return nil
	}

	identity, err := m.store.VerifyMarker(ctx, string(token))
	if err != nil {
		m.log.Debug(ctx, "session marker rejected", "error", err)
		if delErr := m.marker.Delete(ctx, markerKey); delErr != nil {
			m.log.Warn(ctx, "failed to drop stale session marker", "error", delErr)
		}
		return nil
	}

	m.log.Info(ctx, "session restored", "email", identity.Email)
	return nil
}

// Current returns a copy of the active identity, or nil when nobody is
// logged in.
func (m *Manager) Current() *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Active reports whether a session is established.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Replace swaps the in-memory identity projection after a store write, but
// only while the same identity is still active. Listeners are notified.
func (m *Manager) Replace(identity *models.Identity) {
	m.mu.Lock()
	if m.current == nil || identity == nil || m.current.ID != identity.ID {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.setCurrent(identity)
}

// Subscribe registers a listener for session transitions. The returned
// cancel func removes it; safe to call more than once.
func (m *Manager) Subscribe(fn ChangeFunc) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) setCurrent(identity *models.Identity) {
	m.mu.Lock()
	m.current = identity.Clone()

	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]ChangeFunc, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	snapshot := m.current.Clone()
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
