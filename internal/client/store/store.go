// Package store defines the credential store contract: who is registered,
// what their credits and avatar are, and whether a presented credential or
// session marker is valid.
//
// Two implementations exist: a sqlite-backed local store (betterimg can run
// fully standalone) and an HTTP client for a hosted record service. Both
// enforce email uniqueness and both own password verification; callers never
// see stored credentials.
package store

import (
	"context"

	"github.com/betterimg/betterimg/internal/client/models"
)

// AuthChangeFunc receives auth-state transitions from a store: a non-nil
// identity with its session token after a successful authentication or
// marker verification, or (nil, "") when the auth state is cleared.
type AuthChangeFunc func(token string, identity *models.Identity)

// Store abstracts identity persistence and credential verification.
//
// Error contract (matched with errors.Is against internal/common sentinels):
//   - Authenticate: ErrorInvalidCredentials on unknown email or wrong
//     password, indistinguishably.
//   - CreateIdentity: ErrorEmailTaken when the email is already registered.
//   - GetByID / GetByEmail: ErrorNotFound.
//   - UpdateCredits / UpdateAvatar: ErrorPersistence when the write fails;
//     the record is then unchanged.
//   - VerifyMarker: ErrInvalidToken for expired, malformed, or orphaned
//     markers.
//   - Any implementation may return ErrorUnavailable when the backing
//     service cannot be reached.
type Store interface {
	// Authenticate verifies the credential and, on success, returns the
	// identity together with a session token to persist as the session
	// marker.
	Authenticate(ctx context.Context, email string, password []byte) (*models.Identity, string, error)

	// CreateIdentity registers a new identity with the given starting
	// credits and optional avatar bytes.
	CreateIdentity(ctx context.Context, email string, password []byte, credits int, avatar []byte) (*models.Identity, error)

	GetByID(ctx context.Context, id string) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)

	// UpdateCredits atomically replaces the identity's balance and returns
	// the updated record.
	UpdateCredits(ctx context.Context, id string, credits int) (*models.Identity, error)

	// UpdateAvatar attaches avatar bytes to an existing identity.
	UpdateAvatar(ctx context.Context, id string, avatar []byte) (*models.Identity, error)

	// VerifyMarker resolves a previously issued session token back to its
	// identity. Used once at startup to restore a session.
	VerifyMarker(ctx context.Context, token string) (*models.Identity, error)

	// OnAuthChange registers a listener for auth-state transitions. The
	// returned cancel func removes the listener; it is safe to call more
	// than once.
	OnAuthChange(fn AuthChangeFunc) (cancel func())

	// ClearAuth drops any store-held auth state and notifies listeners
	// with (nil, ""). Idempotent.
	ClearAuth()

	Close() error
}
