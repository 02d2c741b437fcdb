// Package local implements the credential store on top of the client's own
// sqlite database. It is the standalone variant: accounts, bcrypt-hashed
// passwords, credits, and avatars all live in a single local file, and
// session tokens are minted locally.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/betterimg/betterimg/internal/client/models"
	"github.com/betterimg/betterimg/internal/client/store"
	"github.com/betterimg/betterimg/internal/common"
	"github.com/betterimg/betterimg/internal/dbx"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so that a failed
// login costs the same whether or not the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type Store struct {
	store.AuthNotifier

	db            *sql.DB
	secretKey     []byte
	tokenValidity time.Duration
}

func New(db *sql.DB, secretKey []byte, tokenValidity time.Duration) *Store {
	return &Store{db: db, secretKey: secretKey, tokenValidity: tokenValidity}
}

func (s *Store) Authenticate(ctx context.Context, email string, password []byte) (*models.Identity, string, error) {
	identity, hash, err := s.getByEmailWithHash(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same bcrypt cost as the found path
			_ = bcrypt.CompareHashAndPassword(dummyHash, password)
			return nil, "", common.ErrorInvalidCredentials
		}
		return nil, "", fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, password); err != nil {
		return nil, "", common.ErrorInvalidCredentials
	}

	token, err := generateToken(identity.ID, s.secretKey, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	s.NotifyAuthChange(token, identity)
	return identity, token, nil
}

func (s *Store) CreateIdentity(ctx context.Context, email string, password []byte, credits int, avatar []byte) (*models.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}

	identity := &models.Identity{
		ID:        uuid.NewString(),
		Email:     email,
		Credits:   credits,
		Avatar:    avatar,
		CreatedAt: time.Now().UTC(),
	}

	// the uniqueness check and the insert share a transaction so another
	// process writing the same database file cannot slip a duplicate between
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var existing string
		err := tx.QueryRowContext(ctx, `SELECT id FROM identities WHERE email = ?`, email).Scan(&existing)
		if err == nil {
			return common.ErrorEmailTaken
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("create identity: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO identities (id, email, password_hash, credits, avatar, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, identity.ID, identity.Email, hash, identity.Credits, identity.Avatar, identity.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: insert identity: %v", common.ErrorPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return identity, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	return s.scanOne(ctx, `SELECT id, email, credits, avatar, created_at FROM identities WHERE id = ?`, id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return s.scanOne(ctx, `SELECT id, email, credits, avatar, created_at FROM identities WHERE email = ?`, email)
}

func (s *Store) UpdateCredits(ctx context.Context, id string, credits int) (*models.Identity, error) {
	if credits < 0 {
		return nil, fmt.Errorf("%w: negative balance", common.ErrorValidation)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE identities SET credits = ? WHERE id = ?`, credits, id)
	if err != nil {
		return nil, fmt.Errorf("%w: update credits: %v", common.ErrorPersistence, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrorNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *Store) UpdateAvatar(ctx context.Context, id string, avatar []byte) (*models.Identity, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE identities SET avatar = ? WHERE id = ?`, avatar, id)
	if err != nil {
		return nil, fmt.Errorf("%w: update avatar: %v", common.ErrorPersistence, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrorNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *Store) VerifyMarker(ctx context.Context, token string) (*models.Identity, error) {
	userID, err := userIDFromToken(token, s.secretKey)
	if err != nil {
		return nil, err
	}

	identity, err := s.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	s.NotifyAuthChange(token, identity)
	return identity, nil
}

func (s *Store) ClearAuth() {
	s.NotifyAuthChange("", nil)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) scanOne(ctx context.Context, query string, arg any) (*models.Identity, error) {
	identity := &models.Identity{}
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&identity.ID, &identity.Email, &identity.Credits, &identity.Avatar, &identity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	return identity, nil
}

func (s *Store) getByEmailWithHash(ctx context.Context, email string) (*models.Identity, []byte, error) {
	identity := &models.Identity{}
	var hash []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, credits, avatar, created_at FROM identities WHERE email = ?`, email).
		Scan(&identity.ID, &identity.Email, &hash, &identity.Credits, &identity.Avatar, &identity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("scan identity: %w", err)
	}
	return identity, hash, nil
}
