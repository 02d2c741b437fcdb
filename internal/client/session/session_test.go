package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/betterimg/betterimg/internal/client/models"
	"github.com/betterimg/betterimg/internal/client/store"
	"github.com/betterimg/betterimg/internal/common"
	"github.com/betterimg/betterimg/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeStore struct {
	store.AuthNotifier

	identities map[string]*models.Identity // keyed by email
	passwords  map[string]string           // email -> password
	tokens     map[string]string           // token -> identity id

	createErr       error
	updateAvatarErr error

	createCalls  int
	avatarWrites int
	nextToken    string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		identities: make(map[string]*models.Identity),
		passwords:  make(map[string]string),
		tokens:     make(map[string]string),
		nextToken:  "tok-1",
	}
}

func (f *fakeStore) Authenticate(_ context.Context, email string, password []byte) (*models.Identity, string, error) {
	id, ok := f.identities[email]
	if !ok || f.passwords[email] != string(password) {
		return nil, "", common.ErrorInvalidCredentials
	}
	token := f.nextToken
	f.tokens[token] = id.ID
	f.NotifyAuthChange(token, id)
	return id.Clone(), token, nil
}

func (f *fakeStore) CreateIdentity(_ context.Context, email string, password []byte, credits int, avatar []byte) (*models.Identity, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.identities[email]; ok {
		return nil, common.ErrorEmailTaken
	}
	id := &models.Identity{ID: "id-" + email, Email: email, Credits: credits, Avatar: avatar, CreatedAt: time.Now()}
	f.identities[email] = id
	f.passwords[email] = string(password)
	return id.Clone(), nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*models.Identity, error) {
	for _, identity := range f.identities {
		if identity.ID == id {
			return identity.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	if id, ok := f.identities[email]; ok {
		return id.Clone(), nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStore) UpdateCredits(ctx context.Context, id string, credits int) (*models.Identity, error) {
	identity, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.identities[identity.Email].Credits = credits
	return f.identities[identity.Email].Clone(), nil
}

func (f *fakeStore) UpdateAvatar(ctx context.Context, id string, avatar []byte) (*models.Identity, error) {
	if f.updateAvatarErr != nil {
		return nil, f.updateAvatarErr
	}
	identity, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.avatarWrites++
	f.identities[identity.Email].Avatar = avatar
	return f.identities[identity.Email].Clone(), nil
}

func (f *fakeStore) VerifyMarker(ctx context.Context, token string) (*models.Identity, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	identity, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	f.NotifyAuthChange(token, identity)
	return identity, nil
}

func (f *fakeStore) ClearAuth() {
	f.NotifyAuthChange("", nil)
}

func (f *fakeStore) Close() error { return nil }

type fakeMarker struct {
	values map[string][]byte
	setErr error
}

func newFakeMarker() *fakeMarker { return &fakeMarker{values: make(map[string][]byte)} }

func (f *fakeMarker) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeMarker) Set(_ context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeMarker) Delete(_ context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func (f *fakeMarker) Clear(_ context.Context) error {
	f.values = make(map[string][]byte)
	return nil
}

type fakeGenerator struct {
	img     []byte
	err     error
	block   bool
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.img, f.err
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func setupManager(t *testing.T) (*Manager, *fakeStore, *fakeMarker, *fakeGenerator) {
	t.Helper()
	st := newFakeStore()
	marker := newFakeMarker()
	gen := &fakeGenerator{img: []byte{0x89, 'P', 'N', 'G'}}
	m := NewManager(st, marker, gen, testLogger(), 50*time.Millisecond)
	m.Start()
	return m, st, marker, gen
}

// ---- tests ----

func TestRegister_CreatesIdentityAndLogsIn(t *testing.T) {
	m, st, marker, _ := setupManager(t)
	ctx := context.Background()

	err := m.Register(ctx, "a@x.com", []byte("pw1"), []byte("pw1"))
	require.NoError(t, err)

	require.True(t, m.Active())
	current := m.Current()
	require.Equal(t, "a@x.com", current.Email)
	require.Equal(t, StartingCredits, current.Credits)

	// the session marker was persisted for restore
	tok, err := marker.Get(ctx, markerKey)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	require.Equal(t, 1, st.createCalls)
	require.Equal(t, 1, st.avatarWrites)
}

func TestRegister_PasswordMismatchSkipsCollaborators(t *testing.T) {
	m, st, _, gen := setupManager(t)

	err := m.Register(context.Background(), "a@x.com", []byte("pw1"), []byte("pw2"))
	require.True(t, errors.Is(err, common.ErrorValidation))
	require.True(t, errors.Is(err, common.ErrorPasswordMismatch))

	require.Zero(t, st.createCalls, "no store call on local validation failure")
	require.Empty(t, gen.prompts, "no generation call on local validation failure")
	require.False(t, m.Active())
}

func TestRegister_EmptyFields(t *testing.T) {
	m, st, _, _ := setupManager(t)

	err := m.Register(context.Background(), "", []byte("pw"), []byte("pw"))
	require.True(t, errors.Is(err, common.ErrorValidation))

	err = m.Register(context.Background(), "a@x.com", nil, nil)
	require.True(t, errors.Is(err, common.ErrorValidation))

	require.Zero(t, st.createCalls)
}

func TestRegister_EmailTaken(t *testing.T) {
	m, st, _, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "a@x.com", []byte("pw1"), []byte("pw1")))
	m.Logout(ctx)

	err := m.Register(ctx, "a@x.com", []byte("other"), []byte("other"))
	require.True(t, errors.Is(err, common.ErrorEmailTaken))
	require.Equal(t, 1, st.createCalls, "no duplicate create attempt")
}

func TestRegister_AvatarFailureDoesNotBlockRegistration(t *testing.T) {
	m, _, _, gen := setupManager(t)
	gen.img = nil
	gen.err = errors.New("quota exceeded")

	err := m.Register(context.Background(), "a@x.com", []byte("pw1"), []byte("pw1"))
	require.NoError(t, err)

	require.True(t, m.Active())
	current := m.Current()
	require.Equal(t, StartingCredits, current.Credits)
	require.False(t, current.HasAvatar())
}

func TestRegister_AvatarTimeoutFallsBackToNoAvatar(t *testing.T) {
	m, _, _, gen := setupManager(t)
	gen.block = true

	start := time.Now()
	err := m.Register(context.Background(), "a@x.com", []byte("pw1"), []byte("pw1"))
	require.NoError(t, err)
	require.Less(t, time.Since(start), time.Second, "generation hang must be bounded")

	require.True(t, m.Active())
	require.False(t, m.Current().HasAvatar())
}

func TestRegister_AvatarPromptSeededByEmail(t *testing.T) {
	m, _, _, gen := setupManager(t)

	require.NoError(t, m.Register(context.Background(), "seed@x.com", []byte("pw"), []byte("pw")))
	require.Len(t, gen.prompts, 1)
	require.Contains(t, gen.prompts[0], "seed@x.com")
}

func TestLogin_InvalidCredentialsLeavesStateUnchanged(t *testing.T) {
	m, _, _, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "a@x.com", []byte("pw1"), []byte("pw1")))
	m.Logout(ctx)

	err := m.Login(ctx, "a@x.com", []byte("wrong"))
	require.True(t, errors.Is(err, common.ErrorInvalidCredentials))
	require.False(t, m.Active())
}

func TestLogout_IdempotentAndClearsMarker(t *testing.T) {
	m, _, marker, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "a@x.com", []byte("pw1"), []byte("pw1")))
	require.True(t, m.Active())

	m.Logout(ctx)
	require.False(t, m.Active())
	_, err := marker.Get(ctx, markerKey)
	require.True(t, errors.Is(err, common.ErrorNotFound))

	m.Logout(ctx)
	require.False(t, m.Active())
}

func TestRestore_NoMarkerIsSilent(t *testing.T) {
	m, _, _, _ := setupManager(t)

	require.NoError(t, m.Restore(context.Background()))
	require.False(t, m.Active())
}

func TestRestore_ValidMarker(t *testing.T) {
	m, st, marker, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "a@x.com", []byte("pw1"), []byte("pw1")))
	token, err := marker.Get(ctx, markerKey)
	require.NoError(t, err)

	// simulate a fresh process with the same persisted marker
	m2 := NewManager(st, marker, nil, testLogger(), time.Second)
	m2.Start()

	require.NoError(t, m2.Restore(ctx))
	require.True(t, m2.Active())
	require.Equal(t, "a@x.com", m2.Current().Email)
	require.Equal(t, string(token), string(marker.values[markerKey]))
}

func TestRestore_StaleMarkerDropped(t *testing.T) {
	m, _, marker, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, marker.Set(ctx, markerKey, []byte("stale-token")))
	require.NoError(t, m.Restore(ctx))

	require.False(t, m.Active())
	_, err := marker.Get(ctx, markerKey)
	require.True(t, errors.Is(err, common.ErrorNotFound), "stale marker should be removed")
}

func TestSubscribe_NotifiedOnTransitions(t *testing.T) {
	m, _, _, _ := setupManager(t)
	ctx := context.Background()

	var events []string
	cancel := m.Subscribe(func(identity *models.Identity) {
		if identity == nil {
			events = append(events, "logout")
		} else {
			events = append(events, identity.Email)
		}
	})

	require.NoError(t, m.Register(ctx, "a@x.com", []byte("pw1"), []byte("pw1")))
	m.Logout(ctx)

	// register fires once on create-login, logout once with nil
	require.Equal(t, []string{"a@x.com", "logout"}, events)

	cancel()
	require.NoError(t, m.Login(ctx, "a@x.com", []byte("pw1")))
	require.Equal(t, []string{"a@x.com", "logout"}, events, "no events after unsubscribe")
}

func TestReplace_OnlyForActiveIdentity(t *testing.T) {
	m, _, _, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "a@x.com", []byte("pw1"), []byte("pw1")))
	id := m.Current()

	id.Credits = 110
	m.Replace(id)
	require.Equal(t, 110, m.Current().Credits)

	other := &models.Identity{ID: "someone-else", Email: "b@x.com", Credits: 999}
	m.Replace(other)
	require.Equal(t, "a@x.com", m.Current().Email, "foreign identity must not replace the session")
}
