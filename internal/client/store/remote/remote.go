// Package remote implements the credential store as an HTTP client for a
// hosted record service (a PocketBase-style collections API). The service
// owns password verification, email uniqueness, and token issuance; this
// client only maps its responses onto the store contract.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/betterimg/betterimg/internal/client/models"
	"github.com/betterimg/betterimg/internal/client/store"
	"github.com/betterimg/betterimg/internal/common"
)

const collectionPath = "/api/collections/users"

type Store struct {
	store.AuthNotifier

	baseURL string
	hc      *http.Client

	// token issued by the service on the last successful auth; sent as the
	// Authorization header on record reads/updates.
	token string
}

func New(baseURL string) *Store {
	return &Store{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// record mirrors the service's user record payload. Avatar travels as a
// base64 text field.
type record struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Credits int    `json:"credits"`
	Avatar  string `json:"avatar,omitempty"`
	Created string `json:"created,omitempty"`
}

type authResponse struct {
	Token  string `json:"token"`
	Record record `json:"record"`
}

func (s *Store) Authenticate(ctx context.Context, email string, password []byte) (*models.Identity, string, error) {
	body := map[string]string{"identity": email, "password": string(password)}

	var ar authResponse
	status, err := s.do(ctx, http.MethodPost, collectionPath+"/auth-with-password", body, &ar)
	if err != nil {
		return nil, "", err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		// the service does not distinguish unknown email from wrong
		// password, and neither do we
		return nil, "", common.ErrorInvalidCredentials
	}
	if status != http.StatusOK {
		return nil, "", fmt.Errorf("%w: auth status %d", common.ErrorUnavailable, status)
	}

	identity, err := ar.Record.toIdentity()
	if err != nil {
		return nil, "", err
	}

	s.token = ar.Token
	s.NotifyAuthChange(ar.Token, identity)
	return identity, ar.Token, nil
}

func (s *Store) CreateIdentity(ctx context.Context, email string, password []byte, credits int, avatar []byte) (*models.Identity, error) {
	body := map[string]any{
		"email":           email,
		"password":        string(password),
		"passwordConfirm": string(password),
		"credits":         credits,
	}
	if len(avatar) > 0 {
		body["avatar"] = base64.StdEncoding.EncodeToString(avatar)
	}

	var rec record
	status, err := s.do(ctx, http.MethodPost, collectionPath+"/records", body, &rec)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return rec.toIdentity()
	case status == http.StatusBadRequest || status == http.StatusConflict:
		// the collection enforces a unique email index; a 400 on create
		// means the address is already registered
		return nil, common.ErrorEmailTaken
	default:
		return nil, fmt.Errorf("%w: create status %d", common.ErrorPersistence, status)
	}
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	var rec record
	status, err := s.do(ctx, http.MethodGet, collectionPath+"/records/"+id, nil, &rec)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return rec.toIdentity()
	case http.StatusNotFound:
		return nil, common.ErrorNotFound
	default:
		return nil, fmt.Errorf("%w: get status %d", common.ErrorUnavailable, status)
	}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var list struct {
		Items []record `json:"items"`
	}
	path := collectionPath + "/records?filter=" + url.QueryEscape(fmt.Sprintf("email='%s'", email))
	status, err := s.do(ctx, http.MethodGet, path, nil, &list)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: list status %d", common.ErrorUnavailable, status)
	}
	if len(list.Items) == 0 {
		return nil, common.ErrorNotFound
	}
	return list.Items[0].toIdentity()
}

func (s *Store) UpdateCredits(ctx context.Context, id string, credits int) (*models.Identity, error) {
	return s.patch(ctx, id, map[string]any{"credits": credits})
}

func (s *Store) UpdateAvatar(ctx context.Context, id string, avatar []byte) (*models.Identity, error) {
	return s.patch(ctx, id, map[string]any{"avatar": base64.StdEncoding.EncodeToString(avatar)})
}

func (s *Store) VerifyMarker(ctx context.Context, token string) (*models.Identity, error) {
	req, err := s.newRequest(ctx, http.MethodPost, collectionPath+"/auth-refresh", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	var ar authResponse
	status, err := s.send(req, &ar)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, common.ErrInvalidToken
	}

	identity, err := ar.Record.toIdentity()
	if err != nil {
		return nil, err
	}

	s.token = ar.Token
	s.NotifyAuthChange(ar.Token, identity)
	return identity, nil
}

func (s *Store) ClearAuth() {
	s.token = ""
	s.NotifyAuthChange("", nil)
}

func (s *Store) Close() error {
	s.hc.CloseIdleConnections()
	return nil
}

func (s *Store) patch(ctx context.Context, id string, fields map[string]any) (*models.Identity, error) {
	var rec record
	status, err := s.do(ctx, http.MethodPatch, collectionPath+"/records/"+id, fields, &rec)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return rec.toIdentity()
	case http.StatusNotFound:
		return nil, common.ErrorNotFound
	default:
		return nil, fmt.Errorf("%w: update status %d", common.ErrorPersistence, status)
	}
}

func (s *Store) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", s.token)
	}
	return req, nil
}

// do performs a JSON request and decodes a 2xx body into out. Transport
// failures map to common.ErrorUnavailable; non-2xx statuses are returned to
// the caller for per-operation mapping.
func (s *Store) do(ctx context.Context, method, path string, body, out any) (int, error) {
	req, err := s.newRequest(ctx, method, path, body)
	if err != nil {
		return 0, err
	}
	return s.send(req, out)
}

func (s *Store) send(req *http.Request, out any) (int, error) {
	resp, err := s.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
		return resp.StatusCode, nil
	}

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (r *record) toIdentity() (*models.Identity, error) {
	identity := &models.Identity{
		ID:      r.ID,
		Email:   r.Email,
		Credits: r.Credits,
	}
	if r.Avatar != "" {
		avatar, err := base64.StdEncoding.DecodeString(r.Avatar)
		if err != nil {
			return nil, fmt.Errorf("decode avatar: %w", err)
		}
		identity.Avatar = avatar
	}
	if r.Created != "" {
		if ts, err := time.Parse("2006-01-02 15:04:05.000Z", r.Created); err == nil {
			identity.CreatedAt = ts
		}
	}
	return identity, nil
}
