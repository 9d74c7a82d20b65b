package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mealshare/mealshare-be/internal/auth"
	"github.com/mealshare/mealshare-be/internal/middleware"
	"github.com/mealshare/mealshare-be/internal/models"
	"github.com/mealshare/mealshare-be/internal/profile"
	"github.com/mealshare/mealshare-be/internal/storage"
)

var testColumns = []string{
	"user_id", "email", "role", "full_name", "phone", "address", "city",
	"business_name", "org_name", "completed", "created_at", "updated_at",
}

type memProfileStore struct {
	rows map[uuid.UUID]map[string]any
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{rows: make(map[uuid.UUID]map[string]any)}
}

func (m *memProfileStore) GetByUserID(_ context.Context, userID uuid.UUID) (map[string]any, error) {
	row, ok := m.rows[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out, nil
}

func (m *memProfileStore) Upsert(_ context.Context, payload map[string]any) (map[string]any, error) {
	userID, ok := payload["user_id"].(uuid.UUID)
	if !ok {
		return nil, errors.New("upsert payload missing user_id")
	}
	row, exists := m.rows[userID]
	if !exists {
		row = make(map[string]any, len(testColumns))
		for _, col := range testColumns {
			row[col] = nil
		}
	}
	for col, value := range payload {
		if exists && (col == "user_id" || col == "created_at") {
			continue
		}
		row[col] = value
	}
	m.rows[userID] = row
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out, nil
}

type memMetadata struct {
	flags map[uuid.UUID]bool
}

func newMemMetadata() *memMetadata {
	return &memMetadata{flags: make(map[uuid.UUID]bool)}
}

func (m *memMetadata) SetVolunteer(_ context.Context, userID uuid.UUID, volunteer bool) error {
	m.flags[userID] = volunteer
	return nil
}

func (m *memMetadata) IsVolunteer(_ context.Context, userID uuid.UUID) (bool, error) {
	return m.flags[userID], nil
}

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func newProfileTestServer(t *testing.T) (*httptest.Server, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", "mealshare-test", time.Hour)
	svc := profile.NewService(newMemProfileStore(), newMemMetadata(), zap.NewNop())

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))
		NewProfileHandler(svc, zap.NewNop()).Register(r)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, tokens
}

func bearerToken(t *testing.T, tokens *auth.TokenManager) string {
	t.Helper()
	token, err := tokens.Generate(models.User{ID: uuid.New(), Email: "donor@example.com"})
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestProfileRoutesRequireAuth(t *testing.T) {
	ts, _ := newProfileTestServer(t)

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/profile/role", "not-a-jwt", map[string]any{"role": "prov"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSelectRoleRejectsMissingRole(t *testing.T) {
	ts, tokens := newProfileTestServer(t)
	token := bearerToken(t, tokens)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/profile/role", token, map[string]any{})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "role is required", env.Message)
}

func TestSelectVolunteerRole(t *testing.T) {
	ts, tokens := newProfileTestServer(t)
	token := bearerToken(t, tokens)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/profile/role", token, map[string]any{"role": "vol"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.Equal(t, "vol", env.Data["role"])
	assert.Equal(t, "individual", env.Data["persisted_role"])
	assert.Equal(t, true, env.Data["volunteer"])
	assert.Equal(t, true, env.Data["volunteer_synced"])
}

func TestCompleteThenViewProfile(t *testing.T) {
	ts, tokens := newProfileTestServer(t)
	token := bearerToken(t, tokens)

	fields := map[string]any{"role": "prov", "phone": "0123456789", "business_name": "Corner Bakery"}

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/profile/complete", token, fields)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The first call only created the row; the second persists the
	// free-form fields now that the allowlist derives from the row.
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/profile/complete", token, fields)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "prov", env.Data["role"])
	assert.Equal(t, true, env.Data["completed"])

	resp, env = doJSON(t, http.MethodGet, ts.URL+"/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	attrs, ok := env.Data["attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0123456789", attrs["phone"])
	assert.Equal(t, "Corner Bakery", attrs["business_name"])
	assert.NotContains(t, attrs, "user_id")
}

func TestViewWithoutProfileIs404(t *testing.T) {
	ts, tokens := newProfileTestServer(t)
	token := bearerToken(t, tokens)

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/profile", token, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "profile not found", env.Message)
}
