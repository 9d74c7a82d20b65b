package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mealshare/mealshare-be/internal/auth"
	"github.com/mealshare/mealshare-be/internal/models"
	"github.com/mealshare/mealshare-be/internal/storage"
)

type memUserStore struct {
	byEmail map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: make(map[string]models.User)}
}

func (m *memUserStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	if _, exists := m.byEmail[user.Email]; exists {
		return models.User{}, storage.ErrAlreadyExists
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	m.byEmail[user.Email] = user
	return user, nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (m *memUserStore) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", "mealshare-test", time.Hour)
	r := chi.NewRouter()
	NewAuthHandler(newMemUserStore(), tokens, zap.NewNop()).Register(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newAuthTestServer(t)

	body := map[string]any{"email": "donor@example.com", "password": "sup3r-secret", "full_name": "Aina"}
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "donor@example.com", env.Data["email"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]any{
		"email": "donor@example.com", "password": "sup3r-secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := env.Data["token"].(string)
	assert.NotEmpty(t, strings.TrimSpace(token))
}

func TestRegisterValidation(t *testing.T) {
	ts := newAuthTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]any{
		"email": "not-an-email", "password": "sup3r-secret",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]any{
		"email": "donor@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newAuthTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]any{
		"email": "donor@example.com", "password": "sup3r-secret",
	})

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]any{
		"email": "donor@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]any{
		"email": "ghost@example.com", "password": "sup3r-secret",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
