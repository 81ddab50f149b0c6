package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triplane/triplane-api/internal/httputil"
	"github.com/triplane/triplane-api/internal/user"
)

func newTestMiddleware(t *testing.T) (*Middleware, *fakeUserStore, *PasetoService) {
	t.Helper()

	store := newFakeUserStore()
	tokens, err := NewPasetoService(bytes.Repeat([]byte("k"), 32))
	require.NoError(t, err)
	return NewMiddleware(tokens, store), store, tokens
}

func seedUser(store *fakeUserStore, role string) *user.User {
	u := &user.User{
		ID:         uuid.New(),
		Name:       "Alice",
		Email:      "alice@x.com",
		Role:       role,
		IsVerified: true,
	}
	store.put(u)
	return u
}

// okHandler records the user the middleware resolved from the token.
func okHandler(got **user.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := GetUserFromContext(r.Context()); ok {
			*got = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Code
}

func TestRequireAuthBearerToken(t *testing.T) {
	m, store, tokens := newTestMiddleware(t)
	u := seedUser(store, user.RoleUser)

	token, err := tokens.CreateToken(u.ID, time.Hour)
	require.NoError(t, err)

	var got *user.User
	handler := m.RequireAuth(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
}

func TestRequireAuthCookieFallback(t *testing.T) {
	m, store, tokens := newTestMiddleware(t)
	u := seedUser(store, user.RoleUser)

	token, err := tokens.CreateToken(u.ID, time.Hour)
	require.NoError(t, err)

	var got *user.User
	handler := m.RequireAuth(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
}

func TestRequireAuthRejections(t *testing.T) {
	m, store, tokens := newTestMiddleware(t)
	u := seedUser(store, user.RoleUser)

	expired, err := tokens.CreateToken(u.ID, -time.Minute)
	require.NoError(t, err)

	ghostID := uuid.New()
	ghostToken, err := tokens.CreateToken(ghostID, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"no credentials", "", httputil.CodeMissingAuth},
		{"malformed header", "Token abc", httputil.CodeInvalidAuthHeader},
		{"garbage token", "Bearer not-a-token", httputil.CodeInvalidToken},
		{"expired token", "Bearer " + expired, httputil.CodeTokenExpired},
		// A token that decodes fine but points at a deleted account must
		// still be rejected.
		{"account gone", "Bearer " + ghostToken, httputil.CodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *user.User
			handler := m.RequireAuth(okHandler(&got))

			req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
			assert.Nil(t, got)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	m, store, tokens := newTestMiddleware(t)

	regular := seedUser(store, user.RoleUser)
	admin := &user.User{ID: uuid.New(), Name: "Admin", Email: "admin@x.com", Role: user.RoleAdmin, IsVerified: true}
	store.put(admin)

	handler := m.RequireAuth(m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("regular user is forbidden", func(t *testing.T) {
		token, err := tokens.CreateToken(regular.ID, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/packages", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, httputil.CodeForbidden, errorCode(t, rec))
	})

	t.Run("admin passes", func(t *testing.T) {
		token, err := tokens.CreateToken(admin.ID, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/packages", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
