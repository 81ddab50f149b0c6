package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triplane/triplane-api/internal/httputil"
	"github.com/triplane/triplane-api/internal/logging"
	"github.com/triplane/triplane-api/internal/trips"
	"github.com/triplane/triplane-api/internal/user"
)

type handlerFixture struct {
	handler *Handler
	service *Service
	store   *fakeUserStore
	limiter *fakeRateLimiter
	finder  *fakePackageFinder
}

func newTestHandler(t *testing.T, isDevelopment bool) *handlerFixture {
	t.Helper()

	store := newFakeUserStore()
	tokens, err := NewPasetoService(bytes.Repeat([]byte("k"), 32))
	require.NoError(t, err)

	logger := logging.NewLogger(true)
	svc := NewService(store, tokens, &fakeEmailSender{}, logger, 30*24*time.Hour, 10*time.Minute)
	limiter := &fakeRateLimiter{}
	finder := &fakePackageFinder{catalog: make(map[uuid.UUID]trips.Package)}

	return &handlerFixture{
		handler: NewHandler(svc, finder, limiter, logger, isDevelopment, 30*24*time.Hour),
		service: svc,
		store:   store,
		limiter: limiter,
		finder:  finder,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	f := newTestHandler(t, true)

	rec := postJSON(t, f.handler.Register, "/auth/register", RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@X.com",
		Password: "secret123",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeBody[RegisterResponse](t, rec)
	assert.Equal(t, "alice@x.com", resp.Email)
	// Development mode echoes the code so local clients can skip the inbox.
	assert.Regexp(t, otpPattern, resp.OTP)

	t.Run("duplicate email", func(t *testing.T) {
		rec := postJSON(t, f.handler.Register, "/auth/register", RegisterRequest{
			Name:     "Imposter",
			Email:    "alice@x.com",
			Password: "different1",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeEmailAlreadyExists, errorCode(t, rec))
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		f.handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeInvalidRequestBody, errorCode(t, rec))
	})

	t.Run("short password", func(t *testing.T) {
		rec := postJSON(t, f.handler.Register, "/auth/register", RegisterRequest{
			Name:     "Bob",
			Email:    "bob@x.com",
			Password: "123",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodePasswordTooShort, errorCode(t, rec))
	})
}

func TestRegisterEndpointHidesOTPInProduction(t *testing.T) {
	f := newTestHandler(t, false)

	rec := postJSON(t, f.handler.Register, "/auth/register", RegisterRequest{
		Name:     "Alice",
		Email:    "alice@x.com",
		Password: "secret123",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[RegisterResponse](t, rec)
	assert.Empty(t, resp.OTP)
}

func TestRegisterEndpointRateLimited(t *testing.T) {
	f := newTestHandler(t, true)
	f.limiter.ipLimited = true

	rec := postJSON(t, f.handler.Register, "/auth/register", RegisterRequest{
		Name:     "Alice",
		Email:    "alice@x.com",
		Password: "secret123",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, httputil.CodeTooManyRequests, errorCode(t, rec))
}

func TestVerifyOTPEndpoint(t *testing.T) {
	f := newTestHandler(t, true)

	_, otp, err := f.service.Register(context.Background(), "Alice", "alice@x.com", "secret123")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		rec := postJSON(t, f.handler.VerifyOTP, "/auth/verify-otp", VerifyOTPRequest{Email: "nobody@x.com", OTP: otp})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, httputil.CodeUserNotFound, errorCode(t, rec))
	})

	t.Run("missing otp", func(t *testing.T) {
		rec := postJSON(t, f.handler.VerifyOTP, "/auth/verify-otp", VerifyOTPRequest{Email: "alice@x.com"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeOTPRequired, errorCode(t, rec))
	})

	t.Run("wrong code", func(t *testing.T) {
		rec := postJSON(t, f.handler.VerifyOTP, "/auth/verify-otp", VerifyOTPRequest{Email: "alice@x.com", OTP: "000000"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeInvalidOTP, errorCode(t, rec))
	})

	t.Run("correct code issues a session", func(t *testing.T) {
		rec := postJSON(t, f.handler.VerifyOTP, "/auth/verify-otp", VerifyOTPRequest{Email: "alice@x.com", OTP: " " + otp + " "})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[AuthResponse](t, rec)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice@x.com", resp.User.Email)
	})

	t.Run("already verified", func(t *testing.T) {
		rec := postJSON(t, f.handler.VerifyOTP, "/auth/verify-otp", VerifyOTPRequest{Email: "alice@x.com", OTP: otp})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeAlreadyVerified, errorCode(t, rec))
	})
}

func TestLoginEndpoint(t *testing.T) {
	f := newTestHandler(t, true)

	_, otp, err := f.service.Register(context.Background(), "Bob", "bob@x.com", "secret123")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		rec := postJSON(t, f.handler.Login, "/auth/login", LoginRequest{Email: "bob@x.com", Password: "wrongpass"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httputil.CodeInvalidCredentials, errorCode(t, rec))
	})

	// Correct password on an unverified account returns the unverified flag
	// so the client can route straight to OTP entry.
	t.Run("unverified flag", func(t *testing.T) {
		rec := postJSON(t, f.handler.Login, "/auth/login", LoginRequest{Email: "Bob@X.com", Password: "secret123"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		resp := decodeBody[UnverifiedLoginResponse](t, rec)
		assert.True(t, resp.Unverified)
		assert.Equal(t, httputil.CodeAccountUnverified, resp.Code)
		assert.Equal(t, "bob@x.com", resp.Email)
	})

	_, err = f.service.VerifyOTP(context.Background(), "bob@x.com", otp)
	require.NoError(t, err)

	t.Run("verified login returns token", func(t *testing.T) {
		rec := postJSON(t, f.handler.Login, "/auth/login", LoginRequest{Email: "bob@x.com", Password: "secret123"})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[AuthResponse](t, rec)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "bob@x.com", resp.User.Email)
	})

	t.Run("cookie mode keeps token out of the body", func(t *testing.T) {
		rec := postJSON(t, f.handler.Login, "/auth/login",
			LoginRequest{Email: "bob@x.com", Password: "secret123"},
			func(r *http.Request) { r.Header.Set("X-Use-Cookies", "true") },
		)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[map[string]json.RawMessage](t, rec)
		assert.Contains(t, body, "user")
		assert.NotContains(t, body, "token")

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "triplane_token", cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})
}

func TestResendOTPEndpoint(t *testing.T) {
	f := newTestHandler(t, true)

	_, _, err := f.service.Register(context.Background(), "Alice", "alice@x.com", "secret123")
	require.NoError(t, err)

	t.Run("resend sets the cooldown", func(t *testing.T) {
		rec := postJSON(t, f.handler.ResendOTP, "/auth/resend-otp", ResendOTPRequest{Email: "alice@x.com"})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[ResendOTPResponse](t, rec)
		assert.Regexp(t, otpPattern, resp.OTP)
		assert.Contains(t, f.limiter.cooldownsSet, "alice@x.com")
	})

	t.Run("cooldown active", func(t *testing.T) {
		f.limiter.onCooldown = true
		defer func() { f.limiter.onCooldown = false }()

		rec := postJSON(t, f.handler.ResendOTP, "/auth/resend-otp", ResendOTPRequest{Email: "alice@x.com"})
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, httputil.CodeCooldownActive, errorCode(t, rec))
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := postJSON(t, f.handler.ResendOTP, "/auth/resend-otp", ResendOTPRequest{Email: "nobody@x.com"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, httputil.CodeUserNotFound, errorCode(t, rec))
	})
}

func TestCheckAdminEndpoint(t *testing.T) {
	f := newTestHandler(t, true)

	req := httptest.NewRequest(http.MethodGet, "/auth/check-admin", nil)
	rec := httptest.NewRecorder()
	f.handler.CheckAdmin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[map[string]bool](t, rec)["adminExists"])

	f.store.put(&user.User{ID: uuid.New(), Name: "Admin", Email: "admin@x.com", Role: user.RoleAdmin})

	rec = httptest.NewRecorder()
	f.handler.CheckAdmin(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[map[string]bool](t, rec)["adminExists"])
}

func withAuthenticatedUser(u *user.User) func(*http.Request) {
	return func(r *http.Request) {
		*r = *r.WithContext(context.WithValue(r.Context(), UserContextKey, u))
	}
}

func TestGetProfileEndpoint(t *testing.T) {
	f := newTestHandler(t, true)

	pkg := trips.Package{ID: uuid.New(), Title: "Fabulous Rome", Location: "Rome, Italy"}
	f.finder.catalog[pkg.ID] = pkg

	u := &user.User{
		ID:                uuid.New(),
		Name:              "Alice",
		Email:             "alice@x.com",
		Role:              user.RoleUser,
		IsVerified:        true,
		SavedDestinations: []uuid.UUID{pkg.ID},
		MembershipPoints:  1250,
	}
	f.store.put(u)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	withAuthenticatedUser(u)(req)
	rec := httptest.NewRecorder()
	f.handler.GetProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[ProfileResponse](t, rec)
	assert.Equal(t, u.ID, resp.ID)
	require.Len(t, resp.SavedDestinations, 1)
	assert.Equal(t, "Fabulous Rome", resp.SavedDestinations[0].Title)
}

func TestUpdateProfileEndpointWrongPassword(t *testing.T) {
	f := newTestHandler(t, true)

	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	u := &user.User{ID: uuid.New(), Name: "Alice", Email: "alice@x.com", PasswordHash: hash, Role: user.RoleUser, IsVerified: true}
	f.store.put(u)

	rec := postJSON(t, f.handler.UpdateProfile, "/auth/profile", UpdateProfileRequest{
		CurrentPassword: "wrongpass",
		NewPassword:     "newsecret1",
	}, withAuthenticatedUser(u))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeWrongPassword, errorCode(t, rec))
}

func TestToggleSavedDestinationEndpoint(t *testing.T) {
	f := newTestHandler(t, true)

	u := &user.User{ID: uuid.New(), Name: "Alice", Email: "alice@x.com", Role: user.RoleUser, IsVerified: true, SavedDestinations: []uuid.UUID{}}
	f.store.put(u)

	r := chi.NewRouter()
	r.Post("/auth/saved-destinations/{id}", func(w http.ResponseWriter, req *http.Request) {
		withAuthenticatedUser(u)(req)
		f.handler.ToggleSavedDestination(w, req)
	})

	packageID := uuid.New()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/saved-destinations/"+packageID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uuid.UUID{packageID}, decodeBody[map[string][]uuid.UUID](t, rec)["savedDestinations"])

	// The toggle is its own inverse.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/saved-destinations/"+packageID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[map[string][]uuid.UUID](t, rec)["savedDestinations"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/saved-destinations/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
