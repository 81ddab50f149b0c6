package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/triplane/triplane-api/internal/httputil"
	"github.com/triplane/triplane-api/internal/logging"
	"github.com/triplane/triplane-api/internal/trips"
	"github.com/triplane/triplane-api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service       *Service
	packages      PackageFinder
	rateLimiter   RateLimiter
	logger        *logging.Logger
	isDevelopment bool
	tokenDuration time.Duration
}

func NewHandler(service *Service, packages PackageFinder, rateLimiter RateLimiter, logger *logging.Logger, isDevelopment bool, tokenDuration time.Duration) *Handler {
	return &Handler{
		service:       service,
		packages:      packages,
		rateLimiter:   rateLimiter,
		logger:        logger,
		isDevelopment: isDevelopment,
		tokenDuration: tokenDuration,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents the registration response. OTP is echoed in
// development mode only.
type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	OTP     string `json:"otp,omitempty"`
}

// VerifyOTPRequest represents the OTP verification request body
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResendOTPRequest represents the OTP resend request body
type ResendOTPRequest struct {
	Email string `json:"email"`
}

// ResendOTPResponse represents the OTP resend response
type ResendOTPResponse struct {
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest represents the social login request body
type GoogleLoginRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	GoogleID string `json:"googleId"`
	Photo    string `json:"photo"`
}

// UserResponse is the outward account projection. It never carries the
// password hash or OTP internals.
type UserResponse struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Role              string      `json:"role"`
	ProfilePhoto      *string     `json:"profilePhoto"`
	Location          string      `json:"location"`
	TravelerClass     string      `json:"travelerClass"`
	SeatPreference    string      `json:"seatPreference"`
	MealPreference    string      `json:"mealPreference"`
	PassportExpiry    string      `json:"passportExpiry"`
	SavedDestinations []uuid.UUID `json:"savedDestinations"`
	MembershipPoints  int         `json:"membershipPoints"`
}

// AuthResponse pairs a session token with the account it belongs to
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ProfileResponse is the account projection with saved destinations resolved
// to full packages.
type ProfileResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Role              string          `json:"role"`
	ProfilePhoto      *string         `json:"profilePhoto"`
	Location          string          `json:"location"`
	TravelerClass     string          `json:"travelerClass"`
	SeatPreference    string          `json:"seatPreference"`
	MealPreference    string          `json:"mealPreference"`
	PassportExpiry    string          `json:"passportExpiry"`
	SavedDestinations []trips.Package `json:"savedDestinations"`
	MembershipPoints  int             `json:"membershipPoints"`
}

// UpdateProfileRequest represents the partial profile update body
type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
	ProfilePhoto    *string `json:"profilePhoto"`
	Location        *string `json:"location"`
	TravelerClass   *string `json:"travelerClass"`
	SeatPreference  *string `json:"seatPreference"`
	MealPreference  *string `json:"mealPreference"`
	PassportExpiry  *string `json:"passportExpiry"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		ProfilePhoto:      u.ProfilePhoto,
		Location:          u.Location,
		TravelerClass:     u.TravelerClass,
		SeatPreference:    u.SeatPreference,
		MealPreference:    u.MealPreference,
		PassportExpiry:    u.PassportExpiry,
		SavedDestinations: u.SavedDestinations,
		MembershipPoints:  u.MembershipPoints,
	}
}

// Register handles user registration
// @Summary      Register a new traveler
// @Description  Create an unverified account and email a 6-digit verification code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      429 {object} httputil.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "register")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for register", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "register"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	newUser, otp, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "user already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
		case errors.Is(err, ErrNameRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNameRequired, http.StatusBadRequest)
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmail):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user registered, verification pending", "user_id", newUser.ID)

	resp := RegisterResponse{
		Message: "Registration successful. Please verify your email with the OTP.",
		Email:   newUser.Email,
	}
	if h.isDevelopment {
		resp.OTP = otp
	}

	httputil.RespondJSON(w, resp, http.StatusCreated)
}

// VerifyOTP handles email verification
// @Summary      Verify account with OTP
// @Description  Consume the emailed 6-digit code; on success the account is verified and a session token is issued.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyOTPRequest true "Email and code"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Already verified or invalid/expired code"
// @Failure      404 {object} httputil.ErrorResponse "Unknown email"
// @Router       /auth/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if req.OTP == "" {
		httputil.RespondErrorWithCode(w, "otp is required", httputil.CodeOTPRequired, http.StatusBadRequest)
		return
	}

	result, err := h.service.VerifyOTP(r.Context(), req.Email, strings.TrimSpace(req.OTP))
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("otp verification failed: user not found")
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrAlreadyVerified):
			logger.Warn("otp verification failed: already verified")
			httputil.RespondErrorWithCode(w, "user is already verified", httputil.CodeAlreadyVerified, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidOrExpiredOTP):
			logger.Warn("otp verification failed: invalid or expired code")
			httputil.RespondErrorWithCode(w, "invalid or expired OTP", httputil.CodeInvalidOTP, http.StatusBadRequest)
		default:
			logger.Error("otp verification failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to verify OTP", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account verified", "user_id", result.User.ID)

	h.respondAuth(w, r, result)
}

// ResendOTP handles verification code resend
// @Summary      Resend verification code
// @Description  Replace the pending code with a fresh one and email it. The old code stops working immediately.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResendOTPRequest true "Email"
// @Success      200 {object} ResendOTPResponse
// @Failure      400 {object} httputil.ErrorResponse "Already verified"
// @Failure      404 {object} httputil.ErrorResponse "Unknown email"
// @Failure      429 {object} httputil.ErrorResponse
// @Router       /auth/resend-otp [post]
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "resend-otp")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for resend", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if onCooldown {
		logger.Warn("email on resend cooldown")
		httputil.RespondErrorWithCode(w, "please wait before requesting another code", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "resend-otp"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	otp, err := h.service.ResendOTP(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("otp resend failed: user not found")
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrAlreadyVerified):
			logger.Warn("otp resend failed: already verified")
			httputil.RespondErrorWithCode(w, "user is already verified", httputil.CodeAlreadyVerified, http.StatusBadRequest)
		default:
			logger.Error("otp resend failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to resend OTP", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	if err := h.rateLimiter.SetEmailCooldown(r.Context(), req.Email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	logger.Info("otp resent")

	resp := ResendOTPResponse{Message: "OTP resent successfully"}
	if h.isDevelopment {
		resp.OTP = otp
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}

// UnverifiedLoginResponse flags a correct-password login on an unverified
// account so clients can route to OTP entry.
type UnverifiedLoginResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	Unverified bool   `json:"unverified"`
	Email      string `json:"email"`
}

// Login handles user login
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials or unverified account"
// @Failure      429 {object} httputil.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "login")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for login", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "login"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		case errors.Is(err, ErrAccountUnverified):
			logger.Warn("login failed: account not verified")
			httputil.RespondJSON(w, UnverifiedLoginResponse{
				Error:      "account not verified, please verify your email",
				Code:       httputil.CodeAccountUnverified,
				Unverified: true,
				Email:      user.NormalizeEmail(req.Email),
			}, http.StatusUnauthorized)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in", "user_id", result.User.ID)

	h.respondAuth(w, r, result)
}

// GoogleLogin handles social login
// @Summary      Login or register with a Google identity
// @Description  Find-or-create by email; the external identity is already verified so the account skips OTP.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body GoogleLoginRequest true "Google profile"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /auth/google [post]
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	var photo *string
	if req.Photo != "" {
		photo = &req.Photo
	}

	result, err := h.service.SocialLogin(r.Context(), req.Name, req.Email, req.GoogleID, photo)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailRequired), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidCredentials):
			logger.Warn("social login failed: invalid request", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		default:
			logger.Error("social login failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("social login succeeded", "user_id", result.User.ID)

	h.respondAuth(w, r, result)
}

// Logout clears the session cookie for browser clients
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearAuthCookie(w)
	httputil.RespondJSON(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

// CheckAdmin reports whether an admin account has been provisioned
// @Summary      Check whether an admin exists
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]bool
// @Router       /auth/check-admin [get]
func (h *Handler) CheckAdmin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	exists, err := h.service.AdminExists(r.Context())
	if err != nil {
		logger.Error("failed to check for admin", "error", err.Error())
		httputil.RespondErrorWithCode(w, "server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]bool{"adminExists": exists}, http.StatusOK)
}

// GetProfile returns the authenticated account with saved destinations populated
// @Summary      Get the authenticated profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ProfileResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /auth/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	resp, err := h.profileResponse(r, u)
	if err != nil {
		logger.Error("failed to load profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}

// UpdateProfile applies partial edits to the authenticated account
// @Summary      Update the authenticated profile
// @Description  Partial update; changing the password requires the correct current password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Fields to change"
// @Success      200 {object} ProfileResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /auth/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), u.ID, UpdateProfileParams{
		Name:            req.Name,
		Email:           req.Email,
		ProfilePhoto:    req.ProfilePhoto,
		Location:        req.Location,
		TravelerClass:   req.TravelerClass,
		SeatPreference:  req.SeatPreference,
		MealPreference:  req.MealPreference,
		PassportExpiry:  req.PassportExpiry,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrCurrentPasswordRequired):
			httputil.RespondErrorWithCode(w, "current password is required", httputil.CodeCurrentPasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrWrongPassword):
			logger.Warn("profile update rejected: wrong current password")
			httputil.RespondErrorWithCode(w, "current password is incorrect", httputil.CodeWrongPassword, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmail):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		case errors.Is(err, user.ErrDuplicateEmail):
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
		default:
			logger.Error("profile update failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("profile updated", "user_id", updated.ID)

	resp, err := h.profileResponse(r, updated)
	if err != nil {
		logger.Error("failed to load profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}

// ToggleSavedDestination flips a package in the saved set
// @Summary      Save or unsave a destination
// @Description  Idempotent toggle: saving twice removes the package again.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Package ID"
// @Success      200 {object} map[string][]string
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /auth/saved-destinations/{id} [post]
func (h *Handler) ToggleSavedDestination(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	packageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid package id", httputil.CodePackageNotFound, http.StatusNotFound)
		return
	}

	saved, err := h.service.ToggleSavedDestination(r.Context(), u.ID, packageID)
	if err != nil {
		logger.Error("failed to toggle saved destination", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update saved destinations", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string][]uuid.UUID{"savedDestinations": saved}, http.StatusOK)
}

// respondAuth returns the token and projection, setting a cookie for browser
// clients instead of echoing the token.
func (h *Handler) respondAuth(w http.ResponseWriter, r *http.Request, result *AuthResult) {
	if ShouldUseCookies(r) {
		SetAuthCookie(w, result.Token, !h.isDevelopment, h.tokenDuration)
		httputil.RespondJSON(w, map[string]any{"user": newUserResponse(result.User)}, http.StatusOK)
		return
	}

	httputil.RespondJSON(w, AuthResponse{
		Token: result.Token,
		User:  newUserResponse(result.User),
	}, http.StatusOK)
}

func (h *Handler) profileResponse(r *http.Request, u *user.User) (*ProfileResponse, error) {
	saved, err := h.packages.GetByIDs(r.Context(), u.SavedDestinations)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		ProfilePhoto:      u.ProfilePhoto,
		Location:          u.Location,
		TravelerClass:     u.TravelerClass,
		SeatPreference:    u.SeatPreference,
		MealPreference:    u.MealPreference,
		PassportExpiry:    u.PassportExpiry,
		SavedDestinations: saved,
		MembershipPoints:  u.MembershipPoints,
	}, nil
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// RemoteAddr format is "IP:port", extract just the IP
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
