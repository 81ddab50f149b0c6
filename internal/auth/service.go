package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triplane/triplane-api/internal/logging"
	"github.com/triplane/triplane-api/internal/user"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidEmail     = errors.New("invalid email format")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountUnverified  = errors.New("account not verified, please verify your email")

	ErrAlreadyVerified     = errors.New("user is already verified")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired otp")

	ErrCurrentPasswordRequired = errors.New("current password is required")
	ErrWrongPassword           = errors.New("current password is incorrect")
)

const minPasswordLen = 6

// AuthResult is what every successful authentication path returns: a bearer
// token plus the account it belongs to.
type AuthResult struct {
	Token string
	User  *user.User
}

// Service handles authentication business logic
type Service struct {
	users         UserStore
	tokens        TokenService
	emails        EmailSender
	logger        *logging.Logger
	tokenDuration time.Duration
	otpTTL        time.Duration
}

func NewService(
	users UserStore,
	tokens TokenService,
	emails EmailSender,
	logger *logging.Logger,
	tokenDuration time.Duration,
	otpTTL time.Duration,
) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		emails:        emails,
		logger:        logger,
		tokenDuration: tokenDuration,
		otpTTL:        otpTTL,
	}
}

// Register creates a new unverified account with a pending verification code
// and dispatches the code by email. The returned code is echoed to the client
// in development mode only.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", ErrNameRequired
	}
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if password == "" {
		return nil, "", ErrPasswordRequired
	}
	if len(password) < minPasswordLen {
		return nil, "", ErrPasswordTooShort
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	otp, err := GenerateOTP()
	if err != nil {
		return nil, "", err
	}
	otpExpiresAt := time.Now().Add(s.otpTTL)

	// Role is pinned to user here; admin accounts only come from seeding.
	newUser, err := s.users.Create(ctx, user.CreateParams{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         user.RoleUser,
		IsVerified:   false,
		OTPCode:      &otp,
		OTPExpiresAt: &otpExpiresAt,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", user.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	// Delivery is best-effort: the account exists either way and the user
	// can fall back on resend.
	go func() {
		emailCtx := context.Background()
		if err := s.emails.SendVerificationCode(emailCtx, newUser.Email, newUser.Name, otp); err != nil {
			s.logger.Warn("failed to send verification email", "email", newUser.Email, "error", err)
		}
	}()

	return newUser, otp, nil
}

// VerifyOTP consumes a pending verification code. On success the account
// becomes verified exactly once, the code is cleared and a session token is
// issued.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if existing.IsVerified {
		return nil, ErrAlreadyVerified
	}

	if !existing.HasPendingOTP() || *existing.OTPCode != code || !time.Now().Before(*existing.OTPExpiresAt) {
		return nil, ErrInvalidOrExpiredOTP
	}

	if err := s.users.MarkVerified(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("failed to mark user as verified: %w", err)
	}

	existing.IsVerified = true
	existing.OTPCode = nil
	existing.OTPExpiresAt = nil

	return s.authResult(existing)
}

// ResendOTP replaces the pending code with a fresh independent draw and a
// fresh expiry, then re-dispatches the email. The previous code is dead as
// soon as the replace commits.
func (s *Service) ResendOTP(ctx context.Context, email string) (string, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.ErrNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if existing.IsVerified {
		return "", ErrAlreadyVerified
	}

	otp, err := GenerateOTP()
	if err != nil {
		return "", err
	}

	if err := s.users.ReplaceOTP(ctx, existing.ID, otp, time.Now().Add(s.otpTTL)); err != nil {
		return "", fmt.Errorf("failed to replace otp: %w", err)
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emails.SendNewCode(emailCtx, existing.Email, otp); err != nil {
			s.logger.Warn("failed to resend verification email", "email", existing.Email, "error", err)
		}
	}()

	return otp, nil
}

// Login authenticates with email and password. A wrong password is reported
// as generic invalid credentials regardless of verification state; an
// unverified account with the correct password gets the distinct unverified
// outcome so the client can route to OTP entry.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(existing.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !existing.IsVerified {
		return nil, ErrAccountUnverified
	}

	return s.authResult(existing)
}

// SocialLogin finds or creates an account for an externally proven identity.
// New accounts are verified at creation and never enter the OTP flow; an
// existing account gets the social id back-filled (write-once) and the photo
// only if it has none.
func (s *Service) SocialLogin(ctx context.Context, name, email, socialID string, photo *string) (*AuthResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if socialID == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if existing == nil {
		// No password was ever chosen for this account; store an unusable
		// placeholder so password login stays impossible.
		placeholder, err := GeneratePlaceholderPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to generate placeholder password: %w", err)
		}

		existing, err = s.users.Create(ctx, user.CreateParams{
			Name:         name,
			Email:        email,
			PasswordHash: placeholder,
			Role:         user.RoleUser,
			IsVerified:   true,
			SocialID:     &socialID,
			ProfilePhoto: photo,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		if err := s.users.SetSocialIdentity(ctx, existing.ID, socialID, photo); err != nil {
			return nil, fmt.Errorf("failed to set social identity: %w", err)
		}
		if existing.SocialID == nil {
			existing.SocialID = &socialID
		}
		if existing.ProfilePhoto == nil {
			existing.ProfilePhoto = photo
		}
	}

	return s.authResult(existing)
}

// GetProfile loads the account behind a verified token. A token whose
// account no longer exists fails with user.ErrNotFound.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfileParams carries the optional profile edits; nil means leave
// the field as is.
type UpdateProfileParams struct {
	Name            *string
	Email           *string
	ProfilePhoto    *string
	Location        *string
	TravelerClass   *string
	SeatPreference  *string
	MealPreference  *string
	PassportExpiry  *string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile applies partial edits to the account. A password change
// requires proof of the current password.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*user.User, error) {
	existing, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.NewPassword != "" {
		if params.CurrentPassword == "" {
			return nil, ErrCurrentPasswordRequired
		}
		if !VerifyPassword(existing.PasswordHash, params.CurrentPassword) {
			return nil, ErrWrongPassword
		}
		if len(params.NewPassword) < minPasswordLen {
			return nil, ErrPasswordTooShort
		}

		passwordHash, err := HashPassword(params.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}
		existing.PasswordHash = passwordHash
	}

	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		existing.Name = strings.TrimSpace(*params.Name)
	}
	if params.Email != nil && *params.Email != "" {
		if err := validateEmail(*params.Email); err != nil {
			return nil, err
		}
		existing.Email = user.NormalizeEmail(*params.Email)
	}
	if params.ProfilePhoto != nil && *params.ProfilePhoto != "" {
		existing.ProfilePhoto = params.ProfilePhoto
	}
	if params.Location != nil && *params.Location != "" {
		existing.Location = *params.Location
	}
	if params.TravelerClass != nil && *params.TravelerClass != "" {
		existing.TravelerClass = *params.TravelerClass
	}
	if params.SeatPreference != nil && *params.SeatPreference != "" {
		existing.SeatPreference = *params.SeatPreference
	}
	if params.MealPreference != nil && *params.MealPreference != "" {
		existing.MealPreference = *params.MealPreference
	}
	if params.PassportExpiry != nil && *params.PassportExpiry != "" {
		existing.PassportExpiry = *params.PassportExpiry
	}

	if err := s.users.UpdateProfile(ctx, existing); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return existing, nil
}

// ToggleSavedDestination flips the package's membership in the account's
// saved set and returns the resulting set.
func (s *Service) ToggleSavedDestination(ctx context.Context, userID, packageID uuid.UUID) ([]uuid.UUID, error) {
	return s.users.ToggleSavedDestination(ctx, userID, packageID)
}

// AdminExists reports whether an admin account has been provisioned.
func (s *Service) AdminExists(ctx context.Context) (bool, error) {
	return s.users.AdminExists(ctx)
}

func (s *Service) authResult(u *user.User) (*AuthResult, error) {
	token, err := s.tokens.CreateToken(u.ID, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
