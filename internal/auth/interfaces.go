package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/triplane/triplane-api/internal/trips"
	"github.com/triplane/triplane-api/internal/user"
)

// RateLimiter is the abuse-control seam used by the HTTP handlers,
// satisfied by ratelimit.Limiter.
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
	CheckEmailCooldown(ctx context.Context, email string) (bool, error)
	SetEmailCooldown(ctx context.Context, email string) error
}

// PackageFinder resolves saved destination ids to full packages for the
// profile projection.
type PackageFinder interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]trips.Package, error)
}

// TokenService defines the interface for token creation and validation.
type TokenService interface {
	CreateToken(userID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// EmailSender defines the interface for OTP email delivery. Delivery is
// best-effort: callers dispatch in a goroutine and log failures.
type EmailSender interface {
	SendVerificationCode(ctx context.Context, toEmail, name, code string) error
	SendNewCode(ctx context.Context, toEmail, code string) error
}

// UserStore is the slice of the credential store the auth service needs.
type UserStore interface {
	Create(ctx context.Context, params user.CreateParams) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ReplaceOTP(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, userID uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, u *user.User) error
	SetSocialIdentity(ctx context.Context, userID uuid.UUID, socialID string, photo *string) error
	ToggleSavedDestination(ctx context.Context, userID, packageID uuid.UUID) ([]uuid.UUID, error)
	AdminExists(ctx context.Context) (bool, error)
}
