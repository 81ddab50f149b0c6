package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/triplane/triplane-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// NormalizeEmail lowercases and trims an email address. All lookups and
// writes go through this so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateParams is the draft for a new account row.
type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsVerified   bool
	OTPCode      *string
	OTPExpiresAt *time.Time
	SocialID     *string
	ProfilePhoto *string
}

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, params CreateParams) (*User, error) {
	role := params.Role
	if role == "" {
		role = RoleUser
	}

	dbUser := &database.User{
		Name:         strings.TrimSpace(params.Name),
		Email:        NormalizeEmail(params.Email),
		PasswordHash: params.PasswordHash,
		Role:         role,
		IsVerified:   params.IsVerified,
		OTPCode:      params.OTPCode,
		OTPExpiresAt: params.OTPExpiresAt,
		SocialID:     params.SocialID,
		ProfilePhoto: params.ProfilePhoto,

		Location:          "Global Nomad",
		TravelerClass:     "Economy",
		SeatPreference:    "Window",
		MealPreference:    "Standard",
		PassportExpiry:    "Not Provided",
		SavedDestinations: []uuid.UUID{},
		MembershipPoints:  1250,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", NormalizeEmail(email)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// ReplaceOTP overwrites the pending verification code in a single update.
// The previous code becomes unusable the moment this commits.
func (r *Repository) ReplaceOTP(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("otp_code = ?", code).
		Set("otp_expires_at = ?", expiresAt).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Where("is_verified = ?", false).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to replace otp: %w", err)
	}

	return requireRowsAffected(result)
}

// MarkVerified flips the account to verified and clears both otp columns.
func (r *Repository) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_verified = ?", true).
		Set("otp_code = ?", nil).
		Set("otp_expires_at = ?", nil).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark user as verified: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdateProfile persists the editable profile fields of an account.
func (r *Repository) UpdateProfile(ctx context.Context, u *User) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("name = ?", u.Name).
		Set("email = ?", NormalizeEmail(u.Email)).
		Set("profile_photo = ?", u.ProfilePhoto).
		Set("location = ?", u.Location).
		Set("traveler_class = ?", u.TravelerClass).
		Set("seat_preference = ?", u.SeatPreference).
		Set("meal_preference = ?", u.MealPreference).
		Set("passport_expiry = ?", u.PassportExpiry).
		Set("updated_at = NOW()").
		Where("id = ?", u.ID).
		Exec(ctx)

	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return requireRowsAffected(result)
}

// SetSocialIdentity back-fills the external provider identity on an existing
// account. The social id is write-once; the photo is only set if absent.
func (r *Repository) SetSocialIdentity(ctx context.Context, userID uuid.UUID, socialID string, photo *string) error {
	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("social_id = COALESCE(social_id, ?)", socialID).
		Set("updated_at = NOW()").
		Where("id = ?", userID)

	if photo != nil {
		q = q.Set("profile_photo = COALESCE(profile_photo, ?)", *photo)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set social identity: %w", err)
	}

	return requireRowsAffected(result)
}

// ToggleSavedDestination adds the package to the user's saved set if absent
// and removes it if present, returning the resulting set.
func (r *Repository) ToggleSavedDestination(ctx context.Context, userID, packageID uuid.UUID) ([]uuid.UUID, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	saved := make([]uuid.UUID, 0, len(u.SavedDestinations)+1)
	found := false
	for _, id := range u.SavedDestinations {
		if id == packageID {
			found = true
			continue
		}
		saved = append(saved, id)
	}
	if !found {
		saved = append(saved, packageID)
	}

	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("saved_destinations = ?", pgdialect.Array(saved)).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to toggle saved destination: %w", err)
	}

	if err := requireRowsAffected(result); err != nil {
		return nil, err
	}

	return saved, nil
}

// AdminExists reports whether any admin account has been seeded.
func (r *Repository) AdminExists(ctx context.Context) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("role = ?", RoleAdmin).
		Count(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to check for admin: %w", err)
	}

	return count > 0, nil
}

func isDuplicateKeyError(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	saved := dbu.SavedDestinations
	if saved == nil {
		saved = []uuid.UUID{}
	}

	return &User{
		ID:                dbu.ID,
		Name:              dbu.Name,
		Email:             dbu.Email,
		PasswordHash:      dbu.PasswordHash,
		Role:              dbu.Role,
		ProfilePhoto:      dbu.ProfilePhoto,
		Location:          dbu.Location,
		TravelerClass:     dbu.TravelerClass,
		SeatPreference:    dbu.SeatPreference,
		MealPreference:    dbu.MealPreference,
		PassportExpiry:    dbu.PassportExpiry,
		SavedDestinations: saved,
		MembershipPoints:  dbu.MembershipPoints,
		IsVerified:        dbu.IsVerified,
		OTPCode:           dbu.OTPCode,
		OTPExpiresAt:      dbu.OTPExpiresAt,
		SocialID:          dbu.SocialID,
		CreatedAt:         dbu.CreatedAt,
		UpdatedAt:         dbu.UpdatedAt,
	}
}
