package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles assignable to an account. Public registration always produces
// RoleUser; RoleAdmin only ever comes from seeding.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	PasswordHash      string      `json:"-"` // Never expose password hash in JSON
	Role              string      `json:"role"`
	ProfilePhoto      *string     `json:"profilePhoto"`
	Location          string      `json:"location"`
	TravelerClass     string      `json:"travelerClass"`
	SeatPreference    string      `json:"seatPreference"`
	MealPreference    string      `json:"mealPreference"`
	PassportExpiry    string      `json:"passportExpiry"`
	SavedDestinations []uuid.UUID `json:"savedDestinations"`
	MembershipPoints  int         `json:"membershipPoints"`
	IsVerified        bool        `json:"isVerified"`
	OTPCode           *string     `json:"-"`
	OTPExpiresAt      *time.Time  `json:"-"`
	SocialID          *string     `json:"-"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// HasPendingOTP reports whether a verification cycle is outstanding.
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPExpiresAt != nil
}
