package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database row for an account. The otp columns are either both
// null or both set; a verification cycle is outstanding only while they are.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                uuid.UUID   `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name              string      `bun:"name,notnull"`
	Email             string      `bun:"email,notnull,unique"`
	PasswordHash      string      `bun:"password_hash,notnull"`
	Role              string      `bun:"role,notnull,default:'user'"`
	ProfilePhoto      *string     `bun:"profile_photo"`
	Location          string      `bun:"location,notnull,default:'Global Nomad'"`
	TravelerClass     string      `bun:"traveler_class,notnull,default:'Economy'"`
	SeatPreference    string      `bun:"seat_preference,notnull,default:'Window'"`
	MealPreference    string      `bun:"meal_preference,notnull,default:'Standard'"`
	PassportExpiry    string      `bun:"passport_expiry,notnull,default:'Not Provided'"`
	SavedDestinations []uuid.UUID `bun:"saved_destinations,array"`
	MembershipPoints  int         `bun:"membership_points,notnull,default:1250"`
	IsVerified        bool        `bun:"is_verified,notnull,default:false"`
	OTPCode           *string     `bun:"otp_code"`
	OTPExpiresAt      *time.Time  `bun:"otp_expires_at"`
	SocialID          *string     `bun:"social_id"`
	CreatedAt         time.Time   `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time   `bun:"updated_at,notnull,default:current_timestamp"`
}

// TravelPackage is the database row for a bookable travel package.
type TravelPackage struct {
	bun.BaseModel `bun:"table:packages,alias:p"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title        string    `bun:"title,notnull"`
	Location     string    `bun:"location,notnull"`
	Continent    string    `bun:"continent"`
	Price        float64   `bun:"price,notnull"`
	Description  string    `bun:"description"`
	Image        string    `bun:"image"`
	Duration     string    `bun:"duration"`
	MaxGroupSize int       `bun:"max_group_size,notnull,default:10"`
	Difficulty   string    `bun:"difficulty,notnull,default:'easy'"`
	Featured     bool      `bun:"featured,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
