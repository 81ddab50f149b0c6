package trips

import (
	"time"

	"github.com/google/uuid"
)

// Package is a bookable travel package.
type Package struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Location     string    `json:"location"`
	Continent    string    `json:"continent,omitempty"`
	Price        float64   `json:"price"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	Duration     string    `json:"duration"`
	MaxGroupSize int       `json:"maxGroupSize"`
	Difficulty   string    `json:"difficulty"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
