package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/triplane/triplane-api/internal/auth"
	"github.com/triplane/triplane-api/internal/config"
	"github.com/triplane/triplane-api/internal/database"
	"github.com/triplane/triplane-api/internal/trips"
	"github.com/triplane/triplane-api/internal/user"
)

// Seeds the database: ensures the schema exists, provisions the default
// admin account if none exists yet (the only path that ever assigns the
// admin role), and loads the sample catalog.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Seed error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db := database.NewBunDB(sqlDB)
	ctx := context.Background()

	// Ensure schema
	for _, model := range []any{(*database.User)(nil), (*database.TravelPackage)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	userRepo := user.NewRepository(db)
	tripsRepo := trips.NewRepository(db)

	// Only create the admin if it doesn't exist
	adminExists, err := userRepo.AdminExists(ctx)
	if err != nil {
		return err
	}
	if !adminExists {
		adminEmail := getEnv("ADMIN_EMAIL", "admin@triplane.io")
		adminPassword := getEnv("ADMIN_PASSWORD", "admin@123")

		passwordHash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		if _, err := userRepo.Create(ctx, user.CreateParams{
			Name:         "Admin User",
			Email:        adminEmail,
			PasswordHash: passwordHash,
			Role:         user.RoleAdmin,
			IsVerified:   true,
		}); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		log.Printf("Default admin user created: %s", adminEmail)
	}

	// Reset the catalog
	if _, err := db.NewDelete().Model((*database.TravelPackage)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear packages: %w", err)
	}

	for _, p := range samplePackages {
		if _, err := tripsRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to create package %q: %w", p.Title, err)
		}
	}
	log.Printf("%d packages created successfully", len(samplePackages))

	return nil
}

var samplePackages = []trips.CreateParams{
	{
		Title:        "Fabulous Rome",
		Location:     "Rome, Italy",
		Continent:    "Europe",
		Price:        320,
		Description:  "Colosseum, Pantheon, and Vatican are waiting for you! We will see the most beautiful places in Rome, admire sunsets from the viewing platforms, and experience the rich history of the Eternal City.",
		Image:        "https://images.unsplash.com/photo-1552832230-c0197dd311b5?q=80&w=2070&auto=format&fit=crop",
		Duration:     "5 days",
		MaxGroupSize: 15,
		Difficulty:   "easy",
		Featured:     true,
	},
	{
		Title:        "Discover Kyiv",
		Location:     "Kyiv, Ukraine",
		Continent:    "Europe",
		Price:        220,
		Description:  "We will see the most beautiful cities of Ukraine, national parks, and spend wonderful 10 days among very friendly people. Experience the rich culture and history.",
		Image:        "https://images.unsplash.com/photo-1518837695005-2083093ee35b?q=80&w=2070&auto=format&fit=crop",
		Duration:     "10 days",
		MaxGroupSize: 12,
		Difficulty:   "easy",
		Featured:     true,
	},
	{
		Title:        "Venice and Florence",
		Location:     "Venice, Italy",
		Continent:    "Europe",
		Price:        175,
		Description:  "On this trip, we will see two incredibly beautiful cities in Italy - Venice and Florence. We will have a gondola ride, a walk along the Golden Bridge, and explore Renaissance art.",
		Image:        "https://images.unsplash.com/photo-1523906834658-6e24ef2386f9?q=80&w=2070&auto=format&fit=crop",
		Duration:     "5 days",
		MaxGroupSize: 10,
		Difficulty:   "easy",
		Featured:     true,
	},
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
