package trips

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/triplane/triplane-api/internal/database"
)

var ErrNotFound = errors.New("package not found")

// Repository handles travel package persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns all packages, featured first, newest within that.
func (r *Repository) List(ctx context.Context) ([]Package, error) {
	var dbPackages []database.TravelPackage
	err := r.db.NewSelect().
		Model(&dbPackages).
		Order("featured DESC").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	packages := make([]Package, 0, len(dbPackages))
	for i := range dbPackages {
		packages = append(packages, *mapDBPackageToModel(&dbPackages[i]))
	}
	return packages, nil
}

// GetByID retrieves a single package
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Package, error) {
	dbPackage := new(database.TravelPackage)
	err := r.db.NewSelect().
		Model(dbPackage).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	return mapDBPackageToModel(dbPackage), nil
}

// GetByIDs resolves a set of package ids, used to populate a profile's saved
// destinations. Missing ids are silently dropped.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Package, error) {
	if len(ids) == 0 {
		return []Package{}, nil
	}

	var dbPackages []database.TravelPackage
	err := r.db.NewSelect().
		Model(&dbPackages).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get packages by ids: %w", err)
	}

	packages := make([]Package, 0, len(dbPackages))
	for i := range dbPackages {
		packages = append(packages, *mapDBPackageToModel(&dbPackages[i]))
	}
	return packages, nil
}

// CreateParams is the draft for a new package.
type CreateParams struct {
	Title        string
	Location     string
	Continent    string
	Price        float64
	Description  string
	Image        string
	Duration     string
	MaxGroupSize int
	Difficulty   string
	Featured     bool
}

// Create inserts a new package
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Package, error) {
	maxGroupSize := params.MaxGroupSize
	if maxGroupSize == 0 {
		maxGroupSize = 10
	}
	difficulty := params.Difficulty
	if difficulty == "" {
		difficulty = "easy"
	}

	dbPackage := &database.TravelPackage{
		Title:        params.Title,
		Location:     params.Location,
		Continent:    params.Continent,
		Price:        params.Price,
		Description:  params.Description,
		Image:        params.Image,
		Duration:     params.Duration,
		MaxGroupSize: maxGroupSize,
		Difficulty:   difficulty,
		Featured:     params.Featured,
	}

	_, err := r.db.NewInsert().
		Model(dbPackage).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	return mapDBPackageToModel(dbPackage), nil
}

// Update overwrites the editable fields of a package
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params CreateParams) (*Package, error) {
	result, err := r.db.NewUpdate().
		Model((*database.TravelPackage)(nil)).
		Set("title = ?", params.Title).
		Set("location = ?", params.Location).
		Set("continent = ?", params.Continent).
		Set("price = ?", params.Price).
		Set("description = ?", params.Description).
		Set("image = ?", params.Image).
		Set("duration = ?", params.Duration).
		Set("max_group_size = ?", params.MaxGroupSize).
		Set("difficulty = ?", params.Difficulty).
		Set("featured = ?", params.Featured).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update package: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes a package
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.TravelPackage)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func mapDBPackageToModel(dbp *database.TravelPackage) *Package {
	return &Package{
		ID:           dbp.ID,
		Title:        dbp.Title,
		Location:     dbp.Location,
		Continent:    dbp.Continent,
		Price:        dbp.Price,
		Description:  dbp.Description,
		Image:        dbp.Image,
		Duration:     dbp.Duration,
		MaxGroupSize: dbp.MaxGroupSize,
		Difficulty:   dbp.Difficulty,
		Featured:     dbp.Featured,
		CreatedAt:    dbp.CreatedAt,
		UpdatedAt:    dbp.UpdatedAt,
	}
}
