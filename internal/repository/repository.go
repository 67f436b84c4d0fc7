package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// ErrConflict is returned when a write violates a uniqueness constraint
var ErrConflict = errors.New("unique constraint violation")

// CityRepository defines read operations over the communes reference table
type CityRepository interface {
	ListCities(ctx context.Context, filter model.CityFilter) ([]model.City, error)
	GetCityByCode(ctx context.Context, code string) (*model.City, error)
	FindNearestCity(ctx context.Context, lat, lng float64) (*model.City, error)
	SearchCities(ctx context.Context, input string, limit int) ([]model.City, error)
	RandomCity(ctx context.Context) (*model.City, error)
	GetFacets(ctx context.Context) (*model.Facets, error)
	BulkInsertCities(ctx context.Context, cities []model.City) error
}

// DescriptionRepository defines operations for cached descriptions
type DescriptionRepository interface {
	GetDescription(ctx context.Context, code, lang string) (*model.Description, error)
	InsertDescription(ctx context.Context, code, lang, text string) (*model.Description, bool, error)
	DeleteDescription(ctx context.Context, code, lang string) (bool, error)
}

// UserRepository defines operations for accounts
type UserRepository interface {
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	UpdateUser(ctx context.Context, externalID string, update model.UserUpdate) (*model.User, error)
}

// BookmarkRepository defines operations for saved cities
type BookmarkRepository interface {
	ListBookmarks(ctx context.Context, userID int) ([]model.BookmarkedCity, error)
	AddBookmark(ctx context.Context, userID int, code string) error
	DeleteBookmark(ctx context.Context, userID int, code string) (bool, error)
	HasBookmark(ctx context.Context, userID int, code string) (bool, error)
}

// RatingRepository defines operations for city ratings
type RatingRepository interface {
	GetRatingSummary(ctx context.Context, code string) (*model.RatingSummary, error)
	UpsertRating(ctx context.Context, rating model.Rating) error
	GetHeatmap(ctx context.Context) ([]model.HeatmapPoint, error)
}

// Container holds all repositories
type Container struct {
	City        CityRepository
	Description DescriptionRepository
	User        UserRepository
	Bookmark    BookmarkRepository
	Rating      RatingRepository
}

// NewRepositories creates repository implementations based on DB type.
// Only city queries differ per dialect; the rest is portable SQL rebound
// to the driver's placeholder style by sqlx.
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	c := &Container{
		Description: &descriptionRepository{db: db},
		User:        &userRepository{db: db},
		Bookmark:    &bookmarkRepository{db: db},
		Rating:      &ratingRepository{db: db},
	}

	if dbType == config.DBTypePostgreSQL {
		c.City = newCityRepository(db, postgresDialect{})
		return c
	}

	// Default to SQLite
	c.City = newCityRepository(db, sqliteDialect{})
	return c
}

// IsDatabaseEmpty reports whether the cities table has no rows. Callers seed
// only on (true, nil); a failed count is not an empty table.
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		return false, fmt.Errorf("failed to count cities: %w", err)
	}
	return count == 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
