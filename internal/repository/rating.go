package repository

import (
	"context"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type ratingRepository struct {
	db *sqlx.DB
}

func (r *ratingRepository) GetRatingSummary(ctx context.Context, code string) (*model.RatingSummary, error) {
	var row struct {
		Average float64 `db:"average"`
		Count   int     `db:"count"`
	}
	q := r.db.Rebind(`SELECT CAST(COALESCE(AVG(rating), 0) AS DOUBLE PRECISION) AS average, COUNT(*) AS count
		FROM ratings WHERE insee_code = ?`)
	if err := r.db.GetContext(ctx, &row, q, code); err != nil {
		return nil, err
	}
	return &model.RatingSummary{InseeCode: code, Average: row.Average, Count: row.Count}, nil
}

// UpsertRating keeps one rating per (city, user); the latest score wins
func (r *ratingRepository) UpsertRating(ctx context.Context, rating model.Rating) error {
	q := r.db.Rebind(`INSERT INTO ratings (insee_code, user_id, rating) VALUES (?, ?, ?)
		ON CONFLICT (insee_code, user_id) DO UPDATE SET rating = excluded.rating`)
	_, err := r.db.ExecContext(ctx, q, rating.InseeCode, rating.UserID, rating.Rating)
	return err
}

// GetHeatmap averages ratings per located city
func (r *ratingRepository) GetHeatmap(ctx context.Context) ([]model.HeatmapPoint, error) {
	const q = `SELECT c.latitude_mairie AS lat, c.longitude_mairie AS lng,
			CAST(AVG(r.rating) AS DOUBLE PRECISION) AS weight
		FROM ratings r
		JOIN cities c ON c.code_insee = r.insee_code
		WHERE c.latitude_mairie IS NOT NULL AND c.longitude_mairie IS NOT NULL
		GROUP BY c.code_insee, c.latitude_mairie, c.longitude_mairie
		ORDER BY c.code_insee`
	points := []model.HeatmapPoint{}
	if err := r.db.SelectContext(ctx, &points, q); err != nil {
		return nil, err
	}
	return points, nil
}
