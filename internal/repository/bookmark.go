package repository

import (
	"context"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type bookmarkRepository struct {
	db *sqlx.DB
}

// bookmarkRow is one row of the bookmarks/cities join
type bookmarkRow struct {
	BookmarkID     int    `db:"bookmark_id"`
	BookmarkUserID int    `db:"bookmark_user_id"`
	BookmarkInsee  string `db:"bookmark_insee"`
	model.City
}

func (r *bookmarkRepository) ListBookmarks(ctx context.Context, userID int) ([]model.BookmarkedCity, error) {
	q := r.db.Rebind(`SELECT b.id AS bookmark_id, b.user_id AS bookmark_user_id, b.insee_code AS bookmark_insee, ` +
		cityColumns + `
		FROM bookmarks b
		JOIN cities ON cities.code_insee = b.insee_code
		WHERE b.user_id = ?
		ORDER BY b.id`)

	var rows []bookmarkRow
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}

	result := make([]model.BookmarkedCity, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.BookmarkedCity{
			Bookmark: model.Bookmark{ID: row.BookmarkID, UserID: row.BookmarkUserID, InseeCode: row.BookmarkInsee},
			City:     row.City,
		})
	}
	return result, nil
}

// AddBookmark is idempotent
func (r *bookmarkRepository) AddBookmark(ctx context.Context, userID int, code string) error {
	q := r.db.Rebind(`INSERT INTO bookmarks (user_id, insee_code) VALUES (?, ?)
		ON CONFLICT (user_id, insee_code) DO NOTHING`)
	_, err := r.db.ExecContext(ctx, q, userID, code)
	return err
}

func (r *bookmarkRepository) DeleteBookmark(ctx context.Context, userID int, code string) (bool, error) {
	q := r.db.Rebind("DELETE FROM bookmarks WHERE user_id = ? AND insee_code = ?")
	res, err := r.db.ExecContext(ctx, q, userID, code)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *bookmarkRepository) HasBookmark(ctx context.Context, userID int, code string) (bool, error) {
	var exists bool
	q := r.db.Rebind("SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = ? AND insee_code = ?)")
	if err := r.db.GetContext(ctx, &exists, q, userID, code); err != nil {
		return false, err
	}
	return exists, nil
}
