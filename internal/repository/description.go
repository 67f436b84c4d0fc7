package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type descriptionRepository struct {
	db *sqlx.DB
}

func (r *descriptionRepository) GetDescription(ctx context.Context, code, lang string) (*model.Description, error) {
	var d model.Description
	q := r.db.Rebind(`SELECT id, insee_code, language, description, created_at
		FROM descriptions WHERE insee_code = ? AND language = ?`)
	if err := r.db.GetContext(ctx, &d, q, code, lang); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// InsertDescription stores text unless a row for (code, lang) already exists,
// and returns whichever row is stored. created is false when another writer won.
func (r *descriptionRepository) InsertDescription(ctx context.Context, code, lang, text string) (*model.Description, bool, error) {
	q := r.db.Rebind(`INSERT INTO descriptions (insee_code, language, description)
		VALUES (?, ?, ?)
		ON CONFLICT (insee_code, language) DO NOTHING`)
	res, err := r.db.ExecContext(ctx, q, code, lang, text)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	d, err := r.GetDescription(ctx, code, lang)
	if err != nil {
		return nil, false, err
	}
	if d == nil {
		// Deleted between the insert and the read.
		return nil, false, sql.ErrNoRows
	}
	return d, affected > 0, nil
}

func (r *descriptionRepository) DeleteDescription(ctx context.Context, code, lang string) (bool, error) {
	q := r.db.Rebind("DELETE FROM descriptions WHERE insee_code = ? AND language = ?")
	res, err := r.db.ExecContext(ctx, q, code, lang)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
