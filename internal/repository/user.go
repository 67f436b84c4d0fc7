package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *sqlx.DB
}

func (r *userRepository) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User
	q := r.db.Rebind("SELECT user_id, external_id, username, email FROM users WHERE external_id = ?")
	if err := r.db.GetContext(ctx, &u, q, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser is a get-or-create keyed on the external id. A username or email
// taken by another account yields ErrConflict.
func (r *userRepository) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	q := r.db.Rebind(`INSERT INTO users (external_id, username, email)
		VALUES (?, ?, ?)
		ON CONFLICT (external_id) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, q, user.ExternalID, user.Username, user.Email); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return r.GetUserByExternalID(ctx, user.ExternalID)
}

// UpdateUser applies the non-nil fields of update. Returns nil when the user does not exist.
func (r *userRepository) UpdateUser(ctx context.Context, externalID string, update model.UserUpdate) (*model.User, error) {
	q := r.db.Rebind(`UPDATE users
		SET username = COALESCE(?, username), email = COALESCE(?, email)
		WHERE external_id = ?`)
	res, err := r.db.ExecContext(ctx, q, update.Username, update.Email, externalID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.GetUserByExternalID(ctx, externalID)
}
