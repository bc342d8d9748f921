package favoriterepo

import (
	"context"
	"database/sql"

	"github.com/waan1232/campus-share-app-sub000/model"
)

type Repo interface {
	// Toggle flips membership and reports whether the item is now a favorite.
	Toggle(ctx context.Context, userID, itemID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Favorite, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Toggle(ctx context.Context, userID, itemID int64) (nowFavorite bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id=$1 AND item_id=$2`, userID, itemID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO favorites (user_id, item_id) VALUES ($1,$2)`, userID, itemID); err != nil {
			return false, err
		}
		nowFavorite = true
	}
	return nowFavorite, tx.Commit()
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Favorite, error) {
	const q = `
		SELECT user_id, item_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Favorite
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.UserID, &f.ItemID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
