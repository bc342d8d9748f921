// repository/withdrawal/withdrawalRepository.go
package withdrawalrepo

import (
	"context"
	"database/sql"

	"github.com/waan1232/campus-share-app-sub000/model"
)

type Repo interface {
	Insert(ctx context.Context, w *model.Withdrawal) error
	ListByUser(ctx context.Context, userID int64) ([]model.Withdrawal, error)

	// Revenue is the lifetime earnings of an owner: price_per_day times the
	// day count of every approved or completed rental on their items.
	// Owner blocks never count (renter_id = owner_id).
	Revenue(ctx context.Context, ownerID int64) (int64, error)

	// WithdrawnTotal sums the user's pending and paid withdrawals.
	WithdrawnTotal(ctx context.Context, userID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, w *model.Withdrawal) error {
	const q = `
		INSERT INTO withdrawals (user_id, amount, method, details, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, w.UserID, w.Amount, w.Method, w.Details, w.Status).
		Scan(&w.ID, &w.CreatedAt)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Withdrawal, error) {
	const q = `
		SELECT id, user_id, amount, method, details, status, created_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Withdrawal
	for rows.Next() {
		var w model.Withdrawal
		if err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.Details, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *repo) Revenue(ctx context.Context, ownerID int64) (int64, error) {
	// GREATEST(1, ...) keeps the day count in step with rental.DayCount.
	const q = `
		SELECT COALESCE(SUM(i.price_per_day * GREATEST(1, r.end_date - r.start_date)), 0)::BIGINT
		FROM rentals r
		JOIN items i ON i.id = r.item_id
		WHERE i.owner_id = $1
		AND r.status IN ('approved', 'completed')
		AND r.renter_id <> i.owner_id`
	var total int64
	err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&total)
	return total, err
}

func (r *repo) WithdrawnTotal(ctx context.Context, userID int64) (int64, error) {
	const q = `
		SELECT COALESCE(SUM(amount), 0)::BIGINT
		FROM withdrawals
		WHERE user_id = $1
		AND status IN ('pending', 'paid')`
	var total int64
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&total)
	return total, err
}
