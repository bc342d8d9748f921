// repository/rental/rentalRepository.go
package rentalrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/waan1232/campus-share-app-sub000/model"
)

// Tx is the slice of the repository available inside an item-locked
// transaction. The overlap check and the insert/update it guards must both
// happen through the same Tx.
type Tx interface {
	ListBlocking(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error)
	Insert(ctx context.Context, r *model.Rental) error
	GetForUpdate(ctx context.Context, rentalID int64) (rental *model.Rental, itemOwnerID int64, err error)
	UpdateStatus(ctx context.Context, rentalID int64, status model.RentalStatus) error
}

type Repo interface {
	// WithItemLock runs fn inside a transaction holding the per-item
	// advisory lock, so concurrent occupancy writes for one item serialize.
	WithItemLock(ctx context.Context, itemID int64, fn func(tx Tx) error) error

	ByID(ctx context.Context, id int64) (*model.Rental, error)
	ItemMeta(ctx context.Context, itemID int64) (ownerID, pricePerDay int64, isAvailable bool, err error)
	ListBlocking(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error)
	ListOutgoing(ctx context.Context, renterID int64) ([]model.RentalRow, error)
	ListIncoming(ctx context.Context, ownerID int64) ([]model.RentalRow, error)
	Delete(ctx context.Context, id int64) error
	MarkPaid(ctx context.Context, rentalID int64, at time.Time) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

type txRepo struct{ tx *sql.Tx }

func (r *repo) WithItemLock(ctx context.Context, itemID int64, fn func(tx Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Released automatically at commit/rollback.
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, itemID); err != nil {
		return err
	}
	if err = fn(&txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

const rentalCols = `id, item_id, renter_id, start_date, end_date, status, paid_at, created_at`

func scanRental(row interface{ Scan(...any) error }, r *model.Rental) error {
	return row.Scan(&r.ID, &r.ItemID, &r.RenterID, &r.StartDate, &r.EndDate, &r.Status, &r.PaidAt, &r.CreatedAt)
}

func listBlocking(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, itemID, excludeID int64) ([]model.Rental, error) {
	const query = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE item_id = $1
		AND status IN ('approved', 'unavailable_block')
		AND id <> $2`
	rows, err := q.QueryContext(ctx, query, itemID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		var r model.Rental
		if err := scanRental(rows, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *txRepo) ListBlocking(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error) {
	return listBlocking(ctx, t.tx, itemID, excludeID)
}

func (r *repo) ListBlocking(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error) {
	return listBlocking(ctx, r.db, itemID, excludeID)
}

func (t *txRepo) Insert(ctx context.Context, r *model.Rental) error {
	const q = `
		INSERT INTO rentals (item_id, renter_id, start_date, end_date, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`
	return t.tx.QueryRowContext(ctx, q, r.ItemID, r.RenterID, r.StartDate, r.EndDate, r.Status).
		Scan(&r.ID, &r.CreatedAt)
}

func (t *txRepo) GetForUpdate(ctx context.Context, rentalID int64) (*model.Rental, int64, error) {
	const q = `
		SELECT r.id, r.item_id, r.renter_id, r.start_date, r.end_date, r.status, r.paid_at, r.created_at,
			i.owner_id
		FROM rentals r
		JOIN items i ON i.id = r.item_id
		WHERE r.id = $1
		FOR UPDATE OF r`
	var rental model.Rental
	var ownerID int64
	err := t.tx.QueryRowContext(ctx, q, rentalID).Scan(
		&rental.ID, &rental.ItemID, &rental.RenterID, &rental.StartDate, &rental.EndDate,
		&rental.Status, &rental.PaidAt, &rental.CreatedAt, &ownerID)
	if err != nil {
		return nil, 0, err
	}
	return &rental, ownerID, nil
}

func (t *txRepo) UpdateStatus(ctx context.Context, rentalID int64, status model.RentalStatus) error {
	const q = `
		UPDATE rentals
		SET status = $2
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, rentalID, status)
	return err
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE id = $1`
	var rental model.Rental
	if err := scanRental(r.db.QueryRowContext(ctx, q, id), &rental); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *repo) ItemMeta(ctx context.Context, itemID int64) (int64, int64, bool, error) {
	const q = `
		SELECT owner_id, price_per_day, is_available
		FROM items
		WHERE id = $1`
	var ownerID, price int64
	var available bool
	err := r.db.QueryRowContext(ctx, q, itemID).Scan(&ownerID, &price, &available)
	return ownerID, price, available, err
}

const rentalRowQuery = `
	SELECT r.id, r.item_id, r.renter_id, r.start_date, r.end_date, r.status, r.paid_at, r.created_at,
		i.title, i.price_per_day, i.owner_id
	FROM rentals r
	JOIN items i ON i.id = r.item_id`

func (r *repo) listRows(ctx context.Context, query string, arg int64) ([]model.RentalRow, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RentalRow
	for rows.Next() {
		var rr model.RentalRow
		if err := rows.Scan(&rr.ID, &rr.ItemID, &rr.RenterID, &rr.StartDate, &rr.EndDate,
			&rr.Status, &rr.PaidAt, &rr.CreatedAt, &rr.ItemTitle, &rr.PricePerDay, &rr.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListOutgoing returns rentals the user requested as a renter. Owner blocks
// are excluded: those surface on the incoming side of the item's owner.
func (r *repo) ListOutgoing(ctx context.Context, renterID int64) ([]model.RentalRow, error) {
	const q = rentalRowQuery + `
	WHERE r.renter_id = $1
	AND r.status <> 'unavailable_block'
	ORDER BY r.created_at DESC, r.id DESC`
	return r.listRows(ctx, q, renterID)
}

func (r *repo) ListIncoming(ctx context.Context, ownerID int64) ([]model.RentalRow, error) {
	const q = rentalRowQuery + `
	WHERE i.owner_id = $1
	ORDER BY r.created_at DESC, r.id DESC`
	return r.listRows(ctx, q, ownerID)
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id=$1`, id)
	return err
}

func (r *repo) MarkPaid(ctx context.Context, rentalID int64, at time.Time) error {
	const q = `
		UPDATE rentals
		SET paid_at = $2
		WHERE id = $1
		AND paid_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, rentalID, at)
	return err
}
