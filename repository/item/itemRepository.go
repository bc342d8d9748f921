package itemrepo

import (
	"context"
	"database/sql"

	"github.com/waan1232/campus-share-app-sub000/model"
)

type Repo interface {
	Create(ctx context.Context, it *model.Item) error
	ByID(ctx context.Context, id int64) (*model.Item, error)
	Update(ctx context.Context, it *model.Item) error
	Delete(ctx context.Context, id int64) error
	ListVisible(ctx context.Context, school string, f model.ItemFilter) ([]model.Item, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)
	OwnerSchool(ctx context.Context, itemID int64) (string, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const itemCols = `id, owner_id, title, description, category, condition, location, price_per_day, image_url, is_available, created_at`

func (r *repo) Create(ctx context.Context, it *model.Item) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO items (owner_id, title, description, category, condition, location, price_per_day, image_url, is_available)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`,
		it.OwnerID, it.Title, it.Description, it.Category, it.Condition, it.Location, it.PricePerDay, it.ImageURL, it.IsAvailable,
	).Scan(&it.ID, &it.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Item, error) {
	it := &model.Item{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+itemCols+`
		FROM items
		WHERE id = $1`,
		id,
	).Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category, &it.Condition,
		&it.Location, &it.PricePerDay, &it.ImageURL, &it.IsAvailable, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *repo) Update(ctx context.Context, it *model.Item) error {
	const q = `
		UPDATE items
		SET title=$2, description=$3, category=$4, condition=$5, location=$6,
			price_per_day=$7, image_url=$8, is_available=$9
		WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q,
		it.ID, it.Title, it.Description, it.Category, it.Condition, it.Location,
		it.PricePerDay, it.ImageURL, it.IsAvailable)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	// Dependent rentals/favorites/offer messages go with it (FK ON DELETE CASCADE).
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id=$1`, id)
	return err
}

// ListVisible returns the school-siloed catalog: available items whose owner
// belongs to the given school, newest first.
func (r *repo) ListVisible(ctx context.Context, school string, f model.ItemFilter) ([]model.Item, error) {
	const q = `
		SELECT i.id, i.owner_id, i.title, i.description, i.category, i.condition,
			i.location, i.price_per_day, i.image_url, i.is_available, i.created_at
		FROM items i
		JOIN users u ON u.id = i.owner_id
		WHERE i.is_available = TRUE
		AND u.school = $1
		AND ($2 = '' OR i.title ILIKE '%' || $2 || '%' OR i.description ILIKE '%' || $2 || '%')
		AND ($3 = '' OR i.category = $3)
		ORDER BY i.created_at DESC, i.id DESC`
	rows, err := r.db.QueryContext(ctx, q, school, f.Search, f.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category,
			&it.Condition, &it.Location, &it.PricePerDay, &it.ImageURL, &it.IsAvailable, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) OwnerSchool(ctx context.Context, itemID int64) (string, error) {
	const q = `
		SELECT u.school
		FROM items i
		JOIN users u ON u.id = i.owner_id
		WHERE i.id = $1`
	var school string
	err := r.db.QueryRowContext(ctx, q, itemID).Scan(&school)
	return school, err
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	const q = `
		SELECT ` + itemCols + `
		FROM items
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category,
			&it.Condition, &it.Location, &it.PricePerDay, &it.ImageURL, &it.IsAvailable, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
