package messagerepo

import (
	"context"
	"database/sql"

	"github.com/waan1232/campus-share-app-sub000/model"
)

type Repo interface {
	Insert(ctx context.Context, m *model.Message) error
	ByID(ctx context.Context, id int64) (*model.Message, error)
	ListForUser(ctx context.Context, userID int64) ([]model.Message, error)
	UpdateOfferStatus(ctx context.Context, id int64, status model.OfferStatus) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const messageCols = `id, sender_id, receiver_id, item_id, content, offer_price, start_date, end_date, offer_status, created_at`

func (r *repo) Insert(ctx context.Context, m *model.Message) error {
	const q = `
		INSERT INTO messages (sender_id, receiver_id, item_id, content, offer_price, start_date, end_date, offer_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		m.SenderID, m.ReceiverID, m.ItemID, m.Content, m.OfferPrice, m.StartDate, m.EndDate, m.OfferStatus,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Message, error) {
	m := &model.Message{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+messageCols+`
		FROM messages
		WHERE id = $1`, id,
	).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ItemID, &m.Content,
		&m.OfferPrice, &m.StartDate, &m.EndDate, &m.OfferStatus, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListForUser returns every message the user sent or received, oldest first.
// Conversation grouping by counterpart happens client-side.
func (r *repo) ListForUser(ctx context.Context, userID int64) ([]model.Message, error) {
	const q = `
		SELECT ` + messageCols + `
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ItemID, &m.Content,
			&m.OfferPrice, &m.StartDate, &m.EndDate, &m.OfferStatus, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repo) UpdateOfferStatus(ctx context.Context, id int64, status model.OfferStatus) error {
	const q = `
		UPDATE messages
		SET offer_status = $2
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, status)
	return err
}
