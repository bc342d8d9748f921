package userrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/waan1232/campus-share-app-sub000/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	SetCode(ctx context.Context, userID int64, code string, sentAt time.Time) error
	MarkVerified(ctx context.Context, userID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users(email, username, password_hash, school, is_verified, code, code_sent_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`,
		u.Email, u.Username, u.PasswordHash, u.School, u.IsVerified, u.Code, u.CodeSentAt,
	).Scan(&u.ID, &u.CreatedAt)
}

const userCols = `id, email, username, password_hash, school, is_verified, code, code_sent_at, created_at`

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.School, &u.IsVerified, &u.Code, &u.CodeSentAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.School, &u.IsVerified, &u.Code, &u.CodeSentAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) SetCode(ctx context.Context, userID int64, code string, sentAt time.Time) error {
	const q = `
		UPDATE users
		SET code = $2, code_sent_at = $3
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, userID, code, sentAt)
	return err
}

func (r *repo) MarkVerified(ctx context.Context, userID int64) error {
	// Clears the code so it cannot be replayed after verification.
	const q = `
		UPDATE users
		SET is_verified = TRUE, code = NULL, code_sent_at = NULL
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
