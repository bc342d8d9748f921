package authsvc

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/waan1232/campus-share-app-sub000/model"
	mailrepo "github.com/waan1232/campus-share-app-sub000/repository/mail"
	userrepo "github.com/waan1232/campus-share-app-sub000/repository/user"
	"github.com/waan1232/campus-share-app-sub000/util/hash"
	jwtutil "github.com/waan1232/campus-share-app-sub000/util/jwt"
)

type ErrCode string

const (
	ErrEmailTaken      ErrCode = "EMAIL_TAKEN"
	ErrUsernameTaken   ErrCode = "USERNAME_TAKEN"
	ErrInvalidCreds    ErrCode = "INVALID_CREDENTIALS"
	ErrBadInput        ErrCode = "BAD_INPUT"
	ErrUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrCodeMismatch    ErrCode = "CODE_MISMATCH"
	ErrCodeExpired     ErrCode = "CODE_EXPIRED"
	ErrAlreadyVerified ErrCode = "ALREADY_VERIFIED"
	ErrResendTooSoon   ErrCode = "RESEND_TOO_SOON"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// codeTTL and resendInterval bound the verification-code lifecycle.
const (
	codeTTL        = 15 * time.Minute
	resendInterval = 60 * time.Second
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Verify(ctx context.Context, email, code string) error
	Resend(ctx context.Context, email string) error
}

type service struct {
	ur     userrepo.Repo
	mail   mailrepo.Sender
	secret string
	log    *slog.Logger
}

func New(ur userrepo.Repo, mail mailrepo.Sender, secret string, log *slog.Logger) Service {
	return &service{ur: ur, mail: mail, secret: secret, log: log}
}

// SchoolFromEmail derives the visibility silo from the part after '@',
// lowercased. Derived once at registration, immutable after.
func SchoolFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	school := SchoolFromEmail(email)
	if school == "" {
		return nil, "", makeErr(ErrBadInput)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	code, err := generateCode()
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()

	u := &model.User{
		Email:        email,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hashed,
		School:       school,
		IsVerified:   false,
		Code:         &code,
		CodeSentAt:   &now,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	// Fire-and-forget: a lost mail is recoverable via resend.
	if err := s.mail.SendVerificationCode(u.Email, code); err != nil {
		s.log.Error("verification mail", "err", err, "user_id", u.ID)
	}

	token, err := jwtutil.Issue(s.secret, u.ID, 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)

		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return makeErr(ErrEmailTaken)
		}
		if strings.Contains(cn, "users_username") || strings.Contains(msg, "username") {
			return makeErr(ErrUsernameTaken)
		}
		return makeErr(ErrBadInput)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.ur.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", makeErr(ErrInvalidCreds)
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}
	token, err := jwtutil.Issue(s.secret, u.ID, 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrUserNotFound)
		}
		return err
	}
	if u.IsVerified {
		return makeErr(ErrAlreadyVerified)
	}
	if u.Code == nil || u.CodeSentAt == nil {
		return makeErr(ErrCodeMismatch)
	}
	if time.Since(*u.CodeSentAt) > codeTTL {
		return makeErr(ErrCodeExpired)
	}
	if *u.Code != code {
		return makeErr(ErrCodeMismatch)
	}
	// MarkVerified also clears the code so it cannot be replayed.
	return s.ur.MarkVerified(ctx, u.ID)
}

func (s *service) Resend(ctx context.Context, email string) error {
	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrUserNotFound)
		}
		return err
	}
	if u.IsVerified {
		return makeErr(ErrAlreadyVerified)
	}
	if u.CodeSentAt != nil && time.Since(*u.CodeSentAt) < resendInterval {
		return makeErr(ErrResendTooSoon)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.ur.SetCode(ctx, u.ID, code, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.mail.SendVerificationCode(u.Email, code); err != nil {
		s.log.Error("verification mail", "err", err, "user_id", u.ID)
	}
	return nil
}

// generateCode produces a 6-digit numeric code from crypto/rand.
func generateCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	num := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if num < 0 {
		num = -num
	}
	return fmt.Sprintf("%06d", 100000+(num%900000)), nil
}
