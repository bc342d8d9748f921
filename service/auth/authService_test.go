package authsvc

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waan1232/campus-share-app-sub000/model"
	"github.com/waan1232/campus-share-app-sub000/util/hash"
)

type mockUserRepo struct {
	create       func(ctx context.Context, u *model.User) error
	byEmail      func(ctx context.Context, email string) (*model.User, error)
	byID         func(ctx context.Context, id int64) (*model.User, error)
	setCode      func(ctx context.Context, userID int64, code string, sentAt time.Time) error
	markVerified func(ctx context.Context, userID int64) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error { return m.create(ctx, u) }
func (m *mockUserRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmail(ctx, email)
}
func (m *mockUserRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byID(ctx, id)
}
func (m *mockUserRepo) SetCode(ctx context.Context, userID int64, code string, sentAt time.Time) error {
	return m.setCode(ctx, userID, code, sentAt)
}
func (m *mockUserRepo) MarkVerified(ctx context.Context, userID int64) error {
	return m.markVerified(ctx, userID)
}

type mockMailer struct {
	sent  []string
	codes []string
	err   error
}

func (m *mockMailer) SendVerificationCode(to, code string) error {
	m.sent = append(m.sent, to)
	m.codes = append(m.codes, code)
	return m.err
}

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSchoolFromEmail(t *testing.T) {
	require.Equal(t, "stanford.edu", SchoolFromEmail("alice@stanford.edu"))
	require.Equal(t, "stanford.edu", SchoolFromEmail("alice@STANFORD.EDU"))
	require.Equal(t, "cs.mit.edu", SchoolFromEmail("bob@cs.mit.edu"))
	require.Equal(t, "", SchoolFromEmail("no-at-sign"))
	require.Equal(t, "", SchoolFromEmail("trailing@"))
}

func TestRegister(t *testing.T) {
	var created *model.User
	ur := &mockUserRepo{
		create: func(ctx context.Context, u *model.User) error {
			u.ID = 1
			created = u
			return nil
		},
	}
	mailer := &mockMailer{}
	svc := New(ur, mailer, "secret", testLog)

	u, token, err := svc.Register(context.Background(), model.RegisterReq{
		Email:    "  Alice@Stanford.EDU ",
		Username: "alice",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alice@stanford.edu", u.Email)
	require.Equal(t, "stanford.edu", u.School)
	require.False(t, u.IsVerified)
	require.NotNil(t, created.Code)
	require.Len(t, *created.Code, 6)
	require.NotNil(t, created.CodeSentAt)

	// the emailed code is the stored code
	require.Equal(t, []string{"alice@stanford.edu"}, mailer.sent)
	require.Equal(t, *created.Code, mailer.codes[0])
}

func TestRegisterBadEmailDomain(t *testing.T) {
	svc := New(&mockUserRepo{}, &mockMailer{}, "secret", testLog)
	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		Email: "broken@", Username: "x", Password: "hunter22",
	})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	ur := &mockUserRepo{
		create: func(ctx context.Context, u *model.User) error { u.ID = 1; return nil },
	}
	svc := New(ur, &mockMailer{err: sql.ErrConnDone}, "secret", testLog)
	_, token, err := svc.Register(context.Background(), model.RegisterReq{
		Email: "a@b.edu", Username: "a", Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func verifiableUser(t *testing.T, code string, sentAgo time.Duration) *model.User {
	t.Helper()
	sent := time.Now().UTC().Add(-sentAgo)
	return &model.User{
		ID: 1, Email: "a@b.edu", School: "b.edu",
		Code: &code, CodeSentAt: &sent,
	}
}

func TestVerify(t *testing.T) {
	marked := int64(0)
	u := verifiableUser(t, "123456", time.Minute)
	ur := &mockUserRepo{
		byEmail:      func(ctx context.Context, email string) (*model.User, error) { return u, nil },
		markVerified: func(ctx context.Context, userID int64) error { marked = userID; return nil },
	}
	svc := New(ur, &mockMailer{}, "secret", testLog)

	require.NoError(t, svc.Verify(context.Background(), "a@b.edu", "123456"))
	require.EqualValues(t, 1, marked)
}

func TestVerifyWrongCode(t *testing.T) {
	u := verifiableUser(t, "123456", time.Minute)
	ur := &mockUserRepo{
		byEmail: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
	}
	svc := New(ur, &mockMailer{}, "secret", testLog)
	err := svc.Verify(context.Background(), "a@b.edu", "654321")
	require.Equal(t, ErrCodeMismatch, Code(err))
}

func TestVerifyExpiredCode(t *testing.T) {
	u := verifiableUser(t, "123456", 16*time.Minute)
	ur := &mockUserRepo{
		byEmail: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
	}
	svc := New(ur, &mockMailer{}, "secret", testLog)
	err := svc.Verify(context.Background(), "a@b.edu", "123456")
	require.Equal(t, ErrCodeExpired, Code(err))
}

func TestVerifyAlreadyVerified(t *testing.T) {
	u := verifiableUser(t, "123456", time.Minute)
	u.IsVerified = true
	ur := &mockUserRepo{
		byEmail: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
	}
	svc := New(ur, &mockMailer{}, "secret", testLog)
	err := svc.Verify(context.Background(), "a@b.edu", "123456")
	require.Equal(t, ErrAlreadyVerified, Code(err))
}

func TestVerifyClearedCode(t *testing.T) {
	// After MarkVerified the code is NULL; a replay must not pass.
	u := &model.User{ID: 1, Email: "a@b.edu"}
	ur := &mockUserRepo{
		byEmail: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
	}
	svc := New(ur, &mockMailer{}, "secret", testLog)
	err := svc.Verify(context.Background(), "a@b.edu", "123456")
	require.Equal(t, ErrCodeMismatch, Code(err))
}

func TestVerifyUnknownEmail(t *testing.T) {
	ur := &mockUserRepo{
		byEmail: func(ctx context.Context, email string) (*model.User, error) { return nil, sql.ErrNoRows },
	}
	svc := New(ur, &mockMailer{}, "secret", testLog)
	err := svc.Verify(context.Background(), "nobody@b.edu", "123456")
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestResend(t *testing.T) {
	u := verifiableUser(t, "123456", 2*time.Minute)
	var storedCode string
	ur := &mockUserRepo{
		byEmail: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
		setCode: func(ctx context.Context, userID int64, code string, sentAt time.Time) error {
			storedCode = code
			return nil
		},
	}
	mailer := &mockMailer{}
	svc := New(ur, mailer, "secret", testLog)

	require.NoError(t, svc.Resend(context.Background(), "a@b.edu"))
	require.Len(t, storedCode, 6)
	require.Equal(t, storedCode, mailer.codes[0])
}

func TestResendThrottled(t *testing.T) {
	u := verifiableUser(t, "123456", 10*time.Second)
	ur := &mockUserRepo{
		byEmail: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
	}
	svc := New(ur, &mockMailer{}, "secret", testLog)
	err := svc.Resend(context.Background(), "a@b.edu")
	require.Equal(t, ErrResendTooSoon, Code(err))
}

func TestLogin(t *testing.T) {
	hashed, err := hash.HashPassword("hunter22")
	require.NoError(t, err)
	u := &model.User{ID: 1, Email: "a@b.edu", PasswordHash: hashed}
	ur := &mockUserRepo{
		byEmail: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
	}
	svc := New(ur, &mockMailer{}, "secret", testLog)

	_, token, err := svc.Login(context.Background(), model.LoginReq{Email: "a@b.edu", Password: "hunter22"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, _, err = svc.Login(context.Background(), model.LoginReq{Email: "a@b.edu", Password: "wrong"})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		seen[code] = true
	}
	// 20 draws from 900k values colliding into one would mean rand is broken
	require.Greater(t, len(seen), 1)
}
