package walletsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waan1232/campus-share-app-sub000/model"
)

type mockWithdrawalRepo struct {
	insert         func(ctx context.Context, w *model.Withdrawal) error
	listByUser     func(ctx context.Context, userID int64) ([]model.Withdrawal, error)
	revenue        func(ctx context.Context, ownerID int64) (int64, error)
	withdrawnTotal func(ctx context.Context, userID int64) (int64, error)
}

func (m *mockWithdrawalRepo) Insert(ctx context.Context, w *model.Withdrawal) error {
	return m.insert(ctx, w)
}
func (m *mockWithdrawalRepo) ListByUser(ctx context.Context, userID int64) ([]model.Withdrawal, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockWithdrawalRepo) Revenue(ctx context.Context, ownerID int64) (int64, error) {
	return m.revenue(ctx, ownerID)
}
func (m *mockWithdrawalRepo) WithdrawnTotal(ctx context.Context, userID int64) (int64, error) {
	return m.withdrawnTotal(ctx, userID)
}

func fixedRepo(revenue, withdrawn int64) *mockWithdrawalRepo {
	return &mockWithdrawalRepo{
		revenue:        func(ctx context.Context, ownerID int64) (int64, error) { return revenue, nil },
		withdrawnTotal: func(ctx context.Context, userID int64) (int64, error) { return withdrawn, nil },
		insert: func(ctx context.Context, w *model.Withdrawal) error {
			w.ID = 1
			return nil
		},
	}
}

func TestBalance(t *testing.T) {
	svc := New(fixedRepo(10000, 3500))
	balance, err := svc.Balance(context.Background(), 1)
	require.NoError(t, err)
	require.EqualValues(t, 6500, balance)
}

func TestRequestWithdrawal(t *testing.T) {
	repo := fixedRepo(10000, 3500)
	svc := New(repo)

	w, err := svc.RequestWithdrawal(context.Background(), 1, model.CreateWithdrawalReq{
		Amount: 6500, Method: "bank", Details: "acct 123",
	})
	require.NoError(t, err)
	require.Equal(t, model.WithdrawalPending, w.Status)
	require.EqualValues(t, 6500, w.Amount)
}

func TestRequestWithdrawalOverBalance(t *testing.T) {
	svc := New(fixedRepo(10000, 3500))
	_, err := svc.RequestWithdrawal(context.Background(), 1, model.CreateWithdrawalReq{
		Amount: 6501, Method: "bank", Details: "acct 123",
	})
	require.Equal(t, ErrInsufficientBalance, Code(err))
}

func TestRequestWithdrawalBadAmount(t *testing.T) {
	svc := New(fixedRepo(10000, 0))
	for _, amount := range []int64{0, -100} {
		_, err := svc.RequestWithdrawal(context.Background(), 1, model.CreateWithdrawalReq{
			Amount: amount, Method: "bank", Details: "acct 123",
		})
		require.Equal(t, ErrBadAmount, Code(err))
	}
}
