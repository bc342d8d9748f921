package walletsvc

import (
	"context"
	"errors"

	"github.com/waan1232/campus-share-app-sub000/model"
	withdrawalrepo "github.com/waan1232/campus-share-app-sub000/repository/withdrawal"
)

type ErrCode string

const (
	ErrBadAmount           ErrCode = "BAD_AMOUNT"
	ErrInsufficientBalance ErrCode = "INSUFFICIENT_BALANCE"
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

type Service interface {
	// Balance recomputes on read: lifetime approved/completed rental revenue
	// minus non-rejected withdrawals. No running balance is stored.
	Balance(ctx context.Context, userID int64) (int64, error)
	RequestWithdrawal(ctx context.Context, userID int64, req model.CreateWithdrawalReq) (*model.Withdrawal, error)
	List(ctx context.Context, userID int64) ([]model.Withdrawal, error)
}

type service struct{ wr withdrawalrepo.Repo }

func New(wr withdrawalrepo.Repo) Service { return &service{wr: wr} }

func (s *service) Balance(ctx context.Context, userID int64) (int64, error) {
	revenue, err := s.wr.Revenue(ctx, userID)
	if err != nil {
		return 0, err
	}
	withdrawn, err := s.wr.WithdrawnTotal(ctx, userID)
	if err != nil {
		return 0, err
	}
	return revenue - withdrawn, nil
}

func (s *service) RequestWithdrawal(ctx context.Context, userID int64, req model.CreateWithdrawalReq) (*model.Withdrawal, error) {
	if req.Amount <= 0 {
		return nil, makeErr(ErrBadAmount)
	}
	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Amount > balance {
		return nil, makeErr(ErrInsufficientBalance)
	}

	w := &model.Withdrawal{
		UserID:  userID,
		Amount:  req.Amount,
		Method:  req.Method,
		Details: req.Details,
		Status:  model.WithdrawalPending,
	}
	if err := s.wr.Insert(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *service) List(ctx context.Context, userID int64) ([]model.Withdrawal, error) {
	ws, err := s.wr.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		ws = []model.Withdrawal{}
	}
	return ws, nil
}
