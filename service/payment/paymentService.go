package paymentsvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	rentalrepo "github.com/waan1232/campus-share-app-sub000/repository/rental"
	striperepo "github.com/waan1232/campus-share-app-sub000/repository/stripe"
	rentalsvc "github.com/waan1232/campus-share-app-sub000/service/rental"

	"github.com/waan1232/campus-share-app-sub000/model"
)

type ErrCode string

const (
	ErrRentalNotFound ErrCode = "RENTAL_NOT_FOUND"
	ErrNotRenter      ErrCode = "NOT_RENTER"
	ErrNotPayable     ErrCode = "NOT_PAYABLE"
	ErrBadSignature   ErrCode = "BAD_SIGNATURE"
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

type CheckoutCreated struct {
	RedirectURL string `json:"redirect_url"`
	SessionID   string `json:"session_id"`
	Amount      int64  `json:"amount"`
}

type Service interface {
	// CreateCheckout builds a hosted checkout session for an approved
	// rental: price_per_day times the shared day count.
	CreateCheckout(ctx context.Context, userID, rentalID int64) (*CheckoutCreated, error)

	// HandleWebhook is the verified capture step: signature check first,
	// then the rental named in the session metadata is marked paid.
	HandleWebhook(ctx context.Context, sigHeader string, raw []byte) error
}

type URLs struct {
	Success string
	Cancel  string
}

type service struct {
	rr   rentalrepo.Repo
	sp   striperepo.Repo
	urls URLs
}

func New(rr rentalrepo.Repo, sp striperepo.Repo, urls URLs) Service {
	return &service{rr: rr, sp: sp, urls: urls}
}

func (s *service) CreateCheckout(ctx context.Context, userID, rentalID int64) (*CheckoutCreated, error) {
	rental, err := s.rr.ByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if rental.RenterID != userID {
		return nil, makeErr(ErrNotRenter)
	}
	if rental.Status != model.RentalApproved || rental.PaidAt != nil {
		return nil, makeErr(ErrNotPayable)
	}

	_, pricePerDay, _, err := s.rr.ItemMeta(ctx, rental.ItemID)
	if err != nil {
		return nil, err
	}
	amount := pricePerDay * int64(rentalsvc.DayCount(rental.StartDate, rental.EndDate))

	resp, err := s.sp.CreateCheckoutSession(striperepo.CreateSessionReq{
		AmountMinorUnits: amount,
		Description:      fmt.Sprintf("Rental #%d", rental.ID),
		SuccessURL:       s.urls.Success,
		CancelURL:        s.urls.Cancel,
		RentalID:         rental.ID,
		UserID:           userID,
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutCreated{RedirectURL: resp.RedirectURL, SessionID: resp.SessionID, Amount: amount}, nil
}

type checkoutEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (s *service) HandleWebhook(ctx context.Context, sigHeader string, raw []byte) error {
	if err := s.sp.VerifyWebhookSignature(sigHeader, raw); err != nil {
		return makeErr(ErrBadSignature)
	}

	var ev checkoutEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("bad webhook json: %w", err)
	}
	if ev.Type != "checkout.session.completed" {
		return nil
	}

	rentalID, err := strconv.ParseInt(ev.Data.Object.Metadata["rental_id"], 10, 64)
	if err != nil || rentalID <= 0 {
		return errors.New("webhook missing rental_id metadata")
	}
	// MarkPaid is idempotent: replayed events find paid_at already set.
	return s.rr.MarkPaid(ctx, rentalID, time.Now().UTC())
}
