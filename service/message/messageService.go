package messagesvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/waan1232/campus-share-app-sub000/model"
	messagerepo "github.com/waan1232/campus-share-app-sub000/repository/message"
	rentalsvc "github.com/waan1232/campus-share-app-sub000/service/rental"
)

type ErrCode string

const (
	ErrMessageNotFound ErrCode = "MESSAGE_NOT_FOUND"
	ErrNotReceiver     ErrCode = "NOT_RECEIVER"
	ErrNotAnOffer      ErrCode = "NOT_AN_OFFER"
	ErrOfferNotPending ErrCode = "OFFER_NOT_PENDING"
	ErrBadOffer        ErrCode = "BAD_OFFER"
	ErrSelfMessage     ErrCode = "SELF_MESSAGE"
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
	Send(ctx context.Context, senderID int64, req model.SendMessageReq) (*model.Message, error)
	ListForUser(ctx context.Context, userID int64) ([]model.Message, error)

	// DecideOffer lets the receiver accept or reject a pending offer.
	// Acceptance materializes a pending rental for the offer's sender,
	// through the same availability gate as direct requests.
	DecideOffer(ctx context.Context, actorID, messageID int64, accept bool) (*model.Message, error)
}

type service struct {
	mr messagerepo.Repo
	rs rentalsvc.Service
}

func New(mr messagerepo.Repo, rs rentalsvc.Service) Service {
	return &service{mr: mr, rs: rs}
}

func (s *service) Send(ctx context.Context, senderID int64, req model.SendMessageReq) (*model.Message, error) {
	if req.ReceiverID == senderID {
		return nil, makeErr(ErrSelfMessage)
	}

	m := &model.Message{
		SenderID:    senderID,
		ReceiverID:  req.ReceiverID,
		Content:     req.Content,
		OfferStatus: model.OfferNone,
	}

	if req.OfferPrice != nil {
		// Offers need the full tuple: item, price, both dates.
		if req.ItemID == nil || req.StartDate == nil || req.EndDate == nil || *req.OfferPrice <= 0 {
			return nil, makeErr(ErrBadOffer)
		}
		start, err := rentalsvc.ParseDate(*req.StartDate)
		if err != nil {
			return nil, makeErr(ErrBadOffer)
		}
		end, err := rentalsvc.ParseDate(*req.EndDate)
		if err != nil {
			return nil, makeErr(ErrBadOffer)
		}
		if start.After(end) {
			return nil, makeErr(ErrBadOffer)
		}
		m.ItemID = req.ItemID
		m.OfferPrice = req.OfferPrice
		m.StartDate = &start
		m.EndDate = &end
		m.OfferStatus = model.OfferPending
	}

	if err := s.mr.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]model.Message, error) {
	msgs, err := s.mr.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

func (s *service) DecideOffer(ctx context.Context, actorID, messageID int64, accept bool) (*model.Message, error) {
	m, err := s.mr.ByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrMessageNotFound)
		}
		return nil, err
	}
	if m.ReceiverID != actorID {
		return nil, makeErr(ErrNotReceiver)
	}
	if !m.IsOffer() || m.ItemID == nil || m.StartDate == nil || m.EndDate == nil {
		return nil, makeErr(ErrNotAnOffer)
	}
	if m.OfferStatus != model.OfferPending {
		return nil, makeErr(ErrOfferNotPending)
	}

	if !accept {
		if err := s.mr.UpdateOfferStatus(ctx, m.ID, model.OfferRejected); err != nil {
			return nil, err
		}
		m.OfferStatus = model.OfferRejected
		return m, nil
	}

	// The sender becomes the renter; the rental starts pending, not
	// approved, same as a direct request. On conflict the offer stays
	// pending so the parties can renegotiate dates.
	if _, err := s.rs.Request(ctx, m.SenderID, *m.ItemID, day(*m.StartDate), day(*m.EndDate)); err != nil {
		return nil, err
	}
	if err := s.mr.UpdateOfferStatus(ctx, m.ID, model.OfferAccepted); err != nil {
		return nil, err
	}
	m.OfferStatus = model.OfferAccepted
	return m, nil
}

// day strips any time-of-day component so stored offer timestamps compare
// like calendar days.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
