package rentalsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/waan1232/campus-share-app-sub000/model"
	rentalrepo "github.com/waan1232/campus-share-app-sub000/repository/rental"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidRange      ErrCode = "INVALID_RANGE"
	ErrItemNotFound      ErrCode = "ITEM_NOT_FOUND"
	ErrRentalNotFound    ErrCode = "RENTAL_NOT_FOUND"
	ErrOwnItem           ErrCode = "OWN_ITEM"
	ErrNotOwner          ErrCode = "NOT_OWNER"
	ErrConflict          ErrCode = "RANGE_CONFLICT"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrItemDelisted      ErrCode = "ITEM_DELISTED"
	ErrNotDeletable      ErrCode = "NOT_DELETABLE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Overview is the GET /rentals shape: requests I made, requests (and blocks)
// on items I own.
type Overview struct {
	Outgoing []model.RentalRow `json:"outgoing"`
	Incoming []model.RentalRow `json:"incoming"`
}

type Service interface {
	// Request creates a pending rental for a renter. All occupancy-creating
	// paths (direct request, owner block, offer acceptance) funnel through
	// the same overlap gate.
	Request(ctx context.Context, renterID, itemID int64, start, end time.Time) (*model.Rental, error)

	// Block removes a date range from availability without a renter. The
	// stored row reuses the rental shape with renter_id = owner's own id.
	Block(ctx context.Context, actorID, itemID int64, start, end time.Time) (*model.Rental, error)

	// Transition moves a rental along pending→{approved,rejected},
	// approved→completed. Only the item's owner may transition.
	Transition(ctx context.Context, actorID, rentalID int64, next model.RentalStatus) (*model.Rental, error)

	// Delete removes an owner block, freeing its range.
	Delete(ctx context.Context, actorID, rentalID int64) error

	ListMine(ctx context.Context, userID int64) (*Overview, error)

	// IsRangeAvailable is the advisory read-path check. The authoritative
	// check runs again inside the creation transaction.
	IsRangeAvailable(ctx context.Context, itemID int64, start, end time.Time, excludeRentalID int64) (bool, error)
}

type service struct {
	r rentalrepo.Repo
}

func New(r rentalrepo.Repo) Service { return &service{r: r} }

func (s *service) Request(ctx context.Context, renterID, itemID int64, start, end time.Time) (*model.Rental, error) {
	ownerID, _, available, err := s.r.ItemMeta(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	if renterID == ownerID {
		return nil, makeErr(ErrOwnItem)
	}
	if !available {
		return nil, makeErr(ErrItemDelisted)
	}
	return s.createOccupancy(ctx, itemID, renterID, model.RentalPending, start, end)
}

func (s *service) Block(ctx context.Context, actorID, itemID int64, start, end time.Time) (*model.Rental, error) {
	ownerID, _, _, err := s.r.ItemMeta(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	if actorID != ownerID {
		return nil, makeErr(ErrNotOwner)
	}
	return s.createOccupancy(ctx, itemID, ownerID, model.UnavailableBlock, start, end)
}

// createOccupancy is the one gate through which every rental row is born:
// overlap check and insert run in a single transaction under the item's
// advisory lock, so two racing overlapping requests cannot both win.
func (s *service) createOccupancy(ctx context.Context, itemID, renterID int64, status model.RentalStatus, start, end time.Time) (*model.Rental, error) {
	if start.After(end) {
		return nil, makeErr(ErrInvalidRange)
	}

	rental := &model.Rental{
		ItemID:    itemID,
		RenterID:  renterID,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
	err := s.r.WithItemLock(ctx, itemID, func(tx rentalrepo.Tx) error {
		blocking, err := tx.ListBlocking(ctx, itemID, 0)
		if err != nil {
			return err
		}
		for _, b := range blocking {
			if Overlaps(start, end, b.StartDate, b.EndDate) {
				return makeErr(ErrConflict)
			}
		}
		return tx.Insert(ctx, rental)
	})
	if err != nil {
		// The exclusion constraint is the storage-level backstop for the
		// same invariant; report it as the same conflict.
		if isExclusionViolation(err) {
			return nil, makeErr(ErrConflict)
		}
		return nil, err
	}
	return rental, nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation
}

// legalTransition encodes the state machine edges. unavailable_block,
// rejected and completed are terminal.
func legalTransition(from, to model.RentalStatus) bool {
	switch from {
	case model.RentalPending:
		return to == model.RentalApproved || to == model.RentalRejected
	case model.RentalApproved:
		return to == model.RentalCompleted
	}
	return false
}

func (s *service) Transition(ctx context.Context, actorID, rentalID int64, next model.RentalStatus) (*model.Rental, error) {
	if !next.Valid() || next == model.RentalPending || next == model.UnavailableBlock {
		return nil, makeErr(ErrInvalidTransition)
	}

	current, err := s.r.ByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}

	var updated *model.Rental
	err = s.r.WithItemLock(ctx, current.ItemID, func(tx rentalrepo.Tx) error {
		rental, ownerID, err := tx.GetForUpdate(ctx, rentalID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrRentalNotFound)
			}
			return err
		}
		if actorID != ownerID {
			return makeErr(ErrNotOwner)
		}
		if !legalTransition(rental.Status, next) {
			return makeErr(ErrInvalidTransition)
		}
		if next == model.RentalApproved {
			// Approving is what makes the range block, so it must clear the
			// same overlap gate as creation: another rental may have been
			// approved since this one went pending.
			blocking, err := tx.ListBlocking(ctx, rental.ItemID, rental.ID)
			if err != nil {
				return err
			}
			for _, b := range blocking {
				if Overlaps(rental.StartDate, rental.EndDate, b.StartDate, b.EndDate) {
					return makeErr(ErrConflict)
				}
			}
		}
		if err := tx.UpdateStatus(ctx, rentalID, next); err != nil {
			return err
		}
		rental.Status = next
		updated = rental
		return nil
	})
	if err != nil {
		if isExclusionViolation(err) {
			return nil, makeErr(ErrConflict)
		}
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actorID, rentalID int64) error {
	rental, err := s.r.ByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrRentalNotFound)
		}
		return err
	}
	if rental.Status != model.UnavailableBlock {
		return makeErr(ErrNotDeletable)
	}
	ownerID, _, _, err := s.r.ItemMeta(ctx, rental.ItemID)
	if err != nil {
		return err
	}
	if actorID != ownerID {
		return makeErr(ErrNotOwner)
	}
	return s.r.Delete(ctx, rentalID)
}

func (s *service) ListMine(ctx context.Context, userID int64) (*Overview, error) {
	outgoing, err := s.r.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.r.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Overview{Outgoing: outgoing, Incoming: incoming}, nil
}

func (s *service) IsRangeAvailable(ctx context.Context, itemID int64, start, end time.Time, excludeRentalID int64) (bool, error) {
	if start.After(end) {
		return false, makeErr(ErrInvalidRange)
	}
	blocking, err := s.r.ListBlocking(ctx, itemID, excludeRentalID)
	if err != nil {
		return false, err
	}
	for _, b := range blocking {
		if Overlaps(start, end, b.StartDate, b.EndDate) {
			return false, nil
		}
	}
	return true, nil
}
