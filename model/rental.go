// model/rental.go
package model

import "time"

type RentalStatus string

// Status strings are part of the wire contract, do not rename.
const (
	RentalPending    RentalStatus = "pending"
	RentalApproved   RentalStatus = "approved"
	RentalRejected   RentalStatus = "rejected"
	RentalCompleted  RentalStatus = "completed"
	UnavailableBlock RentalStatus = "unavailable_block"
)

// Blocks reports whether a rental in this status occupies its date range.
// Only approved rentals and owner blocks remove days from availability.
func (s RentalStatus) Blocks() bool {
	return s == RentalApproved || s == UnavailableBlock
}

// Valid reports whether s is one of the known wire statuses.
func (s RentalStatus) Valid() bool {
	switch s {
	case RentalPending, RentalApproved, RentalRejected, RentalCompleted, UnavailableBlock:
		return true
	}
	return false
}

// Rental is a renter's booking request or, when Status is
// unavailable_block, an owner-created occupancy with RenterID set to the
// owner's own id.
type Rental struct {
	ID        int64        `json:"id"`
	ItemID    int64        `json:"item_id"`
	RenterID  int64        `json:"renter_id"`
	StartDate time.Time    `json:"start_date"` // inclusive calendar day
	EndDate   time.Time    `json:"end_date"`   // inclusive calendar day
	Status    RentalStatus `json:"status"`
	PaidAt    *time.Time   `json:"paid_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// RentalRow is a rental joined with its item for listing endpoints.
type RentalRow struct {
	Rental
	ItemTitle   string `json:"item_title"`
	PricePerDay int64  `json:"price_per_day"`
	OwnerID     int64  `json:"owner_id"`
}

type CreateRentalReq struct {
	ItemID    int64  `json:"item_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required"` // 2006-01-02
	EndDate   string `json:"end_date" validate:"required"`
}

type BlockReq struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

type UpdateRentalStatusReq struct {
	Status string `json:"status" validate:"required"`
}
