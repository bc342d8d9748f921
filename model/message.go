// model/message.go
package model

import "time"

type OfferStatus string

const (
	OfferNone     OfferStatus = "none"
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Message is a sender→receiver text, optionally carrying a rental offer
// (price + date range) that the receiver can accept or reject.
type Message struct {
	ID          int64       `json:"id"`
	SenderID    int64       `json:"sender_id"`
	ReceiverID  int64       `json:"receiver_id"`
	ItemID      *int64      `json:"item_id,omitempty"`
	Content     string      `json:"content"`
	OfferPrice  *int64      `json:"offer_price,omitempty"`
	StartDate   *time.Time  `json:"start_date,omitempty"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	OfferStatus OfferStatus `json:"offer_status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// IsOffer reports whether the message embeds a rental offer.
func (m *Message) IsOffer() bool { return m.OfferPrice != nil }

type SendMessageReq struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required"`

	// Offer fields, all-or-nothing.
	ItemID     *int64  `json:"item_id" validate:"omitempty,gt=0"`
	OfferPrice *int64  `json:"offer_price" validate:"omitempty,gt=0"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

type OfferDecisionReq struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}
