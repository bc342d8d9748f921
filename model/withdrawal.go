// model/withdrawal.go
package model

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

type Withdrawal struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Amount    int64            `json:"amount"` // minor currency units
	Method    string           `json:"method"`
	Details   string           `json:"details"`
	Status    WithdrawalStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

type CreateWithdrawalReq struct {
	Amount  int64  `json:"amount" validate:"required,gt=0"`
	Method  string `json:"method" validate:"required"`
	Details string `json:"details" validate:"required"`
}
