package model

import "time"

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	School       string     `json:"school"`
	IsVerified   bool       `json:"is_verified"`
	Code         *string    `json:"-"`
	CodeSentAt   *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyReq carries the emailed 6-digit code back.
type VerifyReq struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendReq struct {
	Email string `json:"email" validate:"required,email"`
}
