package model

import "time"

type Favorite struct {
	UserID    int64     `json:"user_id"`
	ItemID    int64     `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ToggleFavoriteReq struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}
