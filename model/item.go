// model/item.go
package model

import "time"

type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Location    string    `json:"location"`
	PricePerDay int64     `json:"price_per_day"` // minor currency units
	ImageURL    string    `json:"image_url"`
	IsAvailable bool      `json:"is_available"` // owner-controlled delist switch, not date occupancy
	CreatedAt   time.Time `json:"created_at"`
}

type CreateItemReq struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required"`
	Condition   string `json:"condition"`
	Location    string `json:"location"`
	PricePerDay int64  `json:"price_per_day" validate:"required,gt=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

type UpdateItemReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`
	Location    *string `json:"location"`
	PricePerDay *int64  `json:"price_per_day" validate:"omitempty,gt=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsAvailable *bool   `json:"is_available"`
}

// ItemFilter narrows the catalog listing. Zero values mean no filter.
type ItemFilter struct {
	Search   string
	Category string
}
