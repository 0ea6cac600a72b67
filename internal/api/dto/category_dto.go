package dto

import "time"

// CategoryRequest payload.
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryResponse response.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
