package domain

import "time"

// Category is an optional taxonomy entry for courses.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
