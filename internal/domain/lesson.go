package domain

import "time"

// Lesson belongs to exactly one course and inherits all visibility from it;
// there is no lesson-level publication state. Lessons are numbered by
// creation order, so no explicit position field exists.
type Lesson struct {
	ID        string
	CourseID  string
	Title     string
	Content   string
	VideoURL  *string
	FileURL   *string
	ImageURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
