package domain

import "time"

// CourseStatus enumerates publication lifecycle states for courses.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPending   CourseStatus = "PENDING"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// Valid reports whether the status is a known member of the enum.
func (s CourseStatus) Valid() bool {
	switch s {
	case CourseStatusDraft, CourseStatusPending, CourseStatusPublished, CourseStatusArchived:
		return true
	}
	return false
}

// Course is the aggregate for a published unit of teaching material.
// InstructorID is set once at creation and never reassigned. IsApproved is
// deliberately independent of Status; the two are coupled only in one
// direction when a course enters PUBLISHED.
type Course struct {
	ID           string
	InstructorID string
	CategoryID   *string
	Title        string
	Description  string
	ImageURL     *string
	Status       CourseStatus
	IsApproved   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// PubliclyVisible reports whether the course appears in the public catalog.
func (c *Course) PubliclyVisible() bool {
	return c.DeletedAt == nil && c.Status == CourseStatusPublished && c.IsApproved
}
