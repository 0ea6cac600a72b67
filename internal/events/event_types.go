package events

import (
	"time"

	"github.com/spec-kit/course-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered           EventType = "user_registered"
	EventCourseStatusChanged      EventType = "course_status_changed"
	EventLessonAdded              EventType = "lesson_added"
	EventEnrollmentCreated        EventType = "enrollment_created"
	EventEnrollmentPaymentChanged EventType = "enrollment_payment_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services. ResourceID points at
// the aggregate the event concerns (user, course or enrollment id).
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	VerificationToken string      `json:"verification_token"`
}

// CourseStatusChangedPayload payload.
type CourseStatusChangedPayload struct {
	OldStatus domain.CourseStatus `json:"old_status"`
	NewStatus domain.CourseStatus `json:"new_status"`
	Approved  bool                `json:"approved"`
}

// LessonAddedPayload payload.
type LessonAddedPayload struct {
	LessonID string `json:"lesson_id"`
	Title    string `json:"title"`
}

// EnrollmentCreatedPayload payload.
type EnrollmentCreatedPayload struct {
	UserID        string               `json:"user_id"`
	CourseID      string               `json:"course_id"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	SelfService   bool                 `json:"self_service"`
}

// EnrollmentPaymentChangedPayload payload.
type EnrollmentPaymentChangedPayload struct {
	OldStatus domain.PaymentStatus `json:"old_status"`
	NewStatus domain.PaymentStatus `json:"new_status"`
}
