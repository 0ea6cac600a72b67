package dto

import (
	"time"

	"github.com/spec-kit/course-service/internal/domain"
)

// AdminEnrollRequest payload.
type AdminEnrollRequest struct {
	UserID        string                `json:"user_id" validate:"required"`
	CourseID      string                `json:"course_id" validate:"required"`
	PaymentStatus *domain.PaymentStatus `json:"payment_status"`
}

// SelfEnrollRequest payload. A supplied payment status is accepted by the
// transport but overridden by the enrollment authority.
type SelfEnrollRequest struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// ChangePaymentRequest payload.
type ChangePaymentRequest struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status" validate:"required"`
}

// UpdateProgressRequest payload.
type UpdateProgressRequest struct {
	Progress int `json:"progress" validate:"gte=0,lte=100"`
}

// EnrollmentResponse response.
type EnrollmentResponse struct {
	ID             string               `json:"id"`
	UserID         string               `json:"user_id"`
	CourseID       string               `json:"course_id"`
	PaymentStatus  domain.PaymentStatus `json:"payment_status"`
	Progress       int                  `json:"progress"`
	CanViewContent bool                 `json:"can_view_content"`
	EnrolledAt     time.Time            `json:"enrolled_at"`
	CompletedAt    *time.Time           `json:"completed_at"`
}
