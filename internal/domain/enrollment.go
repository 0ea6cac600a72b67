package domain

import "time"

// PaymentStatus enumerates payment states recorded on an enrollment. The
// service records the label only; payment processing happens elsewhere.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusFree    PaymentStatus = "FREE"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusRefund  PaymentStatus = "REFUND"
)

// Valid reports whether the status is a known member of the enum.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusFree, PaymentStatusPaid, PaymentStatusRefund:
		return true
	}
	return false
}

// GrantsContentAccess is the single content-gating predicate: lesson content
// is visible to a student only while their enrollment carries FREE or PAID.
func (s PaymentStatus) GrantsContentAccess() bool {
	return s == PaymentStatusFree || s == PaymentStatusPaid
}

// Enrollment links one learner to one course. Uniqueness of
// (UserID, CourseID) is not enforced at the data layer; listings are expected
// to de-duplicate.
type Enrollment struct {
	ID            string
	UserID        string
	CourseID      string
	PaymentStatus PaymentStatus
	Progress      int
	EnrolledAt    time.Time
	CompletedAt   *time.Time
	UpdatedAt     time.Time
}

// CanViewContent reports whether this enrollment clears the learner to read
// lesson content for its course.
func (e *Enrollment) CanViewContent() bool {
	return e.PaymentStatus.GrantsContentAccess()
}
