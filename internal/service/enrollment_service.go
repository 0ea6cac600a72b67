package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/course-service/internal/access"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// EnrollmentService is the enrollment lifecycle authority: payment status,
// progress and the content-gating predicate all live here.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// EnrollmentDependencies bundles repositories for the enrollment service.
type EnrollmentDependencies struct {
	EnrollmentRepo repository.EnrollmentRepository
	CourseRepo     repository.CourseRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// AdminEnrollInput describes the administrative enrollment payload.
type AdminEnrollInput struct {
	UserID        string
	CourseID      string
	PaymentStatus *domain.PaymentStatus
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(deps EnrollmentDependencies) *EnrollmentService {
	return &EnrollmentService{
		enrollments: deps.EnrollmentRepo,
		courses:     deps.CourseRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// paymentTransitions is the payment state machine, mirroring the course
// machine's permissiveness: every combination is allowed today. Tightening is
// a table edit surfacing as INVALID_TRANSITION.
var paymentTransitions = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.PaymentStatusPending: {domain.PaymentStatusPending, domain.PaymentStatusFree, domain.PaymentStatusPaid, domain.PaymentStatusRefund},
	domain.PaymentStatusFree:    {domain.PaymentStatusPending, domain.PaymentStatusFree, domain.PaymentStatusPaid, domain.PaymentStatusRefund},
	domain.PaymentStatusPaid:    {domain.PaymentStatusPending, domain.PaymentStatusFree, domain.PaymentStatusPaid, domain.PaymentStatusRefund},
	domain.PaymentStatusRefund:  {domain.PaymentStatusPending, domain.PaymentStatusFree, domain.PaymentStatusPaid, domain.PaymentStatusRefund},
}

func paymentTransitionAllowed(current, next domain.PaymentStatus) bool {
	for _, candidate := range paymentTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AdminEnroll creates an enrollment on behalf of any user. Payment status
// defaults to PENDING when omitted. A second enrollment for the same
// (user, course) pair is not rejected here; listings de-duplicate instead.
func (s *EnrollmentService) AdminEnroll(ctx context.Context, actor *domain.User, input AdminEnrollInput) (*domain.Enrollment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindEnrollment, Verb: access.VerbCreate}, access.Resource{})
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.UserID})
		}
		return nil, apperrors.MapError(err)
	}
	if _, err := s.loadCourse(ctx, input.CourseID); err != nil {
		return nil, err
	}

	paymentStatus := domain.PaymentStatusPending
	if input.PaymentStatus != nil {
		if !input.PaymentStatus.Valid() {
			return nil, apperrors.NewValidationError("unknown payment status", map[string]any{"payment_status": string(*input.PaymentStatus)})
		}
		paymentStatus = *input.PaymentStatus
	}

	enrollment := &domain.Enrollment{
		UserID:        input.UserID,
		CourseID:      input.CourseID,
		PaymentStatus: paymentStatus,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:       events.EventEnrollmentCreated,
		ResourceID: enrollment.ID,
		Payload: events.EnrollmentCreatedPayload{
			UserID:        enrollment.UserID,
			CourseID:      enrollment.CourseID,
			PaymentStatus: enrollment.PaymentStatus,
			SelfService:   false,
		},
	})
	return enrollment, nil
}

// RequestEnrollment is the student self-service path. The caller may only
// enroll themselves, must hold an active student account, and always gets
// PENDING payment status: any caller-supplied value is overridden here, not
// trusted from the transport layer.
func (s *EnrollmentService) RequestEnrollment(ctx context.Context, actor *domain.User, userID, courseID string, requested domain.PaymentStatus) (*domain.Enrollment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	if actor.Status == domain.AccountStatusSuspended {
		return nil, apperrors.NewAccessDenied(access.ReasonSuspended)
	}
	if userID != actor.ID {
		return nil, apperrors.NewAccessDenied(access.ReasonDenied)
	}
	if actor.Role != domain.RoleStudent {
		return nil, apperrors.NewAccessDenied(access.ReasonDenied)
	}
	if actor.Status != domain.AccountStatusActive {
		return nil, apperrors.NewAccessDenied(access.ReasonDenied)
	}

	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.PubliclyVisible() {
		// Do not reveal unpublished courses to students.
		return nil, apperrors.NewNotFound("course", map[string]any{"course_id": courseID})
	}

	_ = requested // self-service never chooses its payment status

	enrollment := &domain.Enrollment{
		UserID:        actor.ID,
		CourseID:      course.ID,
		PaymentStatus: domain.PaymentStatusPending,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:       events.EventEnrollmentCreated,
		ResourceID: enrollment.ID,
		Payload: events.EnrollmentCreatedPayload{
			UserID:        enrollment.UserID,
			CourseID:      enrollment.CourseID,
			PaymentStatus: enrollment.PaymentStatus,
			SelfService:   true,
		},
	})
	return enrollment, nil
}

// ChangePayment updates the payment label, admin-only. The transition table
// is consulted even for the currently all-permissive machine.
func (s *EnrollmentService) ChangePayment(ctx context.Context, actor *domain.User, enrollmentID string, newStatus domain.PaymentStatus) (*domain.Enrollment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindEnrollment, Verb: access.VerbUpdate}, access.Resource{})
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown payment status", map[string]any{"payment_status": string(newStatus)})
	}

	enrollment, err := s.loadEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if !paymentTransitionAllowed(enrollment.PaymentStatus, newStatus) {
		return nil, apperrors.NewInvalidTransition("payment status transition not allowed", map[string]any{
			"from": string(enrollment.PaymentStatus),
			"to":   string(newStatus),
		})
	}

	oldStatus := enrollment.PaymentStatus
	enrollment.PaymentStatus = newStatus
	if err := s.enrollments.Update(ctx, enrollment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:       events.EventEnrollmentPaymentChanged,
		ResourceID: enrollment.ID,
		Payload: events.EnrollmentPaymentChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return enrollment, nil
}

// UpdateProgress sets the progress scalar, admin-only. Values clamp to
// [0,100]; reaching 100 stamps CompletedAt once.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, actor *domain.User, enrollmentID string, progress int) (*domain.Enrollment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindEnrollment, Verb: access.VerbUpdate}, access.Resource{})
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}

	enrollment, err := s.loadEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	enrollment.Progress = progress
	if progress == 100 && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
	}

	if err := s.enrollments.Update(ctx, enrollment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return enrollment, nil
}

// DeleteEnrollment hard-deletes an enrollment, admin-only. Used for
// correcting erroneous records, duplicate rows included.
func (s *EnrollmentService) DeleteEnrollment(ctx context.Context, actor *domain.User, enrollmentID string) error {
	if actor == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindEnrollment, Verb: access.VerbDelete}, access.Resource{})
	if !decision.Allowed {
		return apperrors.NewAccessDenied(decision.Reason)
	}
	if _, err := s.loadEnrollment(ctx, enrollmentID); err != nil {
		return err
	}
	if err := s.enrollments.Delete(ctx, enrollmentID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListForUser returns a user's enrollments, visible to the user themselves or
// an admin. Because uniqueness is not enforced at the data layer, duplicate
// rows per course may exist; only the most recent per course is returned.
func (s *EnrollmentService) ListForUser(ctx context.Context, actor *domain.User, userID string) ([]domain.Enrollment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	if actor.Status == domain.AccountStatusSuspended {
		return nil, apperrors.NewAccessDenied(access.ReasonSuspended)
	}
	if actor.ID != userID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewAccessDenied(access.ReasonDenied)
	}

	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return dedupeByCourse(enrollments), nil
}

// ListForCourse returns a course's enrollments for admins.
func (s *EnrollmentService) ListForCourse(ctx context.Context, actor *domain.User, courseID string) ([]domain.Enrollment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindEnrollment, Verb: access.VerbRead}, access.Resource{})
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return enrollments, nil
}

// dedupeByCourse keeps the first (most recent, lists come newest-first) row
// per course.
func dedupeByCourse(enrollments []domain.Enrollment) []domain.Enrollment {
	seen := make(map[string]struct{}, len(enrollments))
	result := make([]domain.Enrollment, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if _, dup := seen[enrollment.CourseID]; dup {
			continue
		}
		seen[enrollment.CourseID] = struct{}{}
		result = append(result, enrollment)
	}
	return result
}

func (s *EnrollmentService) loadCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", map[string]any{"course_id": courseID})
		}
		return nil, apperrors.MapError(err)
	}
	return course, nil
}

func (s *EnrollmentService) loadEnrollment(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("enrollment", map[string]any{"enrollment_id": enrollmentID})
		}
		return nil, apperrors.MapError(err)
	}
	return enrollment, nil
}

func (s *EnrollmentService) publish(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
