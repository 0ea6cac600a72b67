package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/course-service/internal/access"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// CourseService is the course lifecycle authority: the only component that
// mutates courses. Role gating happens in the access engine; the status
// machine is validated here regardless of who the caller is.
type CourseService struct {
	courses     repository.CourseRepository
	categories  repository.CategoryRepository
	lessons     repository.LessonRepository
	enrollments repository.EnrollmentRepository
	dispatcher  events.Dispatcher
}

// CourseDependencies bundles repositories for the course service.
type CourseDependencies struct {
	CourseRepo     repository.CourseRepository
	CategoryRepo   repository.CategoryRepository
	LessonRepo     repository.LessonRepository
	EnrollmentRepo repository.EnrollmentRepository
	Dispatcher     events.Dispatcher
}

// CourseCreateInput describes course creation payload.
type CourseCreateInput struct {
	Title       string
	Description string
	CategoryID  *string
	ImageURL    *string
}

// CourseUpdateInput describes mutable course detail fields. Status and
// approval are deliberately absent; they change only through ChangeStatus.
type CourseUpdateInput struct {
	Title       *string
	Description *string
	CategoryID  *string
	ImageURL    *string
}

// NewCourseService constructs the service.
func NewCourseService(deps CourseDependencies) *CourseService {
	return &CourseService{
		courses:     deps.CourseRepo,
		categories:  deps.CategoryRepo,
		lessons:     deps.LessonRepo,
		enrollments: deps.EnrollmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// courseTransitions is the publication state machine. Every state may reach
// every state, self-transitions included, so re-applying a transition is
// idempotent. Tightening the machine later is an edit to this table, not a
// rewrite; a removed entry surfaces as INVALID_TRANSITION.
var courseTransitions = map[domain.CourseStatus][]domain.CourseStatus{
	domain.CourseStatusDraft:     {domain.CourseStatusDraft, domain.CourseStatusPending, domain.CourseStatusPublished, domain.CourseStatusArchived},
	domain.CourseStatusPending:   {domain.CourseStatusDraft, domain.CourseStatusPending, domain.CourseStatusPublished, domain.CourseStatusArchived},
	domain.CourseStatusPublished: {domain.CourseStatusDraft, domain.CourseStatusPending, domain.CourseStatusPublished, domain.CourseStatusArchived},
	domain.CourseStatusArchived:  {domain.CourseStatusDraft, domain.CourseStatusPending, domain.CourseStatusPublished, domain.CourseStatusArchived},
}

func courseTransitionAllowed(current, next domain.CourseStatus) bool {
	for _, candidate := range courseTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CreateCourse creates a course owned by the caller. An admin creating a
// course becomes its instructor of record; that is how admin-authored courses
// are distinguished downstream. New courses always start PENDING and
// unapproved.
func (s *CourseService) CreateCourse(ctx context.Context, actor *domain.User, input CourseCreateInput) (*domain.Course, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindCourse, Verb: access.VerbCreate}, access.Resource{})
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown category", map[string]any{"category_id": *input.CategoryID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	course := &domain.Course{
		InstructorID: actor.ID,
		CategoryID:   input.CategoryID,
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		ImageURL:     input.ImageURL,
		Status:       domain.CourseStatusPending,
		IsApproved:   false,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, apperrors.MapError(err)
	}
	return course, nil
}

// UpdateCourse applies detail changes for the owner or an admin.
func (s *CourseService) UpdateCourse(ctx context.Context, actor *domain.User, courseID string, input CourseUpdateInput) (*domain.Course, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindCourse, Verb: access.VerbUpdate}, courseResource(course, nil))
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title required", nil)
		}
		course.Title = title
	}
	if input.Description != nil {
		course.Description = strings.TrimSpace(*input.Description)
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown category", map[string]any{"category_id": *input.CategoryID})
			}
			return nil, apperrors.MapError(err)
		}
		course.CategoryID = input.CategoryID
	}
	if input.ImageURL != nil {
		course.ImageURL = input.ImageURL
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, apperrors.MapError(err)
	}
	return course, nil
}

// ChangeStatus moves a course through the publication machine. Transitions
// are admin-only and validated here even though the engine already gated the
// caller. Entering PUBLISHED forces approval; leaving it never clears the
// flag.
func (s *CourseService) ChangeStatus(ctx context.Context, actor *domain.User, courseID string, newStatus domain.CourseStatus) (*domain.Course, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	if actor.Status == domain.AccountStatusSuspended {
		return nil, apperrors.NewAccessDenied(access.ReasonSuspended)
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown course status", map[string]any{"status": string(newStatus)})
	}
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewAccessDenied(access.ReasonDenied)
	}

	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !courseTransitionAllowed(course.Status, newStatus) {
		return nil, apperrors.NewInvalidTransition("course status transition not allowed", map[string]any{
			"from": string(course.Status),
			"to":   string(newStatus),
		})
	}

	oldStatus := course.Status
	course.Status = newStatus
	if newStatus == domain.CourseStatusPublished {
		// One-way coupling: publishing implies approval. Approval persists
		// across later transitions until changed explicitly.
		course.IsApproved = true
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:       events.EventCourseStatusChanged,
		ResourceID: course.ID,
		Payload: events.CourseStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Approved:  course.IsApproved,
		},
	})
	return course, nil
}

// DeleteCourse soft-deletes a course. Lessons and enrollment history stay in
// place; their rows referencing the course remain valid.
func (s *CourseService) DeleteCourse(ctx context.Context, actor *domain.User, courseID string) error {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindCourse, Verb: access.VerbDelete}, courseResource(course, nil))
	if !decision.Allowed {
		return apperrors.NewAccessDenied(decision.Reason)
	}
	if err := s.courses.SoftDelete(ctx, course.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetCourseDetail returns the course with its lessons for callers the engine
// clears: the owner, an admin, or a payment-cleared enrollee.
func (s *CourseService) GetCourseDetail(ctx context.Context, actor *domain.User, courseID string) (*domain.Course, []domain.Lesson, error) {
	if actor == nil {
		return nil, nil, apperrors.NewUnauthenticated("authentication required")
	}
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}

	enrollment, err := s.callerEnrollment(ctx, actor.ID, course.ID)
	if err != nil {
		return nil, nil, err
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindCourse, Verb: access.VerbRead}, courseResource(course, enrollment))
	if !decision.Allowed {
		return nil, nil, apperrors.NewAccessDenied(decision.Reason)
	}

	lessons, err := s.lessons.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return course, lessons, nil
}

// GetPublicCourse returns catalog-visible course info without lessons.
// Invisible courses read as not found so existence is not leaked.
func (s *CourseService) GetPublicCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.PubliclyVisible() {
		return nil, apperrors.NewNotFound("course", map[string]any{"course_id": courseID})
	}
	return course, nil
}

// ListCatalog returns publicly visible courses.
func (s *CourseService) ListCatalog(ctx context.Context, categoryID *string, limit, offset int) ([]domain.Course, error) {
	courses, err := s.courses.List(ctx, repository.CourseFilter{
		CategoryID:  categoryID,
		VisibleOnly: true,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return courses, nil
}

// ListOwn returns the caller's authored courses regardless of status.
func (s *CourseService) ListOwn(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Course, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	courses, err := s.courses.List(ctx, repository.CourseFilter{
		InstructorID: &actor.ID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return courses, nil
}

// ListAll returns every course for administrators.
func (s *CourseService) ListAll(ctx context.Context, actor *domain.User, status *domain.CourseStatus, limit, offset int) ([]domain.Course, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	if actor.Status == domain.AccountStatusSuspended {
		return nil, apperrors.NewAccessDenied(access.ReasonSuspended)
	}
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewAccessDenied(access.ReasonDenied)
	}
	courses, err := s.courses.List(ctx, repository.CourseFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return courses, nil
}

func (s *CourseService) loadCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", map[string]any{"course_id": courseID})
		}
		return nil, apperrors.MapError(err)
	}
	return course, nil
}

func (s *CourseService) callerEnrollment(ctx context.Context, userID, courseID string) (*access.EnrollmentRef, error) {
	enrollment, err := s.enrollments.GetForUserCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return &access.EnrollmentRef{PaymentStatus: enrollment.PaymentStatus}, nil
}

func (s *CourseService) publish(ctx context.Context, actor *domain.User, event events.Event) {
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

func courseResource(course *domain.Course, enrollment *access.EnrollmentRef) access.Resource {
	if course == nil {
		return access.Resource{Enrollment: enrollment}
	}
	return access.Resource{
		Course: &access.CourseRef{
			InstructorID: course.InstructorID,
			Status:       course.Status,
			IsApproved:   course.IsApproved,
		},
		Enrollment: enrollment,
	}
}
