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

// LessonService guards lesson reads and writes behind the lesson gate.
// Lessons carry no state of their own; visibility is entirely inherited from
// the parent course and the caller's enrollment.
type LessonService struct {
	lessons     repository.LessonRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	dispatcher  events.Dispatcher
}

// LessonDependencies bundles repositories for the lesson service.
type LessonDependencies struct {
	LessonRepo     repository.LessonRepository
	CourseRepo     repository.CourseRepository
	EnrollmentRepo repository.EnrollmentRepository
	Dispatcher     events.Dispatcher
}

// LessonInput describes lesson content fields. Media fields hold opaque URL
// references resolved by the external file store; the service never touches
// binary content.
type LessonInput struct {
	Title    string
	Content  string
	VideoURL *string
	FileURL  *string
	ImageURL *string
}

// NewLessonService constructs the service.
func NewLessonService(deps LessonDependencies) *LessonService {
	return &LessonService{
		lessons:     deps.LessonRepo,
		courses:     deps.CourseRepo,
		enrollments: deps.EnrollmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// AddLesson appends a lesson to a course for the owning instructor or an
// admin. Numbering follows creation order.
func (s *LessonService) AddLesson(ctx context.Context, actor *domain.User, courseID string, input LessonInput) (*domain.Lesson, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindLesson, Verb: access.VerbCreate}, lessonResource(course, nil))
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	lesson := &domain.Lesson{
		CourseID: course.ID,
		Title:    title,
		Content:  input.Content,
		VideoURL: input.VideoURL,
		FileURL:  input.FileURL,
		ImageURL: input.ImageURL,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:       events.EventLessonAdded,
		ResourceID: course.ID,
		Payload: events.LessonAddedPayload{
			LessonID: lesson.ID,
			Title:    lesson.Title,
		},
	})
	return lesson, nil
}

// UpdateLesson edits lesson content under the same write gate as AddLesson.
func (s *LessonService) UpdateLesson(ctx context.Context, actor *domain.User, lessonID string, input LessonInput) (*domain.Lesson, error) {
	lesson, course, err := s.loadLessonWithCourse(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindLesson, Verb: access.VerbUpdate}, lessonResource(course, nil))
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		lesson.Title = title
	}
	if input.Content != "" {
		lesson.Content = input.Content
	}
	if input.VideoURL != nil {
		lesson.VideoURL = input.VideoURL
	}
	if input.FileURL != nil {
		lesson.FileURL = input.FileURL
	}
	if input.ImageURL != nil {
		lesson.ImageURL = input.ImageURL
	}

	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, apperrors.MapError(err)
	}
	return lesson, nil
}

// DeleteLesson removes a lesson under the write gate.
func (s *LessonService) DeleteLesson(ctx context.Context, actor *domain.User, lessonID string) error {
	_, course, err := s.loadLessonWithCourse(ctx, lessonID)
	if err != nil {
		return err
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindLesson, Verb: access.VerbDelete}, lessonResource(course, nil))
	if !decision.Allowed {
		return apperrors.NewAccessDenied(decision.Reason)
	}
	if err := s.lessons.Delete(ctx, lessonID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListLessons returns a course's lessons for callers the read gate clears.
// A caller the gate rejects gets an authorization error, never an empty
// list; the empty list means the course genuinely has zero lessons.
func (s *LessonService) ListLessons(ctx context.Context, actor *domain.User, courseID string) ([]domain.Lesson, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.callerEnrollment(ctx, actor.ID, course.ID)
	if err != nil {
		return nil, err
	}
	decision := access.Decide(access.ActorFromUser(actor), access.Operation{Kind: access.KindLesson, Verb: access.VerbRead}, lessonResource(course, enrollment))
	if !decision.Allowed {
		return nil, apperrors.NewAccessDenied(decision.Reason)
	}

	lessons, err := s.lessons.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if lessons == nil {
		lessons = []domain.Lesson{}
	}
	return lessons, nil
}

func (s *LessonService) loadCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", map[string]any{"course_id": courseID})
		}
		return nil, apperrors.MapError(err)
	}
	return course, nil
}

func (s *LessonService) loadLessonWithCourse(ctx context.Context, lessonID string) (*domain.Lesson, *domain.Course, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("lesson", map[string]any{"lesson_id": lessonID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	course, err := s.loadCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return lesson, course, nil
}

func (s *LessonService) callerEnrollment(ctx context.Context, userID, courseID string) (*access.EnrollmentRef, error) {
	enrollment, err := s.enrollments.GetForUserCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return &access.EnrollmentRef{PaymentStatus: enrollment.PaymentStatus}, nil
}

func (s *LessonService) publish(ctx context.Context, actor *domain.User, event events.Event) {
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

func lessonResource(course *domain.Course, enrollment *access.EnrollmentRef) access.Resource {
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
