package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository"
)

// In-memory repository fakes. They mirror the Postgres contracts the services
// rely on: missing rows surface as pgx.ErrNoRows, course reads hide
// soft-deleted rows, and enrollment listings come back newest first.

type fakeUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCourseRepo struct {
	courses map[string]*domain.Course
	order   []string
	seq     int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*domain.Course)}
}

func (r *fakeCourseRepo) Create(_ context.Context, course *domain.Course) error {
	r.seq++
	if course.ID == "" {
		course.ID = fmt.Sprintf("course-%d", r.seq)
	}
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt
	clone := *course
	r.courses[course.ID] = &clone
	r.order = append(r.order, course.ID)
	return nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *domain.Course) error {
	existing, ok := r.courses[course.ID]
	if !ok || existing.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	course.UpdatedAt = time.Now()
	clone := *course
	r.courses[course.ID] = &clone
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id string) (*domain.Course, error) {
	course, ok := r.courses[id]
	if !ok || course.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	clone := *course
	return &clone, nil
}

func (r *fakeCourseRepo) SoftDelete(_ context.Context, id string) error {
	course, ok := r.courses[id]
	if !ok || course.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	course.DeletedAt = &now
	return nil
}

func (r *fakeCourseRepo) List(_ context.Context, filter repository.CourseFilter) ([]domain.Course, error) {
	var result []domain.Course
	for _, id := range r.order {
		course := r.courses[id]
		if course.DeletedAt != nil {
			continue
		}
		if filter.VisibleOnly && !course.PubliclyVisible() {
			continue
		}
		if filter.InstructorID != nil && course.InstructorID != *filter.InstructorID {
			continue
		}
		if filter.CategoryID != nil && (course.CategoryID == nil || *course.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.Status != nil && course.Status != *filter.Status {
			continue
		}
		result = append(result, *course)
	}
	return result, nil
}

type fakeLessonRepo struct {
	lessons map[string]*domain.Lesson
	order   []string
	seq     int
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: make(map[string]*domain.Lesson)}
}

func (r *fakeLessonRepo) Create(_ context.Context, lesson *domain.Lesson) error {
	r.seq++
	if lesson.ID == "" {
		lesson.ID = fmt.Sprintf("lesson-%d", r.seq)
	}
	lesson.CreatedAt = time.Now()
	lesson.UpdatedAt = lesson.CreatedAt
	clone := *lesson
	r.lessons[lesson.ID] = &clone
	r.order = append(r.order, lesson.ID)
	return nil
}

func (r *fakeLessonRepo) Update(_ context.Context, lesson *domain.Lesson) error {
	if _, ok := r.lessons[lesson.ID]; !ok {
		return pgx.ErrNoRows
	}
	lesson.UpdatedAt = time.Now()
	clone := *lesson
	r.lessons[lesson.ID] = &clone
	return nil
}

func (r *fakeLessonRepo) GetByID(_ context.Context, id string) (*domain.Lesson, error) {
	lesson, ok := r.lessons[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *lesson
	return &clone, nil
}

func (r *fakeLessonRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.lessons[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.lessons, id)
	for i, lessonID := range r.order {
		if lessonID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeLessonRepo) ListByCourse(_ context.Context, courseID string) ([]domain.Lesson, error) {
	var result []domain.Lesson
	for _, id := range r.order {
		lesson := r.lessons[id]
		if lesson.CourseID == courseID {
			result = append(result, *lesson)
		}
	}
	return result, nil
}

type fakeEnrollmentRepo struct {
	enrollments map[string]*domain.Enrollment
	order       []string
	seq         int
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: make(map[string]*domain.Enrollment)}
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, enrollment *domain.Enrollment) error {
	r.seq++
	if enrollment.ID == "" {
		enrollment.ID = fmt.Sprintf("enrollment-%d", r.seq)
	}
	// monotonic timestamps so newest-first ordering is deterministic
	enrollment.EnrolledAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	enrollment.UpdatedAt = enrollment.EnrolledAt
	clone := *enrollment
	r.enrollments[enrollment.ID] = &clone
	r.order = append(r.order, enrollment.ID)
	return nil
}

func (r *fakeEnrollmentRepo) Update(_ context.Context, enrollment *domain.Enrollment) error {
	if _, ok := r.enrollments[enrollment.ID]; !ok {
		return pgx.ErrNoRows
	}
	enrollment.UpdatedAt = time.Now()
	clone := *enrollment
	r.enrollments[enrollment.ID] = &clone
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id string) (*domain.Enrollment, error) {
	enrollment, ok := r.enrollments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *enrollment
	return &clone, nil
}

func (r *fakeEnrollmentRepo) GetForUserCourse(_ context.Context, userID, courseID string) (*domain.Enrollment, error) {
	for i := len(r.order) - 1; i >= 0; i-- {
		enrollment := r.enrollments[r.order[i]]
		if enrollment != nil && enrollment.UserID == userID && enrollment.CourseID == courseID {
			clone := *enrollment
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.enrollments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.enrollments, id)
	for i, enrollmentID := range r.order {
		if enrollmentID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) ListByUser(_ context.Context, userID string) ([]domain.Enrollment, error) {
	var result []domain.Enrollment
	for i := len(r.order) - 1; i >= 0; i-- {
		enrollment := r.enrollments[r.order[i]]
		if enrollment.UserID == userID {
			result = append(result, *enrollment)
		}
	}
	return result, nil
}

func (r *fakeEnrollmentRepo) ListByCourse(_ context.Context, courseID string) ([]domain.Enrollment, error) {
	var result []domain.Enrollment
	for i := len(r.order) - 1; i >= 0; i-- {
		enrollment := r.enrollments[r.order[i]]
		if enrollment.CourseID == courseID {
			result = append(result, *enrollment)
		}
	}
	return result, nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.Category
	seq        int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]*domain.Category)}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.seq++
	if category.ID == "" {
		category.ID = fmt.Sprintf("category-%d", r.seq)
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *category
	return &clone, nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	var result []domain.Category
	for _, category := range r.categories {
		result = append(result, *category)
	}
	return result, nil
}

type fakeVerificationStore struct {
	tokens map[string]string
}

func newFakeVerificationStore() *fakeVerificationStore {
	return &fakeVerificationStore{tokens: make(map[string]string)}
}

func (s *fakeVerificationStore) Put(_ context.Context, token, userID string, _ time.Duration) error {
	s.tokens[token] = userID
	return nil
}

func (s *fakeVerificationStore) Redeem(_ context.Context, token string) (string, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return "", auth.ErrTokenNotFound
	}
	delete(s.tokens, token)
	return userID, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *recordingDispatcher) lastOfType(t events.EventType) (events.Event, bool) {
	for i := len(d.published) - 1; i >= 0; i-- {
		if d.published[i].Type == t {
			return d.published[i], true
		}
	}
	return events.Event{}, false
}
