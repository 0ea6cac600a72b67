package service

import (
	"context"
	"testing"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

func domainCode(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.ToDomainError(err).Code
}

type courseFixture struct {
	service     *CourseService
	courses     *fakeCourseRepo
	categories  *fakeCategoryRepo
	lessons     *fakeLessonRepo
	enrollments *fakeEnrollmentRepo
	dispatcher  *recordingDispatcher
}

func newCourseFixture() *courseFixture {
	f := &courseFixture{
		courses:     newFakeCourseRepo(),
		categories:  newFakeCategoryRepo(),
		lessons:     newFakeLessonRepo(),
		enrollments: newFakeEnrollmentRepo(),
		dispatcher:  &recordingDispatcher{},
	}
	f.service = NewCourseService(CourseDependencies{
		CourseRepo:     f.courses,
		CategoryRepo:   f.categories,
		LessonRepo:     f.lessons,
		EnrollmentRepo: f.enrollments,
		Dispatcher:     f.dispatcher,
	})
	return f
}

func activeUser(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Role: role, Status: domain.AccountStatusActive}
}

func TestCreateCourseStartsPendingUnapproved(t *testing.T) {
	f := newCourseFixture()
	instructor := activeUser("instructor-1", domain.RoleInstructor)

	course, err := f.service.CreateCourse(context.Background(), instructor, CourseCreateInput{Title: "Intro to Go"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.Status != domain.CourseStatusPending {
		t.Errorf("status = %s, want PENDING", course.Status)
	}
	if course.IsApproved {
		t.Error("new course must not be approved")
	}
	if course.InstructorID != instructor.ID {
		t.Errorf("instructor = %s, want %s", course.InstructorID, instructor.ID)
	}
}

func TestCreateCourseDeniedForStudent(t *testing.T) {
	f := newCourseFixture()
	_, err := f.service.CreateCourse(context.Background(), activeUser("student-1", domain.RoleStudent), CourseCreateInput{Title: "X"})
	if domainCode(err) != "ACCESS_DENIED" {
		t.Fatalf("err = %v, want ACCESS_DENIED", err)
	}
}

func TestCreateCourseSuspendedInstructorDenied(t *testing.T) {
	f := newCourseFixture()
	suspended := &domain.User{ID: "instructor-1", Role: domain.RoleInstructor, Status: domain.AccountStatusSuspended}
	_, err := f.service.CreateCourse(context.Background(), suspended, CourseCreateInput{Title: "X"})
	if domainCode(err) != "ACCESS_DENIED" {
		t.Fatalf("err = %v, want ACCESS_DENIED", err)
	}
}

func TestUpdateCourseOwnershipEnforced(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	course, err := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Original"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	newTitle := "Renamed"
	other := activeUser("instructor-2", domain.RoleInstructor)
	if _, err := f.service.UpdateCourse(context.Background(), other, course.ID, CourseUpdateInput{Title: &newTitle}); domainCode(err) != "ACCESS_DENIED" {
		t.Fatalf("foreign instructor err = %v, want ACCESS_DENIED", err)
	}

	updated, err := f.service.UpdateCourse(context.Background(), owner, course.ID, CourseUpdateInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", updated.Title)
	}

	admin := activeUser("admin-1", domain.RoleAdmin)
	adminTitle := "Admin Renamed"
	if _, err := f.service.UpdateCourse(context.Background(), admin, course.ID, CourseUpdateInput{Title: &adminTitle}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestChangeStatusPublishForcesApproval(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	admin := activeUser("admin-1", domain.RoleAdmin)

	course, err := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Course"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	published, err := f.service.ChangeStatus(context.Background(), admin, course.ID, domain.CourseStatusPublished)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if !published.IsApproved {
		t.Error("publishing must set approval")
	}

	// leaving PUBLISHED keeps the approval flag
	archived, err := f.service.ChangeStatus(context.Background(), admin, course.ID, domain.CourseStatusArchived)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !archived.IsApproved {
		t.Error("approval must persist after leaving PUBLISHED")
	}

	event, ok := f.dispatcher.lastOfType(events.EventCourseStatusChanged)
	if !ok {
		t.Fatal("expected course_status_changed event")
	}
	payload, ok := event.Payload.(events.CourseStatusChangedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Payload)
	}
	if payload.NewStatus != domain.CourseStatusArchived {
		t.Errorf("payload status = %s, want ARCHIVED", payload.NewStatus)
	}
}

func TestChangeStatusIdempotentSelfTransition(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	admin := activeUser("admin-1", domain.RoleAdmin)

	course, _ := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Course"})
	if _, err := f.service.ChangeStatus(context.Background(), admin, course.ID, domain.CourseStatusPending); err != nil {
		t.Fatalf("self transition should be a no-op success, got %v", err)
	}
}

func TestChangeStatusAdminOnly(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	course, _ := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Course"})

	// not even the owning instructor may move the status machine
	if _, err := f.service.ChangeStatus(context.Background(), owner, course.ID, domain.CourseStatusPublished); domainCode(err) != "ACCESS_DENIED" {
		t.Fatalf("owner err = %v, want ACCESS_DENIED", err)
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	admin := activeUser("admin-1", domain.RoleAdmin)
	course, _ := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Course"})

	if _, err := f.service.ChangeStatus(context.Background(), admin, course.ID, domain.CourseStatus("LIVE")); domainCode(err) != "VALIDATION_FAILED" {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestDeleteCourseSoftDeletes(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	course, _ := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Course"})

	if err := f.service.DeleteCourse(context.Background(), owner, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	// subsequent reads see it as gone
	if _, err := f.service.GetPublicCourse(context.Background(), course.ID); domainCode(err) != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	// deleting again reports not found, not a silent success
	if err := f.service.DeleteCourse(context.Background(), owner, course.ID); domainCode(err) != "NOT_FOUND" {
		t.Fatalf("second delete err = %v, want NOT_FOUND", err)
	}
}

func TestGetPublicCourseHidesUnpublished(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	course, _ := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Course"})

	if _, err := f.service.GetPublicCourse(context.Background(), course.ID); domainCode(err) != "NOT_FOUND" {
		t.Fatalf("pending course err = %v, want NOT_FOUND", err)
	}

	admin := activeUser("admin-1", domain.RoleAdmin)
	if _, err := f.service.ChangeStatus(context.Background(), admin, course.ID, domain.CourseStatusPublished); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := f.service.GetPublicCourse(context.Background(), course.ID); err != nil {
		t.Fatalf("published course: %v", err)
	}
}

func TestGetCourseDetailEnrollmentGate(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	course, _ := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Course"})

	student := activeUser("student-1", domain.RoleStudent)
	if _, _, err := f.service.GetCourseDetail(context.Background(), student, course.ID); domainCode(err) != "ACCESS_DENIED" {
		t.Fatalf("unenrolled student err = %v, want ACCESS_DENIED", err)
	}

	// a pending enrollment still does not clear the gate
	_ = f.enrollments.Create(context.Background(), &domain.Enrollment{UserID: student.ID, CourseID: course.ID, PaymentStatus: domain.PaymentStatusPending})
	if _, _, err := f.service.GetCourseDetail(context.Background(), student, course.ID); domainCode(err) != "ACCESS_DENIED" {
		t.Fatalf("pending enrollee err = %v, want ACCESS_DENIED", err)
	}

	// the most recent enrollment decides; a later paid row clears it
	_ = f.enrollments.Create(context.Background(), &domain.Enrollment{UserID: student.ID, CourseID: course.ID, PaymentStatus: domain.PaymentStatusPaid})
	if _, _, err := f.service.GetCourseDetail(context.Background(), student, course.ID); err != nil {
		t.Fatalf("paid enrollee: %v", err)
	}

	if _, _, err := f.service.GetCourseDetail(context.Background(), owner, course.ID); err != nil {
		t.Fatalf("owner: %v", err)
	}
}

func TestListCatalogOnlyVisibleCourses(t *testing.T) {
	f := newCourseFixture()
	owner := activeUser("instructor-1", domain.RoleInstructor)
	admin := activeUser("admin-1", domain.RoleAdmin)

	hidden, _ := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Hidden"})
	visible, _ := f.service.CreateCourse(context.Background(), owner, CourseCreateInput{Title: "Visible"})
	if _, err := f.service.ChangeStatus(context.Background(), admin, visible.ID, domain.CourseStatusPublished); err != nil {
		t.Fatalf("publish: %v", err)
	}

	catalog, err := f.service.ListCatalog(context.Background(), nil, 20, 0)
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(catalog) != 1 || catalog[0].ID != visible.ID {
		t.Fatalf("catalog = %v, want only %s", catalog, visible.ID)
	}

	// the owner still sees both through their own listing
	own, err := f.service.ListOwn(context.Background(), owner, 20, 0)
	if err != nil {
		t.Fatalf("ListOwn: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("own listing = %d courses, want 2 (hidden %s included)", len(own), hidden.ID)
	}
}

func TestListAllAdminOnly(t *testing.T) {
	f := newCourseFixture()
	if _, err := f.service.ListAll(context.Background(), activeUser("instructor-1", domain.RoleInstructor), nil, 20, 0); domainCode(err) != "ACCESS_DENIED" {
		t.Fatalf("err = %v, want ACCESS_DENIED", err)
	}
}
