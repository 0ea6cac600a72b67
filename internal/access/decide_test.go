package access

import (
	"testing"

	"github.com/spec-kit/course-service/internal/domain"
)

func TestDecideSuspendedDeniesEverything(t *testing.T) {
	course := &CourseRef{InstructorID: "actor-1"}
	enrollment := &EnrollmentRef{PaymentStatus: domain.PaymentStatusPaid}

	roles := []domain.Role{domain.RoleStudent, domain.RoleInstructor, domain.RoleAdmin}
	ops := []Operation{
		{Kind: KindCourse, Verb: VerbCreate},
		{Kind: KindCourse, Verb: VerbRead},
		{Kind: KindCourse, Verb: VerbUpdate},
		{Kind: KindCourse, Verb: VerbDelete},
		{Kind: KindLesson, Verb: VerbRead},
		{Kind: KindLesson, Verb: VerbCreate},
		{Kind: KindEnrollment, Verb: VerbCreate},
		{Kind: KindEnrollment, Verb: VerbDelete},
	}

	for _, role := range roles {
		actor := Actor{ID: "actor-1", Role: role, Status: domain.AccountStatusSuspended}
		for _, op := range ops {
			// even owning instructors and admins are blocked while suspended
			decision := Decide(actor, op, Resource{Course: course, Enrollment: enrollment})
			if decision.Allowed {
				t.Errorf("suspended %s allowed %s %s", role, op.Verb, op.Kind)
			}
			if decision.Reason != ReasonSuspended {
				t.Errorf("suspended %s on %s %s: reason = %q, want %q", role, op.Verb, op.Kind, decision.Reason, ReasonSuspended)
			}
		}
	}
}

func TestDecideAdminAllowsEverything(t *testing.T) {
	actor := Actor{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.AccountStatusActive}
	ops := []Operation{
		{Kind: KindCourse, Verb: VerbCreate},
		{Kind: KindCourse, Verb: VerbRead},
		{Kind: KindCourse, Verb: VerbUpdate},
		{Kind: KindCourse, Verb: VerbDelete},
		{Kind: KindLesson, Verb: VerbRead},
		{Kind: KindLesson, Verb: VerbCreate},
		{Kind: KindLesson, Verb: VerbUpdate},
		{Kind: KindLesson, Verb: VerbDelete},
		{Kind: KindEnrollment, Verb: VerbCreate},
		{Kind: KindEnrollment, Verb: VerbUpdate},
		{Kind: KindEnrollment, Verb: VerbDelete},
	}
	for _, op := range ops {
		// no resource snapshot needed: rule 2 fires before ownership checks
		if decision := Decide(actor, op, Resource{}); !decision.Allowed {
			t.Errorf("admin denied %s %s: %s", op.Verb, op.Kind, decision.Reason)
		}
	}
}

func TestDecideCourseOwnership(t *testing.T) {
	owned := &CourseRef{InstructorID: "instructor-1"}
	foreign := &CourseRef{InstructorID: "instructor-2"}

	tests := []struct {
		name       string
		actor      Actor
		verb       Verb
		course     *CourseRef
		wantAllow  bool
		wantReason string
	}{
		{
			name:      "instructor creates course",
			actor:     Actor{ID: "instructor-1", Role: domain.RoleInstructor, Status: domain.AccountStatusActive},
			verb:      VerbCreate,
			wantAllow: true,
		},
		{
			name:       "student cannot create course",
			actor:      Actor{ID: "student-1", Role: domain.RoleStudent, Status: domain.AccountStatusActive},
			verb:       VerbCreate,
			wantReason: ReasonDenied,
		},
		{
			name:      "owner updates own course",
			actor:     Actor{ID: "instructor-1", Role: domain.RoleInstructor, Status: domain.AccountStatusActive},
			verb:      VerbUpdate,
			course:    owned,
			wantAllow: true,
		},
		{
			name:       "instructor cannot update foreign course",
			actor:      Actor{ID: "instructor-1", Role: domain.RoleInstructor, Status: domain.AccountStatusActive},
			verb:       VerbUpdate,
			course:     foreign,
			wantReason: ReasonNotOwner,
		},
		{
			name:      "owner deletes own course",
			actor:     Actor{ID: "instructor-1", Role: domain.RoleInstructor, Status: domain.AccountStatusActive},
			verb:      VerbDelete,
			course:    owned,
			wantAllow: true,
		},
		{
			name:       "missing course snapshot fails closed",
			actor:      Actor{ID: "instructor-1", Role: domain.RoleInstructor, Status: domain.AccountStatusActive},
			verb:       VerbUpdate,
			course:     nil,
			wantReason: ReasonDenied,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(tc.actor, Operation{Kind: KindCourse, Verb: tc.verb}, Resource{Course: tc.course})
			if decision.Allowed != tc.wantAllow {
				t.Fatalf("allowed = %v, want %v (reason %q)", decision.Allowed, tc.wantAllow, decision.Reason)
			}
			if !tc.wantAllow && decision.Reason != tc.wantReason {
				t.Fatalf("reason = %q, want %q", decision.Reason, tc.wantReason)
			}
		})
	}
}

func TestDecideLessonReadGate(t *testing.T) {
	course := &CourseRef{InstructorID: "instructor-1", Status: domain.CourseStatusPublished, IsApproved: true}
	student := Actor{ID: "student-1", Role: domain.RoleStudent, Status: domain.AccountStatusActive}

	tests := []struct {
		name       string
		enrollment *EnrollmentRef
		wantAllow  bool
	}{
		{"no enrollment", nil, false},
		{"pending payment", &EnrollmentRef{PaymentStatus: domain.PaymentStatusPending}, false},
		{"refunded payment", &EnrollmentRef{PaymentStatus: domain.PaymentStatusRefund}, false},
		{"free enrollment", &EnrollmentRef{PaymentStatus: domain.PaymentStatusFree}, true},
		{"paid enrollment", &EnrollmentRef{PaymentStatus: domain.PaymentStatusPaid}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(student, Operation{Kind: KindLesson, Verb: VerbRead}, Resource{Course: course, Enrollment: tc.enrollment})
			if decision.Allowed != tc.wantAllow {
				t.Fatalf("allowed = %v, want %v", decision.Allowed, tc.wantAllow)
			}
			if !tc.wantAllow && decision.Reason != ReasonNotEnrolled {
				t.Fatalf("reason = %q, want %q", decision.Reason, ReasonNotEnrolled)
			}
		})
	}
}

func TestDecideLessonWriteRequiresOwner(t *testing.T) {
	course := CourseRef{InstructorID: "instructor-1"}

	owner := Actor{ID: "instructor-1", Role: domain.RoleInstructor, Status: domain.AccountStatusActive}
	if !CanWriteLessons(owner, course) {
		t.Error("owning instructor should write lessons")
	}

	other := Actor{ID: "instructor-2", Role: domain.RoleInstructor, Status: domain.AccountStatusActive}
	if CanWriteLessons(other, course) {
		t.Error("non-owning instructor should not write lessons")
	}

	// a paid enrollment grants reads, never writes
	student := Actor{ID: "student-1", Role: domain.RoleStudent, Status: domain.AccountStatusActive}
	if CanWriteLessons(student, course) {
		t.Error("student should not write lessons")
	}
	if !CanReadLessons(student, course, &EnrollmentRef{PaymentStatus: domain.PaymentStatusPaid}) {
		t.Error("paid student should read lessons")
	}
}

func TestDecideEnrollmentMutationsAdminOnly(t *testing.T) {
	verbs := []Verb{VerbCreate, VerbRead, VerbUpdate, VerbDelete}
	for _, role := range []domain.Role{domain.RoleStudent, domain.RoleInstructor} {
		actor := Actor{ID: "actor-1", Role: role, Status: domain.AccountStatusActive}
		for _, verb := range verbs {
			decision := Decide(actor, Operation{Kind: KindEnrollment, Verb: verb}, Resource{})
			if decision.Allowed {
				t.Errorf("%s allowed enrollment %s", role, verb)
			}
		}
	}
}

func TestActorFromUserNil(t *testing.T) {
	actor := ActorFromUser(nil)
	decision := Decide(actor, Operation{Kind: KindCourse, Verb: VerbCreate}, Resource{})
	if decision.Allowed {
		t.Error("zero actor must be denied")
	}
}
