// Package access implements the pure authorization engine. Decide combines
// an actor snapshot, an operation and a resource snapshot into an
// allow/deny verdict; it performs no I/O and mutates nothing. Callers load
// the snapshots, act on the verdict and surface denials themselves.
package access

import "github.com/spec-kit/course-service/internal/domain"

// Deny reasons surfaced to callers. These are safe to reveal; they never
// leak internal resource state.
const (
	ReasonSuspended   = "account suspended"
	ReasonNotOwner    = "not resource owner"
	ReasonNotEnrolled = "not enrolled"
	ReasonDenied      = "access denied"
)

// Decide evaluates the precedence-ordered rule set. First match wins:
//
//  1. suspended accounts are denied everything
//  2. admins are allowed everything
//  3. course/lesson writes require the owning instructor
//  4. course/lesson reads require ownership or a payment-cleared enrollment
//  5. everything else (enrollment mutations included) is denied
//
// Unknown operations and missing resource snapshots fail closed.
func Decide(actor Actor, op Operation, res Resource) Decision {
	if actor.Status == domain.AccountStatusSuspended {
		return Deny(ReasonSuspended)
	}
	if actor.Role == domain.RoleAdmin {
		return Allow()
	}

	switch op.Kind {
	case KindCourse:
		return decideCourse(actor, op.Verb, res)
	case KindLesson:
		return decideLesson(actor, op.Verb, res)
	case KindEnrollment:
		// Administrative enrollment management never reaches past rule 2.
		// The student self-service request is a separate operation owned by
		// the enrollment authority, not a KindEnrollment create here.
		return Deny(ReasonDenied)
	}
	return Deny(ReasonDenied)
}

func decideCourse(actor Actor, verb Verb, res Resource) Decision {
	switch verb {
	case VerbCreate:
		// No owner exists yet; instructors may author new courses.
		if actor.Role == domain.RoleInstructor {
			return Allow()
		}
		return Deny(ReasonDenied)
	case VerbUpdate, VerbDelete:
		if res.Course == nil {
			return Deny(ReasonDenied)
		}
		if actor.Role == domain.RoleInstructor && res.Course.InstructorID == actor.ID {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	case VerbRead:
		// Detail-with-lessons read: owner, or cleared enrollment.
		if res.Course == nil {
			return Deny(ReasonDenied)
		}
		if actor.Role == domain.RoleInstructor && res.Course.InstructorID == actor.ID {
			return Allow()
		}
		if res.Enrollment != nil && res.Enrollment.PaymentStatus.GrantsContentAccess() {
			return Allow()
		}
		return Deny(ReasonNotEnrolled)
	}
	return Deny(ReasonDenied)
}

func decideLesson(actor Actor, verb Verb, res Resource) Decision {
	if res.Course == nil {
		return Deny(ReasonDenied)
	}
	switch verb {
	case VerbCreate, VerbUpdate, VerbDelete:
		if actor.Role == domain.RoleInstructor && res.Course.InstructorID == actor.ID {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	case VerbRead:
		if actor.Role == domain.RoleInstructor && res.Course.InstructorID == actor.ID {
			return Allow()
		}
		if res.Enrollment != nil && res.Enrollment.PaymentStatus.GrantsContentAccess() {
			return Allow()
		}
		return Deny(ReasonNotEnrolled)
	}
	return Deny(ReasonDenied)
}

// CanWriteLessons is the lesson gate write predicate: admin, or the owning
// instructor.
func CanWriteLessons(actor Actor, course CourseRef) bool {
	return Decide(actor, Operation{Kind: KindLesson, Verb: VerbCreate}, Resource{Course: &course}).Allowed
}

// CanReadLessons is the lesson gate read predicate: admin, the owning
// instructor, or a payment-cleared enrollment.
func CanReadLessons(actor Actor, course CourseRef, enrollment *EnrollmentRef) bool {
	return Decide(actor, Operation{Kind: KindLesson, Verb: VerbRead}, Resource{Course: &course, Enrollment: enrollment}).Allowed
}
