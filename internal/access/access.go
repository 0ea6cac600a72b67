package access

import "github.com/spec-kit/course-service/internal/domain"

// Verb identifies what the caller is trying to do to a resource.
type Verb string

const (
	VerbRead   Verb = "read"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// ResourceKind identifies the resource class an operation targets.
type ResourceKind string

const (
	KindCourse     ResourceKind = "course"
	KindLesson     ResourceKind = "lesson"
	KindEnrollment ResourceKind = "enrollment"
)

// Operation pairs a verb with the resource kind it targets.
type Operation struct {
	Kind ResourceKind
	Verb Verb
}

// Actor is the caller snapshot the engine decides on. It is passed by value
// into every call; the engine holds no ambient current-user state.
type Actor struct {
	ID     string
	Role   domain.Role
	Status domain.AccountStatus
}

// ActorFromUser derives the decision snapshot from a loaded account.
func ActorFromUser(u *domain.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Role: u.Role, Status: u.Status}
}

// CourseRef is the ownership and state snapshot of the target course.
type CourseRef struct {
	InstructorID string
	Status       domain.CourseStatus
	IsApproved   bool
}

// EnrollmentRef is the snapshot of the caller's own enrollment in the target
// course, when one exists.
type EnrollmentRef struct {
	PaymentStatus domain.PaymentStatus
}

// Resource bundles the snapshots relevant to one decision. A nil Course on a
// course- or lesson-scoped operation means the engine cannot establish
// ownership and fails closed.
type Resource struct {
	Course     *CourseRef
	Enrollment *EnrollmentRef
}

// Decision is the engine verdict.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with a caller-safe reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}
