package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-service/internal/api/dto"
	"github.com/spec-kit/course-service/internal/api/validation"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/service"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// EnrollmentsHandler manages enrollment endpoints.
type EnrollmentsHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentsHandler constructs handler.
func NewEnrollmentsHandler(enrollmentService *service.EnrollmentService) *EnrollmentsHandler {
	return &EnrollmentsHandler{enrollments: enrollmentService}
}

// SelfEnroll POST /courses/:id/enroll. Student self-service request; any
// supplied payment status is overridden to PENDING by the authority.
func (h *EnrollmentsHandler) SelfEnroll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.SelfEnrollRequest
	// body is optional for self enrollment
	_ = c.BodyParser(&req)

	enrollment, err := h.enrollments.RequestEnrollment(c.Context(), principal.User, principal.User.ID, c.Params("id"), req.PaymentStatus)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// AdminEnroll POST /admin/enrollments.
func (h *EnrollmentsHandler) AdminEnroll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.AdminEnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	enrollment, err := h.enrollments.AdminEnroll(c.Context(), principal.User, service.AdminEnrollInput{
		UserID:        req.UserID,
		CourseID:      req.CourseID,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// ChangePayment PATCH /admin/enrollments/:id/payment.
func (h *EnrollmentsHandler) ChangePayment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.ChangePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	enrollment, err := h.enrollments.ChangePayment(c.Context(), principal.User, c.Params("id"), req.PaymentStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// UpdateProgress PATCH /admin/enrollments/:id/progress.
func (h *EnrollmentsHandler) UpdateProgress(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	enrollment, err := h.enrollments.UpdateProgress(c.Context(), principal.User, c.Params("id"), req.Progress)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// DeleteEnrollment DELETE /admin/enrollments/:id. Hard delete.
func (h *EnrollmentsHandler) DeleteEnrollment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if err := h.enrollments.DeleteEnrollment(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListMine GET /me/enrollments.
func (h *EnrollmentsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	enrollments, err := h.enrollments.ListForUser(c.Context(), principal.User, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponses(enrollments)})
}

// ListForCourse GET /admin/courses/:id/enrollments.
func (h *EnrollmentsHandler) ListForCourse(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	enrollments, err := h.enrollments.ListForCourse(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponses(enrollments)})
}

func enrollmentResponse(enrollment *domain.Enrollment) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:             enrollment.ID,
		UserID:         enrollment.UserID,
		CourseID:       enrollment.CourseID,
		PaymentStatus:  enrollment.PaymentStatus,
		Progress:       enrollment.Progress,
		CanViewContent: enrollment.CanViewContent(),
		EnrolledAt:     enrollment.EnrolledAt,
		CompletedAt:    enrollment.CompletedAt,
	}
}

func enrollmentResponses(enrollments []domain.Enrollment) []dto.EnrollmentResponse {
	items := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		items = append(items, enrollmentResponse(&enrollments[i]))
	}
	return items
}
