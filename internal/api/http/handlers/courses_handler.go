package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-service/internal/api/dto"
	"github.com/spec-kit/course-service/internal/api/validation"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/service"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// CoursesHandler manages course endpoints.
type CoursesHandler struct {
	courses *service.CourseService
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courseService *service.CourseService) *CoursesHandler {
	return &CoursesHandler{courses: courseService}
}

// ListCatalog GET /courses. Public: published and approved courses only.
func (h *CoursesHandler) ListCatalog(c *fiber.Ctx) error {
	var categoryID *string
	if v := c.Query("category_id"); v != "" {
		categoryID = &v
	}
	limit, offset := parsePage(c)
	courses, err := h.courses.ListCatalog(c.Context(), categoryID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseSummaries(courses)})
}

// GetCourse GET /courses/:id. Public catalog view, no lessons.
func (h *CoursesHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.courses.GetPublicCourse(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseSummary(course)})
}

// GetCourseDetail GET /courses/:id/detail. Owner, admin or cleared enrollee.
func (h *CoursesHandler) GetCourseDetail(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	course, lessons, err := h.courses.GetCourseDetail(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseDetail(course, lessons)})
}

// CreateCourse POST /courses.
func (h *CoursesHandler) CreateCourse(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	course, err := h.courses.CreateCourse(c.Context(), principal.User, service.CourseCreateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": courseSummary(course)})
}

// UpdateCourse PATCH /courses/:id.
func (h *CoursesHandler) UpdateCourse(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	course, err := h.courses.UpdateCourse(c.Context(), principal.User, c.Params("id"), service.CourseUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseSummary(course)})
}

// ChangeStatus PATCH /courses/:id/status. Admin only.
func (h *CoursesHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.ChangeCourseStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	course, err := h.courses.ChangeStatus(c.Context(), principal.User, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseSummary(course)})
}

// DeleteCourse DELETE /courses/:id. Soft delete.
func (h *CoursesHandler) DeleteCourse(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if err := h.courses.DeleteCourse(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListOwn GET /courses/mine. Instructor's authored courses, any status.
func (h *CoursesHandler) ListOwn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	limit, offset := parsePage(c)
	courses, err := h.courses.ListOwn(c.Context(), principal.User, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseSummaries(courses)})
}

// ListAll GET /admin/courses. Admin view across all statuses.
func (h *CoursesHandler) ListAll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var status *domain.CourseStatus
	if v := c.Query("status"); v != "" {
		s := domain.CourseStatus(v)
		status = &s
	}
	limit, offset := parsePage(c)
	courses, err := h.courses.ListAll(c.Context(), principal.User, status, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseSummaries(courses)})
}

func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func courseSummary(course *domain.Course) dto.CourseSummary {
	return dto.CourseSummary{
		ID:           course.ID,
		InstructorID: course.InstructorID,
		CategoryID:   course.CategoryID,
		Title:        course.Title,
		Description:  course.Description,
		ImageURL:     course.ImageURL,
		Status:       course.Status,
		IsApproved:   course.IsApproved,
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
	}
}

func courseSummaries(courses []domain.Course) []dto.CourseSummary {
	items := make([]dto.CourseSummary, 0, len(courses))
	for i := range courses {
		items = append(items, courseSummary(&courses[i]))
	}
	return items
}

func courseDetail(course *domain.Course, lessons []domain.Lesson) dto.CourseDetailResponse {
	return dto.CourseDetailResponse{
		CourseSummary: courseSummary(course),
		Lessons:       lessonResponses(lessons),
	}
}
