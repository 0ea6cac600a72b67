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

// LessonsHandler manages lesson endpoints.
type LessonsHandler struct {
	lessons *service.LessonService
}

// NewLessonsHandler constructs handler.
func NewLessonsHandler(lessonService *service.LessonService) *LessonsHandler {
	return &LessonsHandler{lessons: lessonService}
}

// ListLessons GET /courses/:id/lessons.
func (h *LessonsHandler) ListLessons(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	lessons, err := h.lessons.ListLessons(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lessonResponses(lessons)})
}

// AddLesson POST /courses/:id/lessons.
func (h *LessonsHandler) AddLesson(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	lesson, err := h.lessons.AddLesson(c.Context(), principal.User, c.Params("id"), service.LessonInput{
		Title:    req.Title,
		Content:  req.Content,
		VideoURL: req.VideoURL,
		FileURL:  req.FileURL,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": lessonResponse(lesson, 0)})
}

// UpdateLesson PATCH /lessons/:id.
func (h *LessonsHandler) UpdateLesson(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.UpdateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lesson, err := h.lessons.UpdateLesson(c.Context(), principal.User, c.Params("id"), service.LessonInput{
		Title:    req.Title,
		Content:  req.Content,
		VideoURL: req.VideoURL,
		FileURL:  req.FileURL,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lessonResponse(lesson, 0)})
}

// DeleteLesson DELETE /lessons/:id.
func (h *LessonsHandler) DeleteLesson(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if err := h.lessons.DeleteLesson(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func lessonResponse(lesson *domain.Lesson, position int) dto.LessonResponse {
	return dto.LessonResponse{
		ID:        lesson.ID,
		CourseID:  lesson.CourseID,
		Title:     lesson.Title,
		Content:   lesson.Content,
		VideoURL:  lesson.VideoURL,
		FileURL:   lesson.FileURL,
		ImageURL:  lesson.ImageURL,
		Position:  position,
		CreatedAt: lesson.CreatedAt,
	}
}

func lessonResponses(lessons []domain.Lesson) []dto.LessonResponse {
	items := make([]dto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		// lessons arrive ordered by creation time; position is 1-based
		items = append(items, lessonResponse(&lessons[i], i+1))
	}
	return items
}
