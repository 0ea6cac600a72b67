package dto

import (
	"time"

	"github.com/spec-kit/course-service/internal/domain"
)

// CreateCourseRequest payload.
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	CategoryID  *string `json:"category_id"`
	ImageURL    *string `json:"image_url"`
}

// UpdateCourseRequest payload; absent fields are left unchanged.
type UpdateCourseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	ImageURL    *string `json:"image_url"`
}

// ChangeCourseStatusRequest payload.
type ChangeCourseStatusRequest struct {
	Status domain.CourseStatus `json:"status" validate:"required"`
}

// CourseSummary response.
type CourseSummary struct {
	ID           string              `json:"id"`
	InstructorID string              `json:"instructor_id"`
	CategoryID   *string             `json:"category_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	ImageURL     *string             `json:"image_url"`
	Status       domain.CourseStatus `json:"status"`
	IsApproved   bool                `json:"is_approved"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CourseDetailResponse provides full course info including lessons.
type CourseDetailResponse struct {
	CourseSummary
	Lessons []LessonResponse `json:"lessons"`
}
