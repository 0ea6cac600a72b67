package dto

import "time"

// CreateLessonRequest payload.
type CreateLessonRequest struct {
	Title    string  `json:"title" validate:"required"`
	Content  string  `json:"content"`
	VideoURL *string `json:"video_url"`
	FileURL  *string `json:"file_url"`
	ImageURL *string `json:"image_url"`
}

// UpdateLessonRequest payload; empty fields are left unchanged.
type UpdateLessonRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	VideoURL *string `json:"video_url"`
	FileURL  *string `json:"file_url"`
	ImageURL *string `json:"image_url"`
}

// LessonResponse response. Position is derived from creation order within
// the course.
type LessonResponse struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	VideoURL  *string   `json:"video_url"`
	FileURL   *string   `json:"file_url"`
	ImageURL  *string   `json:"image_url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
