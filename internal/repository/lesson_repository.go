package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-service/internal/domain"
)

// LessonRepository encapsulates lesson persistence. Lessons carry no explicit
// position; ListByCourse orders by creation time, which is how numbering is
// derived.
type LessonRepository interface {
	Create(ctx context.Context, lesson *domain.Lesson) error
	Update(ctx context.Context, lesson *domain.Lesson) error
	GetByID(ctx context.Context, id string) (*domain.Lesson, error)
	Delete(ctx context.Context, id string) error
	ListByCourse(ctx context.Context, courseID string) ([]domain.Lesson, error)
}

type lessonRepository struct {
	pool *pgxpool.Pool
}

// NewLessonRepository instantiates repository.
func NewLessonRepository(pool *pgxpool.Pool) LessonRepository {
	return &lessonRepository{pool: pool}
}

func (r *lessonRepository) Create(ctx context.Context, lesson *domain.Lesson) error {
	const query = `
        INSERT INTO lessons (course_id, title, content, video_url, file_url, image_url)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		lesson.CourseID,
		lesson.Title,
		lesson.Content,
		lesson.VideoURL,
		lesson.FileURL,
		lesson.ImageURL,
	).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)
}

func (r *lessonRepository) Update(ctx context.Context, lesson *domain.Lesson) error {
	const query = `
        UPDATE lessons SET title=$1, content=$2, video_url=$3, file_url=$4, image_url=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		lesson.Title,
		lesson.Content,
		lesson.VideoURL,
		lesson.FileURL,
		lesson.ImageURL,
		lesson.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *lessonRepository) GetByID(ctx context.Context, id string) (*domain.Lesson, error) {
	const query = `
        SELECT id, course_id, title, content, video_url, file_url, image_url, created_at, updated_at
        FROM lessons WHERE id=$1`
	var lesson domain.Lesson
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Content,
		&lesson.VideoURL,
		&lesson.FileURL,
		&lesson.ImageURL,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM lessons WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *lessonRepository) ListByCourse(ctx context.Context, courseID string) ([]domain.Lesson, error) {
	const query = `
        SELECT id, course_id, title, content, video_url, file_url, image_url, created_at, updated_at
        FROM lessons WHERE course_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Lesson
	for rows.Next() {
		var lesson domain.Lesson
		if err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.Title,
			&lesson.Content,
			&lesson.VideoURL,
			&lesson.FileURL,
			&lesson.ImageURL,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, lesson)
	}
	return result, rows.Err()
}
