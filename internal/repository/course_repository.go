package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-service/internal/domain"
)

// CourseFilter captures catalog and management listing parameters.
type CourseFilter struct {
	InstructorID *string
	CategoryID   *string
	Status       *domain.CourseStatus
	// VisibleOnly restricts results to PUBLISHED and approved courses.
	VisibleOnly bool
	Limit       int
	Offset      int
}

// CourseRepository encapsulates course persistence. Reads exclude
// soft-deleted rows; SoftDelete stamps deleted_at and leaves lessons and
// enrollments untouched.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter CourseFilter) ([]domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository instantiates repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

const courseColumns = `id, instructor_id, category_id, title, description, image_url,
               status, is_approved, created_at, updated_at, deleted_at`

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (instructor_id, category_id, title, description, image_url, status, is_approved)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		course.InstructorID,
		course.CategoryID,
		course.Title,
		course.Description,
		course.ImageURL,
		course.Status,
		course.IsApproved,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	const query = `
        UPDATE courses SET category_id=$1, title=$2, description=$3, image_url=$4,
            status=$5, is_approved=$6, updated_at=NOW()
        WHERE id=$7 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query,
		course.CategoryID,
		course.Title,
		course.Description,
		course.ImageURL,
		course.Status,
		course.IsApproved,
		course.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id=$1 AND deleted_at IS NULL`, courseColumns)
	var course domain.Course
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.InstructorID,
		&course.CategoryID,
		&course.Title,
		&course.Description,
		&course.ImageURL,
		&course.Status,
		&course.IsApproved,
		&course.CreatedAt,
		&course.UpdatedAt,
		&course.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE courses SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]domain.Course, error) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.InstructorID != nil {
		args = append(args, *filter.InstructorID)
		clauses = append(clauses, fmt.Sprintf("instructor_id=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.VisibleOnly {
		args = append(args, domain.CourseStatusPublished)
		clauses = append(clauses, fmt.Sprintf("status=$%d AND is_approved=TRUE", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		courseColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCourses(rows)
}

func scanCourses(rows pgx.Rows) ([]domain.Course, error) {
	var result []domain.Course
	for rows.Next() {
		var course domain.Course
		if err := rows.Scan(
			&course.ID,
			&course.InstructorID,
			&course.CategoryID,
			&course.Title,
			&course.Description,
			&course.ImageURL,
			&course.Status,
			&course.IsApproved,
			&course.CreatedAt,
			&course.UpdatedAt,
			&course.DeletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, course)
	}
	return result, rows.Err()
}
