package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-service/internal/domain"
)

// EnrollmentRepository encapsulates enrollment persistence. The schema does
// not enforce uniqueness on (user_id, course_id); GetForUserCourse returns
// the most recent row when duplicates exist. Delete is a hard delete used for
// administrative correction.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	Update(ctx context.Context, enrollment *domain.Enrollment) error
	GetByID(ctx context.Context, id string) (*domain.Enrollment, error)
	GetForUserCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error)
	ListByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository instantiates repository.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

const enrollmentColumns = `id, user_id, course_id, payment_status, progress, enrolled_at, completed_at, updated_at`

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `
        INSERT INTO enrollments (user_id, course_id, payment_status, progress)
        VALUES ($1,$2,$3,$4)
        RETURNING id, enrolled_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.PaymentStatus,
		enrollment.Progress,
	).Scan(&enrollment.ID, &enrollment.EnrolledAt, &enrollment.UpdatedAt)
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `
        UPDATE enrollments SET payment_status=$1, progress=$2, completed_at=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		enrollment.PaymentStatus,
		enrollment.Progress,
		enrollment.CompletedAt,
		enrollment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *enrollmentRepository) GetForUserCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	const query = `
        SELECT ` + enrollmentColumns + `
        FROM enrollments WHERE user_id=$1 AND course_id=$2
        ORDER BY enrolled_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, userID, courseID)
}

func (r *enrollmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM enrollments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id=$1 ORDER BY enrolled_at DESC`
	return r.list(ctx, query, userID)
}

func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id=$1 ORDER BY enrolled_at DESC`
	return r.list(ctx, query, courseID)
}

func (r *enrollmentRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&enrollment.PaymentStatus,
		&enrollment.Progress,
		&enrollment.EnrolledAt,
		&enrollment.CompletedAt,
		&enrollment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Enrollment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Enrollment
	for rows.Next() {
		var enrollment domain.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.UserID,
			&enrollment.CourseID,
			&enrollment.PaymentStatus,
			&enrollment.Progress,
			&enrollment.EnrolledAt,
			&enrollment.CompletedAt,
			&enrollment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, enrollment)
	}
	return result, rows.Err()
}
