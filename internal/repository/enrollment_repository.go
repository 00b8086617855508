package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kursplatform/kurs-api/internal/models"
	appErrors "github.com/kursplatform/kurs-api/pkg/errors"
)

// EnrollmentRepository handles persistence of course enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Exists checks whether the user is already enrolled in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, user_id, course_id, progress, enrolled_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByUser returns the user's enrollments with course info, most
// recent first.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.user_id, e.course_id, e.progress, e.enrolled_at,
        k.title AS course_title, k.level AS course_level, c.name AS category_name, c.color AS category_color
        FROM enrollments e
        JOIN courses k ON k.id = e.course_id
        JOIN categories c ON c.id = k.category_id
        WHERE e.user_id = $1 ORDER BY e.enrolled_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, userID); err != nil {
		return nil, fmt.Errorf("list user enrollments: %w", err)
	}
	return enrollments, nil
}

// ListReportRows returns every enrollment on the platform with user and
// course info, for the admin report.
func (r *EnrollmentRepository) ListReportRows(ctx context.Context) ([]models.EnrollmentReportRow, error) {
	const query = `SELECT e.id, e.progress, e.enrolled_at,
        u.name AS user_name, u.email AS user_email,
        k.title AS course_title, c.name AS category_name
        FROM enrollments e
        JOIN users u ON u.id = e.user_id
        JOIN courses k ON k.id = e.course_id
        JOIN categories c ON c.id = k.category_id
        ORDER BY e.enrolled_at DESC`
	var rows []models.EnrollmentReportRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list enrollment report rows: %w", err)
	}
	return rows, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, user_id, course_id, progress, enrolled_at)
        VALUES (:id, :user_id, :course_id, :progress, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "Bu kursa zaten kayıtlısınız")
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateProgress sets the progress percentage for an enrollment.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id string, progress float64) error {
	const query = `UPDATE enrollments SET progress = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, progress); err != nil {
		return fmt.Errorf("update enrollment progress: %w", err)
	}
	return nil
}
