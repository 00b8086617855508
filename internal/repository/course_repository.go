package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kursplatform/kurs-api/internal/models"
)

// CourseRepository handles persistence for catalog courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseDetailColumns = `k.id, k.title, k.description, k.price, k.duration, k.level, k.is_active, k.category_id, k.instructor_id, k.created_at, k.updated_at,
        c.name AS category_name, c.color AS category_color, u.name AS instructor_name,
        (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = k.id) AS enrollment_count`

const courseDetailJoins = `FROM courses k
        JOIN categories c ON c.id = k.category_id
        JOIN users u ON u.id = k.instructor_id`

// ListActiveDetails returns the public catalog: active courses with
// category, instructor and enrollment count, newest first.
func (r *CourseRepository) ListActiveDetails(ctx context.Context) ([]models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE k.is_active = TRUE ORDER BY k.created_at DESC`, courseDetailColumns, courseDetailJoins)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// ListDetails returns every course regardless of active state, for the
// admin back-office.
func (r *CourseRepository) ListDetails(ctx context.Context) ([]models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY k.created_at DESC`, courseDetailColumns, courseDetailJoins)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID loads a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, title, description, price, duration, level, is_active, category_id, instructor_id, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetailByID loads a course with contextual info.
func (r *CourseRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE k.id = $1`, courseDetailColumns, courseDetailJoins)
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create persists a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, title, description, price, duration, level, is_active, category_id, instructor_id, created_at, updated_at)
        VALUES (:id, :title, :description, :price, :duration, :level, :is_active, :category_id, :instructor_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update updates mutable fields of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, description = :description, price = :price, duration = :duration,
        level = :level, is_active = :is_active, category_id = :category_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// DeleteWithEnrollments removes a course and its enrollments in a
// single transaction.
func (r *CourseRepository) DeleteWithEnrollments(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteEnrollments = `DELETE FROM enrollments WHERE course_id = $1`
	if _, err = tx.ExecContext(ctx, deleteEnrollments, id); err != nil {
		return fmt.Errorf("delete course enrollments: %w", err)
	}

	const deleteCourse = `DELETE FROM courses WHERE id = $1`
	if _, err = tx.ExecContext(ctx, deleteCourse, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course delete: %w", err)
	}
	return nil
}
