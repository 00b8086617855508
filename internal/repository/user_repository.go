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

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, name, role, bio, avatar, created_at, updated_at FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, name, role, bio, avatar, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, password_hash, name, role, bio, avatar, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :name, :role, :bio, :avatar, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "Bu email adresi zaten kullanılıyor")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ListSummaries returns the user directory ordered by name.
func (r *UserRepository) ListSummaries(ctx context.Context) ([]models.UserSummary, error) {
	const query = `SELECT id, name, email, avatar, role FROM users ORDER BY name ASC`
	var users []models.UserSummary
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list user summaries: %w", err)
	}
	return users, nil
}

// ListDetails returns all users with message and enrollment counts,
// newest first, for the admin back-office.
func (r *UserRepository) ListDetails(ctx context.Context) ([]models.UserDetail, error) {
	const query = `SELECT u.id, u.email, u.name, u.role, u.bio, u.avatar, u.created_at,
        (SELECT COUNT(*) FROM messages m WHERE m.sender_id = u.id) AS sent_messages,
        (SELECT COUNT(*) FROM messages m WHERE m.receiver_id = u.id) AS received_messages,
        (SELECT COUNT(*) FROM enrollments e WHERE e.user_id = u.id) AS enrollments
        FROM users u ORDER BY u.created_at DESC`
	var users []models.UserDetail
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list user details: %w", err)
	}
	return users, nil
}

// UpdateProfile updates the mutable self-service fields of a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET name = :name, bio = :bio, avatar = :avatar, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UpdateRole changes a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, role, time.Now().UTC()); err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return nil
}

// DeleteCascade removes a user together with every row referencing it,
// as one transaction: messages, the user's own enrollments, enrollments
// on courses the user instructs, those courses, refresh tokens, and
// finally the user row. Any failure rolls the whole unit back.
func (r *UserRepository) DeleteCascade(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteMessages = `DELETE FROM messages WHERE sender_id = $1 OR receiver_id = $1`
	if _, err = tx.ExecContext(ctx, deleteMessages, id); err != nil {
		return fmt.Errorf("cascade delete messages: %w", err)
	}

	const deleteEnrollments = `DELETE FROM enrollments WHERE user_id = $1`
	if _, err = tx.ExecContext(ctx, deleteEnrollments, id); err != nil {
		return fmt.Errorf("cascade delete enrollments: %w", err)
	}

	// Other users' enrollments on instructed courses must go before the
	// course rows themselves.
	const deleteCourseEnrollments = `DELETE FROM enrollments WHERE course_id IN (SELECT id FROM courses WHERE instructor_id = $1)`
	if _, err = tx.ExecContext(ctx, deleteCourseEnrollments, id); err != nil {
		return fmt.Errorf("cascade delete course enrollments: %w", err)
	}

	const deleteCourses = `DELETE FROM courses WHERE instructor_id = $1`
	if _, err = tx.ExecContext(ctx, deleteCourses, id); err != nil {
		return fmt.Errorf("cascade delete courses: %w", err)
	}

	const deleteTokens = `DELETE FROM refresh_tokens WHERE user_id = $1`
	if _, err = tx.ExecContext(ctx, deleteTokens, id); err != nil {
		return fmt.Errorf("cascade delete refresh tokens: %w", err)
	}

	const deleteUser = `DELETE FROM users WHERE id = $1`
	if _, err = tx.ExecContext(ctx, deleteUser, id); err != nil {
		return fmt.Errorf("cascade delete user: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit cascade delete: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent)
        VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes all refresh tokens for a user.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE user_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at)
        VALUES (:id, :user_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
