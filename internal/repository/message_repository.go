package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kursplatform/kurs-api/internal/models"
)

const messageDetailColumns = `m.id, m.content, m.sender_id, m.receiver_id, m.is_read, m.created_at,
    s.name AS sender_name, s.email AS sender_email, s.avatar AS sender_avatar,
    r.name AS receiver_name, r.email AS receiver_email, r.avatar AS receiver_avatar`

const messageDetailJoins = `FROM messages m
    JOIN users s ON s.id = m.sender_id
    JOIN users r ON r.id = m.receiver_id`

// MessageRepository handles persistence of direct messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs the repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, content, sender_id, receiver_id, is_read, created_at)
        VALUES (:id, :content, :sender_id, :receiver_id, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// FindByID returns a single message row.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	const query = `SELECT id, content, sender_id, receiver_id, is_read, created_at FROM messages WHERE id = $1`
	var message models.Message
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		return nil, err
	}
	return &message, nil
}

// FindDetailByID returns a message with sender and receiver info joined in.
func (r *MessageRepository) FindDetailByID(ctx context.Context, id string) (*models.MessageDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE m.id = $1`, messageDetailColumns, messageDetailJoins)
	var message models.MessageDetail
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		return nil, err
	}
	return &message, nil
}

// ListByUser returns every message the user sent or received, newest first.
func (r *MessageRepository) ListByUser(ctx context.Context, userID string) ([]models.MessageDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s
        WHERE m.sender_id = $1 OR m.receiver_id = $1
        ORDER BY m.created_at DESC`, messageDetailColumns, messageDetailJoins)
	var messages []models.MessageDetail
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, fmt.Errorf("list user messages: %w", err)
	}
	return messages, nil
}

// ListConversation returns the messages exchanged between two users in
// chronological order.
func (r *MessageRepository) ListConversation(ctx context.Context, userID, otherID string) ([]models.MessageDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s
        WHERE (m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1)
        ORDER BY m.created_at ASC`, messageDetailColumns, messageDetailJoins)
	var messages []models.MessageDetail
	if err := r.db.SelectContext(ctx, &messages, query, userID, otherID); err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return messages, nil
}

// MarkRead flags a message as read.
func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE messages SET is_read = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}
