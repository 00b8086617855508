package models

import "time"

// Message is a direct message between two users. Content is immutable
// once created; only the read flag may change.
type Message struct {
	ID         string    `db:"id" json:"id"`
	Content    string    `db:"content" json:"content"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MessageDetail enriches Message with sender and receiver display info.
type MessageDetail struct {
	Message
	SenderName     string  `db:"sender_name" json:"sender_name"`
	SenderEmail    string  `db:"sender_email" json:"sender_email"`
	SenderAvatar   *string `db:"sender_avatar" json:"sender_avatar,omitempty"`
	ReceiverName   string  `db:"receiver_name" json:"receiver_name"`
	ReceiverEmail  string  `db:"receiver_email" json:"receiver_email"`
	ReceiverAvatar *string `db:"receiver_avatar" json:"receiver_avatar,omitempty"`
}
