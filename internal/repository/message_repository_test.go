package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/kursplatform/kurs-api/internal/models"
)

func newMessageRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMessageRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMessageRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WithArgs(sqlmock.AnyArg(), "Merhaba!", "user-1", "user-2", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	message := &models.Message{Content: "Merhaba!", SenderID: "user-1", ReceiverID: "user-2"}
	require.NoError(t, repo.Create(context.Background(), message))
	require.NotEmpty(t, message.ID)
	require.False(t, message.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newMessageRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "content", "sender_id", "receiver_id", "is_read", "created_at",
		"sender_name", "sender_email", "sender_avatar",
		"receiver_name", "receiver_email", "receiver_avatar",
	}).AddRow("msg-1", "Merhaba!", "user-1", "user-2", false, time.Now(),
		"Ayşe Yılmaz", "ayse@example.com", nil,
		"Ali Demir", "ali@example.com", nil)
	mock.ExpectQuery("SELECT m.id, m.content").
		WithArgs("user-2").
		WillReturnRows(rows)

	messages, err := repo.ListByUser(context.Background(), "user-2")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "Ayşe Yılmaz", messages[0].SenderName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newMessageRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages SET is_read = TRUE WHERE id = $1")).
		WithArgs("msg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), "msg-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
