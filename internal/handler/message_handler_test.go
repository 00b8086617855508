package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kursplatform/kurs-api/internal/middleware"
	"github.com/kursplatform/kurs-api/internal/models"
	"github.com/kursplatform/kurs-api/internal/service"
	"github.com/kursplatform/kurs-api/pkg/response"
)

type messageRepoMock struct {
	byID     map[string]*models.Message
	created  *models.Message
	markedID string
}

func (m *messageRepoMock) Create(ctx context.Context, message *models.Message) error {
	message.ID = "msg-new"
	m.created = message
	return nil
}

func (m *messageRepoMock) FindByID(ctx context.Context, id string) (*models.Message, error) {
	message, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return message, nil
}

func (m *messageRepoMock) FindDetailByID(ctx context.Context, id string) (*models.MessageDetail, error) {
	if m.created != nil && m.created.ID == id {
		return &models.MessageDetail{Message: *m.created}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *messageRepoMock) ListByUser(ctx context.Context, userID string) ([]models.MessageDetail, error) {
	return nil, nil
}

func (m *messageRepoMock) ListConversation(ctx context.Context, userID, otherID string) ([]models.MessageDetail, error) {
	return nil, nil
}

func (m *messageRepoMock) MarkRead(ctx context.Context, id string) error {
	m.markedID = id
	return nil
}

type userFinderMock struct{ users map[string]*models.User }

func (m *userFinderMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func newMessageHandlerForTest(repo *messageRepoMock, users *userFinderMock) *MessageHandler {
	if users == nil {
		users = &userFinderMock{users: map[string]*models.User{"user-2": {ID: "user-2"}}}
	}
	return NewMessageHandler(service.NewMessageService(repo, users, nil, nil))
}

func TestMessageHandlerSendCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &messageRepoMock{}
	handler := newMessageHandlerForTest(repo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"receiver_id":"user-2","content":"Merhaba!"}`
	req, _ := http.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.User{ID: "user-1", Role: models.RoleUser})

	handler.Send(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "user-1", repo.created.SenderID)
}

func TestMessageHandlerSendToSelf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newMessageHandlerForTest(&messageRepoMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"receiver_id":"user-1","content":"Merhaba!"}`
	req, _ := http.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.User{ID: "user-1", Role: models.RoleUser})

	handler.Send(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "Kendinize mesaj gönderemezsiniz", envelope.Error.Message)
}

func TestMessageHandlerSendWithoutUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newMessageHandlerForTest(&messageRepoMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Send(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMessageHandlerMarkRead(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &messageRepoMock{byID: map[string]*models.Message{
		"msg-1": {ID: "msg-1", SenderID: "user-1", ReceiverID: "user-2"},
	}}
	handler := newMessageHandlerForTest(repo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/messages/msg-1/read", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "msg-1"}}
	c.Set(middleware.ContextUserKey, &models.User{ID: "user-2", Role: models.RoleUser})

	handler.MarkRead(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "msg-1", repo.markedID)
}
