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

type userRepoMock struct {
	users     map[string]*models.User
	summaries []models.UserSummary
	deletedID string
	roleSet   models.UserRole
}

func (m *userRepoMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *userRepoMock) ListSummaries(ctx context.Context) ([]models.UserSummary, error) {
	return m.summaries, nil
}

func (m *userRepoMock) ListDetails(ctx context.Context) ([]models.UserDetail, error) {
	return nil, nil
}

func (m *userRepoMock) UpdateProfile(ctx context.Context, user *models.User) error { return nil }

func (m *userRepoMock) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	m.roleSet = role
	return nil
}

func (m *userRepoMock) DeleteCascade(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func (m *userRepoMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func newUserHandlerForTest(repo *userRepoMock) *UserHandler {
	return NewUserHandler(service.NewUserService(repo, nil, nil))
}

func TestUserHandlerDeleteSelfRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &userRepoMock{users: map[string]*models.User{"admin-1": {ID: "admin-1", Role: models.RoleAdmin}}}
	handler := newUserHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/admin/users/admin-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "admin-1"}}
	c.Set(middleware.ContextUserKey, &models.User{ID: "admin-1", Role: models.RoleAdmin})

	handler.Delete(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "Kendinizi silemezsiniz", envelope.Error.Message)
	assert.Empty(t, repo.deletedID)
}

func TestUserHandlerDeleteOtherUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &userRepoMock{users: map[string]*models.User{"user-1": {ID: "user-1"}}}
	handler := newUserHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/admin/users/user-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "user-1"}}
	c.Set(middleware.ContextUserKey, &models.User{ID: "admin-1", Role: models.RoleAdmin})

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "user-1", repo.deletedID)
}

func TestUserHandlerChangeRoleSelfRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &userRepoMock{users: map[string]*models.User{"admin-1": {ID: "admin-1", Role: models.RoleAdmin}}}
	handler := newUserHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/admin/users/admin-1", bytes.NewBufferString(`{"role":"user"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "admin-1"}}
	c.Set(middleware.ContextUserKey, &models.User{ID: "admin-1", Role: models.RoleAdmin})

	handler.ChangeRole(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "Kendi rolünüzü değiştiremezsiniz", envelope.Error.Message)
}

func TestUserHandlerDirectoryExcludesCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &userRepoMock{summaries: []models.UserSummary{
		{ID: "user-1", Name: "Ali Demir"},
		{ID: "user-2", Name: "Ayşe Yılmaz"},
	}}
	handler := newUserHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/users", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.User{ID: "user-1", Role: models.RoleUser})

	handler.Directory(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	users := envelope.Data.([]interface{})
	require.Len(t, users, 1)
}
