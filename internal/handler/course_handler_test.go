package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kursplatform/kurs-api/internal/middleware"
	"github.com/kursplatform/kurs-api/internal/models"
	"github.com/kursplatform/kurs-api/internal/service"
	"github.com/kursplatform/kurs-api/pkg/response"
)

type courseRepoMock struct {
	activeList []models.CourseDetail
	details    map[string]*models.CourseDetail
}

func (m *courseRepoMock) ListActiveDetails(ctx context.Context) ([]models.CourseDetail, error) {
	return m.activeList, nil
}

func (m *courseRepoMock) ListDetails(ctx context.Context) ([]models.CourseDetail, error) {
	return nil, nil
}

func (m *courseRepoMock) FindByID(ctx context.Context, id string) (*models.Course, error) {
	detail, ok := m.details[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	course := detail.Course
	return &course, nil
}

func (m *courseRepoMock) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	detail, ok := m.details[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return detail, nil
}

func (m *courseRepoMock) Create(ctx context.Context, course *models.Course) error { return nil }
func (m *courseRepoMock) Update(ctx context.Context, course *models.Course) error { return nil }
func (m *courseRepoMock) DeleteWithEnrollments(ctx context.Context, id string) error {
	return nil
}

type enrollmentCheckerMock struct{ enrolled bool }

func (m *enrollmentCheckerMock) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	return m.enrolled, nil
}

type auditWriterMock struct{}

func (m *auditWriterMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

type categoryFinderMock struct{}

func (m *categoryFinderMock) FindByID(ctx context.Context, id string) (*models.Category, error) {
	return &models.Category{ID: id}, nil
}

func newCourseHandlerForTest(repo *courseRepoMock, enrolled bool) *CourseHandler {
	users := &userFinderMock{users: map[string]*models.User{"inst-1": {ID: "inst-1"}}}
	svc := service.NewCourseService(repo, &categoryFinderMock{}, users, &enrollmentCheckerMock{enrolled: enrolled}, &auditWriterMock{}, nil, 10*time.Minute, nil, nil)
	return NewCourseHandler(svc)
}

func TestCourseHandlerCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoMock{activeList: []models.CourseDetail{
		{Course: models.Course{ID: "course-1", Title: "Go ile Web Geliştirme", IsActive: true}},
	}}
	handler := newCourseHandlerForTest(repo, false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses", nil)
	c.Request = req

	handler.Catalog(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestCourseHandlerDetailHidesInactive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoMock{details: map[string]*models.CourseDetail{
		"course-1": {Course: models.Course{ID: "course-1", IsActive: false}},
	}}
	handler := newCourseHandlerForTest(repo, false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/course-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Detail(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseHandlerDetailMarksEnrollment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoMock{details: map[string]*models.CourseDetail{
		"course-1": {Course: models.Course{ID: "course-1", IsActive: true}},
	}}
	handler := newCourseHandlerForTest(repo, true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/course-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}
	c.Set(middleware.ContextUserKey, &models.User{ID: "user-1", Role: models.RoleUser})

	handler.Detail(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	payload := envelope.Data.(map[string]interface{})
	assert.Equal(t, true, payload["is_enrolled"])
}
