package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kursplatform/kurs-api/internal/models"
	appErrors "github.com/kursplatform/kurs-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	exists          bool
	byID            map[string]*models.Enrollment
	created         *models.Enrollment
	createErr       error
	updatedID       string
	updatedProgress float64
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	return m.exists, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return enrollment, nil
}

func (m *mockEnrollmentRepo) ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	enrollment.ID = "enr-new"
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdateProgress(ctx context.Context, id string, progress float64) error {
	m.updatedID = id
	m.updatedProgress = progress
	return nil
}

type mockCourseFinder struct{ courses map[string]*models.Course }

func (m *mockCourseFinder) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func TestEnrollmentServiceEnrollRejectsInactiveCourse(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	courses := &mockCourseFinder{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", IsActive: false},
	}}
	svc := NewEnrollmentService(repo, courses, nil, nil)

	_, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{CourseID: "course-1"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Bu kurs aktif değil", appErr.Message)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceEnrollRejectsDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{exists: true}
	courses := &mockCourseFinder{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", IsActive: true},
	}}
	svc := NewEnrollmentService(repo, courses, nil, nil)

	_, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{CourseID: "course-1"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Bu kursa zaten kayıtlısınız", appErr.Message)
}

func TestEnrollmentServiceEnrollRejectsMissingCourse(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	courses := &mockCourseFinder{courses: map[string]*models.Course{}}
	svc := NewEnrollmentService(repo, courses, nil, nil)

	_, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{CourseID: "ghost"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Kurs bulunamadı", appErr.Message)
}

func TestEnrollmentServiceEnrollStartsAtZeroProgress(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	courses := &mockCourseFinder{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", IsActive: true},
	}}
	svc := NewEnrollmentService(repo, courses, nil, nil)

	enrollment, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{CourseID: "course-1"})
	require.NoError(t, err)
	assert.Equal(t, float64(0), enrollment.Progress)
	assert.Equal(t, "user-1", enrollment.UserID)
}

func TestEnrollmentServiceUpdateProgressRejectsForeignEnrollment(t *testing.T) {
	repo := &mockEnrollmentRepo{byID: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", UserID: "user-2"},
	}}
	svc := NewEnrollmentService(repo, &mockCourseFinder{}, nil, nil)

	_, err := svc.UpdateProgress(context.Background(), "user-1", "enr-1", ProgressRequest{Progress: 50})
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
	assert.Empty(t, repo.updatedID)
}

func TestEnrollmentServiceUpdateProgressRejectsOutOfRange(t *testing.T) {
	repo := &mockEnrollmentRepo{byID: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", UserID: "user-1"},
	}}
	svc := NewEnrollmentService(repo, &mockCourseFinder{}, nil, nil)

	_, err := svc.UpdateProgress(context.Background(), "user-1", "enr-1", ProgressRequest{Progress: 120})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestEnrollmentServiceUpdateProgress(t *testing.T) {
	repo := &mockEnrollmentRepo{byID: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", UserID: "user-1", Progress: 10},
	}}
	svc := NewEnrollmentService(repo, &mockCourseFinder{}, nil, nil)

	enrollment, err := svc.UpdateProgress(context.Background(), "user-1", "enr-1", ProgressRequest{Progress: 75})
	require.NoError(t, err)
	assert.Equal(t, float64(75), enrollment.Progress)
	assert.Equal(t, "enr-1", repo.updatedID)
	assert.Equal(t, float64(75), repo.updatedProgress)
}

func TestEnrollmentServiceEnrollDuplicateRace(t *testing.T) {
	// Exists says no, but a concurrent enrollment wins the insert; the
	// duplicate conflict must pass through with its pinned message.
	repo := &mockEnrollmentRepo{
		createErr: appErrors.Clone(appErrors.ErrConflict, "Bu kursa zaten kayıtlısınız"),
	}
	courses := &mockCourseFinder{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", IsActive: true},
	}}
	svc := NewEnrollmentService(repo, courses, nil, nil)

	_, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{CourseID: "course-1"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Bu kursa zaten kayıtlısınız", appErr.Message)
}
