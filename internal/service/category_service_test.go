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

type mockCategoryRepo struct {
	categories  map[string]*models.Category
	nameExists  bool
	courseCount int
	created     *models.Category
	createErr   error
	updated     *models.Category
	deletedID   string
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]models.CategoryDetail, error) {
	return nil, nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (*models.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return category, nil
}

func (m *mockCategoryRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return m.nameExists, nil
}

func (m *mockCategoryRepo) CountCourses(ctx context.Context, id string) (int, error) {
	return m.courseCount, nil
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if m.createErr != nil {
		return m.createErr
	}
	category.ID = "cat-new"
	m.created = category
	return nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	m.updated = category
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func TestCategoryServiceCreateRejectsDuplicateName(t *testing.T) {
	repo := &mockCategoryRepo{nameExists: true}
	svc := NewCategoryService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CategoryRequest{Name: "Yazılım"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Bu isimde bir kategori zaten mevcut", appErr.Message)
	assert.Nil(t, repo.created)
}

func TestCategoryServiceCreateAppliesDefaultColor(t *testing.T) {
	repo := &mockCategoryRepo{}
	svc := NewCategoryService(repo, nil, nil, nil)

	category, err := svc.Create(context.Background(), CategoryRequest{Name: "Yazılım"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategoryColor, category.Color)
	assert.Equal(t, "cat-new", category.ID)
}

func TestCategoryServiceDeleteRejectsCategoryWithCourses(t *testing.T) {
	repo := &mockCategoryRepo{
		categories:  map[string]*models.Category{"cat-1": {ID: "cat-1", Name: "Yazılım"}},
		courseCount: 3,
	}
	svc := NewCategoryService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), "cat-1")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Bu kategoriye ait kurslar bulunuyor. Önce kursları silin veya başka kategoriye taşıyın.", appErr.Message)
	assert.Empty(t, repo.deletedID)
}

func TestCategoryServiceDeleteEmptyCategory(t *testing.T) {
	repo := &mockCategoryRepo{
		categories: map[string]*models.Category{"cat-1": {ID: "cat-1", Name: "Yazılım"}},
	}
	svc := NewCategoryService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "cat-1"))
	assert.Equal(t, "cat-1", repo.deletedID)
}

func TestCategoryServiceDeleteMissingCategory(t *testing.T) {
	repo := &mockCategoryRepo{categories: map[string]*models.Category{}}
	svc := NewCategoryService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Kategori bulunamadı", appErr.Message)
}

func TestCategoryServiceUpdateRenames(t *testing.T) {
	repo := &mockCategoryRepo{
		categories: map[string]*models.Category{"cat-1": {ID: "cat-1", Name: "Yazılım", Color: "#3B82F6"}},
	}
	svc := NewCategoryService(repo, nil, nil, nil)

	category, err := svc.Update(context.Background(), "cat-1", CategoryRequest{Name: "Programlama"})
	require.NoError(t, err)
	assert.Equal(t, "Programlama", category.Name)
	assert.Equal(t, "#3B82F6", category.Color)
	require.NotNil(t, repo.updated)
}

func TestCategoryServiceCreateDuplicateNameRace(t *testing.T) {
	// Name is free at pre-check time but the insert hits the unique
	// index; the conflict must pass through with its pinned message.
	repo := &mockCategoryRepo{
		createErr: appErrors.Clone(appErrors.ErrConflict, "Bu isimde bir kategori zaten mevcut"),
	}
	svc := NewCategoryService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CategoryRequest{Name: "Yazılım"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Bu isimde bir kategori zaten mevcut", appErr.Message)
}
