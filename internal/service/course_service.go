package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kursplatform/kurs-api/internal/models"
	appErrors "github.com/kursplatform/kurs-api/pkg/errors"
)

type courseRepository interface {
	ListActiveDetails(ctx context.Context) ([]models.CourseDetail, error)
	ListDetails(ctx context.Context) ([]models.CourseDetail, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	DeleteWithEnrollments(ctx context.Context, id string) error
}

type courseCategoryFinder interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type courseInstructorFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type courseEnrollmentChecker interface {
	Exists(ctx context.Context, userID, courseID string) (bool, error)
}

type courseAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CourseRequest is the admin create/update payload.
type CourseRequest struct {
	Title        string             `json:"title" validate:"required,min=3,max=200"`
	Description  string             `json:"description" validate:"required"`
	Price        float64            `json:"price" validate:"gte=0"`
	Duration     int                `json:"duration" validate:"gt=0"`
	Level        models.CourseLevel `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	IsActive     *bool              `json:"is_active"`
	CategoryID   string             `json:"category_id" validate:"required"`
	InstructorID string             `json:"instructor_id" validate:"required"`
}

// CourseService serves the public catalog and the admin course CRUD.
type CourseService struct {
	repo        courseRepository
	categories  courseCategoryFinder
	instructors courseInstructorFinder
	enrollments courseEnrollmentChecker
	audit       courseAuditWriter
	cache       *CacheService
	catalogTTL  time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(
	repo courseRepository,
	categories courseCategoryFinder,
	instructors courseInstructorFinder,
	enrollments courseEnrollmentChecker,
	audit courseAuditWriter,
	cache *CacheService,
	catalogTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{
		repo:        repo,
		categories:  categories,
		instructors: instructors,
		enrollments: enrollments,
		audit:       audit,
		cache:       cache,
		catalogTTL:  catalogTTL,
		validator:   validate,
		logger:      logger,
	}
}

// Catalog returns the public list of active courses. The list is served
// from cache when possible; the bool reports whether it was.
func (s *CourseService) Catalog(ctx context.Context) ([]models.CourseDetail, bool, error) {
	var cached []models.CourseDetail
	if hit, err := s.cache.Get(ctx, CacheKeyCatalog, &cached); err == nil && hit {
		return cached, true, nil
	}

	courses, err := s.repo.ListActiveDetails(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	if err := s.cache.Set(ctx, CacheKeyCatalog, courses, s.catalogTTL); err != nil {
		s.logger.Warn("failed to cache catalog", zap.Error(err))
	}
	return courses, false, nil
}

// GetCourse returns a single course with contextual info. Inactive
// courses are visible to admins only. When a caller is present its
// enrollment state is included.
func (s *CourseService) GetCourse(ctx context.Context, id string, caller *models.User) (*models.CourseView, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Kurs bulunamadı")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if !detail.IsActive && (caller == nil || caller.Role != models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Kurs bulunamadı")
	}

	view := &models.CourseView{CourseDetail: *detail}
	if caller != nil {
		enrolled, err := s.enrollments.Exists(ctx, caller.ID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		view.IsEnrolled = enrolled
	}
	return view, nil
}

// ListAll returns every course, active or not, for the admin back-office.
func (s *CourseService) ListAll(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.repo.ListDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Create adds a course after verifying its category and instructor exist.
func (s *CourseService) Create(ctx context.Context, actorID string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Duration:     req.Duration,
		Level:        req.Level,
		IsActive:     true,
		CategoryID:   req.CategoryID,
		InstructorID: req.InstructorID,
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.recordAudit(ctx, actorID, models.AuditActionCourseCreate, course.ID)
	s.invalidateCatalog(ctx)
	return course, nil
}

// Update modifies a course and refreshes the catalog cache.
func (s *CourseService) Update(ctx context.Context, actorID, id string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Kurs bulunamadı")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Price = req.Price
	course.Duration = req.Duration
	course.Level = req.Level
	course.CategoryID = req.CategoryID
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.recordAudit(ctx, actorID, models.AuditActionCourseUpdate, course.ID)
	s.invalidateCatalog(ctx)
	return course, nil
}

// Delete removes a course together with its enrollments.
func (s *CourseService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Kurs bulunamadı")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.repo.DeleteWithEnrollments(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.recordAudit(ctx, actorID, models.AuditActionCourseDelete, id)
	s.invalidateCatalog(ctx)
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

func (s *CourseService) checkReferences(ctx context.Context, req CourseRequest) error {
	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Kategori bulunamadı")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	if _, err := s.instructors.FindByID(ctx, req.InstructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Eğitmen bulunamadı")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return nil
}

func (s *CourseService) recordAudit(ctx context.Context, actorID, action, courseID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "courses",
		ResourceID: &courseID,
		NewValues:  []byte(fmt.Sprintf(`{"course_id":%q}`, courseID)),
	}); err != nil {
		s.logger.Warn("failed to record course audit log", zap.Error(err))
	}
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, CacheKeyCatalogPattern); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
