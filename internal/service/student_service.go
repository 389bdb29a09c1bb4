package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/internal/models"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id int) (*models.Student, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus, updatedAt time.Time) error
}

type statusNotifier interface {
	StatusChanged(student models.Student) error
}

// StudentService exposes admin operations over registrations.
type StudentService struct {
	repo     studentRepository
	notifier statusNotifier
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, notifier statusNotifier, cache *CacheService, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, notifier: notifier, cache: cache, logger: logger, now: time.Now}
}

// List returns a filtered page of registrations, newest first.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of pending, approved, rejected")
	}
	filter.Section = strings.TrimSpace(filter.Section)
	filter.Page, filter.Limit = models.NormalizePage(filter.Page, filter.Limit)

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns one registration.
func (s *StudentService) Get(ctx context.Context, id int) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// SetStatus records a review decision. Any status may replace any other and
// the section enrollment counter is left as it is.
func (s *StudentService) SetStatus(ctx context.Context, id int, status models.RegistrationStatus) (*models.Student, error) {
	if !status.Valid() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, []appErrors.FieldError{
			{Field: "status", Message: "must be one of: pending, approved, rejected"},
		})
	}

	if err := s.repo.UpdateStatus(ctx, id, status, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
	}
	s.cache.InvalidateDashboard(ctx)

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if s.notifier != nil {
		if err := s.notifier.StatusChanged(*student); err != nil {
			s.logger.Warn("status change email not queued", zap.Int("student_id", id), zap.Error(err))
		}
	}
	return student, nil
}
