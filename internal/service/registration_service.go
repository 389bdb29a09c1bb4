package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/internal/repository"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
	"github.com/noah-isme/mbu-admin-api/pkg/validation"
)

type registrationStore interface {
	Register(ctx context.Context, student *models.Student) error
}

type registrationNotifier interface {
	RegistrationConfirmed(student models.Student) error
}

// RegistrationServiceParams groups constructor dependencies.
type RegistrationServiceParams struct {
	Repo       registrationStore
	Notifier   registrationNotifier
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	SchoolCode string
	Logger     *zap.Logger
}

// RegistrationService runs the public registration workflow.
type RegistrationService struct {
	repo       registrationStore
	notifier   registrationNotifier
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	schoolCode string
	logger     *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(p RegistrationServiceParams) *RegistrationService {
	if p.Validator == nil {
		p.Validator = validation.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.SchoolCode == "" {
		p.SchoolCode = models.DefaultSchoolCode
	}
	return &RegistrationService{
		repo:       p.Repo,
		notifier:   p.Notifier,
		cache:      p.Cache,
		metrics:    p.Metrics,
		validator:  p.Validator,
		schoolCode: p.SchoolCode,
		logger:     p.Logger,
	}
}

// Submit validates and stores a registration, taking one slot of the chosen
// section. The confirmation email is queued only after the registration is
// durable and its failure never fails the request.
func (s *RegistrationService) Submit(ctx context.Context, req dto.RegistrationRequest) (*dto.RegistrationResult, error) {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordRegistration(OutcomeInvalid)
		return nil, validation.Error(err)
	}

	student := req.ToStudent()
	if err := s.repo.Register(ctx, student); err != nil {
		return nil, s.registrationError(err, student.Section)
	}

	s.metrics.RecordRegistration(OutcomeSuccess)
	s.cache.InvalidateDashboard(ctx)

	result := &dto.RegistrationResult{
		RegistrationID: models.FormatRegistrationID(s.schoolCode, student.ID),
		StudentID:      student.ID,
		Section:        student.Section,
		PaymentPlan:    string(student.PaymentPlan),
	}

	if s.notifier != nil {
		if err := s.notifier.RegistrationConfirmed(*student); err != nil {
			s.logger.Warn("registration confirmation not queued",
				zap.String("registration_id", result.RegistrationID), zap.Error(err))
		}
	}

	s.logger.Info("registration accepted",
		zap.String("registration_id", result.RegistrationID),
		zap.String("section", student.Section),
	)
	return result, nil
}

func (s *RegistrationService) registrationError(err error, section string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateRegistration):
		s.metrics.RecordRegistration(OutcomeDuplicate)
		return appErrors.Clone(appErrors.ErrConflict, "a registration for this student, parent and phone already exists")
	case errors.Is(err, repository.ErrSectionUnavailable):
		s.metrics.RecordRegistration(OutcomeInvalid)
		return appErrors.Clone(appErrors.ErrInvalidSection, "section "+section+" is not available")
	case errors.Is(err, repository.ErrSectionFull):
		s.metrics.RecordRegistration(OutcomeFull)
		return appErrors.Clone(appErrors.ErrCapacityExceeded, "section "+section+" is full")
	default:
		s.metrics.RecordRegistration(OutcomeError)
		s.logger.Error("registration failed", zap.String("section", section), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
}
