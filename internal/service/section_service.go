package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/internal/repository"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
	"github.com/noah-isme/mbu-admin-api/pkg/validation"
)

type sectionRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Section, error)
	Update(ctx context.Context, name string, upd models.SectionUpdate) (*models.Section, error)
}

// SectionService manages the section catalog.
type SectionService struct {
	repo      sectionRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService constructs a SectionService.
func NewSectionService(repo sectionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns sections. activeOnly limits the result to sections open for registration.
func (s *SectionService) List(ctx context.Context, activeOnly bool) ([]dto.SectionResponse, error) {
	sections, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	out := make([]dto.SectionResponse, len(sections))
	for i, sec := range sections {
		out[i] = dto.NewSectionResponse(sec)
	}
	return out, nil
}

// Update changes capacity, fees, age bounds or availability of a section.
func (s *SectionService) Update(ctx context.Context, name string, req dto.SectionUpdateRequest) (*dto.SectionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no changes supplied")
	}
	var details []appErrors.FieldError
	fees := []struct {
		field string
		value *decimal.Decimal
	}{
		{"registrationFee", req.RegistrationFee},
		{"termlyFee", req.TermlyFee},
		{"annualFee", req.AnnualFee},
	}
	for _, fee := range fees {
		if fee.value != nil && fee.value.IsNegative() {
			details = append(details, appErrors.FieldError{Field: fee.field, Message: "must not be negative"})
		}
	}
	if len(details) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, details)
	}

	section, err := s.repo.Update(ctx, name, req.ToUpdate())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		case errors.Is(err, repository.ErrCapacityBelowEnrollment):
			return nil, appErrors.Clone(appErrors.ErrConflict, "capacity cannot be lower than current enrollment")
		case errors.Is(err, repository.ErrInvalidAgeRange):
			return nil, appErrors.Clone(appErrors.ErrValidation, "minimum age cannot exceed maximum age")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to update section %s", name))
		}
	}

	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("section updated", zap.String("section", section.Name), zap.Int("capacity", section.Capacity), zap.Bool("active", section.Active))
	resp := dto.NewSectionResponse(*section)
	return &resp, nil
}
