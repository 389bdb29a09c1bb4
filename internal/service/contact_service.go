package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
	"github.com/noah-isme/mbu-admin-api/pkg/validation"
)

type contactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, int, error)
	UpdateStatus(ctx context.Context, id int, status models.ContactStatus, updatedAt time.Time) error
}

type contactNotifier interface {
	ContactReceived(msg models.ContactMessage) error
}

// ContactService handles the public contact form and its admin inbox.
type ContactService struct {
	repo      contactRepository
	notifier  contactNotifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(repo contactRepository, notifier contactNotifier, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{repo: repo, notifier: notifier, cache: cache, validator: validate, logger: logger}
}

// Submit stores a message and queues the acknowledgement emails.
func (s *ContactService) Submit(ctx context.Context, req dto.ContactRequest) (*models.ContactMessage, error) {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}

	msg := req.ToMessage()
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save message")
	}
	s.cache.InvalidateDashboard(ctx)

	if s.notifier != nil {
		if err := s.notifier.ContactReceived(*msg); err != nil {
			s.logger.Warn("contact notification not queued", zap.Int("message_id", msg.ID), zap.Error(err))
		}
	}
	return msg, nil
}

// List returns a page of messages, newest first.
func (s *ContactService) List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of unread, read, replied")
	}
	filter.Page, filter.Limit = models.NormalizePage(filter.Page, filter.Limit)
	messages, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// SetStatus marks a message as unread, read or replied.
func (s *ContactService) SetStatus(ctx context.Context, id int, req dto.ContactStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validation.Error(err)
	}
	if err := s.repo.UpdateStatus(ctx, id, models.ContactStatus(req.Status), time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update message status")
	}
	s.cache.InvalidateDashboard(ctx)
	return nil
}
