package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
	"github.com/noah-isme/mbu-admin-api/pkg/validation"
)

type paymentRepository interface {
	Record(ctx context.Context, payment *models.Payment) (*models.PaymentBalance, error)
	ListByStudent(ctx context.Context, studentID int) ([]models.Payment, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id int) (*models.Student, error)
}

// PaymentService records fee payments against registrations.
type PaymentService struct {
	repo      paymentRepository
	students  studentLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, students studentLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, cache: cache, validator: validate, logger: logger}
}

// Record stores a payment and returns the student's updated balance.
func (s *PaymentService) Record(ctx context.Context, studentID, adminID int, req dto.PaymentRequest) (*dto.PaymentSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	if !req.Amount.IsPositive() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, []appErrors.FieldError{{Field: "amount", Message: "must be greater than 0"}})
	}

	payment := req.ToPayment(studentID, adminID)
	balance, err := s.repo.Record(ctx, payment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	s.cache.InvalidateDashboard(ctx)

	s.logger.Info("payment recorded",
		zap.Int("student_id", studentID),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("payment_status", string(balance.Status)),
	)
	return &dto.PaymentSummary{
		Payment:       *payment,
		TotalPaid:     balance.TotalPaid,
		TotalDue:      balance.TotalDue,
		Outstanding:   balance.Outstanding(),
		PaymentStatus: balance.Status,
	}, nil
}

// List returns a student's payments, newest first.
func (s *PaymentService) List(ctx context.Context, studentID int) ([]models.Payment, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	payments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}
