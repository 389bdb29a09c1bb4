package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

// PaymentRepository records fee payments and keeps the student's payment status in step.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type studentFees struct {
	PaymentPlan     models.PaymentPlan `db:"payment_plan"`
	RegistrationFee decimal.Decimal    `db:"registration_fee"`
	TermlyFee       decimal.Decimal    `db:"termly_fee"`
	AnnualFee       decimal.Decimal    `db:"annual_fee"`
}

// Record inserts a payment and recomputes the student's payment status in one
// transaction. It returns sql.ErrNoRows when the student is unknown.
func (r *PaymentRepository) Record(ctx context.Context, payment *models.Payment) (balance *models.PaymentBalance, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var fees studentFees
	const feesQuery = `SELECT st.payment_plan, se.registration_fee, se.termly_fee, se.annual_fee
        FROM students st JOIN sections se ON se.name = st.section
        WHERE st.id = $1 FOR UPDATE OF st`
	if err = tx.GetContext(ctx, &fees, feesQuery, payment.StudentID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("load student fees: %w", err)
		}
		return nil, err
	}

	now := time.Now().UTC()
	if payment.PaidAt.IsZero() {
		payment.PaidAt = now
	}
	payment.CreatedAt = now

	const insert = `INSERT INTO payments (student_id, amount, method, reference, notes, recorded_by, paid_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err = tx.QueryRowxContext(ctx, insert, payment.StudentID, payment.Amount, payment.Method, payment.Reference,
		payment.Notes, payment.RecordedBy, payment.PaidAt, payment.CreatedAt).Scan(&payment.ID); err != nil {
		err = fmt.Errorf("insert payment: %w", err)
		return nil, err
	}

	var paid decimal.Decimal
	if err = tx.GetContext(ctx, &paid, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE student_id = $1`, payment.StudentID); err != nil {
		err = fmt.Errorf("sum payments: %w", err)
		return nil, err
	}

	section := models.Section{RegistrationFee: fees.RegistrationFee, TermlyFee: fees.TermlyFee, AnnualFee: fees.AnnualFee}
	due := section.PlanTotal(fees.PaymentPlan)
	status := models.PaymentStatusFor(paid, due)

	if _, err = tx.ExecContext(ctx, `UPDATE students SET payment_status = $2, updated_at = $3 WHERE id = $1`, payment.StudentID, status, now); err != nil {
		err = fmt.Errorf("update payment status: %w", err)
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("commit payment: %w", err)
		return nil, err
	}
	return &models.PaymentBalance{TotalPaid: paid, TotalDue: due, Status: status}, nil
}

// ListByStudent returns a student's payments, newest first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID int) ([]models.Payment, error) {
	const query = `SELECT id, student_id, amount, method, reference, notes, recorded_by, paid_at, created_at
        FROM payments WHERE student_id = $1 ORDER BY paid_at DESC, id DESC`
	payments := []models.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
