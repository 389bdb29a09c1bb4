package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a single fee payment recorded against a registration.
type Payment struct {
	ID         int             `db:"id" json:"id"`
	StudentID  int             `db:"student_id" json:"student_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Method     string          `db:"method" json:"method"`
	Reference  *string         `db:"reference" json:"reference,omitempty"`
	Notes      *string         `db:"notes" json:"notes,omitempty"`
	RecordedBy *int            `db:"recorded_by" json:"recorded_by,omitempty"`
	PaidAt     time.Time       `db:"paid_at" json:"paid_at"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// PaymentStatusFor derives the payment status from the amount paid against the total owed.
func PaymentStatusFor(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.IsPositive() && paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// PaymentBalance is a student's standing after payments are applied.
type PaymentBalance struct {
	TotalPaid decimal.Decimal `json:"total_paid"`
	TotalDue  decimal.Decimal `json:"total_due"`
	Status    PaymentStatus   `json:"payment_status"`
}

// Outstanding returns the amount still owed, never negative.
func (b PaymentBalance) Outstanding() decimal.Decimal {
	rest := b.TotalDue.Sub(b.TotalPaid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}
