package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

// PaymentRequest records a fee payment against a registration.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,oneof=cash transfer card pos"`
	Reference string          `json:"reference" validate:"omitempty,max=100"`
	Notes     string          `json:"notes" validate:"omitempty,max=500"`
	PaidAt    *time.Time      `json:"paidAt"`
}

// ToPayment maps the request for the given student and recording admin.
func (r PaymentRequest) ToPayment(studentID, recordedBy int) *models.Payment {
	p := &models.Payment{
		StudentID: studentID,
		Amount:    r.Amount.Round(2),
		Method:    r.Method,
		Reference: optional(r.Reference),
		Notes:     optional(r.Notes),
	}
	if recordedBy > 0 {
		p.RecordedBy = &recordedBy
	}
	if r.PaidAt != nil {
		p.PaidAt = r.PaidAt.UTC()
	}
	return p
}

// PaymentSummary reports the student's standing after a payment.
type PaymentSummary struct {
	Payment       models.Payment       `json:"payment"`
	TotalPaid     decimal.Decimal      `json:"totalPaid"`
	TotalDue      decimal.Decimal      `json:"totalDue"`
	Outstanding   decimal.Decimal      `json:"outstanding"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}
