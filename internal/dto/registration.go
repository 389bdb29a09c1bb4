package dto

import (
	"strings"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

// RegistrationRequest is the public registration form payload.
type RegistrationRequest struct {
	ParentName  string `json:"parentName" validate:"required,min=2,max=100"`
	Phone       string `json:"phone" validate:"required,phone"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	StudentName string `json:"studentName" validate:"required,min=2,max=100"`
	StudentAge  int    `json:"studentAge" validate:"required,min=3,max=30"`
	Section     string `json:"section" validate:"required,section"`
	PaymentPlan string `json:"paymentPlan" validate:"required,payment_plan"`
	Comments    string `json:"comments" validate:"omitempty,max=500"`
}

// Normalize trims surrounding whitespace from every text field.
func (r *RegistrationRequest) Normalize() {
	r.ParentName = strings.TrimSpace(r.ParentName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.StudentName = strings.TrimSpace(r.StudentName)
	r.Section = strings.TrimSpace(r.Section)
	r.PaymentPlan = strings.TrimSpace(r.PaymentPlan)
	r.Comments = strings.TrimSpace(r.Comments)
}

// ToStudent maps the request onto a pending, unpaid registration row.
func (r *RegistrationRequest) ToStudent() *models.Student {
	return &models.Student{
		StudentName:   r.StudentName,
		StudentAge:    r.StudentAge,
		ParentName:    r.ParentName,
		Phone:         r.Phone,
		Email:         optional(r.Email),
		Section:       r.Section,
		PaymentPlan:   models.PaymentPlan(r.PaymentPlan),
		Comments:      optional(r.Comments),
		Status:        models.RegistrationStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
}

// RegistrationResult is returned after a successful registration.
type RegistrationResult struct {
	RegistrationID string `json:"registrationId"`
	StudentID      int    `json:"studentId"`
	Section        string `json:"section"`
	PaymentPlan    string `json:"paymentPlan"`
}

// StatusUpdateRequest changes the review status of a registration.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,registration_status"`
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
