package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RegistrationStatus is the review state of a registration.
type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusApproved, RegistrationStatusRejected:
		return true
	}
	return false
}

// PaymentStatus tracks how much of the plan has been paid.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentPlan is the billing schedule chosen at registration.
type PaymentPlan string

const (
	PaymentPlanTermly PaymentPlan = "Termly Plan"
	PaymentPlanAnnual PaymentPlan = "Annual Plan"
)

// Valid reports whether p is a known plan.
func (p PaymentPlan) Valid() bool {
	return p == PaymentPlanTermly || p == PaymentPlanAnnual
}

// Student is one registration submission stored in the students table.
type Student struct {
	ID            int                `db:"id" json:"id"`
	StudentName   string             `db:"student_name" json:"student_name"`
	StudentAge    int                `db:"student_age" json:"student_age"`
	ParentName    string             `db:"parent_name" json:"parent_name"`
	Phone         string             `db:"phone" json:"phone"`
	Email         *string            `db:"email" json:"email,omitempty"`
	Section       string             `db:"section" json:"section"`
	PaymentPlan   PaymentPlan        `db:"payment_plan" json:"payment_plan"`
	Comments      *string            `db:"comments" json:"comments,omitempty"`
	Status        RegistrationStatus `db:"status" json:"status"`
	PaymentStatus PaymentStatus      `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Status  RegistrationStatus
	Section string
	Search  string
	Page    int
	Limit   int
}

// DefaultSchoolCode prefixes registration identifiers.
const DefaultSchoolCode = "MBU"

// FormatRegistrationID renders the human-readable identifier for a row id.
func FormatRegistrationID(code string, id int) string {
	if code == "" {
		code = DefaultSchoolCode
	}
	return fmt.Sprintf("%s%06d", code, id)
}

// ParseRegistrationID extracts the row id from a registration identifier.
func ParseRegistrationID(code, registrationID string) (int, error) {
	if code == "" {
		code = DefaultSchoolCode
	}
	digits := strings.TrimPrefix(registrationID, code)
	if digits == registrationID || len(digits) < 6 || !allDigits(digits) {
		return 0, fmt.Errorf("invalid registration id %q", registrationID)
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid registration id %q", registrationID)
	}
	return id, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
