package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Section is a named enrollment track with a fixed capacity.
type Section struct {
	ID                int             `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	Description       string          `db:"description" json:"description"`
	Capacity          int             `db:"capacity" json:"capacity"`
	CurrentEnrollment int             `db:"current_enrollment" json:"current_enrollment"`
	MinAge            int             `db:"min_age" json:"min_age"`
	MaxAge            int             `db:"max_age" json:"max_age"`
	RegistrationFee   decimal.Decimal `db:"registration_fee" json:"registration_fee"`
	TermlyFee         decimal.Decimal `db:"termly_fee" json:"termly_fee"`
	AnnualFee         decimal.Decimal `db:"annual_fee" json:"annual_fee"`
	Active            bool            `db:"active" json:"active"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Available returns the number of open slots.
func (s *Section) Available() int {
	if s.CurrentEnrollment >= s.Capacity {
		return 0
	}
	return s.Capacity - s.CurrentEnrollment
}

// IsFull reports whether no slots remain.
func (s *Section) IsFull() bool {
	return s.CurrentEnrollment >= s.Capacity
}

// PlanTotal returns the amount owed for a payment plan including the registration fee.
func (s *Section) PlanTotal(plan PaymentPlan) decimal.Decimal {
	switch plan {
	case PaymentPlanAnnual:
		return s.RegistrationFee.Add(s.AnnualFee)
	default:
		return s.RegistrationFee.Add(s.TermlyFee)
	}
}

// SectionSeed describes one entry of the startup catalog.
type SectionSeed struct {
	Name            string
	Description     string
	Capacity        int
	MinAge          int
	MaxAge          int
	RegistrationFee int64
	TermlyFee       int64
	AnnualFee       int64
}

// SectionCatalog is the fixed set of sections seeded on first startup.
var SectionCatalog = []SectionSeed{
	{Name: "Nursery", Description: "Early years foundation", Capacity: 30, MinAge: 3, MaxAge: 5, RegistrationFee: 5000, TermlyFee: 25000, AnnualFee: 70000},
	{Name: "Primary", Description: "Primary school", Capacity: 40, MinAge: 6, MaxAge: 11, RegistrationFee: 5000, TermlyFee: 30000, AnnualFee: 85000},
	{Name: "Tahfiz", Description: "Quran memorisation", Capacity: 25, MinAge: 5, MaxAge: 30, RegistrationFee: 5000, TermlyFee: 35000, AnnualFee: 100000},
	{Name: "Islamiyya", Description: "Islamic studies", Capacity: 40, MinAge: 5, MaxAge: 18, RegistrationFee: 3000, TermlyFee: 20000, AnnualFee: 55000},
	{Name: "Arabic", Description: "Arabic language", Capacity: 30, MinAge: 10, MaxAge: 30, RegistrationFee: 3000, TermlyFee: 25000, AnnualFee: 70000},
	{Name: "Adult", Description: "Adult learners", Capacity: 20, MinAge: 18, MaxAge: 30, RegistrationFee: 3000, TermlyFee: 20000, AnnualFee: 55000},
}

// SectionNames returns the catalog names in seed order.
func SectionNames() []string {
	names := make([]string, len(SectionCatalog))
	for i, s := range SectionCatalog {
		names[i] = s.Name
	}
	return names
}

// IsCatalogSection reports whether name is one of the seeded sections.
func IsCatalogSection(name string) bool {
	for _, s := range SectionCatalog {
		if s.Name == name {
			return true
		}
	}
	return false
}

// SectionUpdate carries optional section changes. Nil fields are left untouched.
type SectionUpdate struct {
	Description     *string
	Capacity        *int
	MinAge          *int
	MaxAge          *int
	RegistrationFee *decimal.Decimal
	TermlyFee       *decimal.Decimal
	AnnualFee       *decimal.Decimal
	Active          *bool
}
