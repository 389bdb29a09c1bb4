package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

// SectionResponse is the public view of a section with its open slots.
type SectionResponse struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Capacity        int             `json:"capacity"`
	Enrolled        int             `json:"enrolled"`
	Available       int             `json:"available"`
	MinAge          int             `json:"minAge"`
	MaxAge          int             `json:"maxAge"`
	RegistrationFee decimal.Decimal `json:"registrationFee"`
	TermlyFee       decimal.Decimal `json:"termlyFee"`
	AnnualFee       decimal.Decimal `json:"annualFee"`
	Active          bool            `json:"active"`
}

// NewSectionResponse maps a section row.
func NewSectionResponse(s models.Section) SectionResponse {
	return SectionResponse{
		Name:            s.Name,
		Description:     s.Description,
		Capacity:        s.Capacity,
		Enrolled:        s.CurrentEnrollment,
		Available:       s.Available(),
		MinAge:          s.MinAge,
		MaxAge:          s.MaxAge,
		RegistrationFee: s.RegistrationFee,
		TermlyFee:       s.TermlyFee,
		AnnualFee:       s.AnnualFee,
		Active:          s.Active,
	}
}

// SectionUpdateRequest carries optional section changes.
type SectionUpdateRequest struct {
	Description     *string          `json:"description" validate:"omitempty,max=500"`
	Capacity        *int             `json:"capacity" validate:"omitempty,min=0,max=10000"`
	MinAge          *int             `json:"minAge" validate:"omitempty,min=3,max=30"`
	MaxAge          *int             `json:"maxAge" validate:"omitempty,min=3,max=30"`
	RegistrationFee *decimal.Decimal `json:"registrationFee"`
	TermlyFee       *decimal.Decimal `json:"termlyFee"`
	AnnualFee       *decimal.Decimal `json:"annualFee"`
	Active          *bool            `json:"active"`
}

// Empty reports whether the request changes nothing.
func (r SectionUpdateRequest) Empty() bool {
	return r.Description == nil && r.Capacity == nil && r.MinAge == nil && r.MaxAge == nil &&
		r.RegistrationFee == nil && r.TermlyFee == nil && r.AnnualFee == nil && r.Active == nil
}

// ToUpdate converts the request into a model update.
func (r SectionUpdateRequest) ToUpdate() models.SectionUpdate {
	if r.Description != nil {
		trimmed := strings.TrimSpace(*r.Description)
		r.Description = &trimmed
	}
	return models.SectionUpdate{
		Description:     r.Description,
		Capacity:        r.Capacity,
		MinAge:          r.MinAge,
		MaxAge:          r.MaxAge,
		RegistrationFee: r.RegistrationFee,
		TermlyFee:       r.TermlyFee,
		AnnualFee:       r.AnnualFee,
		Active:          r.Active,
	}
}
