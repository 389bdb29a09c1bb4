package dto

import (
	"time"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

// DashboardStats aggregates the admin overview.
type DashboardStats struct {
	Students            StudentTotals      `json:"students"`
	PaymentStatus       map[string]int     `json:"paymentStatus"`
	Contacts            map[string]int     `json:"contacts"`
	Sections            []SectionOccupancy `json:"sections"`
	RecentRegistrations []StudentResponse  `json:"recentRegistrations"`
	GeneratedAt         time.Time          `json:"generatedAt"`
}

// StudentTotals counts registrations by review status.
type StudentTotals struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// SectionOccupancy reports how full a section is.
type SectionOccupancy struct {
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	Enrolled    int     `json:"enrolled"`
	Available   int     `json:"available"`
	Utilization float64 `json:"utilization"`
	Active      bool    `json:"active"`
}

// NewSectionOccupancy computes utilisation as a percentage rounded to one decimal.
func NewSectionOccupancy(s models.Section) SectionOccupancy {
	util := 0.0
	if s.Capacity > 0 {
		util = float64(int(float64(s.CurrentEnrollment)*1000/float64(s.Capacity)+0.5)) / 10
	}
	return SectionOccupancy{
		Name:        s.Name,
		Capacity:    s.Capacity,
		Enrolled:    s.CurrentEnrollment,
		Available:   s.Available(),
		Utilization: util,
		Active:      s.Active,
	}
}
