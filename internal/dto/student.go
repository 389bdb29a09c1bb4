package dto

import "github.com/noah-isme/mbu-admin-api/internal/models"

// StudentResponse is a registration row enriched with its public identifier.
type StudentResponse struct {
	models.Student
	RegistrationID string `json:"registration_id"`
}

// NewStudentResponse wraps s with its formatted identifier.
func NewStudentResponse(code string, s models.Student) StudentResponse {
	return StudentResponse{Student: s, RegistrationID: models.FormatRegistrationID(code, s.ID)}
}

// NewStudentResponses wraps a page of students.
func NewStudentResponses(code string, students []models.Student) []StudentResponse {
	out := make([]StudentResponse, len(students))
	for i, s := range students {
		out[i] = NewStudentResponse(code, s)
	}
	return out
}
