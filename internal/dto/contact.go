package dto

import (
	"strings"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
}

// Normalize trims the text fields.
func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
}

// ToMessage maps the request onto an unread message row.
func (r *ContactRequest) ToMessage() *models.ContactMessage {
	return &models.ContactMessage{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   optional(r.Phone),
		Subject: r.Subject,
		Message: r.Message,
		Status:  models.ContactStatusUnread,
	}
}

// ContactStatusRequest changes how a message is tracked.
type ContactStatusRequest struct {
	Status string `json:"status" validate:"required,contact_status"`
}
