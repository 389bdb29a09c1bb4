package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/pkg/response"
)

type contactService interface {
	Submit(ctx context.Context, req dto.ContactRequest) (*models.ContactMessage, error)
	List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, *models.Pagination, error)
	SetStatus(ctx context.Context, id int, req dto.ContactStatusRequest) error
}

// ContactHandler serves the contact form and the admin inbox.
type ContactHandler struct {
	contacts contactService
}

// NewContactHandler constructs ContactHandler.
func NewContactHandler(contacts contactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit godoc
// @Summary Send a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body dto.ContactRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid contact payload"))
		return
	}
	msg, err := h.contacts.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Message received", gin.H{"id": msg.ID})
}

// List godoc
// @Summary List contact messages
// @Tags Contact
// @Produce json
// @Security BearerAuth
// @Param status query string false "unread, read or replied"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	filter := models.ContactFilter{
		Status: models.ContactStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Page:   intQuery(c, "page"),
		Limit:  intQuery(c, "limit"),
	}
	messages, pagination, err := h.contacts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, pagination)
}

// UpdateStatus godoc
// @Summary Mark a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param payload body dto.ContactStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/contacts/{id}/status [patch]
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ContactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}
	if err := h.contacts.SetStatus(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Message status updated", gin.H{"id": id, "status": req.Status}, nil)
}
