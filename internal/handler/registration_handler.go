package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/pkg/response"
)

type registrationService interface {
	Submit(ctx context.Context, req dto.RegistrationRequest) (*dto.RegistrationResult, error)
}

// RegistrationHandler serves the public registration form.
type RegistrationHandler struct {
	service registrationService
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(service registrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// Submit godoc
// @Summary Submit a registration
// @Description Registers a student into a section when a slot is available
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.RegistrationRequest true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid registration payload"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Registration submitted successfully", result)
}
