package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/pkg/response"
)

type paymentService interface {
	Record(ctx context.Context, studentID, adminID int, req dto.PaymentRequest) (*dto.PaymentSummary, error)
	List(ctx context.Context, studentID int) ([]models.Payment, error)
}

// PaymentHandler records and lists fee payments.
type PaymentHandler struct {
	payments   paymentService
	schoolCode string
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments paymentService, schoolCode string) *PaymentHandler {
	return &PaymentHandler{payments: payments, schoolCode: schoolCode}
}

// Record godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID or registration ID"
// @Param payload body dto.PaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	studentID, err := studentIDParam(c, h.schoolCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payment payload"))
		return
	}

	adminID := 0
	if claims := claimsFromContext(c); claims != nil {
		adminID = claims.UserID
	}
	summary, err := h.payments.Record(c.Request.Context(), studentID, adminID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Payment recorded", summary)
}

// List godoc
// @Summary List payments for a student
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID or registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	studentID, err := studentIDParam(c, h.schoolCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	payments, err := h.payments.List(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}
