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

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Get(ctx context.Context, id int) (*models.Student, error)
	SetStatus(ctx context.Context, id int, status models.RegistrationStatus) (*models.Student, error)
}

// StudentHandler exposes registration review endpoints.
type StudentHandler struct {
	students   studentService
	schoolCode string
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, schoolCode string) *StudentHandler {
	return &StudentHandler{students: students, schoolCode: schoolCode}
}

// List godoc
// @Summary List registrations
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param section query string false "Section name"
// @Param search query string false "Search student, parent, phone or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.students.List(c.Request.Context(), studentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewStudentResponses(h.schoolCode, students), pagination)
}

// Get godoc
// @Summary Get registration detail
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID or registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := studentIDParam(c, h.schoolCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewStudentResponse(h.schoolCode, *student), nil)
}

// UpdateStatus godoc
// @Summary Approve, reject or reset a registration
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID or registration ID"
// @Param payload body dto.StatusUpdateRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/status [patch]
func (h *StudentHandler) UpdateStatus(c *gin.Context) {
	id, err := studentIDParam(c, h.schoolCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}

	status := models.RegistrationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	student, err := h.students.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Status updated to "+string(student.Status), dto.NewStudentResponse(h.schoolCode, *student), nil)
}

func studentFilter(c *gin.Context) models.StudentFilter {
	return models.StudentFilter{
		Status:  models.RegistrationStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Section: strings.TrimSpace(c.Query("section")),
		Search:  strings.TrimSpace(c.Query("search")),
		Page:    intQuery(c, "page"),
		Limit:   intQuery(c, "limit"),
	}
}
