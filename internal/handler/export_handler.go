package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/internal/service"
	"github.com/noah-isme/mbu-admin-api/pkg/response"
)

type exportService interface {
	Students(ctx context.Context, filter models.StudentFilter, format string) (*service.ExportFile, error)
}

// ExportHandler streams registration exports.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Students godoc
// @Summary Export registrations
// @Tags Export
// @Produce text/csv
// @Produce application/json
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default), json or pdf"
// @Param status query string false "pending, approved or rejected"
// @Param section query string false "Section name"
// @Param search query string false "Search term"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/export/students [get]
func (h *ExportHandler) Students(c *gin.Context) {
	filter := studentFilter(c)
	filter.Page, filter.Limit = 0, 0

	file, err := h.exports.Students(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Export-Rows", strconv.Itoa(file.Rows))
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
