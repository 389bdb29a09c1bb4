package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/pkg/response"
)

type sectionService interface {
	List(ctx context.Context, activeOnly bool) ([]dto.SectionResponse, error)
	Update(ctx context.Context, name string, req dto.SectionUpdateRequest) (*dto.SectionResponse, error)
}

// SectionHandler serves the section catalog.
type SectionHandler struct {
	sections sectionService
}

// NewSectionHandler constructs SectionHandler.
func NewSectionHandler(sections sectionService) *SectionHandler {
	return &SectionHandler{sections: sections}
}

// Public godoc
// @Summary List open sections
// @Description Active sections with fees, age bounds and remaining slots
// @Tags Sections
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *SectionHandler) Public(c *gin.Context) {
	h.list(c, true)
}

// List godoc
// @Summary List all sections
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	h.list(c, false)
}

func (h *SectionHandler) list(c *gin.Context, activeOnly bool) {
	sections, err := h.sections.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// Update godoc
// @Summary Update a section
// @Tags Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Section name"
// @Param payload body dto.SectionUpdateRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/sections/{name} [patch]
func (h *SectionHandler) Update(c *gin.Context) {
	var req dto.SectionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid section payload"))
		return
	}
	section, err := h.sections.Update(c.Request.Context(), strings.TrimSpace(c.Param("name")), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Section updated", section, nil)
}
