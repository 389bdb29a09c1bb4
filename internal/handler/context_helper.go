package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mbu-admin-api/internal/middleware"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// studentIDParam accepts either the numeric row id or a registration id such
// as MBU000012.
func studentIDParam(c *gin.Context, schoolCode string) (int, error) {
	raw := strings.TrimSpace(c.Param("id"))
	if id, err := strconv.Atoi(raw); err == nil && id > 0 {
		return id, nil
	}
	if id, err := models.ParseRegistrationID(schoolCode, strings.ToUpper(raw)); err == nil {
		return id, nil
	}
	return 0, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
}

func intParam(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}
