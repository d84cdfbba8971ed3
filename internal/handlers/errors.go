package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/database"
	"github.com/justsurfingit/talent-tracker/internal/formschema"
	"github.com/justsurfingit/talent-tracker/internal/services"
	"github.com/justsurfingit/talent-tracker/internal/storage"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
)

// respondError maps service errors to a status code and a JSON error body.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var fieldErrs formschema.FieldErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fieldErrs})
		return
	}

	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrStatusConflict),
		errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, database.ErrMissingRelation),
		errors.Is(err, tablequery.ErrUnknownColumn),
		errors.Is(err, tablequery.ErrUnknownRelation),
		errors.Is(err, tablequery.ErrInvalidOperator),
		errors.Is(err, tablequery.ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrAssistantDisabled),
		errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id: " + c.Param("id")})
		return 0, false
	}
	return uint(id), true
}

func bindValues(c *gin.Context) (map[string]any, bool) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return nil, false
	}
	return values, true
}

func listParams(c *gin.Context) (tablequery.Params, bool) {
	p, err := tablequery.ParseQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return p, false
	}
	return p, true
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
