package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/services"
)

type ClientHandler struct {
	*RecordHandler[models.Client]
	ClientService *services.ClientService
}

func NewClientHandler(s *services.ClientService) *ClientHandler {
	return &ClientHandler{
		RecordHandler: NewRecordHandler[models.Client](s),
		ClientService: s,
	}
}

// Options is GET /clients/options.
func (h *ClientHandler) Options(c *gin.Context) {
	opts, err := h.ClientService.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, opts)
}

type ProfileHandler struct {
	ProfileService *services.ProfileService
}

func NewProfileHandler(s *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{ProfileService: s}
}

func (h *ProfileHandler) Create(c *gin.Context) {
	var req dtos.UserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	profile, err := h.ProfileService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, profile)
}

// Options is GET /profiles/options, the "assign to" choices.
func (h *ProfileHandler) Options(c *gin.Context) {
	opts, err := h.ProfileService.AssignOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, opts)
}
