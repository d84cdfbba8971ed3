package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/services"
)

type JobPostingHandler struct {
	*RecordHandler[models.JobPosting]
	JobPostingService *services.JobPostingService
	LLMService        *services.LLMService
}

func NewJobPostingHandler(s *services.JobPostingService, llm *services.LLMService) *JobPostingHandler {
	return &JobPostingHandler{
		RecordHandler:     NewRecordHandler[models.JobPosting](s),
		JobPostingService: s,
		LLMService:        llm,
	}
}

// Extract is POST /job-postings/extract. It pre-fills a posting from the
// raw text of a job ad.
func (h *JobPostingHandler) Extract(c *gin.Context) {
	var req dtos.JobPostingExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	extracted, err := h.LLMService.ExtractJobPosting(c.Request.Context(), req.RawHTML)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, extracted)
}

// Assignable is GET /job-postings/assignable.
func (h *JobPostingHandler) Assignable(c *gin.Context) {
	postings, err := h.JobPostingService.Assignable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, postings)
}

func (h *JobPostingHandler) Options(c *gin.Context) {
	opts, err := h.JobPostingService.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, opts)
}
