package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/auth"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/services"
)

// ResumeField is the multipart field carrying a resume upload.
const ResumeField = "file"

type CandidateHandler struct {
	*RecordHandler[models.Candidate]
	CandidateService *services.CandidateService
}

func NewCandidateHandler(s *services.CandidateService) *CandidateHandler {
	return &CandidateHandler{
		RecordHandler:    NewRecordHandler[models.Candidate](s),
		CandidateService: s,
	}
}

// Summaries is GET /candidates/summaries.
func (h *CandidateHandler) Summaries(c *gin.Context) {
	out, err := h.CandidateService.Summaries(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// ForJobPosting is GET /job-postings/:id/candidates.
func (h *CandidateHandler) ForJobPosting(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	out, err := h.CandidateService.ForJobPosting(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// UploadResume is POST /candidates/resume with a multipart "file" field.
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	fh, err := c.FormFile(ResumeField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing resume file: " + err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	url, err := h.CandidateService.UploadResume(c.Request.Context(), fh.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, dtos.ResumeUploadResponse{URL: url})
}
