package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/auth"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/services"
)

type InterviewHandler struct {
	InterviewService *services.InterviewService
}

func NewInterviewHandler(s *services.InterviewService) *InterviewHandler {
	return &InterviewHandler{InterviewService: s}
}

// List is GET /interviews?interviewer=&type=, "all" by default.
func (h *InterviewHandler) List(c *gin.Context) {
	interviews, err := h.InterviewService.List(c.Request.Context(),
		c.DefaultQuery("interviewer", services.FilterAll),
		c.DefaultQuery("type", services.FilterAll))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, interviews)
}

func (h *InterviewHandler) Schedule(c *gin.Context) {
	var req dtos.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	interview, err := h.InterviewService.Schedule(c.Request.Context(), auth.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, interview)
}

type BoardHandler struct {
	BoardService *services.BoardService
}

func NewBoardHandler(s *services.BoardService) *BoardHandler {
	return &BoardHandler{BoardService: s}
}

func (h *BoardHandler) Get(c *gin.Context) {
	p, valid := listParams(c)
	if !valid {
		return
	}
	board, err := h.BoardService.Board(c.Request.Context(), auth.UserID(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, board)
}

// Move is PATCH /board/candidates/:id.
func (h *BoardHandler) Move(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req dtos.MoveCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	res, err := h.BoardService.Move(c.Request.Context(), auth.UserID(c), id, req.FromStatus, req.ToStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

type ReportHandler struct {
	ReportService *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{ReportService: s}
}

func (h *ReportHandler) Tracker(c *gin.Context) {
	p, valid := listParams(c)
	if !valid {
		return
	}
	page, err := h.ReportService.Tracker(c.Request.Context(), auth.UserID(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReportHandler) Metrics(c *gin.Context) {
	m, err := h.ReportService.Metrics(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}
