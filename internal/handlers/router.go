package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/auth"
	"github.com/justsurfingit/talent-tracker/internal/config"
	"github.com/justsurfingit/talent-tracker/internal/logger"
	"github.com/justsurfingit/talent-tracker/internal/metrics"
	"github.com/justsurfingit/talent-tracker/internal/services"
	"go.uber.org/zap"
)

// Services bundles what the router needs.
type Services struct {
	Clients     *services.ClientService
	Profiles    *services.ProfileService
	JobPostings *services.JobPostingService
	Candidates  *services.CandidateService
	Interviews  *services.InterviewService
	Board       *services.BoardService
	Reports     *services.ReportService
	LLM         *services.LLMService
}

// NewRouter wires every route under /api/v1.
func NewRouter(cfg *config.Config, log *zap.Logger, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log), metrics.RecordHTTPStats())

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", logger.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{logger.RequestIDHeader}
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	formHandler := NewFormHandler(svc.Clients, svc.Profiles, svc.JobPostings)
	clientHandler := NewClientHandler(svc.Clients)
	profileHandler := NewProfileHandler(svc.Profiles)
	jobPostingHandler := NewJobPostingHandler(svc.JobPostings, svc.LLM)
	candidateHandler := NewCandidateHandler(svc.Candidates)
	interviewHandler := NewInterviewHandler(svc.Interviews)
	boardHandler := NewBoardHandler(svc.Board)
	reportHandler := NewReportHandler(svc.Reports)

	api := r.Group("/api/v1")
	api.GET("/health", HealthCheck)

	api.Use(auth.Middleware(cfg.Auth.JWTSecret))
	{
		api.GET("/forms/:name", formHandler.Get)

		clients := api.Group("/clients")
		clients.GET("/options", clientHandler.Options)
		clientHandler.Register(clients)

		profiles := api.Group("/profiles")
		profiles.POST("", profileHandler.Create)
		profiles.GET("/options", profileHandler.Options)

		postings := api.Group("/job-postings")
		postings.POST("/extract", jobPostingHandler.Extract)
		postings.GET("/assignable", jobPostingHandler.Assignable)
		postings.GET("/options", jobPostingHandler.Options)
		postings.GET("/:id/candidates", candidateHandler.ForJobPosting)
		jobPostingHandler.Register(postings)

		candidates := api.Group("/candidates")
		candidates.GET("/summaries", candidateHandler.Summaries)
		candidates.POST("/resume", candidateHandler.UploadResume)
		candidateHandler.Register(candidates)

		api.GET("/interviews", interviewHandler.List)
		api.POST("/interviews", interviewHandler.Schedule)

		api.GET("/board", boardHandler.Get)
		api.PATCH("/board/candidates/:id", boardHandler.Move)

		api.GET("/reports/tracker", reportHandler.Tracker)
		api.GET("/reports/metrics", reportHandler.Metrics)
	}

	return r
}
