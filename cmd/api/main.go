package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/auth"
	"github.com/justsurfingit/talent-tracker/internal/config"
	"github.com/justsurfingit/talent-tracker/internal/database"
	"github.com/justsurfingit/talent-tracker/internal/handlers"
	"github.com/justsurfingit/talent-tracker/internal/logger"
	"github.com/justsurfingit/talent-tracker/internal/services"
	"github.com/justsurfingit/talent-tracker/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "talent-tracker",
	Short:        "Recruiting dashboard API",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE:  runMigrate,
}

var mailAuthorizeCmd = &cobra.Command{
	Use:   "mail-authorize",
	Short: "Authorize read access to the recruiter mailbox",
	RunE:  runMailAuthorize,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "optional config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, mailAuthorizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return err
	}

	// 2. Optional integrations
	var resumes *storage.ResumeUploader
	if cfg.StorageEnabled() {
		store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		resumes = storage.NewResumeUploader(store)
	} else {
		log.Warn("Resume storage disabled, S3 bucket or credentials missing")
	}

	llmService, err := services.NewLLMService(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	if !llmService.Enabled() {
		log.Warn("Assistant disabled, GEMINI_API_KEY is empty")
	}

	// 3. Core services
	boardService := services.NewBoardService(db, log)
	svc := handlers.Services{
		Clients:     services.NewClientService(db),
		Profiles:    services.NewProfileService(db),
		JobPostings: services.NewJobPostingService(db),
		Candidates:  services.NewCandidateService(db, resumes),
		Interviews:  services.NewInterviewService(db, boardService),
		Board:       boardService,
		Reports:     services.NewReportService(db),
		LLM:         llmService,
	}

	// 4. Mailbox watcher
	startMailWatcher(ctx, cfg, log, db, llmService, boardService)

	// 5. HTTP server
	gin.SetMode(gin.ReleaseMode)
	if cfg.Log.Development {
		gin.SetMode(gin.DebugMode)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handlers.NewRouter(cfg, log, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func startMailWatcher(ctx context.Context, cfg *config.Config, log *zap.Logger, db *gorm.DB, llm *services.LLMService, board *services.BoardService) {
	if !cfg.MailEnabled() {
		log.Info("Mail watcher disabled, no mailbox credentials", zap.String("file", cfg.Mail.CredentialsFile))
		return
	}
	if !llm.Enabled() {
		log.Warn("Mail watcher disabled, it needs the assistant to classify replies")
		return
	}

	gmailService, err := auth.NewGmailService(ctx, cfg.Mail)
	if err != nil {
		log.Warn("Mail watcher disabled", zap.Error(err))
		return
	}
	log.Info("Mailbox connected", zap.String("mailbox", cfg.Mail.Mailbox))

	emailService := services.NewEmailService(db, log, cfg.Mail.Mailbox, gmailService, llm, services.NewMatcherService(db), board)
	emailService.StartWatcher(ctx, cfg.Mail.PollInterval)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	cfg.Database.AutoMigrate = false
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	return database.Migrate(db, log)
}

func runMailAuthorize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return auth.AuthorizeGmail(cmd.Context(), cfg.Mail, cmd.InOrStdin(), cmd.OutOrStdout())
}
