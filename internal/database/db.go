package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/justsurfingit/talent-tracker/internal/config"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgreSQL error codes the API maps to client errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var (
	ErrDuplicate       = errors.New("record already exists")
	ErrMissingRelation = errors.New("referenced record does not exist")
)

// Connect opens the PostgreSQL pool and runs migrations when enabled.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	log.Info("Database connection established")

	if cfg.AutoMigrate {
		if err := Migrate(db, log); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running migrations")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// TranslateError turns PostgreSQL constraint violations into the package
// sentinels so handlers can pick a status code. Other errors pass through.
func TranslateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.Detail)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrMissingRelation, pgErr.Detail)
	}
	return err
}
