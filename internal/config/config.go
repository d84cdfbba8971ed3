package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	// DSN is a libpq connection string or postgres:// URL.
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// AuthConfig is the configuration for verifying access tokens.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"` // Secret: HS256 signing secret of the identity provider
}

// LLMConfig is the configuration for the assistant model.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type LLMConfig struct {
	APIKey string `mapstructure:"api_key"` // Secret: Gemini API key
	Model  string `mapstructure:"model"`
}

// StorageConfig is the configuration for the S3 compatible resume bucket.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type StorageConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	AccessKey     string `mapstructure:"access_key"` // Secret
	SecretKey     string `mapstructure:"secret_key"` // Secret
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type MailConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	TokenFile       string        `mapstructure:"token_file"`
	Mailbox         string        `mapstructure:"mailbox"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config wraps the entire configuration of the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
}

// envBindings maps config keys to the environment variables that can provide
// them. The first name is preferred; later names are accepted for
// compatibility with older .env files.
var envBindings = map[string][]string{
	"server.addr":             {"HTTP_ADDR", "PORT"},
	"server.allowed_origins":  {"CORS_ALLOWED_ORIGINS"},
	"database.dsn":            {"DATABASE_URL", "DB_DSN"},
	"database.auto_migrate":   {"DATABASE_AUTO_MIGRATE"},
	"auth.jwt_secret":         {"JWT_SECRET", "SUPABASE_JWT_SECRET"},
	"llm.api_key":             {"GEMINI_API_KEY"},
	"llm.model":               {"GEMINI_MODEL"},
	"storage.endpoint":        {"S3_ENDPOINT"},
	"storage.region":          {"S3_REGION"},
	"storage.bucket":          {"S3_BUCKET"},
	"storage.access_key":      {"S3_ACCESS_KEY_ID"},
	"storage.secret_key":      {"S3_SECRET_ACCESS_KEY"},
	"storage.public_base_url": {"S3_PUBLIC_BASE_URL"},
	"mail.credentials_file":   {"MAIL_CREDENTIALS_FILE"},
	"mail.token_file":         {"MAIL_TOKEN_FILE"},
	"mail.mailbox":            {"MAIL_MAILBOX"},
	"mail.poll_interval":      {"MAIL_POLL_INTERVAL"},
	"log.level":               {"LOG_LEVEL"},
	"log.development":         {"LOG_DEVELOPMENT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=password dbname=talenttracker port=5432 sslmode=disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("mail.credentials_file", "credential.json")
	v.SetDefault("mail.token_file", "token.json")
	v.SetDefault("mail.mailbox", "me")
	v.SetDefault("mail.poll_interval", 15*time.Minute)
	v.SetDefault("log.level", "info")
}

// Load reads an optional .env file into the process environment, then builds
// the config from defaults, the optional config file and the environment.
// Environment variables win over the file.
func Load(filePath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		v.SetConfigFile(filePath)
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)

	return cfg, nil
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}

// splitList accepts both a real list and a single comma separated value, which
// is what an environment variable yields.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// MailEnabled reports whether mailbox sync has credentials to work with.
func (c *Config) MailEnabled() bool {
	if c.Mail.CredentialsFile == "" {
		return false
	}
	_, err := os.Stat(c.Mail.CredentialsFile)
	return err == nil
}

// StorageEnabled reports whether resume uploads have a bucket to go to.
// Without an access key the AWS default credential chain is used.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Bucket != ""
}
