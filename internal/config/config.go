package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is read once at startup
// and never re-read per request.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	OCR       OCRConfig
	Upload    UploadConfig
	Archive   ArchiveConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LLMProviderConfig holds settings for a single structured-extraction provider.
type LLMProviderConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxRetries  int     `mapstructure:"max_retries"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// LLMConfig holds structured-extraction settings with an optional fallback provider.
type LLMConfig struct {
	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the fallback provider config, or nil if not configured.
func (l *LLMConfig) SecondaryConfig() *LLMProviderConfig {
	if l.Secondary.Provider != "" {
		return &l.Secondary
	}
	return nil
}

// EmbeddingConfig holds settings for the embedding model endpoint.
// Dimension is fixed for the lifetime of the store: changing the model or
// its dimensionality invalidates already-stored vectors.
type EmbeddingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	Dimension   int    `mapstructure:"dimension"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds settings for the external tesseract binary.
type OCRConfig struct {
	Tesseract   string `mapstructure:"tesseract"`
	Language    string `mapstructure:"language"`
	TessdataDir string `mapstructure:"tessdata_dir"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// UploadConfig holds upload validation settings.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the maximum upload size in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// ArchiveConfig holds S3 settings for best-effort raw upload archival.
// Archival is disabled when Bucket is empty.
type ArchiveConfig struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled reports whether raw upload archival is configured.
func (a *ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the INVREADER_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVREADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invreader")
	v.SetDefault("db.password", "invreader_secret")
	v.SetDefault("db.name", "invoice_reader_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// LLM defaults: gemini primary, no fallback
	v.SetDefault("llm.primary.provider", "gemini")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.model", "gemini-2.5-flash")
	v.SetDefault("llm.primary.temperature", 0.1)
	v.SetDefault("llm.primary.max_retries", 2)
	v.SetDefault("llm.primary.timeout_secs", 120)
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.model", "")
	v.SetDefault("llm.secondary.temperature", 0.1)
	v.SetDefault("llm.secondary.max_retries", 2)
	v.SetDefault("llm.secondary.timeout_secs", 120)

	// Embedding defaults
	v.SetDefault("embedding.endpoint", "https://api.openai.com/v1/embeddings")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimension", 384)
	v.SetDefault("embedding.timeout_secs", 60)

	// OCR defaults
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.timeout_secs", 60)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 16)

	// Archive defaults (disabled unless a bucket is configured)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "INVREADER_SERVER_PORT",
		"server.read_timeout":       "INVREADER_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "INVREADER_SERVER_WRITE_TIMEOUT",
		"server.environment":        "INVREADER_SERVER_ENVIRONMENT",
		"db.host":                   "INVREADER_DB_HOST",
		"db.port":                   "INVREADER_DB_PORT",
		"db.user":                   "INVREADER_DB_USER",
		"db.password":               "INVREADER_DB_PASSWORD",
		"db.name":                   "INVREADER_DB_NAME",
		"db.sslmode":                "INVREADER_DB_SSLMODE",
		"db.max_open":               "INVREADER_DB_MAX_OPEN",
		"db.max_idle":               "INVREADER_DB_MAX_IDLE",
		"llm.primary.provider":      "INVREADER_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":       "INVREADER_LLM_PRIMARY_API_KEY",
		"llm.primary.model":         "INVREADER_LLM_PRIMARY_MODEL",
		"llm.primary.temperature":   "INVREADER_LLM_PRIMARY_TEMPERATURE",
		"llm.primary.max_retries":   "INVREADER_LLM_PRIMARY_MAX_RETRIES",
		"llm.primary.timeout_secs":  "INVREADER_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":    "INVREADER_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":     "INVREADER_LLM_SECONDARY_API_KEY",
		"llm.secondary.model":       "INVREADER_LLM_SECONDARY_MODEL",
		"llm.secondary.temperature": "INVREADER_LLM_SECONDARY_TEMPERATURE",
		"llm.secondary.max_retries": "INVREADER_LLM_SECONDARY_MAX_RETRIES",
		"llm.secondary.timeout_secs": "INVREADER_LLM_SECONDARY_TIMEOUT_SECS",
		"embedding.endpoint":        "INVREADER_EMBEDDING_ENDPOINT",
		"embedding.api_key":         "INVREADER_EMBEDDING_API_KEY",
		"embedding.model":           "INVREADER_EMBEDDING_MODEL",
		"embedding.dimension":       "INVREADER_EMBEDDING_DIMENSION",
		"embedding.timeout_secs":    "INVREADER_EMBEDDING_TIMEOUT_SECS",
		"ocr.tesseract":             "INVREADER_OCR_TESSERACT",
		"ocr.language":              "INVREADER_OCR_LANGUAGE",
		"ocr.tessdata_dir":          "INVREADER_OCR_TESSDATA_DIR",
		"ocr.timeout_secs":          "INVREADER_OCR_TIMEOUT_SECS",
		"upload.max_file_size_mb":   "INVREADER_UPLOAD_MAX_FILE_SIZE_MB",
		"archive.region":            "INVREADER_ARCHIVE_REGION",
		"archive.bucket":            "INVREADER_ARCHIVE_BUCKET",
		"archive.endpoint":          "INVREADER_ARCHIVE_ENDPOINT",
		"archive.access_key":        "INVREADER_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":        "INVREADER_ARCHIVE_SECRET_KEY",
		"cors.allowed_origins":      "INVREADER_CORS_ALLOWED_ORIGINS",
		"log.level":                 "INVREADER_LOG_LEVEL",
		"log.format":                "INVREADER_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVREADER_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVREADER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.LLM = LLMConfig{
		Primary: LLMProviderConfig{
			Provider:    v.GetString("llm.primary.provider"),
			APIKey:      v.GetString("llm.primary.api_key"),
			Model:       v.GetString("llm.primary.model"),
			Temperature: v.GetFloat64("llm.primary.temperature"),
			MaxRetries:  v.GetInt("llm.primary.max_retries"),
			TimeoutSecs: v.GetInt("llm.primary.timeout_secs"),
		},
		Secondary: LLMProviderConfig{
			Provider:    v.GetString("llm.secondary.provider"),
			APIKey:      v.GetString("llm.secondary.api_key"),
			Model:       v.GetString("llm.secondary.model"),
			Temperature: v.GetFloat64("llm.secondary.temperature"),
			MaxRetries:  v.GetInt("llm.secondary.max_retries"),
			TimeoutSecs: v.GetInt("llm.secondary.timeout_secs"),
		},
	}
	cfg.Embedding = EmbeddingConfig{
		Endpoint:    v.GetString("embedding.endpoint"),
		APIKey:      v.GetString("embedding.api_key"),
		Model:       v.GetString("embedding.model"),
		Dimension:   v.GetInt("embedding.dimension"),
		TimeoutSecs: v.GetInt("embedding.timeout_secs"),
	}
	cfg.OCR = OCRConfig{
		Tesseract:   v.GetString("ocr.tesseract"),
		Language:    v.GetString("ocr.language"),
		TessdataDir: v.GetString("ocr.tessdata_dir"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Archive = ArchiveConfig{
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
