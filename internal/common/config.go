package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/santiagocaneppa/Interview-project/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Log      LogConfig
}

// DatabaseConfig holds the run ledger configuration.
// An empty DSN disables the ledger.
type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCHealthAddr  string
	ShutdownTimeout time.Duration
}

// OCRConfig holds rasterization, tesseract and probing configuration
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	PSM           int
	OEM           int
	MaxPages      int
	ProbeDPI      int
	ImageSignal   string // "raster" | "embedded"
	Contrast      float64
	Brightness    float64
}

// LLMConfig holds generative model configuration
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
	RatePerMin  int
	Lenient     bool
}

// PipelineConfig holds per-run filesystem configuration
type PipelineConfig struct {
	ScratchDir  string
	SideFileDir string
	OutputFile  string
	ExportXLSX  bool

	WatchDebounce   time.Duration
	DocumentTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory, when present, is loaded first without
// overriding variables already set.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config.dotenv.load_failed", "error", err)
	}

	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_CONNS", 4),
			ConnMaxLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
			GRPCHealthAddr:  getEnv("GRPC_ADDR", ":8081"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("OCR_LANG", "por"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			PSM:           getEnvAsInt("OCR_PSM", 6),
			OEM:           getEnvAsInt("OCR_OEM", 0),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			ProbeDPI:      getEnvAsInt("PROBE_DPI", 36),
			ImageSignal:   strings.ToLower(getEnv("OCR_IMAGE_SIGNAL", "raster")),
			Contrast:      getEnvAsFloat64("OCR_CONTRAST", 1.2),
			Brightness:    getEnvAsFloat64("OCR_BRIGHTNESS", 10),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 90*time.Second),
			MaxRetries:  getEnvAsInt("OPENAI_MAX_RETRIES", 3),
			RatePerMin:  getEnvAsInt("OPENAI_RATE_PER_MIN", 0),
			Lenient:     getEnvAsBool("LLM_LENIENT", true),
		},
		Pipeline: PipelineConfig{
			ScratchDir:  getEnv("SCRATCH_DIR", "./tmp/work"),
			SideFileDir: getEnv("SIDEFILE_DIR", ""),
			OutputFile:  getEnv("OUTPUT_FILE", constants.DefaultOutputFile),
			ExportXLSX:  getEnvAsBool("EXPORT_XLSX", false),

			WatchDebounce:   getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
			DocumentTimeout: getEnvAsDuration("DOCUMENT_TIMEOUT", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return NewAppError("CONFIG_ERROR", "OPENAI_TEMPERATURE must be within 0..2", ErrInvalidInput)
	}
	if c.OCR.ImageSignal != "raster" && c.OCR.ImageSignal != "embedded" {
		return NewAppError("CONFIG_ERROR", "OCR_IMAGE_SIGNAL must be raster or embedded", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Pipeline.OutputFile) == "" {
		return NewAppError("CONFIG_ERROR", "OUTPUT_FILE is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Pipeline.ScratchDir) == "" {
		return NewAppError("CONFIG_ERROR", "SCRATCH_DIR is required", ErrInvalidInput)
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
