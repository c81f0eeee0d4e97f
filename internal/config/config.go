package config

import (
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SHEET_OMR_"

// Template sources
const (
	TemplateSourceEmbedded = "embedded"
	TemplateSourceDir      = "dir"
	TemplateSourceAzure    = "azure"
)

// Note orders
const (
	NoteOrderRow    = "row"
	NoteOrderColumn = "column"
)

// Config holds every tunable of the scanner and its bridges.
type Config struct {
	LogLevel string

	// Recognition tuning. MatchThreshold and PitchCorrection are empirical
	// values kept out of the algorithm code so they can be recalibrated.
	MatchThreshold     float64
	PitchCorrection    float64
	ThresholdBlockSize int
	ThresholdOffset    int
	MorphKernelSize    int
	StrictPitchRange   bool
	NoteOrder          string

	Annotate            bool
	AnnotationColor     string
	AnnotationThickness int
	AnnotationLabels    bool

	TemplateSource         string
	TemplateDir            string
	TemplateCatalog        string
	AzureConnectionString  string
	AzureTemplateContainer string

	Host           string
	Port           string
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// Default returns the configuration used when no environment overrides are set.
func Default() *Config {
	return &Config{
		LogLevel:            "info",
		MatchThreshold:      0.55,
		PitchCorrection:     0.3,
		ThresholdBlockSize:  21,
		ThresholdOffset:     4,
		MorphKernelSize:     3,
		NoteOrder:           NoteOrderRow,
		Annotate:            true,
		AnnotationColor:     "#FF0000",
		AnnotationThickness: 3,
		TemplateSource:      TemplateSourceEmbedded,
		Host:                "0.0.0.0",
		Port:                "8080",
		RequestTimeout:      30 * time.Second,
		MaxUploadBytes:      10 * 1024 * 1024,
	}
}

// ServerAddress returns the host:port the HTTP bridge listens on.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// LoadFromEnv builds a Config from SHEET_OMR_* environment variables.
func LoadFromEnv() (*Config, error) {
	d := Default()
	cfg := &Config{
		LogLevel:               getEnvOrDefault("LOG_LEVEL", d.LogLevel),
		MatchThreshold:         parseFloatOrDefault("MATCH_THRESHOLD", d.MatchThreshold),
		PitchCorrection:        parseFloatOrDefault("PITCH_CORRECTION", d.PitchCorrection),
		ThresholdBlockSize:     int(parseIntOrDefault("THRESHOLD_BLOCK_SIZE", int64(d.ThresholdBlockSize))),
		ThresholdOffset:        int(parseIntOrDefault("THRESHOLD_OFFSET", int64(d.ThresholdOffset))),
		MorphKernelSize:        int(parseIntOrDefault("MORPH_KERNEL_SIZE", int64(d.MorphKernelSize))),
		StrictPitchRange:       parseBoolOrDefault("STRICT_PITCH_RANGE", d.StrictPitchRange),
		NoteOrder:              strings.ToLower(getEnvOrDefault("NOTE_ORDER", d.NoteOrder)),
		Annotate:               parseBoolOrDefault("ANNOTATE", d.Annotate),
		AnnotationColor:        getEnvOrDefault("ANNOTATION_COLOR", d.AnnotationColor),
		AnnotationThickness:    int(parseIntOrDefault("ANNOTATION_THICKNESS", int64(d.AnnotationThickness))),
		AnnotationLabels:       parseBoolOrDefault("ANNOTATION_LABELS", d.AnnotationLabels),
		TemplateSource:         strings.ToLower(getEnvOrDefault("TEMPLATE_SOURCE", d.TemplateSource)),
		TemplateDir:            getEnvOrDefault("TEMPLATE_DIR", ""),
		TemplateCatalog:        getEnvOrDefault("TEMPLATE_CATALOG", ""),
		AzureConnectionString:  getEnvOrDefault("AZURE_STORAGE_CONNECTION_STRING", ""),
		AzureTemplateContainer: getEnvOrDefault("AZURE_TEMPLATE_CONTAINER", ""),
		Host:                   getEnvOrDefault("HOST", d.Host),
		Port:                   getEnvOrDefault("PORT", d.Port),
		RequestTimeout:         parseDurationOrDefault("REQUEST_TIMEOUT", d.RequestTimeout),
		MaxUploadBytes:         parseIntOrDefault("MAX_UPLOAD_BYTES", d.MaxUploadBytes),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field requirements.
func (c *Config) Validate() error {
	if math.IsNaN(c.MatchThreshold) || c.MatchThreshold <= -1 || c.MatchThreshold >= 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be in (-1, 1) (got %g)", c.MatchThreshold)
	}
	if math.IsNaN(c.PitchCorrection) || math.IsInf(c.PitchCorrection, 0) {
		return fmt.Errorf("PITCH_CORRECTION must be a finite number (got %g)", c.PitchCorrection)
	}
	if c.ThresholdBlockSize < 3 || c.ThresholdBlockSize%2 == 0 {
		return fmt.Errorf("THRESHOLD_BLOCK_SIZE must be odd and >= 3 (got %d)", c.ThresholdBlockSize)
	}
	if c.MorphKernelSize < 1 || c.MorphKernelSize%2 == 0 {
		return fmt.Errorf("MORPH_KERNEL_SIZE must be odd and >= 1 (got %d)", c.MorphKernelSize)
	}
	if c.NoteOrder != NoteOrderRow && c.NoteOrder != NoteOrderColumn {
		return fmt.Errorf("NOTE_ORDER must be %q or %q (got %q)", NoteOrderRow, NoteOrderColumn, c.NoteOrder)
	}
	if c.AnnotationThickness < 1 {
		return fmt.Errorf("ANNOTATION_THICKNESS must be >= 1 (got %d)", c.AnnotationThickness)
	}

	switch c.TemplateSource {
	case TemplateSourceEmbedded:
	case TemplateSourceDir:
		if c.TemplateDir == "" {
			return fmt.Errorf("TEMPLATE_DIR is required when TEMPLATE_SOURCE=%s", TemplateSourceDir)
		}
	case TemplateSourceAzure:
		if c.AzureConnectionString == "" || c.AzureTemplateContainer == "" {
			return fmt.Errorf("AZURE_STORAGE_CONNECTION_STRING and AZURE_TEMPLATE_CONTAINER are required when TEMPLATE_SOURCE=%s", TemplateSourceAzure)
		}
	default:
		return fmt.Errorf("unknown TEMPLATE_SOURCE: %q", c.TemplateSource)
	}

	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0 (got %d)", c.MaxUploadBytes)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
