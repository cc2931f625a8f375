package common

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/ocr-pdf/constants"
)

// Config holds all application configuration
type Config struct {
	OCR    OCRConfig
	Output OutputConfig
	Log    LogConfig
}

// OCRConfig holds rasterization and recognition settings
type OCRConfig struct {
	DPI          int
	Language     string
	EngineConfig string // passed to the engine untouched, e.g. "--psm 3"
	Engine       string
	PopplerPath  string // directory holding pdftoppm; empty -> PATH
	TesseractCmd string // tesseract binary override; empty -> PATH
	TessdataDir  string
	Password     string
	ImageFormat  string
	Normalize    bool
}

// OutputConfig holds output file settings
type OutputConfig struct {
	Path string // empty -> input path with extension replaced by _ocr.txt
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			DPI:          constants.DefaultDPI,
			Language:     constants.DefaultLanguage,
			EngineConfig: constants.DefaultConfig,
			Engine:       string(constants.EngineTesseract),
			ImageFormat:  string(constants.PNG),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("dpi", c.OCR.DPI, PositiveInt)
	v.Field("lang", c.OCR.Language, Required, LanguageCode)
	v.Field("engine", c.OCR.Engine, OneOf(constants.Engines...))
	v.Field("format", c.OCR.ImageFormat, OneOf(constants.ImageFormats...))
	v.Field("log-level", strings.ToLower(c.Log.Level), OneOf("debug", "info", "warn", "error"))
	v.Field("log-format", c.Log.Format, OneOf("text", "json"))
	return v.Err()
}

// SlogLevel maps the configured level name to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
