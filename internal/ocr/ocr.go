package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/ocr-pdf/constants"
)

type Config struct {
	Pdftoppm    string // binary name or absolute path; if empty -> PopplerPath/pdftoppm or "pdftoppm"
	PopplerPath string // directory containing pdftoppm (Windows builds are not on PATH)
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string

	DPI         int                   // rasterization DPI, default 300
	ImageFormat constants.ImageFormat // png (default) or tiff
	Password    string                // user password for encrypted PDFs
}

// RecognitionConfig is fixed for a whole run.
type RecognitionConfig struct {
	Language string // tesseract model name(s), "eng" or "eng+deu"
	Options  string // engine flags, passed through as-is ("--psm 3")
}

// PageImage is one rendered page held in memory.
type PageImage struct {
	Number int // 1-based physical page number
	Data   []byte
	Format constants.ImageFormat
	DPI    int
}

// PageText is the recognized text of one page.
type PageText struct {
	Number int
	Text   string
}

// Engine turns one page image into text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, page PageImage, cfg RecognitionConfig) (PageText, error)
}

// LanguageLister is implemented by engines that can report installed models.
type LanguageLister interface {
	Languages(ctx context.Context) ([]string, error)
}

func (c Config) withDefaults() Config {
	if c.Pdftoppm == "" {
		c.Pdftoppm = binaryIn(c.PopplerPath, "pdftoppm")
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.DPI <= 0 {
		c.DPI = constants.DefaultDPI
	}
	if c.ImageFormat == "" {
		c.ImageFormat = constants.PNG
	}
	return c
}

// NewEngine builds the recognition engine named by kind.
func NewEngine(kind constants.Engine, cfg Config, logger *slog.Logger) (Engine, error) {
	switch kind {
	case constants.EngineTesseract, "":
		return NewTesseractCLI(cfg, logger), nil
	case constants.EngineGosseract:
		return NewGosseract(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", kind)
	}
}

// Binaries returns the pdftoppm and tesseract commands the adapters will run.
func (c Config) Binaries() (pdftoppm, tesseract string) {
	d := c.withDefaults()
	return d.Pdftoppm, d.Tesseract
}
