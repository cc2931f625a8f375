package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/ocr-pdf/internal/ocr"
)

// Status indicates whether a single check passed.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Item is one check result with an optional hint.
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Report aggregates all checks.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	HasFailures bool      `json:"hasFailures"`
	Items       []Item    `json:"items"`
}

// Settings is what the checker needs to know about the planned run.
type Settings struct {
	OCR        ocr.Config
	Language   string
	OutputPath string // optional; its directory is checked for write access
}

// Checker validates external tools, language models, and the output location.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
	langs      ocr.LanguageLister
}

// NewChecker builds a checker using real OS dependencies. langs may be nil,
// in which case the language check is skipped.
func NewChecker(langs ocr.LanguageLister) *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
		langs:      langs,
	}
}

// Run executes all checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, s Settings) Report {
	pdftoppm, tesseract := s.OCR.Binaries()
	items := []Item{
		c.checkTool("pdftoppm", pdftoppm, "Install poppler-utils, or point --poppler-path at the directory containing pdftoppm."),
		c.checkTool("tesseract", tesseract, "Install tesseract-ocr, or point --tesseract-cmd at the tesseract executable."),
		c.checkLanguages(ctx, s.Language),
		c.checkOutputDir(s.OutputPath),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == StatusFail {
			hasFailures = true
			break
		}
	}

	return Report{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkTool verifies an executable resolves, on PATH or at an explicit path.
func (c *Checker) checkTool(id, bin, hint string) Item {
	path, err := c.lookPath(bin)
	if err != nil {
		return Item{
			ID:      "tool_" + id,
			Name:    id,
			Status:  StatusFail,
			Message: fmt.Sprintf("Tool not found: %s", bin),
			Hint:    hint,
		}
	}

	return Item{
		ID:      "tool_" + id,
		Name:    id,
		Status:  StatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkLanguages verifies every requested model is installed.
func (c *Checker) checkLanguages(ctx context.Context, code string) Item {
	item := Item{ID: "languages", Name: "Language models"}
	if c.langs == nil {
		item.Status = StatusSkip
		item.Message = "Engine cannot list installed models."
		return item
	}

	available, err := c.langs.Languages(ctx)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot list installed models: %v", err)
		item.Hint = "Check that tesseract runs and --tessdata-dir points at a tessdata directory."
		return item
	}

	missing := ocr.MissingLanguages(available, code)
	if len(missing) > 0 {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Missing models: %s", strings.Join(missing, ", "))
		item.Hint = "Install the traineddata files (e.g. tesseract-ocr-" + missing[0] + ") or choose another --lang."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Installed: %s", strings.Join(available, ", "))
	return item
}

// checkOutputDir validates the output directory exists and is writable.
func (c *Checker) checkOutputDir(outputPath string) Item {
	item := Item{ID: "output_dir", Name: "Output directory"}
	if strings.TrimSpace(outputPath) == "" {
		item.Status = StatusSkip
		item.Message = "No output path given."
		return item
	}

	dir := filepath.Dir(outputPath)
	info, err := c.stat(dir)
	if err != nil || !info.IsDir() {
		item.Status = StatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Output directory does not exist: %s", dir)
		} else {
			item.Message = fmt.Sprintf("Cannot access output directory: %s", dir)
		}
		item.Hint = "Create the directory first; the output file's parent is not created automatically."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
	langs ocr.LanguageLister,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		createTemp: createTemp,
		remove:     remove,
		langs:      langs,
	}
}
