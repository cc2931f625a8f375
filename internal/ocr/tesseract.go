package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/ocr-pdf/internal/common"
)

// TesseractCLI runs the tesseract binary once per page, piping the image on
// stdin and reading the text from stdout.
type TesseractCLI struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractCLI(cfg Config, logger *slog.Logger) *TesseractCLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractCLI{cfg: cfg.withDefaults(), runner: execRunner{logger: logger}, logger: logger}
}

// NewTesseractCLIForTests constructs the engine with a stub runner.
func NewTesseractCLIForTests(cfg Config, runner Runner, logger *slog.Logger) *TesseractCLI {
	e := NewTesseractCLI(cfg, logger)
	e.runner = runner
	return e
}

func (e *TesseractCLI) Name() string { return "tesseract" }

// Recognize runs: tesseract stdin stdout -l <lang> --dpi <dpi> [--tessdata-dir d] <options...>
func (e *TesseractCLI) Recognize(ctx context.Context, page PageImage, cfg RecognitionConfig) (PageText, error) {
	args := buildTesseractArgs(e.cfg, page, cfg)
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, bytes.NewReader(page.Data), args...)
	if err != nil {
		if isNotFound(err) {
			return PageText{}, common.RecognitionError(
				fmt.Sprintf("tesseract binary %q not found (set --tesseract-cmd)", e.cfg.Tesseract), err)
		}
		return PageText{}, common.RecognitionError(fmt.Sprintf("tesseract failed on page %d", page.Number), err).
			WithStderr(errb)
	}
	return PageText{Number: page.Number, Text: string(out)}, nil
}

// Languages runs tesseract --list-langs. Tesseract 3 prints the list on
// stderr, newer releases on stdout; both are scanned.
func (e *TesseractCLI) Languages(ctx context.Context) ([]string, error) {
	args := []string{"--list-langs"}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, nil, args...)
	if err != nil {
		if isNotFound(err) {
			return nil, common.RecognitionError(
				fmt.Sprintf("tesseract binary %q not found (set --tesseract-cmd)", e.cfg.Tesseract), err)
		}
		return nil, common.RecognitionError("tesseract --list-langs failed", err).WithStderr(errb)
	}
	return parseLanguageList(string(out) + "\n" + string(errb)), nil
}

func buildTesseractArgs(cfg Config, page PageImage, rc RecognitionConfig) []string {
	args := []string{"stdin", "stdout", "-l", rc.Language}
	dpi := page.DPI
	if dpi <= 0 {
		dpi = cfg.DPI
	}
	args = append(args, "--dpi", strconv.Itoa(dpi))
	if cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", cfg.TessdataDir)
	}
	return append(args, strings.Fields(rc.Options)...)
}

// parseLanguageList extracts model names from --list-langs output:
//
//	List of available languages in "/usr/share/tessdata/" (2):
//	eng
//	osd
func parseLanguageList(s string) []string {
	var langs []string
	seen := map[string]bool{}
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "List of available languages") || strings.ContainsAny(ln, " \t:") {
			continue
		}
		if !seen[ln] {
			seen[ln] = true
			langs = append(langs, ln)
		}
	}
	return langs
}
