package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/ocr-pdf/internal/common"
	"github.com/joseph-ayodele/ocr-pdf/internal/ocr"
	"github.com/joseph-ayodele/ocr-pdf/internal/pipeline"
)

type stubRasterizer struct{ n int }

func (s stubRasterizer) Rasterize(context.Context, string) ([]ocr.PageImage, error) {
	pages := make([]ocr.PageImage, s.n)
	for i := range pages {
		pages[i] = ocr.PageImage{Number: i + 1}
	}
	return pages, nil
}

type stubEngine struct {
	texts []string
	err   error
	cfg   *ocr.RecognitionConfig
}

func (s stubEngine) Name() string { return "stub" }

func (s stubEngine) Recognize(_ context.Context, p ocr.PageImage, rc ocr.RecognitionConfig) (ocr.PageText, error) {
	if s.cfg != nil {
		*s.cfg = rc
	}
	if s.err != nil {
		return ocr.PageText{}, s.err
	}
	return ocr.PageText{Number: p.Number, Text: s.texts[p.Number-1]}, nil
}

// withComponents swaps buildComponents for the duration of the test.
func withComponents(t *testing.T, r pipeline.Rasterizer, e ocr.Engine, gotCfg **common.Config) {
	t.Helper()
	orig := buildComponents
	buildComponents = func(cfg *common.Config, _ *slog.Logger) (pipeline.Rasterizer, ocr.Engine, error) {
		if gotCfg != nil {
			*gotCfg = cfg
		}
		return r, e, nil
	}
	t.Cleanup(func() { buildComponents = orig })
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestRunSuccessWritesDefaultOutput(t *testing.T) {
	var rc ocr.RecognitionConfig
	withComponents(t, stubRasterizer{n: 2}, stubEngine{texts: []string{"Hello", "World"}, cfg: &rc}, nil)
	in := writePDF(t, "scan.pdf")

	var stdout, stderr bytes.Buffer
	code := run([]string{in}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	got, err := os.ReadFile(filepath.Join(filepath.Dir(in), "scan_ocr.txt"))
	require.NoError(t, err)
	assert.Equal(t, "\n\n===== Page 1 =====\n\nHello\n\n===== Page 2 =====\n\nWorld", string(got))
	assert.Equal(t, ocr.RecognitionConfig{Language: "eng", Options: "--psm 3"}, rc)

	assert.Contains(t, stdout.String(), "Converting PDF pages to images...")
	assert.Contains(t, stdout.String(), "Converted 2 pages.")
	assert.True(t, strings.HasSuffix(stdout.String(), "Done.\n"))
}

func TestRunFlagsReachConfig(t *testing.T) {
	var cfg *common.Config
	withComponents(t, stubRasterizer{n: 1}, stubEngine{texts: []string{"x"}}, &cfg)
	in := writePDF(t, "scan.pdf")
	out := filepath.Join(filepath.Dir(in), "custom.txt")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		in, "-o", out,
		"--dpi", "200",
		"--lang", "eng+deu",
		"--poppler-path", "/opt/poppler/bin",
		"--tesseract-cmd", "/opt/tesseract/tesseract",
		"--config", "--psm 6",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	require.NotNil(t, cfg)
	assert.Equal(t, 200, cfg.OCR.DPI)
	assert.Equal(t, "eng+deu", cfg.OCR.Language)
	assert.Equal(t, "/opt/poppler/bin", cfg.OCR.PopplerPath)
	assert.Equal(t, "/opt/tesseract/tesseract", cfg.OCR.TesseractCmd)
	assert.Equal(t, "--psm 6", cfg.OCR.EngineConfig)
	assert.FileExists(t, out)

	oc := ocrConfig(cfg)
	assert.Equal(t, "/opt/tesseract/tesseract", oc.Tesseract)
	assert.Equal(t, 200, oc.DPI)
}

func TestRunMissingInputExitsOne(t *testing.T) {
	withComponents(t, stubRasterizer{n: 1}, stubEngine{texts: []string{"x"}}, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "nope.pdf")

	var stdout, stderr bytes.Buffer
	code := run([]string{in}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: PDF file '"+in+"' not found.\n", stderr.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no output file is written")
}

func TestRunRecognitionFailureExitsOne(t *testing.T) {
	failure := common.RecognitionError("tesseract failed on page 1", errors.New("exit status 1")).
		WithStderr([]byte("Failed loading language 'xyz'"))
	withComponents(t, stubRasterizer{n: 1}, stubEngine{err: failure}, nil)
	in := writePDF(t, "scan.pdf")

	var stdout, stderr bytes.Buffer
	code := run([]string{in}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "RECOGNITION_ERROR")
	assert.Contains(t, stderr.String(), "Failed loading language")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(in), "scan_ocr.txt"))
}

func TestRunUsageErrorsExitTwo(t *testing.T) {
	withComponents(t, stubRasterizer{n: 1}, stubEngine{texts: []string{"x"}}, nil)
	in := writePDF(t, "scan.pdf")

	cases := map[string][]string{
		"no args":      {},
		"two args":     {in, in},
		"unknown flag": {in, "--bogus"},
		"bad dpi":      {in, "--dpi", "0"},
		"dpi not int":  {in, "--dpi", "high"},
		"bad engine":   {in, "--engine", "easyocr"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 2, run(args, &stdout, &stderr))
			assert.True(t, strings.HasPrefix(stderr.String(), "Error: "), stderr.String())
		})
	}
}

func TestRunHelpExitsZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "--poppler-path")
	assert.Contains(t, stdout.String(), "--tesseract-cmd")
}

func TestDoctorReportsMissingTools(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"doctor",
		"--poppler-path", filepath.Join(t.TempDir(), "nowhere"),
		"--tesseract-cmd", filepath.Join(t.TempDir(), "tesseract-missing"),
	}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "[fail] pdftoppm")
	assert.Contains(t, stdout.String(), "[fail] tesseract")
}
