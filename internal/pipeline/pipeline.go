package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/ocr-pdf/constants"
	"github.com/joseph-ayodele/ocr-pdf/internal/common"
	"github.com/joseph-ayodele/ocr-pdf/internal/ocr"
	"github.com/joseph-ayodele/ocr-pdf/internal/output"
)

// Rasterizer renders a PDF into ordered page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string) ([]ocr.PageImage, error)
}

// Request describes one OCR run.
type Request struct {
	InputPath   string
	OutputPath  string // empty -> constants.DefaultOutputPath(InputPath)
	Recognition ocr.RecognitionConfig
	Normalize   bool
	OnStatus    func(msg string)
}

// Result summarizes a finished run.
type Result struct {
	RunID      string
	OutputPath string
	Pages      int
	Bytes      int
	Duration   time.Duration
}

// Pipeline rasterizes, recognizes, and writes, in that order.
type Pipeline struct {
	rasterizer Rasterizer
	engine     ocr.Engine
	writeText  func(path, text string) error
	stat       func(name string) (os.FileInfo, error)
	logger     *slog.Logger
}

func NewPipeline(r Rasterizer, engine ocr.Engine, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		rasterizer: r,
		engine:     engine,
		writeText:  output.WriteText,
		stat:       os.Stat,
		logger:     logger,
	}
}

// Run processes one document. The output file is written only after every
// page has been recognized; any earlier failure leaves it untouched.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = common.NewRunID()
		ctx = common.WithRunID(ctx, runID)
	}
	logger := p.logger.With("run_id", runID)

	if info, err := p.stat(req.InputPath); err != nil || !info.Mode().IsRegular() {
		return Result{RunID: runID}, common.InputNotFoundError(req.InputPath, err)
	}

	outPath := req.OutputPath
	if outPath == "" {
		outPath = constants.DefaultOutputPath(req.InputPath)
	}
	logger.Info("ocr run started",
		"input", req.InputPath,
		"output", outPath,
		"engine", p.engine.Name(),
		"lang", req.Recognition.Language,
	)

	emit(req.OnStatus, "Converting PDF pages to images...")
	pages, err := p.rasterizer.Rasterize(ctx, req.InputPath)
	if err != nil {
		logger.Error("rasterize failed", "stage", common.StageOf(err), "input", req.InputPath, "error", err)
		return Result{RunID: runID}, err
	}
	emit(req.OnStatus, fmt.Sprintf("Converted %d pages.", len(pages)))
	logPageSizes(logger, pages)

	emit(req.OnStatus, "Performing OCR on images...")
	texts, err := ocr.RecognizeAll(ctx, p.engine, pages, req.Recognition, logger)
	if err != nil {
		logger.Error("recognition failed", "stage", common.StageOf(err), "input", req.InputPath, "error", err)
		return Result{RunID: runID, Pages: len(pages)}, err
	}
	if req.Normalize {
		for i := range texts {
			texts[i].Text = ocr.Normalize(texts[i].Text)
		}
	}
	text := Assemble(texts)

	emit(req.OnStatus, fmt.Sprintf("Writing OCR output to '%s'...", outPath))
	if err := p.writeText(outPath, text); err != nil {
		logger.Error("write failed", "stage", common.StageOf(err), "output", outPath, "error", err)
		return Result{RunID: runID, Pages: len(pages)}, err
	}
	emit(req.OnStatus, "Done.")

	res := Result{
		RunID:      runID,
		OutputPath: outPath,
		Pages:      len(pages),
		Bytes:      len(text),
		Duration:   time.Since(start),
	}
	logger.Info("ocr run finished",
		"output", outPath,
		"pages", res.Pages,
		"bytes", res.Bytes,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func logPageSizes(logger *slog.Logger, pages []ocr.PageImage) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, pg := range pages {
		cfg, err := pg.Config()
		if err != nil {
			logger.Debug("page image header unreadable", "page", pg.Number, "error", err)
			continue
		}
		logger.Debug("page rendered", "page", pg.Number, "width", cfg.Width, "height", cfg.Height, "bytes", len(pg.Data))
	}
}

// emit forwards status updates when callback is configured.
func emit(cb func(msg string), msg string) {
	if cb != nil {
		cb(msg)
	}
}

// NewPipelineForTests constructs a pipeline with injectable dependencies.
func NewPipelineForTests(
	r Rasterizer,
	engine ocr.Engine,
	writeText func(path, text string) error,
	stat func(name string) (os.FileInfo, error),
) *Pipeline {
	p := NewPipeline(r, engine, nil)
	if writeText != nil {
		p.writeText = writeText
	}
	if stat != nil {
		p.stat = stat
	}
	return p
}
