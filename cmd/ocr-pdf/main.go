package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ocr-pdf/constants"
	"github.com/joseph-ayodele/ocr-pdf/internal/common"
	"github.com/joseph-ayodele/ocr-pdf/internal/diagnostics"
	"github.com/joseph-ayodele/ocr-pdf/internal/ocr"
	"github.com/joseph-ayodele/ocr-pdf/internal/pipeline"
)

// usageError marks bad flags, arguments, or configuration (exit 2).
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// components are built from the validated config; tests swap this out.
var buildComponents = func(cfg *common.Config, logger *slog.Logger) (pipeline.Rasterizer, ocr.Engine, error) {
	oc := ocrConfig(cfg)
	engine, err := ocr.NewEngine(constants.Engine(cfg.OCR.Engine), oc, logger)
	if err != nil {
		return nil, nil, err
	}
	return ocr.NewRasterizer(oc, logger), engine, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return exitCode(err, stderr)
}

// exitCode prints err and maps it to the process exit status.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var appErr *common.AppError
	var uErr usageError
	switch {
	case errors.As(err, &uErr):
		printError(stderr, "Error: %v\n", err)
		return 2
	case errors.As(err, &appErr) && errors.Is(err, common.ErrInputNotFound):
		printError(stderr, "Error: %s.\n", appErr.Message)
		return 1
	case errors.As(err, &appErr) && appErr.Stderr != "":
		printError(stderr, "Error: %v\n%s\n", err, appErr.Stderr)
		return 1
	default:
		printError(stderr, "Error: %v\n", err)
		return 1
	}
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(w io.Writer, format string, args ...interface{}) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cfg := common.DefaultConfig()

	root := &cobra.Command{
		Use:   "ocr-pdf <pdf>",
		Short: "OCR a rasterized PDF into text.",
		Long: "Render each page of a scanned or image-only PDF with pdftoppm and run tesseract over it.\n" +
			"The text of every page is written, behind a '===== Page N =====' banner, to one UTF-8 file.",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setup(cfg, stderr)
			if err != nil {
				return err
			}
			return runOCR(cmd.Context(), cfg, args[0], logger, stdout)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.Output.Path, "output", "o", "", "Path to output text file (default: <pdf>_ocr.txt)")
	pf.IntVar(&cfg.OCR.DPI, "dpi", cfg.OCR.DPI, "Resolution for PDF rendering")
	pf.StringVar(&cfg.OCR.Language, "lang", cfg.OCR.Language, "Tesseract language code, '+'-joined for several")
	pf.StringVar(&cfg.OCR.PopplerPath, "poppler-path", "", "Directory containing pdftoppm (needed on Windows)")
	pf.StringVar(&cfg.OCR.TesseractCmd, "tesseract-cmd", "", "Full path to the tesseract executable")
	pf.StringVar(&cfg.OCR.TessdataDir, "tessdata-dir", "", "Directory containing tesseract traineddata files")
	pf.StringVar(&cfg.OCR.EngineConfig, "config", cfg.OCR.EngineConfig, "Extra tesseract options, passed through as-is")
	pf.StringVar(&cfg.OCR.Engine, "engine", cfg.OCR.Engine, "Recognition engine: tesseract|gosseract")
	pf.StringVar(&cfg.OCR.ImageFormat, "format", cfg.OCR.ImageFormat, "Page image format: png|tiff")
	pf.StringVar(&cfg.OCR.Password, "password", "", "User password for encrypted PDFs")
	pf.BoolVar(&cfg.OCR.Normalize, "normalize", false, "Collapse OCR whitespace noise in each page's text")
	pf.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug|info|warn|error")
	pf.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format: text|json")

	root.AddCommand(newDoctorCmd(cfg, stdout, stderr))
	return root
}

func newDoctorCmd(cfg *common.Config, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that pdftoppm, tesseract, and the language models are available.",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := setup(cfg, stderr)
			if err != nil {
				return err
			}
			var langs ocr.LanguageLister
			if _, engine, err := buildComponents(cfg, logger); err == nil {
				if l, ok := engine.(ocr.LanguageLister); ok {
					langs = l
				}
			}
			report := diagnostics.NewChecker(langs).Run(cmd.Context(), diagnostics.Settings{
				OCR:        ocrConfig(cfg),
				Language:   cfg.OCR.Language,
				OutputPath: cfg.Output.Path,
			})
			for _, item := range report.Items {
				fmt.Fprintf(stdout, "[%s] %s: %s\n", item.Status, item.Name, item.Message)
				if item.Hint != "" {
					fmt.Fprintf(stdout, "       %s\n", item.Hint)
				}
			}
			if report.HasFailures {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

// setup validates cfg and installs the process logger.
func setup(cfg *common.Config, stderr io.Writer) (*slog.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, usageError{err}
	}
	opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	var h slog.Handler
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(stderr, opts)
	} else {
		h = slog.NewTextHandler(stderr, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}

func runOCR(ctx context.Context, cfg *common.Config, pdfPath string, logger *slog.Logger, stdout io.Writer) error {
	if ext := constants.NormalizeExt(filepath.Ext(pdfPath)); ext != constants.PDFExt {
		logger.Warn("input does not have a .pdf extension", "path", pdfPath, "ext", ext)
	}

	rasterizer, engine, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}

	runID := common.NewRunID()
	ctx = common.WithRunID(ctx, runID)
	p := pipeline.NewPipeline(rasterizer, engine, logger)
	_, err = p.Run(ctx, pipeline.Request{
		InputPath:  pdfPath,
		OutputPath: cfg.Output.Path,
		Recognition: ocr.RecognitionConfig{
			Language: cfg.OCR.Language,
			Options:  cfg.OCR.EngineConfig,
		},
		Normalize: cfg.OCR.Normalize,
		OnStatus:  func(msg string) { fmt.Fprintln(stdout, msg) },
	})
	return err
}

func ocrConfig(cfg *common.Config) ocr.Config {
	return ocr.Config{
		PopplerPath: cfg.OCR.PopplerPath,
		Tesseract:   cfg.OCR.TesseractCmd,
		TessdataDir: cfg.OCR.TessdataDir,
		DPI:         cfg.OCR.DPI,
		ImageFormat: constants.ImageFormat(cfg.OCR.ImageFormat),
		Password:    cfg.OCR.Password,
	}
}
