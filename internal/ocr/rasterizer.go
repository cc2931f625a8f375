package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/ocr-pdf/constants"
	"github.com/joseph-ayodele/ocr-pdf/internal/common"
)

// PageCounter reports the number of pages in a PDF.
type PageCounter func(path, password string) (int, error)

// pageCountUnknown means pdfcpu could not parse the document and pdftoppm,
// which repairs broken xref tables, gets the final say.
const pageCountUnknown = -1

// Rasterizer renders every page of a PDF to an in-memory image via pdftoppm.
type Rasterizer struct {
	cfg        Config
	runner     Runner
	countPages PageCounter
	logger     *slog.Logger
}

func NewRasterizer(cfg Config, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rasterizer{
		cfg:        cfg.withDefaults(),
		runner:     execRunner{logger: logger},
		countPages: pdfcpuPageCount,
		logger:     logger,
	}
}

// NewRasterizerForTests constructs a rasterizer with injectable dependencies.
func NewRasterizerForTests(cfg Config, runner Runner, countPages PageCounter, logger *slog.Logger) *Rasterizer {
	r := NewRasterizer(cfg, logger)
	r.runner = runner
	r.countPages = countPages
	return r
}

// Rasterize returns one image per page, in physical page order.
func (r *Rasterizer) Rasterize(ctx context.Context, path string) ([]PageImage, error) {
	pages, err := r.preflight(path)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pdf-pp-*")
	if err != nil {
		return nil, common.RasterizationError("create temp dir", err)
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, nil, buildPdftoppmArgs(r.cfg, path, prefix)...)
	if err != nil {
		if isNotFound(err) {
			return nil, common.RasterizationError(fmt.Sprintf("renderer %q not found (set --poppler-path)", r.cfg.Pdftoppm), err)
		}
		return nil, common.RasterizationError("pdftoppm failed", err).WithStderr(errb)
	}

	// collect generated images (page-01.png, page-02.png, ...)
	files, err := collectPages(prefix, constants.PageFileExt(r.cfg.ImageFormat))
	if err != nil {
		return nil, common.RasterizationError("collect rendered pages", err)
	}
	if len(files) == 0 {
		return nil, common.RasterizationError("pdftoppm produced no images", nil).WithStderr(errb)
	}
	if pages != pageCountUnknown && len(files) != pages {
		return nil, common.RasterizationError(
			fmt.Sprintf("pdftoppm rendered %d images for %d pages", len(files), pages), nil)
	}

	out := make([]PageImage, 0, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, common.RasterizationError(fmt.Sprintf("read rendered page %d", i+1), err)
		}
		out = append(out, PageImage{
			Number: i + 1,
			Data:   data,
			Format: r.cfg.ImageFormat,
			DPI:    r.cfg.DPI,
		})
	}
	return out, nil
}

// preflight counts pages with pdfcpu. Encrypted, missing and empty documents
// fail here; any other parse error is logged and left to pdftoppm.
func (r *Rasterizer) preflight(path string) (int, error) {
	pages, err := r.countPages(path, r.cfg.Password)
	switch {
	case err == nil && pages == 0:
		return 0, common.RasterizationError(fmt.Sprintf("pdf %q has no pages", path), nil)
	case err == nil:
		r.logger.Debug("pdf preflight ok", "path", path, "pages", pages)
		return pages, nil
	case isEncryptionError(err):
		return 0, common.RasterizationError(fmt.Sprintf("pdf %q is encrypted (set --password)", path), err)
	case isNotFound(err):
		return 0, common.RasterizationError(fmt.Sprintf("read pdf %q", path), err)
	default:
		r.logger.Warn("pdf preflight failed, leaving page count to pdftoppm", "path", path, "error", err)
		return pageCountUnknown, nil
	}
}

func isEncryptionError(err error) bool {
	if errors.Is(err, pdfcpu.ErrWrongPassword) || errors.Is(err, pdfcpu.ErrUnknownEncryption) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "password")
}

func buildPdftoppmArgs(cfg Config, in, prefix string) []string {
	args := []string{"-r", strconv.Itoa(cfg.DPI)}
	if cfg.ImageFormat == constants.TIFF {
		args = append(args, "-tiff")
	} else {
		args = append(args, "-png")
	}
	if cfg.Password != "" {
		args = append(args, "-upw", cfg.Password)
	}
	return append(args, in, prefix)
}

// collectPages globs prefix-N<ext> and sorts by N. pdftoppm zero-pads N to
// the width of the page count, but numeric sort does not rely on that.
func collectPages(prefix, ext string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	type numbered struct {
		n    int
		path string
	}
	pages := make([]numbered, 0, len(matches))
	for _, m := range matches {
		suffix := strings.TrimSuffix(strings.TrimPrefix(m, prefix+"-"), ext)
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		pages = append(pages, numbered{n: n, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}

var pdfcpuConfigOnce sync.Once

// disablePdfcpuConfigDir keeps pdfcpu from creating config.yml and fonts
// under the user's config dir.
func disablePdfcpuConfigDir() {
	pdfcpuConfigOnce.Do(api.DisableConfigDir)
}

func pdfcpuPageCount(path, password string) (int, error) {
	disablePdfcpuConfigDir()
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	return api.PageCount(f, conf)
}
