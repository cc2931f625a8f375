//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/ocr-pdf/internal/common"
)

// Gosseract recognizes pages in-process through libtesseract.
type Gosseract struct {
	cfg           Config
	clientFactory func() *gosseract.Client
	logger        *slog.Logger
}

func NewGosseract(cfg Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gosseract{cfg: cfg.withDefaults(), clientFactory: gosseract.NewClient, logger: logger}, nil
}

func (e *Gosseract) Name() string { return "gosseract" }

func (e *Gosseract) Recognize(ctx context.Context, page PageImage, rc RecognitionConfig) (PageText, error) {
	if err := ctx.Err(); err != nil {
		return PageText{}, common.RecognitionError(fmt.Sprintf("interrupted before page %d", page.Number), err)
	}
	c := e.clientFactory()
	defer func() {
		if err := c.Close(); err != nil {
			e.logger.Warn("close tesseract client", "error", err)
		}
	}()

	if e.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return PageText{}, common.RecognitionError("set tessdata dir", err)
		}
	}
	if err := c.SetLanguage(common.SplitLanguages(rc.Language)...); err != nil {
		return PageText{}, common.RecognitionError("set languages", err)
	}
	dpi := page.DPI
	if dpi <= 0 {
		dpi = e.cfg.DPI
	}
	if err := c.SetVariable("user_defined_dpi", strconv.Itoa(dpi)); err != nil {
		return PageText{}, common.RecognitionError("set dpi", err)
	}
	if err := e.applyOptions(c, rc.Options); err != nil {
		return PageText{}, err
	}
	if err := c.SetImageFromBytes(page.Data); err != nil {
		return PageText{}, common.RecognitionError(fmt.Sprintf("load page %d", page.Number), err)
	}
	text, err := c.Text()
	if err != nil {
		return PageText{}, common.RecognitionError(fmt.Sprintf("recognize page %d", page.Number), err)
	}
	return PageText{Number: page.Number, Text: text}, nil
}

// applyOptions maps the CLI-style option string onto client settings.
// Only --psm N and -c key=value have in-process equivalents.
func (e *Gosseract) applyOptions(c *gosseract.Client, options string) error {
	fields := strings.Fields(options)
	for i := 0; i < len(fields); i++ {
		switch f := fields[i]; {
		case f == "--psm" && i+1 < len(fields):
			i++
			mode, err := strconv.Atoi(fields[i])
			if err != nil {
				return common.RecognitionError(fmt.Sprintf("invalid --psm %q", fields[i]), err)
			}
			if err := c.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
				return common.RecognitionError("set page segmentation mode", err)
			}
		case f == "-c" && i+1 < len(fields):
			i++
			k, v, ok := strings.Cut(fields[i], "=")
			if !ok {
				return common.RecognitionError(fmt.Sprintf("invalid -c %q, want key=value", fields[i]), nil)
			}
			if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
				return common.RecognitionError(fmt.Sprintf("set variable %s", k), err)
			}
		default:
			e.logger.Warn("option ignored by gosseract engine", "option", f)
		}
	}
	return nil
}
