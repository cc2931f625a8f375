package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/ocr-pdf/internal/common"
)

// RecognizeAll recognizes pages strictly in order, one at a time. The first
// failure aborts the run and no partial results are returned.
func RecognizeAll(ctx context.Context, engine Engine, pages []PageImage, cfg RecognitionConfig, logger *slog.Logger) ([]PageText, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if l, ok := engine.(LanguageLister); ok {
		if err := checkLanguages(ctx, l, cfg.Language); err != nil {
			return nil, err
		}
	}

	texts := make([]PageText, 0, len(pages))
	for _, page := range pages {
		select {
		case <-ctx.Done():
			return nil, common.RecognitionError(fmt.Sprintf("interrupted before page %d", page.Number), ctx.Err())
		default:
		}
		res, err := engine.Recognize(ctx, page, cfg)
		if err != nil {
			return nil, err
		}
		res.Number = page.Number
		logger.Debug("page recognized", "engine", engine.Name(), "page", page.Number, "chars", len(res.Text))
		texts = append(texts, res)
	}
	return texts, nil
}

func checkLanguages(ctx context.Context, l LanguageLister, code string) error {
	available, err := l.Languages(ctx)
	if err != nil {
		return err
	}
	if missing := MissingLanguages(available, code); len(missing) > 0 {
		return common.RecognitionError(
			fmt.Sprintf("language model not available: %s (installed: %s)",
				strings.Join(missing, ", "), strings.Join(available, ", ")), nil)
	}
	return nil
}

// MissingLanguages returns the models named in a '+'-joined code that are not
// in available, in request order.
func MissingLanguages(available []string, code string) []string {
	have := make(map[string]bool, len(available))
	for _, a := range available {
		have[a] = true
	}
	var missing []string
	for _, want := range common.SplitLanguages(code) {
		if !have[want] {
			missing = append(missing, want)
		}
	}
	return missing
}
