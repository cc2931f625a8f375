//go:build !gosseract

package ocr

import (
	"log/slog"

	"github.com/joseph-ayodele/ocr-pdf/internal/common"
)

// NewGosseract reports that the in-process engine was not compiled in.
// Rebuild with -tags gosseract (needs libtesseract and cgo).
func NewGosseract(_ Config, _ *slog.Logger) (Engine, error) {
	return nil, common.RecognitionError("gosseract engine not available: rebuild with -tags gosseract", nil)
}
