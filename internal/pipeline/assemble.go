package pipeline

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/ocr-pdf/internal/ocr"
)

// PageBanner precedes each page's text in the output document.
func PageBanner(n int) string {
	return fmt.Sprintf("\n\n===== Page %d =====\n\n", n)
}

// Assemble concatenates pages in the given order, each prefixed by its banner.
func Assemble(pages []ocr.PageText) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(PageBanner(p.Number))
		b.WriteString(p.Text)
	}
	return b.String()
}
