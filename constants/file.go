package constants

import (
	"path/filepath"
	"strings"
)

// ImageFormat is the raster format pdftoppm renders pages into.
type ImageFormat string

const (
	PNG  ImageFormat = "png"
	TIFF ImageFormat = "tiff"
)

// ImageFormats holds the allowed values for the --format flag.
var ImageFormats = []string{string(PNG), string(TIFF)}

// OutputSuffix replaces the input extension when no output path is given.
const OutputSuffix = "_ocr.txt"

// PDFExt is the only input extension the CLI expects; others are still attempted.
const PDFExt = "pdf"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// PageFileExt returns the file extension pdftoppm writes for the given format.
// pdftoppm uses ".tif" for -tiff output.
func PageFileExt(f ImageFormat) string {
	switch f {
	case TIFF:
		return ".tif"
	default:
		return ".png"
	}
}

// DefaultOutputPath swaps the extension of in for OutputSuffix.
// scan.pdf -> scan_ocr.txt, .scan -> .scan_ocr.txt
func DefaultOutputPath(in string) string {
	// leading dots belong to the name, not the extension
	ext := filepath.Ext(strings.TrimLeft(filepath.Base(in), "."))
	return strings.TrimSuffix(in, ext) + OutputSuffix
}
