package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// Config decodes the image header and returns its dimensions without
// decoding the pixel data.
func (p PageImage) Config() (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		return image.Config{}, fmt.Errorf("decode page %d (%s): %w", p.Number, p.Format, err)
	}
	return cfg, nil
}
