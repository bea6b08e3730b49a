package upload

import (
	"bytes"
	"image"

	// Image formats for local dimension probing. JPEG/PNG/GIF come from the
	// standard library; BMP and WEBP need golang.org/x/image.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Dimensions probes the pixel size of an encoded image. The server reports
// dimensions for most channels; this local probe fills the result panel when
// it does not. Returns (0, 0) for anything undecodable rather than failing
// the upload over a cosmetic field.
func Dimensions(data []byte) (width, height int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
