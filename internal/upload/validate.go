package upload

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tetsadou/pixup/internal/apperrors"
	"github.com/tetsadou/pixup/internal/channels"
	"github.com/tetsadou/pixup/internal/format"
)

// The fixed allow-list of uploadable image types. Everything else is rejected
// locally before any request is sent.
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
}

const typeRejectionMessage = "Please choose an image file (JPG, PNG, GIF, BMP, WEBP)."

// ValidateType checks the file name extension and, when a content head is
// available, the sniffed MIME type. Both must land in the allow-list: a
// renamed .exe must not pass on extension alone.
func ValidateType(fileName string, head []byte) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExts[ext] {
		return apperrors.Validation(typeRejectionMessage)
	}
	if len(head) > 0 {
		mime := http.DetectContentType(head)
		if i := strings.Index(mime, ";"); i >= 0 {
			mime = mime[:i]
		}
		if !allowedMIMEs[strings.TrimSpace(mime)] {
			return apperrors.Validation(typeRejectionMessage)
		}
	}
	return nil
}

// ValidateSize enforces the per-channel size limit. Channels without a
// configured limit accept any size. The message names both the actual size
// and the limit so the user knows how far over they are.
func ValidateSize(ch channels.Channel, size int64) error {
	if ch.MaxFileSize <= 0 || size <= ch.MaxFileSize {
		return nil
	}
	return apperrors.Validation(fmt.Sprintf(
		"File size %s exceeds the %.0fMB limit for %s.",
		format.SizeMB(size), float64(ch.MaxFileSize)/(1024*1024), ch.Name))
}

// ValidateURL checks a remote image URL before asking the server to fetch it.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return apperrors.Validation("Image URL must not be empty.")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return apperrors.Validation("Image URL must start with http:// or https://.")
	}
	return nil
}
