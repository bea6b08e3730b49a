package clipboard

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// Copy writes text to the system clipboard. The platform clipboard command
// is tried first; when that is unavailable or fails (headless session, no
// xclip/wl-copy), it falls back to the OSC 52 escape sequence so terminals
// that support it still receive the text. Neither path leaves state behind.
func Copy(text string) error {
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		}
	}
	return writeOSC52(os.Stdout, text)
}

func writeOSC52(w io.Writer, text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(w, "\x1b]52;c;%s\x07", encoded)
	return err
}
