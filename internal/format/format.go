package format

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rivo/uniseg"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FileSize renders a byte count as the largest unit keeping the value under
// 1024 (GB as ceiling). Bytes are rendered without decimals, larger units
// with two. Zero or negative sizes render as the empty string so history rows
// without a recorded size show nothing instead of "0 B".
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return ""
	}
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%.0f %s", size, sizeUnits[unit])
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}

// SizeMB renders a byte count in megabytes with two decimals, the form used
// in size-limit rejection messages.
func SizeMB(bytes int64) string {
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024*1024))
}

// Markdown returns the Markdown image syntax for a stored file.
func Markdown(fileName, fileURL string) string {
	return fmt.Sprintf("![%s](%s)", fileName, fileURL)
}

// HTML returns an img tag for a stored file.
func HTML(fileName, fileURL string) string {
	return fmt.Sprintf(`<img src="%s" alt="%s">`, fileURL, fileName)
}

// Dimensions renders image dimensions for the result panel, or a placeholder
// when the server did not report them.
func Dimensions(width, height int) string {
	if width > 0 && height > 0 {
		return fmt.Sprintf("%d × %d", width, height)
	}
	return "unknown"
}

// FileNameFromURL derives a display file name from the last path segment of a
// URL. URL uploads have no local file name, so the remote name is the best we
// can show.
func FileNameFromURL(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "image"
	}
	return name
}

// Truncate shortens s to at most max grapheme clusters, appending an ellipsis
// when cut. Counting clusters instead of bytes keeps CJK file names from
// blowing up the history table width.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	g := uniseg.NewGraphemes(s)
	var b strings.Builder
	count := 0
	for g.Next() && count < max-1 {
		b.WriteString(g.Str())
		count++
	}
	b.WriteString("…")
	return b.String()
}
