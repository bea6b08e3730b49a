package channels

import (
	"net/url"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Channel describes an upload destination with its display name and policies.
type Channel struct {
	Key  string
	Name string
	// MaxFileSize is the per-channel upload size limit in bytes.
	// Zero means the channel accepts any size.
	MaxFileSize int64
}

const MB = 1024 * 1024

// Channels is a map of supported upload channels key -> Channel.
var Channels = map[string]Channel{
	"miyoushe": {Key: "miyoushe", Name: "Miyoushe"},
	"chatglm":  {Key: "chatglm", Name: "ChatGLM", MaxFileSize: 20 * MB},
	"jd":       {Key: "jd", Name: "JD"},
}

// DefaultKey is used when no channel was selected or persisted.
const DefaultKey = "miyoushe"

// Get returns the channel for key.
func Get(key string) (Channel, bool) {
	ch, ok := Channels[strings.TrimSpace(key)]
	return ch, ok
}

// DisplayName maps a channel key to its display name. Unknown keys fall back
// to the raw key, or "unknown" when the key is empty, matching how history
// entries from retired channels are shown.
func DisplayName(key string) string {
	if ch, ok := Channels[key]; ok {
		return ch.Name
	}
	if strings.TrimSpace(key) == "" {
		return "unknown"
	}
	return key
}

// List returns all channels in natural key order.
func List() []Channel {
	keys := make([]string, 0, len(Channels))
	for k := range Channels {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	out := make([]Channel, 0, len(keys))
	for _, k := range keys {
		out = append(out, Channels[k])
	}
	return out
}

// Keys returns all channel keys in natural order.
func Keys() []string {
	keys := make([]string, 0, len(Channels))
	for k := range Channels {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return keys
}

// ThumbnailURL returns a downscaled variant of fileURL for gallery display.
// Only the original URL may be copied or opened in the viewer; the thumbnail
// is display-only. Channels without a known transform return fileURL as-is.
func ThumbnailURL(key, fileURL string) string {
	switch key {
	case "miyoushe":
		// Miyoushe serves from Aliyun OSS, which supports on-the-fly resize
		// via query parameters.
		u, err := url.Parse(fileURL)
		if err != nil || u.Scheme == "" {
			return fileURL
		}
		q := u.Query()
		if q.Has("x-oss-process") {
			return fileURL
		}
		q.Set("x-oss-process", "image/resize,w_360/quality,q_80")
		u.RawQuery = q.Encode()
		return u.String()
	default:
		return fileURL
	}
}
