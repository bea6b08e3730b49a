package upload

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/apperrors"
	"github.com/tetsadou/pixup/internal/channels"
	"github.com/tetsadou/pixup/internal/format"
	"github.com/tetsadou/pixup/internal/logger"
)

// Latch is the single-flight gate for uploads: at most one upload runs at a
// time and concurrent attempts are rejected, not queued. Modeled as an
// explicit two-state machine instead of a bare flag so release is impossible
// to forget silently.
type Latch struct {
	mu       sync.Mutex
	inFlight bool
}

// TryAcquire moves Idle -> InFlight. It reports false when an upload is
// already running.
func (l *Latch) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return false
	}
	l.inFlight = true
	return true
}

// Release moves InFlight -> Idle. It must run on every terminal branch:
// success, server error, network error, timeout, and user abort alike.
func (l *Latch) Release() {
	l.mu.Lock()
	l.inFlight = false
	l.mu.Unlock()
}

// InFlight reports the current state without changing it.
func (l *Latch) InFlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// Result is what the result panel renders after a successful upload.
type Result struct {
	FileName string
	FileURL  string
	Width    int
	Height   int
	Channel  string
	Size     int64
}

// Pipeline validates and transmits uploads over one API client.
type Pipeline struct {
	client *api.Client
	latch  Latch
}

func NewPipeline(client *api.Client) *Pipeline {
	return &Pipeline{client: client}
}

// Busy reports whether an upload is currently in flight.
func (p *Pipeline) Busy() bool {
	return p.latch.InFlight()
}

// File validates and uploads a local file. Validation failures are reported
// without any request being sent.
func (p *Pipeline) File(ctx context.Context, path, channelKey string, onProgress func(sent, total int64)) (*Result, error) {
	if !p.latch.TryAcquire() {
		return nil, apperrors.Validation("An upload is already in progress.")
	}
	defer p.latch.Release()

	ch, ok := channels.Get(channelKey)
	if !ok {
		ch = channels.Channels[channels.DefaultKey]
		logger.Warn("Unknown channel, using default", "requested", channelKey, "effective", ch.Key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Validation("Cannot read file: " + err.Error())
	}
	fileName := filepath.Base(path)
	if err := ValidateType(fileName, head(data)); err != nil {
		return nil, err
	}
	if err := ValidateSize(ch, int64(len(data))); err != nil {
		return nil, err
	}

	logger.Info("Uploading file", "file", fileName, "channel", ch.Key, "size", format.FileSize(int64(len(data))))

	result, err := p.client.Upload(ctx, api.UploadRequest{
		FileName:   fileName,
		Channel:    ch.Key,
		Content:    bytes.NewReader(data),
		Size:       int64(len(data)),
		OnProgress: onProgress,
	})
	if err != nil {
		return nil, err
	}

	width, height := result.Width, result.Height
	if width == 0 || height == 0 {
		width, height = Dimensions(data)
	}
	return &Result{
		FileName: fileName,
		FileURL:  result.FileURL,
		Width:    width,
		Height:   height,
		Channel:  ch.Key,
		Size:     int64(len(data)),
	}, nil
}

// FromURL validates a remote URL and asks the server to fetch and store it.
// The display name comes from the URL's last path segment since there is no
// local file name.
func (p *Pipeline) FromURL(ctx context.Context, rawURL, channelKey string) (*Result, error) {
	if !p.latch.TryAcquire() {
		return nil, apperrors.Validation("An upload is already in progress.")
	}
	defer p.latch.Release()

	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	ch, ok := channels.Get(channelKey)
	if !ok {
		ch = channels.Channels[channels.DefaultKey]
		logger.Warn("Unknown channel, using default", "requested", channelKey, "effective", ch.Key)
	}

	logger.Info("Uploading from URL", "channel", ch.Key)

	result, err := p.client.UploadFromURL(ctx, rawURL, ch.Key)
	if err != nil {
		return nil, err
	}
	return &Result{
		FileName: format.FileNameFromURL(result.FileURL),
		FileURL:  result.FileURL,
		Width:    result.Width,
		Height:   result.Height,
		Channel:  ch.Key,
	}, nil
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
