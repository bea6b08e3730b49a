package main

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/httpclient"
	"github.com/tetsadou/pixup/internal/logger"
)

// viewerHideDelay gives the close animation time to finish before the window
// is released.
const viewerHideDelay = 300 * time.Millisecond

// imageViewer shows one full-size image in its own window. At most one
// viewer window is alive: opening a new image destroys the previous window
// first, and closing hides immediately then destroys after a short delay.
type imageViewer struct {
	mu  sync.Mutex
	win fyne.Window
}

func (v *imageViewer) Show(fileURL, name string) {
	v.destroyCurrent()

	w := fyne.CurrentApp().NewWindow(name)
	v.mu.Lock()
	v.win = w
	v.mu.Unlock()

	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	loading := widget.NewLabel("Loading image...")

	w.SetContent(container.NewStack(img, container.NewCenter(loading)))
	w.Resize(fyne.NewSize(900, 700))
	w.CenterOnScreen()
	w.SetOnClosed(func() {
		v.release(w)
	})
	w.Show()

	safeGo("viewer.load", func() {
		decoded, err := fetchImage(fileURL)
		safeDo("viewer.load.apply", func() {
			if !v.isCurrent(w) {
				return
			}
			if err != nil {
				loading.SetText("Could not load image.")
				logger.Error("Viewer image load failed", "error", err)
				return
			}
			loading.Hide()
			img.Image = decoded
			img.Refresh()
		})
	})
}

// Dismiss hides the current viewer right away and destroys the window after
// the hide delay, so a rapid re-open never races a half-closed window.
func (v *imageViewer) Dismiss() {
	v.mu.Lock()
	w := v.win
	v.mu.Unlock()
	if w == nil {
		return
	}

	safeDo("viewer.dismiss.hide", func() {
		w.Hide()
	})
	safeGo("viewer.dismiss.destroy", func() {
		time.Sleep(viewerHideDelay)
		v.mu.Lock()
		stillCurrent := v.win == w
		if stillCurrent {
			v.win = nil
		}
		v.mu.Unlock()
		if stillCurrent {
			safeDo("viewer.dismiss.close", func() {
				w.Close()
			})
		}
	})
}

func (v *imageViewer) destroyCurrent() {
	v.mu.Lock()
	w := v.win
	v.win = nil
	v.mu.Unlock()
	if w != nil {
		safeDo("viewer.destroy_previous", func() {
			w.Close()
		})
	}
}

func (v *imageViewer) release(w fyne.Window) {
	v.mu.Lock()
	if v.win == w {
		v.win = nil
	}
	v.mu.Unlock()
}

func (v *imageViewer) isCurrent(w fyne.Window) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win == w
}

// fetchImage downloads and decodes a remote image.
func fetchImage(fileURL string) (image.Image, error) {
	client := httpclient.ClientFor(api.HistoryTimeout)
	req, err := http.NewRequest(http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	body, resp, err := httpclient.DoAndRead(client, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch failed with status %d", resp.StatusCode)
	}
	decoded, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
