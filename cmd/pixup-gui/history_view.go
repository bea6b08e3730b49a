package main

import (
	"strconv"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/channels"
	"github.com/tetsadou/pixup/internal/format"
	"github.com/tetsadou/pixup/internal/history"
)

func (a *pixupApp) buildHistoryTab() fyne.CanvasObject {
	refreshBtn := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		a.reloadHistory()
	})
	clearBtn := widget.NewButtonWithIcon("Clear All", theme.DeleteIcon(), func() {
		a.showConfirmWindow("Clear History",
			"Clear ALL upload history? This cannot be undone.",
			a.clearHistory)
	})
	header := container.NewHBox(
		widget.NewLabelWithStyle("Upload History", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		layout.NewSpacer(),
		refreshBtn,
		clearBtn,
	)

	a.historyBody = container.NewStack(widget.NewLabel(""))

	a.pageLabel = widget.NewLabel("")
	a.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		if a.store.Prev() {
			a.renderHistory()
		}
	})
	a.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		if a.store.Next() {
			a.renderHistory()
		}
	})
	a.pageEntry = widget.NewEntry()
	a.pageEntry.SetPlaceHolder("page")
	jumpBtn := widget.NewButton("Go", func() {
		page, err := strconv.Atoi(a.pageEntry.Text)
		if err != nil {
			a.showToast("Enter a page number.", toastWarning)
			return
		}
		if err := a.store.JumpTo(page); err != nil {
			a.showToast("Page "+a.pageEntry.Text+" is out of range.", toastWarning)
			return
		}
		a.renderHistory()
	})

	a.pagingBar = container.NewHBox(
		layout.NewSpacer(),
		a.prevBtn,
		a.pageLabel,
		a.nextBtn,
		container.NewGridWrap(fyne.NewSize(60, 36), a.pageEntry),
		jumpBtn,
		layout.NewSpacer(),
	)

	return container.NewBorder(header, a.pagingBar, nil, nil, a.historyBody)
}

func (a *pixupApp) setHistoryLoading() {
	a.safeDo("history.loading", func() {
		a.historyBody.Objects = []fyne.CanvasObject{
			container.NewCenter(widget.NewLabel("Loading history...")),
		}
		a.pagingBar.Hide()
		a.historyBody.Refresh()
	})
}

func (a *pixupApp) setHistoryError(message string) {
	a.safeDo("history.error", func() {
		retry := widget.NewButton("Retry", func() {
			a.reloadHistory()
		})
		a.historyBody.Objects = []fyne.CanvasObject{
			container.NewCenter(container.NewVBox(
				widget.NewLabelWithStyle(message, fyne.TextAlignCenter, fyne.TextStyle{}),
				container.NewCenter(retry),
			)),
		}
		a.pagingBar.Hide()
		a.historyBody.Refresh()
	})
}

// renderHistory redraws the current page. Must run on the UI thread.
func (a *pixupApp) renderHistory() {
	if a.store.Empty() {
		a.historyBody.Objects = []fyne.CanvasObject{
			container.NewCenter(widget.NewLabel("No upload history yet.")),
		}
		a.pagingBar.Hide()
		a.historyBody.Refresh()
		return
	}

	gen := atomic.LoadUint64(&a.historyGen)
	cards := make([]fyne.CanvasObject, 0, history.PerPage)
	for _, item := range a.store.Page() {
		cards = append(cards, a.buildHistoryCard(item, gen))
	}
	grid := container.NewGridWithColumns(3, cards...)
	a.historyBody.Objects = []fyne.CanvasObject{container.NewScroll(grid)}

	a.pageLabel.SetText("Page " + strconv.Itoa(a.store.CurrentPage()) + " / " + strconv.Itoa(a.store.TotalPages()))
	if a.store.HasPrev() {
		a.prevBtn.Enable()
	} else {
		a.prevBtn.Disable()
	}
	if a.store.HasNext() {
		a.nextBtn.Enable()
	} else {
		a.nextBtn.Disable()
	}
	if a.store.ControlsVisible() {
		a.pagingBar.Show()
	} else {
		a.pagingBar.Hide()
	}
	a.historyBody.Refresh()
}

func (a *pixupApp) buildHistoryCard(item api.HistoryItem, gen uint64) fyne.CanvasObject {
	thumb := canvas.NewImageFromImage(nil)
	thumb.FillMode = canvas.ImageFillContain
	thumb.SetMinSize(fyne.NewSize(180, 120))

	// Thumbnails arrive async; a reload that finished in the meantime owns
	// the view, so stale fetches are dropped.
	safeGo("history.thumb", func() {
		img, err := fetchImage(channels.ThumbnailURL(item.Channel, item.FileURL))
		if err != nil {
			return
		}
		a.safeDo("history.thumb.apply", func() {
			if atomic.LoadUint64(&a.historyGen) != gen {
				return
			}
			thumb.Image = img
			thumb.Refresh()
		})
	})

	open := newTappableArea(thumb, func() {
		a.viewer.Show(item.FileURL, item.FileName)
	})

	name := widget.NewLabelWithStyle(format.Truncate(item.FileName, 18), fyne.TextAlignCenter, fyne.TextStyle{})
	meta := widget.NewLabelWithStyle(historyCardMeta(item), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	copyBtn := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		a.copyToClipboard(item.FileURL)
	})
	mdBtn := widget.NewButton("MD", func() {
		a.copyToClipboard(format.Markdown(item.FileName, item.FileURL))
	})
	deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		a.showConfirmWindow("Delete Image",
			"Delete "+format.Truncate(item.FileName, 40)+" from history?",
			func() { a.deleteHistoryItem(item.ID, item.FileName) })
	})

	return container.NewVBox(
		open,
		name,
		meta,
		container.NewCenter(container.NewHBox(copyBtn, mdBtn, deleteBtn)),
	)
}

// historyCardMeta joins the size, dimensions and channel name into one line,
// skipping whatever the server did not report.
func historyCardMeta(item api.HistoryItem) string {
	parts := make([]string, 0, 3)
	if s := format.FileSize(item.FileSize); s != "" {
		parts = append(parts, s)
	}
	if item.Width > 0 && item.Height > 0 {
		parts = append(parts, format.Dimensions(item.Width, item.Height))
	}
	parts = append(parts, channels.DisplayName(item.Channel))

	meta := ""
	for i, p := range parts {
		if i > 0 {
			meta += " · "
		}
		meta += p
	}
	return meta
}
