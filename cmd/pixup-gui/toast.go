package main

import (
	"image/color"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
)

type toastKind int

const (
	toastInfo toastKind = iota
	toastWarning
	toastError
)

// toastDuration keeps errors on screen longest so they can be read.
func toastDuration(kind toastKind) time.Duration {
	switch kind {
	case toastError:
		return 4 * time.Second
	case toastWarning:
		return 3 * time.Second
	default:
		return 2 * time.Second
	}
}

func toastColor(kind toastKind) color.Color {
	switch kind {
	case toastError:
		return theme.Color(theme.ColorNameError)
	case toastWarning:
		return theme.Color(theme.ColorNameWarning)
	default:
		return theme.Color(theme.ColorNamePrimary)
	}
}

// showToast displays a transient banner at the bottom of the window. A newer
// toast replaces the current one immediately; the old hide timer is ignored
// via the generation counter so it cannot dismiss the replacement early.
func (a *pixupApp) showToast(message string, kind toastKind) {
	gen := atomic.AddUint64(&a.toastGen, 1)

	a.safeDo("toast.show", func() {
		a.toastText.Text = message
		a.toastText.Color = color.White
		a.toastBG.FillColor = toastColor(kind)
		a.toastBox.Show()
		a.toastText.Refresh()
		a.toastBG.Refresh()
		a.content.Refresh()
	})

	a.safeGo("toast.hide", func() {
		time.Sleep(toastDuration(kind))
		if atomic.LoadUint64(&a.toastGen) != gen {
			return
		}
		a.safeDo("toast.hide.apply", func() {
			a.toastBox.Hide()
			a.content.Refresh()
		})
	})
}

func (a *pixupApp) buildToastLayer() fyne.CanvasObject {
	a.toastText = canvas.NewText("", color.White)
	a.toastText.TextSize = 15
	a.toastText.Alignment = fyne.TextAlignCenter

	a.toastBG = canvas.NewRectangle(theme.Color(theme.ColorNamePrimary))
	a.toastBG.CornerRadius = 6

	a.toastBox = container.NewStack(a.toastBG, container.NewPadded(a.toastText))
	a.toastBox.Hide()

	return container.NewVBox(
		newSpacer(),
		container.NewPadded(a.toastBox),
	)
}
