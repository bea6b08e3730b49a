package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/channels"
	"github.com/tetsadou/pixup/internal/confirm"
	"github.com/tetsadou/pixup/internal/format"
	"github.com/tetsadou/pixup/internal/history"
	"github.com/tetsadou/pixup/internal/logger"
	"github.com/tetsadou/pixup/internal/token"
	"github.com/tetsadou/pixup/internal/upload"
)

type AppState int

const (
	StateVerify AppState = iota
	StateUpload
	StateUploading
	StateResult
)

type pixupApp struct {
	window  fyne.Window
	state   AppState
	content *fyne.Container

	// UI Components
	verifyView    fyne.CanvasObject
	uploadView    fyne.CanvasObject
	uploadingView fyne.CanvasObject
	resultView    fyne.CanvasObject
	errorOverlay  *canvas.Rectangle

	progressBar      *widget.ProgressBar
	progressInfinite *widget.ProgressBarInfinite
	resultName       *widget.Label
	resultMeta       *widget.Label
	resultURL        *widget.Entry
	urlEntry         *widget.Entry

	// Toast layer
	toastGen  uint64
	toastText *canvas.Text
	toastBG   *canvas.Rectangle
	toastBox  *fyne.Container

	// History tab
	historyBody *fyne.Container
	pagingBar   *fyne.Container
	pageLabel   *widget.Label
	pageEntry   *widget.Entry
	prevBtn     *widget.Button
	nextBtn     *widget.Button
	historyGen  uint64

	// Runtime data
	client     *api.Client
	pipeline   *upload.Pipeline
	store      *history.Store
	config     AppConfig
	lastResult *upload.Result
	viewer     imageViewer

	isAnimating        bool
	confirmGate        confirm.SingleShot
	currentConfirmWin  fyne.Window
	currentSettingsWin fyne.Window
	cancelMu           sync.Mutex
	activeCancels      map[uint64]context.CancelFunc
	activeCancelID     uint64
	panicNoticeOnce    sync.Once
}

func newPixupApp(w fyne.Window) *pixupApp {
	a := &pixupApp{
		window:        w,
		store:         history.NewStore(),
		activeCancels: make(map[uint64]context.CancelFunc),
	}
	a.loadConfig()
	a.setupUI()

	// Initial verification check
	a.checkStoredToken()

	return a
}

func (a *pixupApp) setActiveCancel(cancel context.CancelFunc) uint64 {
	a.cancelMu.Lock()
	a.activeCancelID++
	id := a.activeCancelID
	a.activeCancels[id] = cancel
	a.cancelMu.Unlock()
	return id
}

func (a *pixupApp) clearActiveCancel(id uint64) {
	a.cancelMu.Lock()
	delete(a.activeCancels, id)
	a.cancelMu.Unlock()
}

func (a *pixupApp) cancelActive(reason string) {
	a.cancelMu.Lock()
	cancels := a.activeCancels
	a.activeCancels = make(map[uint64]context.CancelFunc)
	a.cancelMu.Unlock()
	if len(cancels) > 0 {
		logger.Warn("Cancellation requested", "reason", reason)
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func (a *pixupApp) setupUI() {
	a.verifyView = a.buildVerifyView()
	a.uploadView = a.buildUploadView()
	a.uploadingView = a.buildUploadingView()
	a.resultView = a.buildResultView()

	// Settings button (Upper Right)
	settingsBtn := newTappableArea(widget.NewIcon(theme.SettingsIcon()), a.showSettingsWindow)
	settingsContainer := container.NewHBox(layout.NewSpacer(), container.NewPadded(settingsBtn))

	// Persistent error overlay for the red flash
	a.errorOverlay = canvas.NewRectangle(color.Transparent)
	a.errorOverlay.Hide()

	uploadStack := container.NewStack(
		a.verifyView,
		a.uploadView,
		a.uploadingView,
		a.resultView,
	)

	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon("Upload", theme.UploadIcon(), uploadStack),
		container.NewTabItemWithIcon("History", theme.HistoryIcon(), a.buildHistoryTab()),
	)
	tabs.OnSelected = func(item *container.TabItem) {
		if item.Text == "History" {
			a.reloadHistory()
		}
	}

	a.content = container.NewStack(
		tabs,
		container.NewBorder(settingsContainer, nil, nil, nil),
		a.buildToastLayer(),
		a.errorOverlay,
	)

	a.window.SetContent(a.content)
	a.setState(StateVerify)
}

func (a *pixupApp) buildVerifyView() fyne.CanvasObject {
	input := widget.NewPasswordEntry()
	input.SetPlaceHolder("Verification token")

	title := canvas.NewText("VERIFY ACCESS", color.Black)
	title.TextSize = 26
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	hint := widget.NewLabelWithStyle("Enter your verification token to use the uploader.",
		fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	verifyBtn := widget.NewButtonWithIcon("Verify", theme.ConfirmIcon(), func() {
		a.submitToken(input.Text)
		input.SetText("")
	})
	input.OnSubmitted = func(s string) {
		a.submitToken(s)
		input.SetText("")
	}

	card := container.NewVBox(
		container.NewCenter(title),
		hint,
		input,
		container.NewPadded(verifyBtn),
	)
	return container.NewCenter(container.NewPadded(card))
}

func (a *pixupApp) buildUploadView() fyne.CanvasObject {
	drop := newDropZone(a.showFilePicker)

	channelNames := make([]string, 0, len(channels.Channels))
	nameToKey := make(map[string]string, len(channels.Channels))
	keyToName := make(map[string]string, len(channels.Channels))
	for _, ch := range channels.List() {
		label := ch.Name
		if ch.MaxFileSize > 0 {
			label += " (max " + format.FileSize(ch.MaxFileSize) + ")"
		}
		channelNames = append(channelNames, label)
		nameToKey[label] = ch.Key
		keyToName[ch.Key] = label
	}
	channelSelect := widget.NewSelect(channelNames, func(s string) {
		a.config.PreferredChannel = nameToKey[s]
		a.saveConfig()
	})
	channelSelect.SetSelected(keyToName[a.config.PreferredChannel])

	a.urlEntry = widget.NewEntry()
	a.urlEntry.SetPlaceHolder("https://example.com/image.png")
	urlBtn := widget.NewButtonWithIcon("Upload URL", theme.DownloadIcon(), func() {
		a.startURLUpload(a.urlEntry.Text)
	})
	a.urlEntry.OnSubmitted = func(s string) {
		a.startURLUpload(s)
	}

	body := container.NewVBox(
		widget.NewLabelWithStyle("Drop an image here or click to choose",
			fyne.TextAlignCenter, fyne.TextStyle{}),
		container.NewCenter(drop),
		widget.NewSeparator(),
		widget.NewForm(widget.NewFormItem("Channel", channelSelect)),
		container.NewBorder(nil, nil, nil, urlBtn, a.urlEntry),
	)
	return container.NewCenter(container.NewPadded(body))
}

func (a *pixupApp) buildUploadingView() fyne.CanvasObject {
	a.progressBar = widget.NewProgressBar()
	a.progressInfinite = widget.NewProgressBarInfinite()
	a.progressInfinite.Hide()

	body := container.NewVBox(
		widget.NewLabelWithStyle("Uploading...", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		a.progressBar,
		a.progressInfinite,
	)
	return container.NewCenter(container.NewGridWrap(fyne.NewSize(360, 120), body))
}

func (a *pixupApp) buildResultView() fyne.CanvasObject {
	a.resultName = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	a.resultMeta = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	a.resultURL = widget.NewEntry()

	copyURLBtn := widget.NewButtonWithIcon("Copy URL", theme.ContentCopyIcon(), func() {
		if a.lastResult != nil {
			a.copyToClipboard(a.lastResult.FileURL)
		}
	})
	copyMDBtn := widget.NewButton("Copy Markdown", func() {
		if a.lastResult != nil {
			a.copyToClipboard(format.Markdown(a.lastResult.FileName, a.lastResult.FileURL))
		}
	})
	copyHTMLBtn := widget.NewButton("Copy HTML", func() {
		if a.lastResult != nil {
			a.copyToClipboard(format.HTML(a.lastResult.FileName, a.lastResult.FileURL))
		}
	})
	viewBtn := widget.NewButtonWithIcon("View", theme.VisibilityIcon(), func() {
		if a.lastResult != nil {
			a.viewer.Show(a.lastResult.FileURL, a.lastResult.FileName)
		}
	})
	againBtn := widget.NewButtonWithIcon("Upload Another", theme.ContentAddIcon(), func() {
		a.urlEntry.SetText("")
		a.setState(StateUpload)
	})

	body := container.NewVBox(
		widget.NewLabelWithStyle("Upload complete", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		a.resultName,
		a.resultMeta,
		a.resultURL,
		container.NewCenter(container.NewHBox(copyURLBtn, copyMDBtn, copyHTMLBtn, viewBtn)),
		container.NewCenter(againBtn),
	)
	return container.NewCenter(container.NewPadded(body))
}

func (a *pixupApp) showResult(result *upload.Result) {
	a.safeDo("result.show", func() {
		a.resultName.SetText(format.Truncate(result.FileName, 48))
		a.resultMeta.SetText(resultMetaLine(result))
		a.resultURL.SetText(result.FileURL)
	})
}

func resultMetaLine(result *upload.Result) string {
	meta := channels.DisplayName(result.Channel)
	if s := format.FileSize(result.Size); s != "" {
		meta += " · " + s
	}
	if result.Width > 0 && result.Height > 0 {
		meta += " · " + format.Dimensions(result.Width, result.Height)
	}
	return meta
}

func (a *pixupApp) setProgress(v float64) {
	a.safeDo("upload.progress", func() {
		if v < 0 {
			a.progressBar.Hide()
			a.progressInfinite.Show()
			return
		}
		a.progressInfinite.Hide()
		a.progressBar.Show()
		a.progressBar.SetValue(v)
	})
}

func (a *pixupApp) setState(s AppState) {
	a.safeDo("app.set_state", func() {
		a.state = s
		a.verifyView.Hide()
		a.uploadView.Hide()
		a.uploadingView.Hide()
		a.resultView.Hide()

		switch s {
		case StateVerify:
			a.verifyView.Show()
		case StateUpload:
			a.uploadView.Show()
		case StateUploading:
			a.uploadingView.Show()
		case StateResult:
			a.resultView.Show()
		}

		a.content.Refresh()
	})
}

func (a *pixupApp) flashRed() {
	if a.isAnimating {
		return
	}
	a.isAnimating = true

	a.safeDo("app.flash_red.start", func() {
		a.errorOverlay.Show()
		a.content.Refresh()
	})

	a.safeGo("app.flash_red.animate", func() {
		steps := 10
		duration := 150 * time.Millisecond
		sleep := duration / time.Duration(steps)

		for i := 1; i <= steps; i++ {
			alpha := uint8(120 * float32(i) / float32(steps))
			a.safeDo("app.flash_red.fade_in", func() {
				a.errorOverlay.FillColor = color.NRGBA{R: 255, G: 0, B: 0, A: alpha}
				canvas.Refresh(a.errorOverlay)
			})
			time.Sleep(sleep)
		}
		for i := steps; i >= 0; i-- {
			alpha := uint8(120 * float32(i) / float32(steps))
			a.safeDo("app.flash_red.fade_out", func() {
				a.errorOverlay.FillColor = color.NRGBA{R: 255, G: 0, B: 0, A: alpha}
				canvas.Refresh(a.errorOverlay)
			})
			time.Sleep(sleep)
		}

		a.safeDo("app.flash_red.end", func() {
			a.errorOverlay.FillColor = color.Transparent
			a.errorOverlay.Hide()
			a.isAnimating = false
			a.content.Refresh()
		})
	})
}

func (a *pixupApp) copyToClipboard(text string) {
	a.window.Clipboard().SetContent(text)
	a.showToast("Copied to clipboard.", toastInfo)
}

// showConfirmWindow opens a yes/no window. The single-shot gate guarantees
// the callback fires at most once per round even when the Yes button, Enter
// key and window close race; a second dialog request while one is open is
// rejected and the open window takes focus.
func (a *pixupApp) showConfirmWindow(title, message string, onYes func()) {
	if err := a.confirmGate.Arm(onYes); err != nil {
		if a.currentConfirmWin != nil {
			a.currentConfirmWin.RequestFocus()
		}
		return
	}

	confirmWin := fyne.CurrentApp().NewWindow(title)
	a.currentConfirmWin = confirmWin
	confirmWin.SetOnClosed(func() {
		a.currentConfirmWin = nil
		a.confirmGate.Cancel()
	})

	msg := widget.NewLabelWithStyle(message, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	msg.Wrapping = fyne.TextWrapWord

	yesBtn := widget.NewButtonWithIcon("Yes", theme.ConfirmIcon(), func() {
		a.confirmGate.Confirm()
		confirmWin.Close()
	})
	yesBtn.Importance = widget.HighImportance
	noBtn := widget.NewButton("No", func() {
		a.confirmGate.Cancel()
		confirmWin.Close()
	})

	confirmWin.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyReturn, fyne.KeyEnter:
			a.confirmGate.Confirm()
			confirmWin.Close()
		case fyne.KeyEscape:
			a.confirmGate.Cancel()
			confirmWin.Close()
		}
	})

	card := container.NewVBox(
		container.NewPadded(msg),
		container.NewPadded(container.NewGridWithColumns(2, yesBtn, noBtn)),
	)

	confirmWin.SetContent(container.NewCenter(container.NewPadded(card)))
	confirmWin.Resize(fyne.NewSize(420, 180))
	confirmWin.CenterOnScreen()
	confirmWin.Show()
}

func (a *pixupApp) showSettingsWindow() {
	if a.currentSettingsWin != nil {
		a.currentSettingsWin.RequestFocus()
		return
	}

	w := fyne.CurrentApp().NewWindow("Settings")
	a.currentSettingsWin = w
	w.SetOnClosed(func() {
		a.currentSettingsWin = nil
	})

	serverEntry := widget.NewEntry()
	serverEntry.SetText(a.config.ServerURL)

	saveBtn := widget.NewButton("Save", func() {
		a.config.ServerURL = serverEntry.Text
		a.saveConfig()
		// Existing token must be re-verified against the new server.
		a.checkStoredToken()
		dialog.ShowInformation("Saved", "Server settings updated.", w)
	})

	forgetBtn := widget.NewButtonWithIcon("Forget Token", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Forget Token", "Delete the saved verification token from the keychain?", func(ok bool) {
			if !ok {
				return
			}
			if err := token.Delete(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			a.setState(StateVerify)
			dialog.ShowInformation("Deleted", "Token removed. You will need to verify again.", w)
		}, w)
	})

	content := container.NewPadded(container.NewVBox(
		widget.NewLabelWithStyle("Server", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(widget.NewFormItem("Base URL", serverEntry)),
		saveBtn,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Verification", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		forgetBtn,
	))

	w.SetContent(content)
	w.Resize(fyne.NewSize(440, 300))
	w.CenterOnScreen()
	w.Show()
}

func (a *pixupApp) handleDropped(uri fyne.URI) {
	if a.state == StateVerify {
		a.showToast("Verify your token before uploading.", toastWarning)
		return
	}
	if a.state == StateUploading {
		a.showToast("An upload is already in progress.", toastWarning)
		return
	}
	go a.startUpload(uri.Path())
}

func (a *pixupApp) showFilePicker() {
	pickerWin := fyne.CurrentApp().NewWindow("Select Image")
	pickerWin.Resize(fyne.NewSize(1000, 800))

	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		defer pickerWin.Close()
		if err != nil || reader == nil {
			return
		}
		a.handleDropped(reader.URI())
		reader.Close()
	}, pickerWin)

	fd.SetFilter(storage.NewExtensionFileFilter([]string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}))
	fd.Resize(fyne.NewSize(1000, 800))
	pickerWin.Show()
	fd.Show()
}

// tappableArea wraps any canvas object with tap handling and a pointer
// cursor.
type tappableArea struct {
	widget.BaseWidget
	inner  fyne.CanvasObject
	action func()
}

func newTappableArea(inner fyne.CanvasObject, action func()) *tappableArea {
	t := &tappableArea{inner: inner, action: action}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tappableArea) Tapped(_ *fyne.PointEvent) {
	if t.action != nil {
		t.action()
	}
}

func (t *tappableArea) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

func (t *tappableArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.inner)
}

type dropZone struct {
	widget.BaseWidget
	isHovered bool
	onTapped  func()
}

func newDropZone(onTapped func()) *dropZone {
	d := &dropZone{onTapped: onTapped}
	d.ExtendBaseWidget(d)
	return d
}

func (d *dropZone) Tapped(_ *fyne.PointEvent) {
	if d.onTapped != nil {
		d.onTapped()
	}
}

func (d *dropZone) MouseIn(_ *desktop.MouseEvent) {
	d.setHover(true)
}

func (d *dropZone) MouseMoved(_ *desktop.MouseEvent) {
	d.setHover(true)
}

func (d *dropZone) MouseOut() {
	d.setHover(false)
}

func (d *dropZone) setHover(on bool) {
	safeDo("ui.drop_zone.hover", func() {
		d.isHovered = on
		d.Refresh()
	})
}

func (d *dropZone) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

func (d *dropZone) CreateRenderer() fyne.WidgetRenderer {
	thickness := float32(4)
	size := float32(80)
	accentColor := color.NRGBA{R: 200, G: 200, B: 200, A: 255}

	hBar := canvas.NewRectangle(accentColor)
	hBar.Resize(fyne.NewSize(size, thickness))

	vBar := canvas.NewRectangle(accentColor)
	vBar.Resize(fyne.NewSize(thickness, size))

	bg := canvas.NewRectangle(color.Transparent)

	return &dropZoneRenderer{
		hBar: hBar,
		vBar: vBar,
		bg:   bg,
		d:    d,
	}
}

type dropZoneRenderer struct {
	hBar *canvas.Rectangle
	vBar *canvas.Rectangle
	bg   *canvas.Rectangle
	d    *dropZone
}

func (r *dropZoneRenderer) Layout(s fyne.Size) {
	r.bg.Resize(s)
	centerX, centerY := s.Width/2, s.Height/2
	r.hBar.Move(fyne.NewPos(centerX-r.hBar.Size().Width/2, centerY-r.hBar.Size().Height/2))
	r.vBar.Move(fyne.NewPos(centerX-r.vBar.Size().Width/2, centerY-r.vBar.Size().Height/2))
}

func (r *dropZoneRenderer) MinSize() fyne.Size { return fyne.NewSize(160, 160) }
func (r *dropZoneRenderer) Refresh() {
	accentColor := color.Color(color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	if r.d.isHovered {
		accentColor = theme.Color(theme.ColorNamePrimary)
	}
	r.hBar.FillColor = accentColor
	r.vBar.FillColor = accentColor
	canvas.Refresh(r.hBar)
	canvas.Refresh(r.vBar)
}
func (r *dropZoneRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bg, r.hBar, r.vBar}
}
func (r *dropZoneRenderer) Destroy() {}

func newSpacer() fyne.CanvasObject {
	return layout.NewSpacer()
}

func main() {
	logger.Init(logger.LevelInfo, nil)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered GUI panic", "scope", "main", "panic", fmt.Sprint(r))
			os.Exit(1)
		}
	}()

	myApp := app.NewWithID("com.pixup.app")
	myApp.SetIcon(appIcon())

	w := myApp.NewWindow("pixup")
	w.SetIcon(appIcon())
	w.SetMaster()
	w.Resize(fyne.NewSize(720, 560))
	w.CenterOnScreen()

	pa := newPixupApp(w)
	w.SetCloseIntercept(func() {
		pa.cancelActive("window closed")
		pa.viewer.Dismiss()
		w.SetCloseIntercept(nil)
		w.Close()
	})

	w.SetOnDropped(func(pos fyne.Position, uris []fyne.URI) {
		if len(uris) > 0 {
			pa.handleDropped(uris[0])
		}
	})

	w.ShowAndRun()
}
