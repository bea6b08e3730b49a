package main

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/apperrors"
	"github.com/tetsadou/pixup/internal/logger"
	"github.com/tetsadou/pixup/internal/token"
	"github.com/tetsadou/pixup/internal/upload"
)

// rebuildClient swaps in a client for the current server URL and token. The
// 401 hook is the only place the stored token is cleared.
func (a *pixupApp) rebuildClient(tok string) {
	client := api.NewClient(a.config.ServerURL, tok)
	client.OnAuthExpired = func() {
		if err := token.Delete(); err != nil {
			logger.Warn("Could not clear stored token", "error", err)
		}
		a.showToast("Verification expired. Please verify again.", toastError)
		a.setState(StateVerify)
	}
	a.client = client
	a.pipeline = upload.NewPipeline(client)
}

// checkStoredToken decides the initial view: straight to upload when a saved
// token still verifies, otherwise the verification gate.
func (a *pixupApp) checkStoredToken() {
	tok, _ := token.Get(true)
	if tok == "" {
		a.setState(StateVerify)
		return
	}
	a.rebuildClient(tok)

	ctx, cancel := context.WithCancel(context.Background())
	cancelID := a.setActiveCancel(cancel)
	a.safeGo("ops.check_token", func() {
		defer a.clearActiveCancel(cancelID)
		err := a.client.CheckVerification(ctx, tok)
		if err == nil {
			a.setState(StateUpload)
			a.reloadHistory()
			return
		}
		if apperrors.IsAuthExpired(err) {
			// OnAuthExpired already moved to the verify view.
			return
		}
		// Transient failure: keep the token and let the user retry.
		logger.Warn("Verification check failed", "error", err)
		a.showToast(apperrors.PublicMessage(err), toastWarning)
		a.setState(StateUpload)
	})
}

// submitToken verifies a pasted token against the server and stores it on
// success.
func (a *pixupApp) submitToken(raw string) {
	tok := strings.TrimSpace(raw)
	if tok == "" {
		a.flashRed()
		return
	}

	a.rebuildClient(tok)
	ctx, cancel := context.WithCancel(context.Background())
	cancelID := a.setActiveCancel(cancel)
	a.safeGo("ops.verify_token", func() {
		defer a.clearActiveCancel(cancelID)
		if err := a.client.CheckVerification(ctx, tok); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			a.showToast(apperrors.PublicMessage(err), toastError)
			a.flashRed()
			return
		}
		if err := token.Save(tok); err != nil {
			logger.Warn("Could not save token to keychain", "error", err)
			a.showToast("Verified, but the token could not be saved to the keychain.", toastWarning)
		}
		a.showToast("Verified.", toastInfo)
		a.setState(StateUpload)
		a.reloadHistory()
	})
}

func (a *pixupApp) startUpload(path string) {
	if a.pipeline == nil {
		a.setState(StateVerify)
		return
	}
	if a.pipeline.Busy() {
		a.showToast("An upload is already in progress.", toastWarning)
		return
	}
	a.setState(StateUploading)
	a.setProgress(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancelID := a.setActiveCancel(cancel)
	a.safeGo("ops.upload", func() {
		defer a.clearActiveCancel(cancelID)
		result, err := a.pipeline.File(ctx, path, a.config.PreferredChannel, func(sent, total int64) {
			if total > 0 {
				a.setProgress(float64(sent) / float64(total))
			}
		})
		a.finishUpload(result, err)
	})
}

func (a *pixupApp) startURLUpload(rawURL string) {
	if a.pipeline == nil {
		a.setState(StateVerify)
		return
	}
	if a.pipeline.Busy() {
		a.showToast("An upload is already in progress.", toastWarning)
		return
	}
	a.setState(StateUploading)
	a.setProgress(-1) // no byte progress for server-side fetches

	ctx, cancel := context.WithCancel(context.Background())
	cancelID := a.setActiveCancel(cancel)
	a.safeGo("ops.upload_url", func() {
		defer a.clearActiveCancel(cancelID)
		result, err := a.pipeline.FromURL(ctx, rawURL, a.config.PreferredChannel)
		a.finishUpload(result, err)
	})
}

func (a *pixupApp) finishUpload(result *upload.Result, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.setState(StateUpload)
			return
		}
		a.showToast(apperrors.PublicMessage(err), toastError)
		a.setState(stateForUploadError(err))
		return
	}
	a.lastResult = result
	a.showResult(result)
	a.setState(StateResult)
	a.reloadHistory()
}

// stateForUploadError returns the view to fall back to after a failed upload.
func stateForUploadError(err error) AppState {
	if apperrors.IsAuthExpired(err) {
		return StateVerify
	}
	return StateUpload
}

// reloadHistory fetches the full history in the background. Overlapping
// reloads are resolved last-write-wins: only the newest request may publish
// its items.
func (a *pixupApp) reloadHistory() {
	if a.client == nil {
		return
	}
	gen := atomic.AddUint64(&a.historyGen, 1)
	a.setHistoryLoading()

	ctx, cancel := context.WithCancel(context.Background())
	cancelID := a.setActiveCancel(cancel)
	a.safeGo("ops.history", func() {
		defer a.clearActiveCancel(cancelID)
		items, err := a.client.History(ctx)
		if atomic.LoadUint64(&a.historyGen) != gen {
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if apperrors.IsAuthExpired(err) {
				return
			}
			a.setHistoryError(apperrors.PublicMessage(err))
			return
		}
		a.safeDo("ops.history.apply", func() {
			a.store.Replace(items)
			a.renderHistory()
		})
	})
}

func (a *pixupApp) deleteHistoryItem(id, fileName string) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelID := a.setActiveCancel(cancel)
	a.safeGo("ops.delete", func() {
		defer a.clearActiveCancel(cancelID)
		if err := a.client.DeleteHistory(ctx, id); err != nil {
			if errors.Is(err, context.Canceled) || apperrors.IsAuthExpired(err) {
				return
			}
			a.showToast(apperrors.PublicMessage(err), toastError)
			return
		}
		a.showToast("Deleted "+fileName+".", toastInfo)
		a.reloadHistory()
	})
}

func (a *pixupApp) clearHistory() {
	ctx, cancel := context.WithCancel(context.Background())
	cancelID := a.setActiveCancel(cancel)
	a.safeGo("ops.clear", func() {
		defer a.clearActiveCancel(cancelID)
		if err := a.client.ClearHistory(ctx); err != nil {
			if errors.Is(err, context.Canceled) || apperrors.IsAuthExpired(err) {
				return
			}
			a.showToast(apperrors.PublicMessage(err), toastError)
			return
		}
		a.safeDo("ops.clear.apply", func() {
			a.store.Replace(nil)
			a.store.ResetPage()
			a.renderHistory()
		})
		a.showToast("History cleared.", toastInfo)
	})
}
