package main

import (
	"os"

	"fyne.io/fyne/v2"

	"github.com/tetsadou/pixup/internal/channels"
)

type AppConfig struct {
	ServerURL        string
	PreferredChannel string
}

func defaultServerURL() string {
	if url := os.Getenv("PIXUP_SERVER"); url != "" {
		return url
	}
	return "http://127.0.0.1:5000"
}

// normalizeChannel maps removed or unknown channel keys back to the default
// so a stale preference cannot select a channel the server no longer has.
func normalizeChannel(key string) string {
	if key == "" {
		return channels.DefaultKey
	}
	if _, ok := channels.Get(key); !ok {
		return channels.DefaultKey
	}
	return key
}

func (a *pixupApp) loadConfig() {
	prefs := fyne.CurrentApp().Preferences()

	a.config.ServerURL = prefs.StringWithFallback("ServerURL", defaultServerURL())
	a.config.PreferredChannel = normalizeChannel(prefs.String("PreferredChannel"))
}

func (a *pixupApp) saveConfig() {
	prefs := fyne.CurrentApp().Preferences()
	prefs.SetString("ServerURL", a.config.ServerURL)
	prefs.SetString("PreferredChannel", a.config.PreferredChannel)
}
