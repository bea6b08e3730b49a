package main

import (
	"testing"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/apperrors"
	"github.com/tetsadou/pixup/internal/upload"
)

func TestStateForUploadError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want AppState
	}{
		{name: "auth goes to verify", err: apperrors.Auth(nil), want: StateVerify},
		{name: "validation stays on upload", err: apperrors.Validation("bad file"), want: StateUpload},
		{name: "network stays on upload", err: apperrors.Network(nil), want: StateUpload},
		{name: "server stays on upload", err: apperrors.Server("", nil), want: StateUpload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stateForUploadError(tc.err); got != tc.want {
				t.Fatalf("stateForUploadError() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHistoryCardMeta(t *testing.T) {
	cases := []struct {
		name string
		item api.HistoryItem
		want string
	}{
		{
			name: "full metadata",
			item: api.HistoryItem{FileSize: 1536, Width: 100, Height: 50, Channel: "chatglm"},
			want: "1.50 KB · 100 × 50 · ChatGLM",
		},
		{
			name: "missing size and dimensions",
			item: api.HistoryItem{Channel: "miyoushe"},
			want: "Miyoushe",
		},
		{
			name: "unknown channel key shown raw",
			item: api.HistoryItem{FileSize: 10, Channel: "legacy"},
			want: "10 B · legacy",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := historyCardMeta(tc.item); got != tc.want {
				t.Fatalf("historyCardMeta() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResultMetaLine(t *testing.T) {
	got := resultMetaLine(&upload.Result{
		FileName: "shot.png",
		FileURL:  "https://img.example.com/shot.png",
		Channel:  "miyoushe",
		Size:     2 * 1024 * 1024,
		Width:    800,
		Height:   600,
	})
	want := "Miyoushe · 2.00 MB · 800 × 600"
	if got != want {
		t.Fatalf("resultMetaLine() = %q, want %q", got, want)
	}
}
