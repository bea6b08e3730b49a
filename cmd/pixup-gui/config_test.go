package main

import (
	"testing"

	"github.com/tetsadou/pixup/internal/channels"
)

func TestNormalizeChannel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty uses default",
			input: "",
			want:  channels.DefaultKey,
		},
		{
			name:  "known channel kept",
			input: "chatglm",
			want:  "chatglm",
		},
		{
			name:  "unknown channel falls back",
			input: "imgur",
			want:  channels.DefaultKey,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeChannel(tc.input)
			if got != tc.want {
				t.Fatalf("normalizeChannel(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
