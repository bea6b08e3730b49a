package clipboard

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"testing"
)

func TestWriteOSC52(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOSC52(&buf, "https://x/y.png"); err != nil {
		t.Fatalf("writeOSC52: %v", err)
	}
	want := fmt.Sprintf("\x1b]52;c;%s\x07", base64.StdEncoding.EncodeToString([]byte("https://x/y.png")))
	if buf.String() != want {
		t.Errorf("writeOSC52 output = %q, want %q", buf.String(), want)
	}
}

func TestWriteOSC52_EmptyText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOSC52(&buf, ""); err != nil {
		t.Fatalf("writeOSC52: %v", err)
	}
	if buf.String() != "\x1b]52;c;\x07" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
