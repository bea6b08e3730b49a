package confirm

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func interactive(in string) Confirmer {
	return Confirmer{
		In:            strings.NewReader(in),
		Out:           &bytes.Buffer{},
		IsInteractive: func() bool { return true },
	}
}

func TestConfirmer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		force bool
		want  bool
	}{
		{"Yes", "y\n", false, true},
		{"Uppercase yes", "Y\n", false, true},
		{"No", "n\n", false, false},
		{"Anything else is no", "maybe\n", false, false},
		{"Empty is no", "\n", false, false},
		{"Force skips prompt", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := interactive(tt.input).Confirm("Delete this record?", tt.force)
			if err != nil {
				t.Fatalf("Confirm: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfirmer_NonInteractiveRefuses(t *testing.T) {
	c := Confirmer{
		In:            strings.NewReader("y\n"),
		Out:           &bytes.Buffer{},
		IsInteractive: func() bool { return false },
	}
	if _, err := c.Confirm("Clear all history?", false); err == nil {
		t.Fatalf("expected refusal on non-interactive stdin")
	}
	ok, err := c.Confirm("Clear all history?", true)
	if err != nil || !ok {
		t.Fatalf("force must bypass the tty check, got (%v, %v)", ok, err)
	}
}

func TestSingleShot_ConfirmFiresOnce(t *testing.T) {
	var s SingleShot
	fired := 0
	if err := s.Arm(func() { fired++ }); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if !s.Pending() {
		t.Fatalf("expected pending after Arm")
	}

	if !s.Confirm() {
		t.Fatalf("first confirm must win")
	}
	// Enter keyup and button click can both land; only the first fires.
	if s.Confirm() {
		t.Errorf("second confirm must lose")
	}
	if s.Cancel() {
		t.Errorf("cancel after confirm must lose")
	}
	if fired != 1 {
		t.Errorf("callback fired %d times, want exactly 1", fired)
	}
}

func TestSingleShot_CancelSuppressesCallback(t *testing.T) {
	var s SingleShot
	fired := 0
	if err := s.Arm(func() { fired++ }); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	if !s.Cancel() {
		t.Fatalf("first cancel must win")
	}
	if s.Confirm() {
		t.Errorf("confirm after cancel must lose")
	}
	if fired != 0 {
		t.Errorf("callback fired %d times after cancel, want 0", fired)
	}
}

func TestSingleShot_RejectsOverlap(t *testing.T) {
	var s SingleShot
	if err := s.Arm(func() {}); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if err := s.Arm(func() {}); err != ErrPending {
		t.Fatalf("overlapping Arm = %v, want ErrPending", err)
	}
	s.Cancel()
	if err := s.Arm(func() {}); err != nil {
		t.Fatalf("Arm after round closed: %v", err)
	}
}

func TestSingleShot_RacingSignals(t *testing.T) {
	var s SingleShot
	var mu sync.Mutex
	fired := 0
	if err := s.Arm(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); s.Confirm() }()
		go func() { defer wg.Done(); s.Cancel() }()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if fired > 1 {
		t.Errorf("callback fired %d times under race, want at most 1", fired)
	}
}
