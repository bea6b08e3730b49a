package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Confirmer asks a yes/no question on the terminal. Destructive history
// operations (delete, clear) go through it unless forced with -y.
type Confirmer struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
}

func DefaultConfirmer() Confirmer {
	return Confirmer{
		In:  os.Stdin,
		Out: os.Stdout,
		IsInteractive: func() bool {
			info, err := os.Stdin.Stat()
			if err != nil {
				return false
			}
			return (info.Mode() & os.ModeCharDevice) != 0
		},
	}
}

// Confirm prompts with message and returns the user's decision. force skips
// the prompt entirely. A non-interactive stdin refuses rather than guessing.
func (c Confirmer) Confirm(message string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if c.IsInteractive == nil || !c.IsInteractive() {
		return false, fmt.Errorf("non-interactive stdin: use -y to confirm")
	}
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s (y/n): ", message)
	}
	reader := bufio.NewReader(c.In)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y", nil
}

// ErrPending is returned by Arm while a previous dialog round is still open.
// Overlapping dialog requests are rejected, not queued.
var ErrPending = errors.New("a confirmation is already pending")

// SingleShot guarantees a confirm callback fires at most once per Arm, no
// matter how many confirm/cancel signals race in (button click, Enter and
// Escape can all land in the same dialog round). The first signal wins and
// disarms the latch.
type SingleShot struct {
	mu        sync.Mutex
	armed     bool
	onConfirm func()
}

// Arm loads a callback for the next confirm/cancel round.
func (s *SingleShot) Arm(onConfirm func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed {
		return ErrPending
	}
	s.armed = true
	s.onConfirm = onConfirm
	return nil
}

// Confirm fires the armed callback and disarms. It reports whether this call
// was the winning signal.
func (s *SingleShot) Confirm() bool {
	s.mu.Lock()
	if !s.armed {
		s.mu.Unlock()
		return false
	}
	cb := s.onConfirm
	s.armed = false
	s.onConfirm = nil
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

// Cancel disarms without firing the callback. It reports whether this call
// was the winning signal.
func (s *SingleShot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return false
	}
	s.armed = false
	s.onConfirm = nil
	return true
}

// Pending reports whether a round is open.
func (s *SingleShot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}
