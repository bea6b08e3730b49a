package apperrors

import (
	"errors"
	"testing"
)

func TestPublicMessage_UsesSafeMessage(t *testing.T) {
	sentinel := errors.New("token=abc123")
	err := New(KindAuth, "safe auth error", sentinel)
	if got := PublicMessage(err); got != "safe auth error" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "safe auth error")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped cause to be retained for internal matching")
	}
}

func TestKindOfAndRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      Kind
		retryable bool
	}{
		{"timeout", Timeout(errors.New("deadline")), KindTimeout, true},
		{"network", Network(errors.New("refused")), KindNetwork, true},
		{"server", Server("upstream failed", nil), KindServer, true},
		{"auth", Auth(errors.New("401")), KindAuth, false},
		{"validation", Validation("bad file type"), KindValidation, false},
		{"payload", Payload(errors.New("bad json")), KindPayload, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.err)
			if !ok || kind != tt.kind {
				t.Fatalf("KindOf() = (%q, %v), want (%q, true)", kind, ok, tt.kind)
			}
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Fatalf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestIsAuthExpired_OnlyAuthKind(t *testing.T) {
	if !IsAuthExpired(Auth(errors.New("401"))) {
		t.Fatalf("expected auth error to require re-verification")
	}
	if IsAuthExpired(Server("500", nil)) {
		t.Fatalf("server error must not clear the token")
	}
	if IsAuthExpired(errors.New("plain")) {
		t.Fatalf("plain error must not clear the token")
	}
}

func TestPublicMessage_NonAppError(t *testing.T) {
	err := errors.New("plain")
	if got := PublicMessage(err); got != "plain" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "plain")
	}
}

func TestDefaultSafeMessages(t *testing.T) {
	for _, kind := range []Kind{KindAuth, KindValidation, KindNetwork, KindTimeout, KindServer, KindPayload} {
		err := New(kind, "", nil)
		if PublicMessage(err) == "" {
			t.Fatalf("kind %q has no default safe message", kind)
		}
	}
}
