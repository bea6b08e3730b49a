package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	// KindAuth means the verification token was rejected (401). The caller
	// must clear the stored token and send the user back through verification.
	KindAuth Kind = "auth"
	// KindValidation covers local precondition failures (bad file type, size
	// over the channel limit, empty URL). No request was sent.
	KindValidation Kind = "validation"
	// KindNetwork covers transport failures before a response arrived.
	KindNetwork Kind = "network"
	// KindTimeout is a deadline or user-initiated abort, kept distinct from
	// KindNetwork so the surfaced message differs.
	KindTimeout Kind = "timeout"
	// KindServer is a non-2xx response or a 200 with a non-zero status field.
	KindServer Kind = "server"
	// KindPayload is a 200 response whose body could not be decoded.
	KindPayload Kind = "payload"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindAuth:
		return "Verification expired or invalid. Please verify again."
	case KindValidation:
		return "Request rejected before sending."
	case KindNetwork:
		return "Network error. Please check your connection and retry."
	case KindTimeout:
		return "Request timed out. Please retry."
	case KindServer:
		return "Server rejected the request."
	case KindPayload:
		return "Server response format was invalid."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Auth(err error) error {
	return New(KindAuth, "", err)
}

func Validation(msg string) error {
	return New(KindValidation, msg, nil)
}

func Network(err error) error {
	return New(KindNetwork, "", err)
}

func Timeout(err error) error {
	return New(KindTimeout, "", err)
}

func Server(msg string, cause error) error {
	return New(KindServer, msg, cause)
}

func Payload(err error) error {
	return New(KindPayload, "", err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsAuthExpired reports whether err requires re-verification. It is the only
// condition allowed to clear the stored token.
func IsAuthExpired(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindAuth
}

// IsRetryable reports whether a user-initiated retry of the same request can
// reasonably succeed. Nothing is ever retried automatically.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindNetwork || e.Kind == KindTimeout || e.Kind == KindServer
}
