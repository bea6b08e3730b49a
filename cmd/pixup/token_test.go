package main

import (
	"bytes"
	"strings"
	"testing"
)

func withTokenStatusStubs(t *testing.T, status bool, envTok string) func() {
	t.Helper()

	prevStatus := getStatus
	prevEnv := getEnvToken

	getStatus = func() bool {
		return status
	}
	getEnvToken = func() (string, bool) {
		if envTok == "" {
			return "", false
		}
		return envTok, true
	}

	return func() {
		getStatus = prevStatus
		getEnvToken = prevEnv
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTokenStatus_Keychain(t *testing.T) {
	restore := withTokenStatusStubs(t, true, "tok-env-secret")
	defer restore()

	out, err := executeCommand(t, "token", "status")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if !strings.Contains(out, "Found (source=Keychain)") {
		t.Fatalf("expected keychain source, got: %s", out)
	}
	if strings.Contains(out, "tok-env-secret") {
		t.Fatalf("output leaked env token")
	}
}

func TestTokenStatus_Env(t *testing.T) {
	restore := withTokenStatusStubs(t, false, "tok-env-secret")
	defer restore()

	out, err := executeCommand(t, "token", "status")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if !strings.Contains(out, "Found (source=Environment Variable") {
		t.Fatalf("expected env source, got: %s", out)
	}
	if strings.Contains(out, "tok-env-secret") {
		t.Fatalf("output leaked env token")
	}
}

func TestTokenStatus_NotFound(t *testing.T) {
	restore := withTokenStatusStubs(t, false, "")
	defer restore()

	out, err := executeCommand(t, "token", "status")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if !strings.Contains(out, "Not Found") {
		t.Fatalf("expected not found, got: %s", out)
	}
}

func TestTokenSetup_RejectsPositionalToken(t *testing.T) {
	out, err := executeCommand(t, "token", "setup", "tok-should-not-be-allowed")
	if err == nil {
		t.Fatalf("expected setup to reject positional token argument")
	}
	if !strings.Contains(out, "unknown command") && !strings.Contains(out, "accepts 0 arg(s)") {
		t.Fatalf("expected positional-argument rejection error, got: %s", out)
	}
}
