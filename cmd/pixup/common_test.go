package main

import (
	"testing"
)

type tokenStubs struct {
	promptCalls int
	tokenCalls  int
	envCalls    int
}

func withTokenStubs(t *testing.T, terminal bool, promptVal string, keychainVal string, envVal string) (*tokenStubs, func()) {
	t.Helper()
	stubs := &tokenStubs{}

	prevIsTerminal := isTerminal
	prevPrompt := promptForToken
	prevGetToken := getToken
	prevGetEnv := getEnvToken

	isTerminal = func(_ int) bool { return terminal }
	promptForToken = func(_ string) (string, error) {
		stubs.promptCalls++
		return promptVal, nil
	}
	getToken = func(_ bool) (string, string) {
		stubs.tokenCalls++
		if keychainVal == "" {
			return "", ""
		}
		return keychainVal, "Keychain"
	}
	getEnvToken = func() (string, bool) {
		stubs.envCalls++
		if envVal == "" {
			return "", false
		}
		return envVal, true
	}

	restore := func() {
		isTerminal = prevIsTerminal
		promptForToken = prevPrompt
		getToken = prevGetToken
		getEnvToken = prevGetEnv
	}

	return stubs, restore
}

func TestResolveToken_KeychainFirst(t *testing.T) {
	stubs, restore := withTokenStubs(t, true, "", "keychain-token", "env-token")
	defer restore()

	tok, source, err := resolveToken(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "keychain-token" || source != "Keychain" {
		t.Fatalf("expected keychain token/source, got token=%q source=%q", tok, source)
	}
	if stubs.envCalls != 0 {
		t.Fatalf("expected no env calls, got envCalls=%d", stubs.envCalls)
	}
}

func TestResolveToken_EnvFallbackWhenAllowed(t *testing.T) {
	stubs, restore := withTokenStubs(t, false, "", "", "env-token")
	defer restore()

	tok, source, err := resolveToken(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "env-token" || source != "Environment Variable" {
		t.Fatalf("expected env token/source, got token=%q source=%q", tok, source)
	}
	if stubs.envCalls == 0 {
		t.Fatalf("expected env call")
	}
}

func TestResolveToken_EnvDisabledError(t *testing.T) {
	stubs, restore := withTokenStubs(t, false, "", "", "env-token")
	defer restore()

	tok, source, err := resolveToken(false, false)
	if err == nil {
		t.Fatalf("expected error, got token=%q source=%q", tok, source)
	}
	if stubs.envCalls != 0 {
		t.Fatalf("expected no env calls, got envCalls=%d", stubs.envCalls)
	}
}

func TestResolveToken_NonInteractiveError(t *testing.T) {
	stubs, restore := withTokenStubs(t, false, "", "", "")
	defer restore()

	tok, source, err := resolveToken(false, false)
	if err == nil {
		t.Fatalf("expected error, got token=%q source=%q", tok, source)
	}
	if stubs.promptCalls != 0 {
		t.Fatalf("expected no prompt, got promptCalls=%d", stubs.promptCalls)
	}
}

func TestResolveToken_EnvOnlySuccess(t *testing.T) {
	stubs, restore := withTokenStubs(t, false, "prompt-token", "keychain-token", "env-token")
	defer restore()

	tok, source, err := resolveToken(false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "env-token" || source != "Environment Variable" {
		t.Fatalf("expected env token/source, got token=%q source=%q", tok, source)
	}
	if stubs.promptCalls != 0 || stubs.tokenCalls != 0 {
		t.Fatalf("expected no prompt/keychain calls, got promptCalls=%d tokenCalls=%d", stubs.promptCalls, stubs.tokenCalls)
	}
}

func TestResolveToken_EnvOnlyMissingError(t *testing.T) {
	_, restore := withTokenStubs(t, false, "", "keychain-token", "")
	defer restore()

	_, _, err := resolveToken(false, true)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolveToken_PromptFallback(t *testing.T) {
	stubs, restore := withTokenStubs(t, true, "prompt-token", "", "")
	defer restore()

	tok, source, err := resolveToken(false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "prompt-token" || source != "Terminal Prompt" {
		t.Fatalf("expected prompt token/source, got token=%q source=%q", tok, source)
	}
	if stubs.tokenCalls == 0 {
		t.Fatalf("expected keychain lookup before prompt")
	}
}
