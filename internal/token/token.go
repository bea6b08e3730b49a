package token

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	serviceName = "pixup"
	accountName = "verification-token"
	envVar      = "PIXUP_TOKEN"
)

// Get retrieves the stored verification token.
// If allowEnv is false, the PIXUP_TOKEN environment variable is ignored.
func Get(allowEnv bool) (string, string) {
	// 1. Try Keychain
	tok, err := keyring.Get(serviceName, accountName)
	if err == nil && tok != "" {
		return strings.TrimSpace(tok), "Keychain"
	}

	if allowEnv {
		// 2. Try Env Var (optional)
		if tok := strings.TrimSpace(os.Getenv(envVar)); tok != "" {
			return tok, "Environment Variable"
		}
	}

	return "", ""
}

// Save stores the verification token in the OS Keychain.
func Save(tok string) error {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return fmt.Errorf("verification token is empty")
	}
	return keyring.Set(serviceName, accountName, tok)
}

// Delete removes the verification token from the OS Keychain. A missing
// entry is not an error: a 401 handler may race a manual delete.
func Delete() error {
	err := keyring.Delete(serviceName, accountName)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}

// Status returns whether a token exists in the keychain.
func Status() bool {
	tok, err := keyring.Get(serviceName, accountName)
	return err == nil && tok != ""
}

// GetEnv retrieves the token from the environment only.
func GetEnv() (string, bool) {
	tok := strings.TrimSpace(os.Getenv(envVar))
	if tok == "" {
		return "", false
	}
	return tok, true
}

// Prompt securely prompts the user for a verification token.
func Prompt(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after hidden input
	return strings.TrimSpace(string(raw)), nil
}
