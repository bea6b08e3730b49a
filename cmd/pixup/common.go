package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/cleanup"
	"github.com/tetsadou/pixup/internal/files"
	"github.com/tetsadou/pixup/internal/logger"
	"github.com/tetsadou/pixup/internal/token"
)

var (
	isTerminal     = term.IsTerminal
	getToken       = token.Get
	getEnvToken    = token.GetEnv
	getStatus      = token.Status
	promptForToken = token.Prompt
	deleteToken    = token.Delete
)

// resolveToken handles the logic for finding the verification token.
func resolveToken(allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if tok, ok := getEnvToken(); ok {
			return tok, "Environment Variable", nil
		}
		return "", "", fmt.Errorf("env-only set but PIXUP_TOKEN is not set")
	}

	if tok, source := getToken(false); tok != "" {
		return tok, source, nil
	}

	if allowEnv {
		if tok, ok := getEnvToken(); ok {
			return tok, "Environment Variable", nil
		}
	}

	if isTerminal(int(os.Stdin.Fd())) {
		tok, err := promptForToken("Verification token (press Enter to skip): ")
		if err != nil {
			return "", "", fmt.Errorf("error reading token: %w", err)
		}
		if strings.TrimSpace(tok) != "" {
			return strings.TrimSpace(tok), "Terminal Prompt", nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no verification token available (non-interactive shell); run 'pixup token setup' or use --allow-env")
	}
	if allowEnv {
		return "", "", fmt.Errorf("verification token is required; not found in keychain or environment")
	}
	return "", "", fmt.Errorf("verification token is required; not found in keychain (environment disabled by default; use --allow-env)")
}

// newAPIClient builds a verified client for opts.serverURL. Expired tokens
// are cleared from the keychain by the 401 handler; nothing else removes
// them.
func newAPIClient(opts *globalOptions) (*api.Client, error) {
	tok, source, err := resolveToken(opts.allowEnv, false)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using verification token", "source", source)

	client := api.NewClient(opts.serverURL, tok)
	client.OnAuthExpired = func() {
		if err := deleteToken(); err != nil {
			logger.Warn("Could not clear stored token", "error", err)
		}
		logger.Warn("Verification expired; run 'pixup token setup' to verify again")
	}
	return client, nil
}

func configureLogging(opts *globalOptions) {
	level := logger.LevelInfo
	if opts.debug {
		level = logger.LevelDebug
	}

	var logFileW io.Writer
	if opts.logFile != "" {
		if err := files.RejectSymlinkPath(opts.logFile); err != nil {
			logger.Warn("Ignoring --log-file", "error", err)
		} else if f, err := os.OpenFile(opts.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err != nil {
			logger.Warn("Could not open log file", "path", opts.logFile, "error", err)
		} else {
			cleanup.Register(f.Close)
			logFileW = f
		}
	}

	if level != logger.LevelInfo || logFileW != nil {
		logger.Init(level, logFileW)
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
