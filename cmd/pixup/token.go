package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/token"
)

func newTokenCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the verification token in the OS Keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenStatus(cmd)
		},
	}

	cmd.SetUsageTemplate(tokenUsageTemplate)
	cmd.AddCommand(
		newTokenSetupCmd(global),
		newTokenDeleteCmd(),
		newTokenStatusCmd(),
	)
	return cmd
}

func newTokenSetupCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Verify a token with the server and save it to the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenSetup(cmd, global)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newTokenDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the token from the keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenDelete(cmd)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newTokenStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show token status (default if no action given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenStatus(cmd)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runTokenSetup(cmd *cobra.Command, global *globalOptions) error {
	promptTok, err := promptForToken("Verification token: ")
	if err != nil {
		return fmt.Errorf("error reading token: %w", err)
	}
	tok := strings.TrimSpace(promptTok)
	if tok == "" {
		return fmt.Errorf("verification token is required for setup")
	}

	client := api.NewClient(global.serverURL, tok)
	ctx, stop := signalContext()
	defer stop()
	if err := client.CheckVerification(ctx, tok); err != nil {
		return fmt.Errorf("token was not accepted: %w", err)
	}

	if err := token.Save(tok); err != nil {
		return fmt.Errorf("error saving token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Verified and saved token to keychain.")
	return nil
}

func runTokenDelete(cmd *cobra.Command) error {
	if err := deleteToken(); err != nil {
		return fmt.Errorf("error deleting token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted token from keychain.")
	return nil
}

func runTokenStatus(cmd *cobra.Command) error {
	if getStatus() {
		fmt.Fprintln(cmd.OutOrStdout(), "Verification token: Found (source=Keychain)")
		return nil
	}
	if _, ok := getEnvToken(); ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Verification token: Found (source=Environment Variable; disabled by default, use --allow-env)")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Verification token: Not Found (keychain empty, env not set)")
	return nil
}
