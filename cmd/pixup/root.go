package main

import (
	"os"

	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tetsadou/pixup/internal/channels"
	"github.com/tetsadou/pixup/internal/cleanup"
	"github.com/tetsadou/pixup/internal/logger"
	"github.com/tetsadou/pixup/internal/version"
)

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		logger.Warn("Cleanup failed", "error", cleanupErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

type globalOptions struct {
	serverURL string
	allowEnv  bool
	debug     bool
	logFile   string
}

func newRootCmd() *cobra.Command {
	opts := globalOptions{}

	uploadOpts := uploadOptions{channel: channels.DefaultKey}

	cmd := &cobra.Command{
		Use:          "pixup",
		Short:        "Image hosting upload client",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(&opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if hasAnyFlagSet(cmd) {
					_ = cmd.Usage()
					return fmt.Errorf("an image file is required")
				}
				return cmd.Help()
			}
			if isSubcommand(cmd, args[0]) {
				_ = cmd.Usage()
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return runUpload(cmd, args, &opts, &uploadOpts)
		},
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	cmd.PersistentFlags().StringVar(&opts.serverURL, "server", defaultServerURL(), "Upload service base URL")
	cmd.PersistentFlags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading the verification token from PIXUP_TOKEN")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Path to save machine-readable JSONL logs")

	cmd.AddCommand(
		newAboutCmd(),
		newUploadCmd(&opts),
		newHistoryCmd(&opts),
		newCopyCmd(&opts),
		newDeleteCmd(&opts),
		newClearCmd(&opts),
		newDownloadCmd(&opts),
		newChannelsCmd(),
		newTokenCmd(&opts),
		newLicensesCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.Short = "pixup — Image hosting upload client"
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

func defaultServerURL() string {
	if url := os.Getenv("PIXUP_SERVER"); url != "" {
		return url
	}
	return "http://127.0.0.1:5000"
}

func hasAnyFlagSet(cmd *cobra.Command) bool {
	changed := false
	cmd.Flags().Visit(func(_ *pflag.Flag) {
		changed = true
	})
	return changed
}

func isSubcommand(cmd *cobra.Command, name string) bool {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}
