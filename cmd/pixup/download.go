package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/files"
	"github.com/tetsadou/pixup/internal/httpclient"
	"github.com/tetsadou/pixup/internal/logger"
)

type downloadOptions struct {
	output string
}

func newDownloadCmd(global *globalOptions) *cobra.Command {
	opts := downloadOptions{}
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a history entry's image to a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], global, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Destination path (defaults to the original file name)")
	return cmd
}

func runDownload(cmd *cobra.Command, id string, global *globalOptions, opts *downloadOptions) error {
	item, err := findItem(global, id)
	if err != nil {
		return err
	}

	dest := opts.output
	if dest == "" {
		dest = item.FileName
	}
	if err := files.RejectSymlinkPath(dest); err != nil {
		return err
	}
	dest, renamed, err := files.SafePath(dest)
	if err != nil {
		return err
	}
	if renamed {
		logger.Warn("Destination exists; using a new name", "path", dest)
	}

	client := httpclient.ClientFor(api.HistoryTimeout)
	req, err := http.NewRequest(http.MethodGet, item.FileURL, nil)
	if err != nil {
		return err
	}
	body, resp, err := httpclient.DoAndRead(client, req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image fetch failed with status %d", resp.StatusCode)
	}

	if err := files.AtomicWrite(dest, body, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes).\n", dest, len(body))
	return nil
}
