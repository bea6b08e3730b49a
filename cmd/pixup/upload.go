package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tetsadou/pixup/internal/channels"
	"github.com/tetsadou/pixup/internal/clipboard"
	"github.com/tetsadou/pixup/internal/format"
	"github.com/tetsadou/pixup/internal/logger"
	"github.com/tetsadou/pixup/internal/upload"
)

type uploadOptions struct {
	channel  string
	fromURL  string
	markdown bool
	html     bool
	copyURL  bool
}

func newUploadCmd(global *globalOptions) *cobra.Command {
	opts := uploadOptions{}
	cmd := &cobra.Command{
		Use:   "upload <image>",
		Short: "Upload an image file or a remote image URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.fromURL == "" && len(args) < 1 {
				_ = cmd.Usage()
				return fmt.Errorf("an image file is required (or use --from-url)")
			}
			if opts.fromURL != "" && len(args) > 0 {
				return fmt.Errorf("--from-url cannot be combined with a file argument")
			}
			return runUpload(cmd, args, global, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&opts.channel, "channel", channels.DefaultKey, "Upload channel ("+channelKeyList()+")")
	cmd.Flags().StringVar(&opts.fromURL, "from-url", "", "Fetch the image from a remote URL instead of a local file")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Print the result as a Markdown image link")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the result as an HTML img tag")
	cmd.Flags().BoolVar(&opts.copyURL, "copy", false, "Copy the printed link to the clipboard")
	return cmd
}

func runUpload(cmd *cobra.Command, args []string, global *globalOptions, opts *uploadOptions) error {
	if opts.markdown && opts.html {
		return fmt.Errorf("--markdown and --html are mutually exclusive")
	}

	client, err := newAPIClient(global)
	if err != nil {
		return err
	}
	pipe := upload.NewPipeline(client)

	ctx, stop := signalContext()
	defer stop()

	var result *upload.Result
	if opts.fromURL != "" {
		logger.Info("Uploading from URL", "channel", opts.channel)
		result, err = pipe.FromURL(ctx, opts.fromURL, opts.channel)
	} else {
		result, err = pipe.File(ctx, args[0], opts.channel, progressPrinter())
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	link := result.FileURL
	switch {
	case opts.markdown:
		link = format.Markdown(result.FileName, result.FileURL)
	case opts.html:
		link = format.HTML(result.FileName, result.FileURL)
	}
	fmt.Fprintln(out, link)

	if result.Width > 0 && result.Height > 0 {
		logger.Info("Upload complete",
			"file", result.FileName,
			"channel", channels.DisplayName(result.Channel),
			"size", format.FileSize(result.Size),
			"dimensions", format.Dimensions(result.Width, result.Height))
	} else {
		logger.Info("Upload complete",
			"file", result.FileName,
			"channel", channels.DisplayName(result.Channel))
	}

	if opts.copyURL {
		if err := clipboard.Copy(link); err != nil {
			logger.Warn("Could not copy to clipboard", "error", err)
		} else {
			logger.Info("Copied to clipboard")
		}
	}
	return nil
}

// progressPrinter renders an in-place percentage on stderr while a file
// upload streams. Output is suppressed when stderr is not a terminal so
// piped runs stay clean.
func progressPrinter() func(sent, total int64) {
	if !isTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	lastPct := -1
	return func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := int(sent * 100 / total)
		if pct == lastPct {
			return
		}
		lastPct = pct
		fmt.Fprintf(os.Stderr, "\rUploading... %d%%", pct)
		if pct >= 100 {
			fmt.Fprint(os.Stderr, "\n")
		}
	}
}

func channelKeyList() string {
	keys := channels.Keys()
	list := ""
	for i, k := range keys {
		if i > 0 {
			list += ", "
		}
		list += k
	}
	return list
}
