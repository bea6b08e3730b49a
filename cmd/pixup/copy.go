package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tetsadou/pixup/internal/clipboard"
	"github.com/tetsadou/pixup/internal/format"
)

type copyOptions struct {
	markdown bool
	html     bool
}

func newCopyCmd(global *globalOptions) *cobra.Command {
	opts := copyOptions{}
	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a history entry's link to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd, args[0], global, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Copy as a Markdown image link")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Copy as an HTML img tag")
	return cmd
}

func runCopy(cmd *cobra.Command, id string, global *globalOptions, opts *copyOptions) error {
	if opts.markdown && opts.html {
		return fmt.Errorf("--markdown and --html are mutually exclusive")
	}

	item, err := findItem(global, id)
	if err != nil {
		return err
	}

	text := item.FileURL
	switch {
	case opts.markdown:
		text = format.Markdown(item.FileName, item.FileURL)
	case opts.html:
		text = format.HTML(item.FileName, item.FileURL)
	}

	if err := clipboard.Copy(text); err != nil {
		return fmt.Errorf("could not copy to clipboard: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Copied: %s\n", text)
	return nil
}
