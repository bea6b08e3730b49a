package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tetsadou/pixup/internal/channels"
	"github.com/tetsadou/pixup/internal/format"
)

func newChannelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List available upload channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tMAX SIZE")
			for _, ch := range channels.List() {
				limit := "unlimited"
				if ch.MaxFileSize > 0 {
					limit = format.FileSize(ch.MaxFileSize)
				}
				def := ""
				if ch.Key == channels.DefaultKey {
					def = " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s%s\n", ch.Key, ch.Name, limit, def)
			}
			return w.Flush()
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
