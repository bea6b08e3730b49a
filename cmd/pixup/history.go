package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tetsadou/pixup/internal/api"
	"github.com/tetsadou/pixup/internal/channels"
	"github.com/tetsadou/pixup/internal/format"
	"github.com/tetsadou/pixup/internal/history"
)

type historyOptions struct {
	page int
	all  bool
	sort string
}

func newHistoryCmd(global *globalOptions) *cobra.Command {
	opts := historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List uploaded images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, global, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page to show (6 entries per page)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Show every entry instead of one page")
	cmd.Flags().StringVar(&opts.sort, "sort", "time", "Sort order (time or name)")
	return cmd
}

func runHistory(cmd *cobra.Command, global *globalOptions, opts *historyOptions) error {
	store, err := loadHistory(global, opts.sort)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if store.Empty() {
		fmt.Fprintln(out, "No upload history yet.")
		return nil
	}

	items := store.Items()
	if !opts.all {
		if err := store.JumpTo(opts.page); err != nil {
			return fmt.Errorf("page %d out of range (1-%d)", opts.page, store.TotalPages())
		}
		items = store.Page()
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tCHANNEL\tSIZE\tDIMENSIONS\tUPLOADED\tURL")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID,
			format.Truncate(it.FileName, 32),
			channels.DisplayName(it.Channel),
			format.FileSize(it.FileSize),
			format.Dimensions(it.Width, it.Height),
			it.UploadTime,
			it.FileURL)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !opts.all && store.ControlsVisible() {
		fmt.Fprintf(out, "\nPage %d of %d (%d entries)\n", store.CurrentPage(), store.TotalPages(), store.Len())
	}
	return nil
}

// loadHistory fetches the full history and wraps it in a paging store.
func loadHistory(global *globalOptions, sortKey string) (*history.Store, error) {
	order, err := parseSortOrder(sortKey)
	if err != nil {
		return nil, err
	}

	client, err := newAPIClient(global)
	if err != nil {
		return nil, err
	}

	ctx, stop := signalContext()
	defer stop()

	items, err := client.History(ctx)
	if err != nil {
		return nil, err
	}

	store := history.NewStore()
	store.Replace(items)
	store.Sort(order)
	return store, nil
}

func parseSortOrder(key string) (history.SortOrder, error) {
	switch strings.ToLower(key) {
	case "time":
		return history.SortByTime, nil
	case "name":
		return history.SortByName, nil
	default:
		return history.SortByTime, fmt.Errorf("invalid sort order %q (time or name)", key)
	}
}

// findItem fetches history and locates one entry by ID.
func findItem(global *globalOptions, id string) (api.HistoryItem, error) {
	store, err := loadHistory(global, "time")
	if err != nil {
		return api.HistoryItem{}, err
	}
	item, ok := store.Find(id)
	if !ok {
		return api.HistoryItem{}, fmt.Errorf("no history entry with ID %s", id)
	}
	return item, nil
}
