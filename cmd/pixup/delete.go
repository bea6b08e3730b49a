package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tetsadou/pixup/internal/confirm"
	"github.com/tetsadou/pixup/internal/format"
)

func newDeleteCmd(global *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], global, yes)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func runDelete(cmd *cobra.Command, id string, global *globalOptions, yes bool) error {
	item, err := findItem(global, id)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Delete %s from history?", format.Truncate(item.FileName, 40))
	ok, err := confirm.DefaultConfirmer().Confirm(msg, yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
		return nil
	}

	client, err := newAPIClient(global)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	if err := client.DeleteHistory(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", item.FileName)
	return nil
}

func newClearCmd(global *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the entire upload history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, global, yes)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Clear without asking")
	return cmd
}

func runClear(cmd *cobra.Command, global *globalOptions, yes bool) error {
	ok, err := confirm.DefaultConfirmer().Confirm("Clear ALL upload history? This cannot be undone.", yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
		return nil
	}

	client, err := newAPIClient(global)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	if err := client.ClearHistory(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return nil
}
