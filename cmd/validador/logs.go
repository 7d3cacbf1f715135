package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect and prune the audit trail",
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent audit entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := e.logs.List(ctx, limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tKIND\tACTION\tUSER\tDETAILS")
		for _, entry := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
				entry.Kind, entry.Action, entry.User, entry.Details)
		}
		return w.Flush()
	},
}

var logsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop audit entries older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.logs.Prune(ctx, e.cfg.Log.Retention)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", n)
		return nil
	},
}

func init() {
	logsListCmd.Flags().Int("limit", 50, "maximum entries to show")
	logsCmd.AddCommand(logsListCmd, logsPruneCmd)
}
