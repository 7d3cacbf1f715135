package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full reconciliation with the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.sync.SyncAll(ctx)
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		if res.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d validations, no events on backend, local snapshot kept\n", res.Uploaded)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d validations, downloaded %d events, %d sectors, %d codes\n",
			res.Uploaded, res.Events, res.Sectors, res.Codes)
		return nil
	},
}
