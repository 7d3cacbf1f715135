package main

import (
	"github.com/spf13/cobra"

	"github.com/inovatickets/validador/internal/syncd"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync continuously until interrupted",
	Long:  "Runs a reconciliation immediately, then again on every interval tick.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		runner := syncd.New(e.sync, e.cfg.Sync.Interval, e.log)
		e.log.Info("watching", "interval", e.cfg.Sync.Interval)
		runner.Run(ctx)
		return nil
	},
}
