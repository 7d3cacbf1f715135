package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the device state: active event, counts and last sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.events.Status(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.ActiveEvent != nil {
			fmt.Fprintf(out, "active event:      %s (%s)\n", report.ActiveEvent.Name, report.ActiveEvent.ID)
		} else {
			fmt.Fprintln(out, "active event:      none")
		}
		if len(report.PermittedSectors) > 0 {
			fmt.Fprintf(out, "permitted sectors: %v\n", report.PermittedSectors)
		} else {
			fmt.Fprintln(out, "permitted sectors: none (validation closed)")
		}
		fmt.Fprintf(out, "operator:          %s\n", report.Operator)
		fmt.Fprintf(out, "codes:             %d total, %d used\n", report.TotalCodes, report.UsedCodes)
		fmt.Fprintf(out, "pending uploads:   %d\n", report.PendingUploads)
		if report.LastSync.IsZero() {
			fmt.Fprintln(out, "last sync:         never")
		} else {
			fmt.Fprintf(out, "last sync:         %s\n", report.LastSync.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
