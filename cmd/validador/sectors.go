package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "Inspect and restrict sectors for the active event",
}

var sectorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sectors of the active event",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		active, err := e.events.ActiveEvent(ctx)
		if err != nil {
			return err
		}
		if active == nil {
			return errors.New("no active event")
		}

		sectors, err := e.events.Sectors(ctx, active.ID)
		if err != nil {
			return err
		}
		session, err := e.events.Session(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPERMITTED")
		for _, sec := range sectors {
			fmt.Fprintf(w, "%s\t%s\t%v\n", sec.ID, sec.Name, session.AllowsSector(sec.ID))
		}
		return w.Flush()
	},
}

var sectorsAllowCmd = &cobra.Command{
	Use:   "allow <sector-id>...",
	Short: "Permit the given sectors on this station",
	Long:  "Restricts validation to the listed sectors. The station admits nothing until at least one sector is selected.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.events.AllowSectors(ctx, args); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "permitted sectors: %v\n", args)
		return nil
	},
}

func init() {
	sectorsCmd.AddCommand(sectorsListCmd, sectorsAllowCmd)
}
