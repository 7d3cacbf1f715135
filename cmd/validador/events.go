package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inovatickets/validador/internal/domain"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect and activate locally cached events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events in the local snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.events.List(ctx)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no events cached, run: validador sync")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDATE\tSTATUS")
		for _, ev := range events {
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n", ev.ID, ev.Name, ev.Date, ev.Time, ev.Status)
		}
		return w.Flush()
	},
}

var eventsActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Make an event the active one for validation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.events.Activate(ctx, args[0]); err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				return fmt.Errorf("event %s is not in the local snapshot", args[0])
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "event %s activated, no sectors selected yet, run: validador sectors allow <id>...\n", args[0])
		return nil
	},
}

var eventsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the local snapshot and session settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return errors.New("clearing discards unsynced validations, pass --force to confirm")
		}

		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.events.ClearCache(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "local snapshot cleared")
		return nil
	},
}

func init() {
	eventsClearCmd.Flags().Bool("force", false, "confirm discarding local data")
	eventsCmd.AddCommand(eventsListCmd, eventsActivateCmd, eventsClearCmd)
}
