package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inovatickets/validador/internal/app"
)

var validateCmd = &cobra.Command{
	Use:   "validate <code>",
	Short: "Validate a scanned ticket code against the local snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		session, err := e.events.Session(ctx)
		if err != nil {
			return err
		}
		res, err := e.validation.Validate(ctx, session, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch res.Outcome {
		case app.OutcomeAccepted:
			fmt.Fprintf(out, "ACCEPTED  %s (sector %s, %d admitted by %s)\n",
				res.Code.Code, res.Code.SectorID, res.Validated, session.Operator)
		case app.OutcomeNoActiveEvent:
			fmt.Fprintln(out, "REJECTED  no active event, run: validador events activate <id>")
		case app.OutcomeInvalidCode:
			fmt.Fprintf(out, "REJECTED  code %q not found for the active event\n", args[0])
		case app.OutcomeSectorNotAllowed:
			if len(session.SectorIDs) == 0 {
				fmt.Fprintln(out, "REJECTED  no sectors selected, run: validador sectors allow <id>...")
			} else {
				fmt.Fprintf(out, "REJECTED  sector %s is not enabled on this station\n", res.Code.SectorID)
			}
		case app.OutcomeAlreadyUsed:
			if res.UsedAt != nil {
				fmt.Fprintf(out, "REJECTED  already used at %s by %s\n",
					res.UsedAt.Local().Format("2006-01-02 15:04:05"), res.Code.ValidatedBy)
			} else {
				fmt.Fprintln(out, "REJECTED  already used")
			}
		}
		return nil
	},
}
