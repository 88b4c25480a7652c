package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthurpeter/VacationAgent/internal/sessionsync"
)

// NewPlanCommand creates the plan command: it loads one session, applies
// the given trip-detail edits, and writes them through.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		departure, destination string
		fromDate, toDate       string
		adults, children       int
		childAges              []int
		rooms, budget          int
	)

	cmd := &cobra.Command{
		Use:   "plan <session-id>",
		Short: "Update the trip details of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			engine, err := a.NewSyncEngine(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := applyPlanEdits(cmd, engine,
				departure, destination, fromDate, toDate,
				adults, children, childAges, rooms, budget,
			); err != nil {
				return err
			}

			mirror := engine.Snapshot()
			return printResult(cmd.OutOrStdout(), rootOpts, mirror, func(w io.Writer) {
				fmt.Fprintf(w, "session %d: %s -> %s, %s to %s, adults=%d rooms=%d\n",
					id, mirror.Departure, mirror.Destination,
					mirror.OutboundDate, mirror.ReturnDate,
					mirror.Adults, mirror.Rooms)
			})
		},
	}

	cmd.Flags().StringVar(&departure, "departure", "", "departure location")
	cmd.Flags().StringVar(&destination, "destination", "", "destination location")
	cmd.Flags().StringVar(&fromDate, "from", "", "outbound date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "return date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&adults, "adults", 0, "number of adults")
	cmd.Flags().IntVar(&children, "children", -1, "number of children")
	cmd.Flags().IntSliceVar(&childAges, "child-ages", nil, "per-child ages")
	cmd.Flags().IntVar(&rooms, "rooms", 0, "number of rooms")
	cmd.Flags().IntVar(&budget, "budget", -1, "accommodation budget cap")

	return cmd
}

// applyPlanEdits writes each set flag through as a terminal edit. CLI
// values are final by nature; the debounced transient path is for
// interactive keystrokes.
func applyPlanEdits(cmd *cobra.Command, engine *sessionsync.Engine,
	departure, destination, fromDate, toDate string,
	adults, children int, childAges []int, rooms, budget int,
) error {
	ctx := cmd.Context()
	setString := func(f sessionsync.Field, v string) error {
		if v == "" {
			return nil
		}
		return engine.SetString(ctx, f, v, sessionsync.Terminal)
	}

	if err := setString(sessionsync.FieldDeparture, departure); err != nil {
		return err
	}
	if err := setString(sessionsync.FieldDestination, destination); err != nil {
		return err
	}
	if err := setString(sessionsync.FieldFromDate, fromDate); err != nil {
		return err
	}
	if err := setString(sessionsync.FieldToDate, toDate); err != nil {
		return err
	}
	if adults > 0 {
		if err := engine.SetInt(ctx, sessionsync.FieldAdults, adults, sessionsync.Terminal); err != nil {
			return err
		}
	}
	if children >= 0 {
		if err := engine.SetInt(ctx, sessionsync.FieldChildren, children, sessionsync.Terminal); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("child-ages") {
		if err := engine.SetChildAges(ctx, childAges, sessionsync.Terminal); err != nil {
			return err
		}
	}
	if rooms > 0 {
		if err := engine.SetInt(ctx, sessionsync.FieldRooms, rooms, sessionsync.Terminal); err != nil {
			return err
		}
	}
	if budget >= 0 {
		if err := engine.SetInt(ctx, sessionsync.FieldBudget, budget, sessionsync.Terminal); err != nil {
			return err
		}
	}
	return nil
}
