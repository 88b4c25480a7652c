package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthurpeter/VacationAgent/internal/booking"
	"github.com/arthurpeter/VacationAgent/internal/domain"
)

// NewBookCommand creates the book command: one invocation runs the full
// staged flow against a session's saved trip details, from search through
// selection to the two-unit commit.
func NewBookCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		outboundIdx, inboundIdx, hotelIdx int
		flightsOnly, hotelOnly            bool
		dryRun                            bool
	)

	cmd := &cobra.Command{
		Use:   "book <session-id>",
		Short: "Search, select, and book flights and accommodation",
		Long: `Run the booking flow for one planning session using its saved trip
details. Flights go through the staged selection: outbound search, return
options scoped to the chosen outbound, then the pair. Accommodation is
selected independently. Both units commit together at the end; a unit that
books successfully stays booked even when the other fails.

Example:
  vacationagent book 7 --outbound 0 --inbound 2 --hotel 1
  vacationagent book 7 --hotel 0 --hotel-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flightsOnly && hotelOnly {
				return fmt.Errorf("--flights-only and --hotel-only are mutually exclusive")
			}

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

			orch := a.NewOrchestrator(id)
			params := engine.Params()
			out := cmd.OutOrStdout()

			if !hotelOnly {
				if err := selectFlightPair(cmd, orch, params, outboundIdx, inboundIdx); err != nil {
					return err
				}
			}
			if !flightsOnly {
				if err := selectHotel(cmd, orch, params, hotelIdx); err != nil {
					return err
				}
			}

			snap := orch.Snapshot()
			printSummary(out, snap)
			if dryRun {
				return nil
			}

			err = orch.Book(cmd.Context())
			snap = orch.Snapshot()
			switch {
			case err == nil:
				fmt.Fprintln(out, "booked")
				if snap.FlightBookingURL != "" {
					fmt.Fprintf(out, "flight booking: %s\n", snap.FlightBookingURL)
				}
				return nil
			case errors.Is(err, booking.ErrNoAccommodationSelected):
				return fmt.Errorf("flights cannot be booked without accommodation; pick a hotel or pass --hotel")
			default:
				// A partial failure leaves the succeeded unit booked.
				fmt.Fprintf(out, "booked: flights=%t hotel=%t\n",
					snap.Selection.Booked.Flights, snap.Selection.Booked.Hotel)
				return err
			}
		},
	}

	cmd.Flags().IntVar(&outboundIdx, "outbound", 0, "index of the outbound flight to pick")
	cmd.Flags().IntVar(&inboundIdx, "inbound", 0, "index of the return flight to pick")
	cmd.Flags().IntVar(&hotelIdx, "hotel", 0, "index of the accommodation to pick")
	cmd.Flags().BoolVar(&flightsOnly, "flights-only", false, "skip the accommodation flow")
	cmd.Flags().BoolVar(&hotelOnly, "hotel-only", false, "skip the flight flow")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "select everything but do not commit")

	return cmd
}

func selectFlightPair(cmd *cobra.Command, orch *booking.Orchestrator, params domain.TripParams, outboundIdx, inboundIdx int) error {
	out := cmd.OutOrStdout()

	outbound, err := orch.SearchFlights(cmd.Context(), params)
	if err != nil {
		return err
	}
	if outboundIdx < 0 || outboundIdx >= len(outbound) {
		return fmt.Errorf("outbound index %d out of range (%d results)", outboundIdx, len(outbound))
	}
	fmt.Fprintf(out, "%d outbound flights, picking #%d (%s %.2f)\n",
		len(outbound), outboundIdx, outbound[outboundIdx].Currency, outbound[outboundIdx].Price)

	inbound, err := orch.SelectOutbound(cmd.Context(), outbound[outboundIdx].Token)
	if err != nil {
		return err
	}
	if inboundIdx < 0 || inboundIdx >= len(inbound) {
		return fmt.Errorf("return index %d out of range (%d results)", inboundIdx, len(inbound))
	}
	fmt.Fprintf(out, "%d return flights, picking #%d (%s %.2f)\n",
		len(inbound), inboundIdx, inbound[inboundIdx].Currency, inbound[inboundIdx].Price)

	return orch.SelectInbound(inbound[inboundIdx].Token)
}

func selectHotel(cmd *cobra.Command, orch *booking.Orchestrator, params domain.TripParams, hotelIdx int) error {
	out := cmd.OutOrStdout()

	hotels, err := orch.SearchHotels(cmd.Context(), params)
	if err != nil {
		return err
	}
	if len(hotels) == 0 {
		return fmt.Errorf("no accommodations found")
	}
	if hotelIdx < 0 || hotelIdx >= len(hotels) {
		return fmt.Errorf("hotel index %d out of range (%d results)", hotelIdx, len(hotels))
	}
	fmt.Fprintf(out, "%d accommodations, picking #%d (%s)\n",
		len(hotels), hotelIdx, hotels[hotelIdx].Name)

	_, err = orch.SelectHotel(cmd.Context(), hotels[hotelIdx].HotelID)
	return err
}

// printSummary renders the confirmation summary. It shows whenever
// anything is selected, matching the product rule that a hotel chosen
// before any flight search still surfaces the summary.
func printSummary(w io.Writer, snap booking.Snapshot) {
	if !snap.SummaryVisible {
		return
	}
	fmt.Fprintln(w, "summary:")
	if snap.Selection.Outbound != nil {
		fmt.Fprintf(w, "  outbound: %s %.2f\n", snap.Selection.Outbound.Currency, snap.Selection.Outbound.Price)
	}
	if snap.Selection.Inbound != nil {
		fmt.Fprintf(w, "  return:   %s %.2f\n", snap.Selection.Inbound.Currency, snap.Selection.Inbound.Price)
	}
	if snap.Selection.Hotel != nil {
		fmt.Fprintf(w, "  hotel:    %s (%s %.2f)\n", snap.Selection.Hotel.Name,
			snap.Selection.Hotel.Currency, snap.Selection.Hotel.Price)
	}
}
