package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthurpeter/VacationAgent/internal/travelapi"
)

// NewExploreCommand creates the explore command: it asks the backend to
// suggest travel dates for a flexible trip.
func NewExploreCommand(rootOpts *RootOptions) *cobra.Command {
	var req travelapi.ExploreRequest

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Suggest travel dates for a flexible trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			dates, err := a.Travel.ExploreDestinations(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), rootOpts, dates, func(w io.Writer) {
				fmt.Fprintf(w, "%s to %s\n", dates.StartDate, dates.EndDate)
			})
		},
	}

	cmd.Flags().StringVar(&req.Departure, "departure", "", "departure location (required)")
	cmd.Flags().StringVar(&req.Arrival, "arrival", "", "destination location (required)")
	cmd.Flags().IntVar(&req.Month, "month", 0, "travel month, 1-12 (required)")
	cmd.Flags().IntVar(&req.DurationType, "duration", 0, "trip duration class (required)")
	cmd.Flags().IntVar(&req.Adults, "adults", 1, "number of adults")
	cmd.Flags().IntVar(&req.Children, "children", 0, "number of children")
	cmd.Flags().IntVar(&req.Stops, "stops", 0, "maximum stops")
	_ = cmd.MarkFlagRequired("departure")
	_ = cmd.MarkFlagRequired("arrival")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}
