package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

// NewSessionsCommand groups planning session management.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage planning sessions",
	}
	cmd.AddCommand(newSessionsListCommand(rootOpts))
	cmd.AddCommand(newSessionsCreateCommand(rootOpts))
	cmd.AddCommand(newSessionsShowCommand(rootOpts))
	cmd.AddCommand(newSessionsDeleteCommand(rootOpts))
	return cmd
}

func newSessionsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your planning sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			ids, err := a.Travel.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), rootOpts, ids, func(w io.Writer) {
				if len(ids) == 0 {
					fmt.Fprintln(w, "no sessions")
					return
				}
				for _, id := range ids {
					fmt.Fprintf(w, "session %d\n", id)
				}
			})
		},
	}
}

func newSessionsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a fresh planning session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			id, err := a.Travel.CreateSession(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), rootOpts, map[string]int{"session_id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "created session %d\n", id)
			})
		},
	}
}

func newSessionsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session record",
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

			session, err := a.Travel.GetSession(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), rootOpts, session, func(w io.Writer) {
				fmt.Fprintf(w, "session %d (%s)\n", session.ID, session.CurrentStage)
				if session.Departure != "" || session.Destination != "" {
					fmt.Fprintf(w, "  %s -> %s, %s to %s\n",
						session.Departure, session.Destination, session.FromDate, session.ToDate)
				}
				fmt.Fprintf(w, "  adults=%d children=%d rooms=%d\n",
					session.Adults, session.Children, session.Rooms)
				fmt.Fprintf(w, "  booked: flights=%t hotel=%t\n",
					session.BookedFlights, session.BookedAccommodat)
			})
		},
	}
}

func newSessionsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a planning session",
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

			if err := a.Travel.DeleteSession(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted session %d\n", id)
			return nil
		},
	}
}

func parseSessionID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q", arg)
	}
	return id, nil
}
