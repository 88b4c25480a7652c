package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthurpeter/VacationAgent/internal/auth"
)

// NewStatusCommand reports whether the stored credential is still accepted
// by the backend.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the current sign-in state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			if err := a.Gateway.Validate(cmd.Context()); err != nil {
				if errors.Is(err, auth.ErrNotAuthenticated) || errors.Is(err, auth.ErrSessionExpired) {
					return printResult(cmd.OutOrStdout(), rootOpts,
						map[string]bool{"signed_in": false}, func(w io.Writer) {
							fmt.Fprintln(w, "not signed in; run `vacationagent login`")
						})
				}
				return err
			}
			return printResult(cmd.OutOrStdout(), rootOpts,
				map[string]bool{"signed_in": true}, func(w io.Writer) {
					fmt.Fprintln(w, "signed in")
				})
		},
	}
}
