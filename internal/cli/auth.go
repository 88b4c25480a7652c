package cli

import (
	"fmt"
	"io"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arthurpeter/VacationAgent/internal/auth"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the travel backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = promptPassword(cmd.OutOrStdout(), "Password: ")
				if err != nil {
					return err
				}
			}

			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			if err := a.Auth.Login(cmd.Context(), auth.LoginInput{
				Username: username,
				Password: password,
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// NewRegisterCommand creates the register command. Registration does not
// return a token, so a login follows automatically.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var input auth.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Password == "" {
				var err error
				input.Password, err = promptPassword(cmd.OutOrStdout(), "Password: ")
				if err != nil {
					return err
				}
			}

			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			if err := a.Auth.Register(cmd.Context(), input); err != nil {
				return err
			}
			if err := a.Auth.Login(cmd.Context(), auth.LoginInput{
				Username: input.Username,
				Password: input.Password,
			}); err != nil {
				return fmt.Errorf("registered, but login failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registered and logged in")
			return nil
		},
	}

	cmd.Flags().StringVarP(&input.Username, "username", "u", "", "account username (required)")
	cmd.Flags().StringVarP(&input.Email, "email", "e", "", "account email (required)")
	cmd.Flags().StringVarP(&input.Password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			if err := a.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func promptPassword(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
