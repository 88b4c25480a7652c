// Package cli implements the vacation agent command line client.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthurpeter/VacationAgent/internal/app"
	"github.com/arthurpeter/VacationAgent/internal/config"
	"github.com/arthurpeter/VacationAgent/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the vacation agent CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vacationagent",
		Short: "Travel planning client",
		Long:  "Plan and book trips against the vacation agent backend: sessions, flight and hotel search, staged selection, and booking.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewExploreCommand(opts))
	cmd.AddCommand(NewBookCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newApp loads configuration and wires the client stack for one command
// invocation.
func newApp(opts *RootOptions) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New("vacationagent", level)
	return app.New(cfg, log)
}

// closeApp releases app resources at command exit.
func closeApp(ctx context.Context, a *app.App) {
	_ = a.Close(ctx)
}

// printResult renders v as JSON when --format=json, otherwise via the
// provided text renderer.
func printResult(w io.Writer, opts *RootOptions, v any, text func(io.Writer)) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
