// Package cmd contains all CLI commands for the santekit binary.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/santekit/cmd/completion"
	cmdconfig "github.com/klytics/santekit/cmd/config"
	"github.com/klytics/santekit/cmd/doctor"
	"github.com/klytics/santekit/cmd/report"
	"github.com/klytics/santekit/cmd/version"
	cmdwatch "github.com/klytics/santekit/cmd/watch"
	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/logging"
	"github.com/klytics/santekit/internal/output"
	"github.com/klytics/santekit/internal/render"
	rpt "github.com/klytics/santekit/internal/report"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
	logFormat  string
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "santekit",
		Short: "Health claims statistics reports for insurance contracts",
		Long: `santekit builds the claims statistics report of a health insurance contract.

It reads the DETAIL, PRODUCTION, EFFECTIF and adjustment clause workbooks,
keeps the claims of one insurer, client and policy, and writes a paginated
PDF with a cover, a table of contents and up to seven sections.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if noColor || !cfg.Output.Color {
				color.NoColor = true
			}
			if jsonOutput {
				// Progress bars and spinners stay off the JSON stream.
				os.Setenv("SANTEKIT_JSON", "true")
			}
			format := logFormat
			if format == "" {
				format = cfg.Log.Format
			}
			logger := logging.Setup(format, verbose)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text | json (default from config)")

	rootCmd.AddCommand(report.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := NewRootCommand()
	executed, err := rootCmd.ExecuteContextC(ctx)
	stop()
	if err == nil {
		return
	}

	code := exitCode(err)
	if jsonOutput {
		name := rootCmd.Name()
		if executed != nil {
			name = executed.CommandPath()
		}
		output.PrintJSONError(name, err, code)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(code)
}

// exitCode separates failures of the machine (browser, timeout, layout)
// from problems with the request.
func exitCode(err error) int {
	switch {
	case errors.Is(err, render.ErrNoBrowser),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, rpt.ErrPaginationDrift):
		return output.ExitSystemError
	default:
		return output.ExitUserError
	}
}
