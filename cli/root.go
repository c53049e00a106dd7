// Package cli is the simcheck command line: one subcommand per suite, plus all and list.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Laisky/zap"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/harness/scenario"
)

// RootOptions holds what every subcommand shares.
type RootOptions struct {
	Out    io.Writer
	ErrOut io.Writer
	// LoadConfig resolves the run configuration; config.Load when nil.
	LoadConfig func() (config.RunConfig, error)
	HTTPClient *http.Client
}

func (o *RootOptions) loadConfig() (config.RunConfig, error) {
	if o.LoadConfig != nil {
		return o.LoadConfig()
	}
	return config.Load()
}

// NewRootCommand builds the simcheck command tree.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}

	cmd := &cobra.Command{
		Use:   "simcheck",
		Short: "Conformance checks for an agent simulation backend",
		Long: `simcheck drives the backend's HTTP API through end-to-end scenarios and
reports every check it makes.

The backend URL is read from REACT_APP_BACKEND_URL in frontend/.env and the
signing secret from JWT_SECRET in backend/.env. Process environment wins.

Exit codes:
  0 - every check passed
  1 - at least one check failed
  2 - configuration or usage error`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(opts.Out)
	cmd.SetErr(opts.ErrOut)

	for _, sc := range scenario.Catalogue() {
		cmd.AddCommand(newSuiteCommand(opts, sc))
	}
	cmd.AddCommand(newAllCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	return cmd
}

func newSuiteCommand(opts *RootOptions, sc scenario.Scenario) *cobra.Command {
	return &cobra.Command{
		Use:   sc.Name,
		Short: sc.Description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuites(cmd.Context(), opts, sc.Name, sc)
		},
	}
}

func newAllCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every suite in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuites(cmd.Context(), opts, "all", scenario.Catalogue()...)
		},
	}
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the suite catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := tablewriter.NewWriter(opts.Out)
			table.SetHeader([]string{"Suite", "Steps", "Description"})
			table.SetAutoFormatHeaders(false)
			table.SetAutoWrapText(false)
			for _, sc := range scenario.Catalogue() {
				table.Append([]string{sc.Name, fmt.Sprint(len(sc.Steps())), sc.Description})
			}
			table.Render()
			return nil
		},
	}
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, opts *RootOptions, args []string) int {
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		code := ExitCode(err)
		if code == ExitCommandError {
			logger.Logger.Error("simcheck failed", zap.Error(err))
			fmt.Fprintln(opts.ErrOut, "Run 'simcheck --help' for usage.")
		}
		return code
	}
	return ExitSuccess
}
