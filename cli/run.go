package cli

import (
	"context"
	"fmt"

	"github.com/Laisky/zap"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/harness/analyzer"
	"github.com/agentsim/simcheck/harness/ledger"
	"github.com/agentsim/simcheck/harness/scenario"
	"github.com/agentsim/simcheck/monitor"
)

// unhealthyRate is the success rate below which an endpoint is called out after the run.
const unhealthyRate = 0.5

var (
	passedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func renderVerdict(l *ledger.Ledger) string {
	style := failedStyle
	if l.Passed() {
		style = passedStyle
	}
	return style.Render("simcheck " + l.Verdict())
}

func runSuites(ctx context.Context, opts *RootOptions, label string, scenarios ...scenario.Scenario) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "load configuration", err)
	}
	thresholds, err := analyzer.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "load thresholds", err)
	}
	metrics, err := monitor.NewMetrics()
	if err != nil {
		return WrapExitError(ExitCommandError, "set up metrics", err)
	}

	lg := logger.ForRun(label)
	lg.Info("run started",
		zap.String("backend", cfg.APIBase()),
		zap.Bool("secret_known", cfg.HasSecret()),
		zap.Int("scenarios", len(scenarios)))

	l := scenario.Run(ctx, scenario.Options{
		Config:     cfg,
		HTTPClient: opts.HTTPClient,
		Trace:      opts.Out,
		Observers:  []ledger.Observer{metrics},
		Thresholds: &thresholds,
		Logger:     lg,
	}, scenarios...)

	fmt.Fprintln(opts.Out)
	l.ScenarioTable(opts.Out)
	if err = l.Summary(opts.Out); err != nil {
		lg.Warn("write summary", zap.Error(err))
	}
	metrics.Health().ReportUnhealthy(unhealthyRate)
	if cfg.MetricsFile != "" {
		if err = metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			lg.Warn("export metrics", zap.Error(err))
		}
	}
	fmt.Fprintln(opts.Out, renderVerdict(l))

	if !l.Passed() {
		counts := l.Counts()
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d checks failed", counts.Failed, counts.Total))
	}
	return nil
}
