// Package scenario holds the catalogue of end-to-end conformance scenarios and the suite runner
// that executes them.
package scenario

import (
	"context"
	"io"
	"net/http"
	"os"
	"sort"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/harness/analyzer"
	"github.com/agentsim/simcheck/harness/auth"
	"github.com/agentsim/simcheck/harness/client"
	"github.com/agentsim/simcheck/harness/factory"
	"github.com/agentsim/simcheck/harness/ledger"
)

// Step is one stage of a scenario. A non-nil error is a prerequisite failure: the step itself is
// recorded as failed and every remaining step of the scenario is recorded as not run, except
// Always steps, which still execute so that teardown happens after an aborted scenario.
type Step struct {
	Name   string
	Run    func(ctx context.Context, env *Env) error
	Always bool
}

// Scenario is a named, ordered list of steps. Steps is called once per run so that steps can
// share state through closure variables without leaking it between runs.
type Scenario struct {
	Name        string
	Description string
	// Anonymous scenarios start without a session.
	Anonymous bool
	Steps     func() []Step
}

// Env is what steps operate on.
type Env struct {
	Config     config.RunConfig
	Runner     *client.Runner
	Auth       *auth.Helper
	Session    auth.Session
	Factory    *factory.AgentFactory
	Thresholds analyzer.Thresholds
	Logger     glog.Logger
}

// Options configures one suite run.
type Options struct {
	Config     config.RunConfig
	HTTPClient *http.Client
	// Trace receives the per-check trace; nil means stdout.
	Trace      io.Writer
	Observers  []ledger.Observer
	Thresholds *analyzer.Thresholds
	Logger     glog.Logger
}

// Run executes scenarios in order against a fresh ledger and returns it.
func Run(ctx context.Context, opts Options, scenarios ...Scenario) *ledger.Ledger {
	l := ledger.New(opts.Observers...)
	lg := opts.Logger
	if lg == nil {
		lg = logger.Logger
	}

	runnerOpts := []client.Option{client.WithLogger(lg)}
	if opts.HTTPClient != nil {
		runnerOpts = append(runnerOpts, client.WithHTTPClient(opts.HTTPClient))
	}
	trace := opts.Trace
	if trace == nil {
		trace = os.Stdout
	}
	runnerOpts = append(runnerOpts, client.WithTrace(trace))

	thresholds := analyzer.DefaultThresholds()
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}

	for _, sc := range scenarios {
		if ctx.Err() != nil {
			lg.Warn("run interrupted, remaining checks will error", zap.String("next", sc.Name))
		}
		l.SetScenario(sc.Name)
		runner := client.New(opts.Config.APIBase(), l, opts.Config.DefaultTimeout, runnerOpts...)
		env := &Env{
			Config:     opts.Config,
			Runner:     runner,
			Auth:       auth.NewHelper(runner, opts.Config),
			Factory:    factory.NewAgentFactory(),
			Thresholds: thresholds,
			Logger:     lg.Named(sc.Name),
		}
		runScenario(ctx, env, sc)
	}
	return l
}

func runScenario(ctx context.Context, env *Env, sc Scenario) {
	steps := sc.Steps()
	if !sc.Anonymous {
		steps = append([]Step{{Name: "acquire session", Run: acquireSession}}, steps...)
	}

	env.Logger.Info("scenario started", zap.Int("steps", len(steps)))
	for i, step := range steps {
		err := step.Run(ctx, env)
		if err == nil {
			continue
		}

		env.Runner.Fail(step.Name, err)
		env.Logger.Warn("scenario aborted", zap.String("step", step.Name), zap.Error(err))
		for _, rest := range steps[i+1:] {
			if !rest.Always {
				env.Runner.Fail(rest.Name, errors.Errorf("not run: prerequisite %q failed", step.Name))
				continue
			}
			if err := rest.Run(ctx, env); err != nil {
				env.Runner.Fail(rest.Name, err)
			}
		}
		return
	}
	env.Logger.Info("scenario finished")
}

func acquireSession(ctx context.Context, env *Env) error {
	s, err := env.Auth.Acquire(ctx)
	if err != nil {
		return err
	}
	env.Session = s
	return nil
}

var catalogue = []Scenario{
	Auth(),
	Agents(),
	BulkDelete(),
	Isolation(),
	Simulation(),
	ScenarioPersistence(),
	Conversation(),
	Quality(),
	Observer(),
	Favorites(),
	Reset(),
	Media(),
}

// Catalogue returns every scenario in execution order.
func Catalogue() []Scenario {
	out := make([]Scenario, len(catalogue))
	copy(out, catalogue)
	return out
}

// Names returns the sorted scenario names.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for _, sc := range catalogue {
		names = append(names, sc.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, bool) {
	for _, sc := range catalogue {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}
