package scenario

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/agentsim/simcheck/harness/client"
	"github.com/agentsim/simcheck/harness/factory"
)

const (
	resetAgents        = 15
	resetConversations = 5
	resetObserverMsgs  = 5
)

// Reset populates a heavy simulation and verifies that a fresh start clears it within budget.
func Reset() Scenario {
	return Scenario{
		Name:        "reset",
		Description: "populated simulation is cleared within budget, state inactive with empty scenario, anonymous refused",
		Steps:       resetSteps,
	}
}

func resetSteps() []Step {
	var cleared bool

	return []Step{
		{
			Name: "reset requires auth",
			Run: func(ctx context.Context, env *Env) error {
				env.forbidsAnonymous(ctx, client.Request{Method: http.MethodPost, Path: "/simulation/reset"})
				return nil
			},
		},
		{
			Name: "populate simulation",
			Run: func(ctx context.Context, env *Env) error {
				if _, err := env.createAgents(ctx, env.Factory.Agents(resetAgents)); err != nil {
					return err
				}
				if !env.setScenario(ctx, "set scenario before reset", factory.Scenario(), http.StatusOK) {
					return errors.New("could not set scenario before reset")
				}
				env.Runner.Check(ctx, client.Request{Name: "start before reset", Method: http.MethodPost, Path: "/simulation/start"})

				for i := 1; i <= resetConversations; i++ {
					if _, err := env.generate(ctx, fmt.Sprintf("populate conversation %d", i)); err != nil {
						return err
					}
				}
				for range resetObserverMsgs {
					if _, err := env.sendObserver(ctx, factory.ObserverPrompt().ObserverMessage); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name: "populated volume reached",
			Run: func(ctx context.Context, env *Env) error {
				if agents, err := env.listAgents(ctx, "agents before reset"); err == nil {
					env.Runner.Assert(fmt.Sprintf("at least %d agents before reset", resetAgents), len(agents) >= resetAgents,
						fmt.Sprintf("%d agents", len(agents)))
				}
				if convs, err := env.conversations(ctx, "conversations before reset"); err == nil {
					env.Runner.Assert(fmt.Sprintf("at least %d conversations before reset", resetConversations),
						len(convs) >= resetConversations, fmt.Sprintf("%d conversations", len(convs)))
				}
				if msgs, err := env.observerMessages(ctx, "observer messages before reset"); err == nil {
					env.Runner.Assert(fmt.Sprintf("at least %d observer messages before reset", resetObserverMsgs),
						len(msgs) >= resetObserverMsgs, fmt.Sprintf("%d observer messages", len(msgs)))
				}
				return nil
			},
		},
		{
			Name: "reset within budget",
			Run: func(ctx context.Context, env *Env) error {
				start := time.Now()
				ok, _ := env.Runner.Check(ctx, client.Request{
					Name:    "fresh-start reset",
					Method:  http.MethodPost,
					Path:    "/simulation/reset",
					Timed:   true,
					Timeout: env.Config.ResetTimeout,
				})
				elapsed := time.Since(start)
				if !ok {
					return errors.New("reset did not complete")
				}
				cleared = true
				env.Runner.Assert("reset within budget", elapsed <= env.Config.ResetBudget,
					fmt.Sprintf("took %s, budget %s", elapsed.Round(time.Millisecond), env.Config.ResetBudget))
				return nil
			},
		},
		{
			Name: "everything cleared",
			Run: func(ctx context.Context, env *Env) error {
				if agents, err := env.listAgents(ctx, "agents after reset"); err == nil {
					env.Runner.Assert("agents cleared", len(agents) == 0, fmt.Sprintf("%d agents remain", len(agents)))
				}
				if convs, err := env.conversations(ctx, "conversations after reset"); err == nil {
					env.Runner.Assert("conversations cleared", len(convs) == 0, fmt.Sprintf("%d conversations remain", len(convs)))
				}
				if msgs, err := env.observerMessages(ctx, "observer messages after reset"); err == nil {
					env.Runner.Assert("observer messages cleared", len(msgs) == 0, fmt.Sprintf("%d observer messages remain", len(msgs)))
				}
				if state, err := env.state(ctx, "state after reset"); err == nil {
					env.Runner.Assert("simulation inactive after reset", !state.IsActive, "is_active true")
					env.Runner.Assert("scenario cleared by reset", state.Scenario == "" && state.ScenarioName == "",
						fmt.Sprintf("scenario %q name %q", state.Scenario, state.ScenarioName))
				}
				return nil
			},
		},
		{
			Name:   "clear partial population",
			Always: true,
			Run: func(ctx context.Context, env *Env) error {
				if cleared || env.Session.Token == "" {
					return nil
				}
				env.Runner.Check(ctx, client.Request{
					Name:    "reset after aborted population",
					Method:  http.MethodPost,
					Path:    "/simulation/reset",
					Timeout: env.Config.ResetTimeout,
				})
				return nil
			},
		},
	}
}
