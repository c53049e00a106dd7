package scenario

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
)

// Simulation covers start/pause/resume transitions and fast-forward.
func Simulation() Scenario {
	return Scenario{
		Name:        "simulation",
		Description: "lifecycle transitions reflected by state, state bound to caller, auth enforced, fast-forward",
		Steps:       simulationSteps,
	}
}

// transition posts to a lifecycle endpoint and checks the resulting is_active flag and that the
// state belongs to the caller. It reports whether the transition call itself succeeded.
func (e *Env) transition(ctx context.Context, action string, wantActive bool) bool {
	ok, _ := e.Runner.Check(ctx, client.Request{
		Name:   "simulation " + action,
		Method: http.MethodPost,
		Path:   "/simulation/" + action,
	})
	if !ok {
		return false
	}
	state, err := e.state(ctx, "state after "+action)
	if err != nil {
		return true
	}
	e.Runner.Assert(fmt.Sprintf("is_active is %t after %s", wantActive, action), state.IsActive == wantActive,
		fmt.Sprintf("is_active %t", state.IsActive))
	e.ownedByCaller("state bound to caller after "+action, state.UserID)
	return true
}

func simulationSteps() []Step {
	return []Step{
		{
			Name: "lifecycle requires auth",
			Run: func(ctx context.Context, env *Env) error {
				env.rejectsAnonymous(ctx, client.Request{Method: http.MethodGet, Path: "/simulation/state"})
				for _, action := range []string{"start", "pause", "resume"} {
					env.rejectsAnonymous(ctx, client.Request{Method: http.MethodPost, Path: "/simulation/" + action})
				}
				return nil
			},
		},
		{
			Name: "start pause resume",
			Run: func(ctx context.Context, env *Env) error {
				env.transition(ctx, "start", true)
				env.transition(ctx, "pause", false)
				env.transition(ctx, "resume", true)
				return nil
			},
		},
		{
			Name: "fast-forward",
			Run: func(ctx context.Context, env *Env) error {
				agents, err := env.createAgents(ctx, env.Factory.Agents(2))
				defer env.cleanupAgents(ctx, agents)
				if err != nil {
					return err
				}
				before, err := env.conversations(ctx, "conversations before fast-forward")
				if err != nil {
					return err
				}
				startState, err := env.state(ctx, "state before fast-forward")
				if err != nil {
					return err
				}

				ok, body := env.Runner.Check(ctx, client.Request{
					Name:    "fast-forward one day",
					Method:  http.MethodPost,
					Path:    "/simulation/fast-forward",
					Body:    dto.FastForwardRequest{TargetDays: 1, ConversationsPerPeriod: 1},
					Timed:   true,
					Timeout: env.Config.GenerationTimeout,
				})
				if !ok {
					return nil
				}
				after, err := env.conversations(ctx, "conversations after fast-forward")
				if err == nil {
					env.Runner.Assert("fast-forward created conversations", len(after) > len(before),
						fmt.Sprintf("%d before, %d after", len(before), len(after)))
				}
				if days, ok := body.Int("days_advanced"); ok {
					env.Runner.Assert("fast-forward advanced the clock", days >= 1, fmt.Sprintf("days_advanced %d", days))
				} else if state, err := env.state(ctx, "state after fast-forward"); err == nil {
					env.Runner.Assert("fast-forward advanced the clock", state.CurrentDay > startState.CurrentDay,
						fmt.Sprintf("day %d -> %d", startState.CurrentDay, state.CurrentDay))
				}
				return nil
			},
		},
		{
			Name:   "leave simulation paused",
			Always: true,
			Run: func(ctx context.Context, env *Env) error {
				if env.Session.Token == "" {
					return nil
				}
				env.transition(ctx, "pause", false)
				return nil
			},
		},
	}
}
