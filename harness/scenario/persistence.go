package scenario

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Laisky/errors/v2"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
	"github.com/agentsim/simcheck/harness/factory"
)

// ScenarioPersistence verifies that a scenario set by the caller is never overwritten by
// subsequent agent or lifecycle operations.
func ScenarioPersistence() Scenario {
	return Scenario{
		Name:        "scenario-persistence",
		Description: "set-scenario pair survives agent creation, lifecycle transitions and repeated reads; empty fields rejected",
		Steps:       persistenceSteps,
	}
}

// scenarioKept asserts the current state still carries want.
func (e *Env) scenarioKept(ctx context.Context, after string, want dto.ScenarioRequest) {
	state, err := e.state(ctx, "state after "+after)
	if err != nil {
		return
	}
	e.Runner.Assert("scenario text kept after "+after, state.Scenario == want.Scenario,
		fmt.Sprintf("scenario %q", state.Scenario))
	e.Runner.Assert("scenario name kept after "+after, state.ScenarioName == want.ScenarioName,
		fmt.Sprintf("scenario_name %q, want %q", state.ScenarioName, want.ScenarioName))
}

func (e *Env) setScenario(ctx context.Context, name string, s dto.ScenarioRequest, status int) bool {
	ok, _ := e.Runner.Check(ctx, client.Request{
		Name:         name,
		Method:       http.MethodPost,
		Path:         "/simulation/set-scenario",
		Body:         s,
		ExpectStatus: status,
	})
	return ok
}

func persistenceSteps() []Step {
	var agents []dto.Agent
	want := factory.DeepSpace

	return []Step{
		{
			Name: "set scenario",
			Run: func(ctx context.Context, env *Env) error {
				if !env.setScenario(ctx, "set scenario "+want.ScenarioName, want, http.StatusOK) {
					return errors.Errorf("could not set scenario %q", want.ScenarioName)
				}
				env.scenarioKept(ctx, "set-scenario", want)
				return nil
			},
		},
		{
			Name: "agent creation keeps scenario",
			Run: func(ctx context.Context, env *Env) error {
				var err error
				agents, err = env.createAgents(ctx, env.Factory.Agents(3))
				env.scenarioKept(ctx, "creating agents", want)
				return err
			},
		},
		{
			Name: "lifecycle keeps scenario",
			Run: func(ctx context.Context, env *Env) error {
				for _, action := range []string{"start", "pause", "resume", "pause"} {
					env.Runner.Check(ctx, client.Request{
						Name:   "simulation " + action,
						Method: http.MethodPost,
						Path:   "/simulation/" + action,
					})
					env.scenarioKept(ctx, action, want)
				}
				return nil
			},
		},
		{
			Name: "repeated reads are stable",
			Run: func(ctx context.Context, env *Env) error {
				for i := 1; i <= 3; i++ {
					env.scenarioKept(ctx, fmt.Sprintf("read %d", i), want)
				}
				return nil
			},
		},
		{
			Name: "empty scenario fields rejected",
			Run: func(ctx context.Context, env *Env) error {
				env.setScenario(ctx, "empty scenario text is 400",
					dto.ScenarioRequest{Scenario: "", ScenarioName: "Empty Text"}, http.StatusBadRequest)
				env.setScenario(ctx, "empty scenario name is 400",
					dto.ScenarioRequest{Scenario: want.Scenario, ScenarioName: "  "}, http.StatusBadRequest)
				env.scenarioKept(ctx, "rejected updates", want)
				return nil
			},
		},
		{
			Name: "random scenario round-trip",
			Run: func(ctx context.Context, env *Env) error {
				s, err := factory.FetchRandomScenario(ctx, env.Runner)
				if err != nil {
					return nil
				}
				if env.setScenario(ctx, "set random scenario", s, http.StatusOK) {
					env.scenarioKept(ctx, "setting the random scenario", s)
				}
				return nil
			},
		},
		{
			Name:   "cleanup",
			Always: true,
			Run: func(ctx context.Context, env *Env) error {
				env.cleanupAgents(ctx, agents)
				return nil
			},
		},
	}
}
