package factory

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
)

// DeepSpace is the reference scenario used by the persistence checks.
var DeepSpace = dto.ScenarioRequest{
	Scenario:     "A team of researchers discovers an unexpected signal from deep space and must decide how to respond.",
	ScenarioName: "Deep Space Signal Discovery",
}

var scenarios = []dto.ScenarioRequest{
	DeepSpace,
	{
		Scenario:     "A coastal town has 72 hours to prepare for a hurricane that has unexpectedly intensified overnight.",
		ScenarioName: "Hurricane Preparedness",
	},
	{
		Scenario:     "A startup discovers its flagship product has a flaw days before a major investor demo.",
		ScenarioName: "Startup Crisis",
	},
	{
		Scenario:     "An international crew aboard a research station must ration supplies after a resupply mission is cancelled.",
		ScenarioName: "Research Station Rationing",
	},
	{
		Scenario:     "A city council debates converting a historic downtown district into a car-free zone.",
		ScenarioName: "Car-Free Downtown Debate",
	},
	{
		Scenario:     "A museum team must decide whether to return a disputed artifact to its country of origin.",
		ScenarioName: "Artifact Repatriation",
	},
}

// Scenarios returns the built-in scenario catalogue.
func Scenarios() []dto.ScenarioRequest {
	out := make([]dto.ScenarioRequest, len(scenarios))
	copy(out, scenarios)
	return out
}

// Scenario picks a random built-in scenario.
func Scenario() dto.ScenarioRequest {
	return random.Pick(scenarios)
}

// FetchRandomScenario exercises GET /simulation/random-scenario and returns the scenario it offers.
func FetchRandomScenario(ctx context.Context, runner *client.Runner) (dto.ScenarioRequest, error) {
	ok, body := runner.Check(ctx, client.Request{
		Name:       "random scenario offered",
		Path:       "/simulation/random-scenario",
		ExpectKeys: []string{"scenario"},
	})
	if !ok {
		return dto.ScenarioRequest{}, errors.New("random-scenario endpoint did not answer")
	}

	s := dto.ScenarioRequest{
		Scenario:     strings.TrimSpace(body.String("scenario")),
		ScenarioName: strings.TrimSpace(body.String("scenario_name")),
	}
	if s.Scenario == "" {
		return dto.ScenarioRequest{}, errors.New("random-scenario returned empty scenario text")
	}
	if s.ScenarioName == "" {
		s.ScenarioName = "Random Scenario " + random.Suffix(4)
	}
	return s, nil
}

var observerPrompts = []string{
	"Hello team, let's begin our quantum computing discussion",
	"What is the single biggest risk we are not talking about?",
	"Please each propose one concrete next step for tomorrow.",
	"How would you explain our plan to someone outside the team?",
	"Focus on the budget constraints for the next few minutes.",
	"Who disagrees with the current direction, and why?",
	"Summarize what we have agreed on so far.",
}

// ObserverPrompts returns the built-in observer prompts.
func ObserverPrompts() []string {
	out := make([]string, len(observerPrompts))
	copy(out, observerPrompts)
	return out
}

// ObserverPrompt returns a random imperative or interrogative prompt.
func ObserverPrompt() dto.ObserverRequest {
	return dto.ObserverRequest{ObserverMessage: random.Pick(observerPrompts)}
}
