package factory

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
	"github.com/agentsim/simcheck/harness/ledger"
)

func TestEveryArchetypeHasAProfile(t *testing.T) {
	require.Len(t, profiles, len(dto.Archetypes))
	for _, a := range dto.Archetypes {
		spec, err := AgentWithArchetype(a)
		require.NoError(t, err)
		require.NoError(t, Validate(spec))
	}
	_, err := AgentWithArchetype("wizard")
	require.Error(t, err)
}

func TestAgentsCycleArchetypes(t *testing.T) {
	f := NewAgentFactory()
	specs := f.Agents(len(dto.Archetypes) * 2)

	for i, spec := range specs {
		require.Equal(t, dto.Archetypes[i%len(dto.Archetypes)], spec.Archetype)
	}
	require.NotEqual(t, specs[0].Name, specs[len(dto.Archetypes)].Name)
}

func TestAgentNamedKeepsName(t *testing.T) {
	spec := NewAgentFactory().AgentNamed("Test Agent 1")
	require.Equal(t, "Test Agent 1", spec.Name)
	require.NoError(t, Validate(spec))
}

func TestAgentFactoryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("every emitted spec is valid with all five traits in range", prop.ForAll(
		func(n int) bool {
			for _, spec := range NewAgentFactory().Agents(n) {
				if Validate(spec) != nil {
					return false
				}
				p := spec.Personality
				for _, v := range []int{p.Extroversion, p.Optimism, p.Curiosity, p.Cooperativeness, p.Energy} {
					if v < 1 || v > 10 {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 40),
	))

	properties.Property("names never collide within a batch", prop.ForAll(
		func(n int) bool {
			seen := map[string]bool{}
			for _, spec := range NewAgentFactory().Agents(n) {
				if seen[spec.Name] {
					return false
				}
				seen[spec.Name] = true
			}
			return true
		},
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t)
}

func TestScenarioCatalogue(t *testing.T) {
	all := Scenarios()
	require.Equal(t, DeepSpace, all[0])
	for _, s := range all {
		require.NotEmpty(t, s.Scenario)
		require.NotEmpty(t, s.ScenarioName)
	}
	require.Contains(t, all, Scenario())
	require.Equal(t, "Deep Space Signal Discovery", DeepSpace.ScenarioName)
}

func TestObserverPrompt(t *testing.T) {
	prompt := ObserverPrompt()
	require.Contains(t, ObserverPrompts(), prompt.ObserverMessage)
	require.Contains(t, ObserverPrompts(), "Hello team, let's begin our quantum computing discussion")
}

func TestFetchRandomScenario(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/simulation/random-scenario", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"scenario":"  Aliens land in Oslo.  ","scenario_name":"First Contact"}`))
	})
	mux.HandleFunc("/api/blank/simulation/random-scenario", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"scenario":""}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := ledger.New()
	runner := client.New(srv.URL+"/api", l, time.Second, client.WithTrace(io.Discard))
	s, err := FetchRandomScenario(context.Background(), runner)
	require.NoError(t, err)
	require.Equal(t, "Aliens land in Oslo.", s.Scenario)
	require.Equal(t, "First Contact", s.ScenarioName)

	blank := client.New(srv.URL+"/api/blank", l, time.Second, client.WithTrace(io.Discard))
	_, err = FetchRandomScenario(context.Background(), blank)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "empty"))
}
