package scenario

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/Laisky/errors/v2"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
	"github.com/agentsim/simcheck/harness/factory"
)

// Agents covers agent CRUD, user binding and payload validation.
func Agents() Scenario {
	return Scenario{
		Name:        "agents",
		Description: "CRUD with user binding, full-field persistence, list scoping, update validation, unknown-id deletes",
		Steps:       agentSteps,
	}
}

func agentSteps() []Step {
	var (
		spec  dto.AgentSpec
		agent dto.Agent
	)

	return []Step{
		{
			Name: "archetype vocabulary",
			Run: func(ctx context.Context, env *Env) error {
				ok, body := env.Runner.Check(ctx, client.Request{Name: "list archetypes", Path: "/archetypes"})
				if !ok {
					return nil
				}
				offered := map[string]bool{}
				for k := range body.Map() {
					offered[k] = true
				}
				for _, item := range body.Items("archetypes") {
					if name := client.AsString(item); name != "" {
						offered[name] = true
					}
					if name := client.AsString(client.Object(item)["name"]); name != "" {
						offered[name] = true
					}
				}
				var missing []string
				for _, a := range dto.Archetypes {
					if !offered[a] {
						missing = append(missing, a)
					}
				}
				env.Runner.Assert("every archetype offered", len(missing) == 0, fmt.Sprintf("missing %v", missing))
				return nil
			},
		},
		{
			Name: "create agent with all fields",
			Run: func(ctx context.Context, env *Env) error {
				spec = env.Factory.Agent()
				if err := factory.Validate(spec); err != nil {
					return err
				}
				var err error
				if agent, err = env.createAgent(ctx, spec); err != nil {
					return err
				}
				env.Runner.Assert("agent bound to caller", agent.UserID == env.Session.User.ID,
					fmt.Sprintf("user_id %q, caller %q", agent.UserID, env.Session.User.ID))
				return nil
			},
		},
		{
			Name: "agent fields persisted",
			Run: func(ctx context.Context, env *Env) error {
				ok, body := env.Runner.Check(ctx, client.Request{Name: "get created agent", Path: "/agents/" + agent.ID})
				if !ok {
					return nil
				}
				var got dto.Agent
				if err := body.Decode(&got); err != nil {
					return err
				}
				env.Runner.Assert("all agent fields persisted", sameSpec(got.AgentSpec, spec),
					fmt.Sprintf("got %+v, want %+v", got.AgentSpec, spec))
				return nil
			},
		},
		{
			Name: "list scoped to caller",
			Run: func(ctx context.Context, env *Env) error {
				agents, err := env.listAgents(ctx, "list agents")
				if err != nil {
					return nil
				}
				env.Runner.Assert("list contains created agent", containsID(agents, agent.ID), "created agent missing")
				foreign := slices.ContainsFunc(agents, func(a dto.Agent) bool {
					return a.UserID != "" && a.UserID != env.Session.User.ID
				})
				env.Runner.Assert("list holds only caller's agents", !foreign, "foreign agent listed")
				return nil
			},
		},
		{
			Name: "update validation",
			Run: func(ctx context.Context, env *Env) error {
				env.Runner.Check(ctx, client.Request{
					Name:         "partial update rejected",
					Method:       http.MethodPut,
					Path:         "/agents/" + agent.ID,
					Body:         map[string]string{"name": "Only A Name"},
					ExpectStatus: http.StatusUnprocessableEntity,
					ExpectAnyOf:  invalidPayload,
				})

				updated := spec
				updated.Goal = "Revised goal " + random.Suffix(4)
				ok, _ := env.Runner.Check(ctx, client.Request{
					Name:   "full update accepted",
					Method: http.MethodPut,
					Path:   "/agents/" + agent.ID,
					Body:   updated,
				})
				if !ok {
					return nil
				}
				ok, body := env.Runner.Check(ctx, client.Request{Name: "get updated agent", Path: "/agents/" + agent.ID})
				if ok {
					env.Runner.Assert("update persisted", body.String("goal") == updated.Goal,
						fmt.Sprintf("goal %q, want %q", body.String("goal"), updated.Goal))
				}
				return nil
			},
		},
		{
			Name: "every archetype accepted",
			Run: func(ctx context.Context, env *Env) error {
				var created []dto.Agent
				for _, archetype := range dto.Archetypes {
					s, err := factory.AgentWithArchetype(archetype)
					if err != nil {
						return err
					}
					if a, err := env.createAgent(ctx, s); err == nil {
						created = append(created, a)
						env.Runner.Assert("archetype "+archetype+" kept", a.Archetype == archetype,
							fmt.Sprintf("archetype %q", a.Archetype))
					}
				}
				env.cleanupAgents(ctx, created)
				return nil
			},
		},
		{
			Name: "invalid payloads rejected",
			Run: func(ctx context.Context, env *Env) error {
				bad := env.Factory.Agent()
				bad.Personality.Extroversion = 0
				env.Runner.Check(ctx, client.Request{
					Name: "trait out of range rejected", Method: http.MethodPost, Path: "/agents",
					Body: bad, ExpectStatus: http.StatusUnprocessableEntity, ExpectAnyOf: invalidPayload,
				})

				bad = env.Factory.Agent()
				bad.Archetype = "wizard"
				env.Runner.Check(ctx, client.Request{
					Name: "unknown archetype rejected", Method: http.MethodPost, Path: "/agents",
					Body: bad, ExpectStatus: http.StatusUnprocessableEntity, ExpectAnyOf: invalidPayload,
				})

				env.Runner.Check(ctx, client.Request{
					Name: "malformed JSON rejected", Method: http.MethodPost, Path: "/agents",
					RawBody: []byte(`{"name": "unterminated`), ExpectStatus: http.StatusUnprocessableEntity,
					ExpectAnyOf: invalidPayload,
				})
				return nil
			},
		},
		{
			Name: "delete agent",
			Run: func(ctx context.Context, env *Env) error {
				ok, _ := env.Runner.Check(ctx, client.Request{
					Name: "delete created agent", Method: http.MethodDelete, Path: "/agents/" + agent.ID,
					ExpectStatus: http.StatusOK, ExpectAnyOf: []int{http.StatusNoContent},
				})
				if !ok {
					return errors.New("agent could not be deleted")
				}
				env.Runner.Check(ctx, client.Request{
					Name: "deleted agent gone", Path: "/agents/" + agent.ID, ExpectStatus: http.StatusNotFound,
				})
				env.Runner.Check(ctx, client.Request{
					Name: "second delete is 404", Method: http.MethodDelete, Path: "/agents/" + agent.ID,
					ExpectStatus: http.StatusNotFound,
				})
				env.Runner.Check(ctx, client.Request{
					Name: "delete unknown id is 404", Method: http.MethodDelete,
					Path: "/agents/" + random.NewID(), ExpectStatus: http.StatusNotFound,
				})
				return nil
			},
		},
		{
			Name:   "cleanup",
			Always: true,
			Run: func(ctx context.Context, env *Env) error {
				if agent.ID != "" {
					env.cleanupAgents(ctx, []dto.Agent{agent})
				}
				return nil
			},
		},
	}
}

func sameSpec(got, want dto.AgentSpec) bool {
	return got.Name == want.Name &&
		got.Archetype == want.Archetype &&
		got.Personality == want.Personality &&
		got.Goal == want.Goal &&
		got.Expertise == want.Expertise &&
		got.Background == want.Background
}
