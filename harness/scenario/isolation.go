package scenario

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
)

// isolationOwnerAgents is how many agents the owner creates before the intruder acts.
const isolationOwnerAgents = 3

// Isolation verifies that one caller can neither see nor mutate another caller's agents.
func Isolation() Scenario {
	return Scenario{
		Name:        "isolation",
		Description: "two registered callers: disjoint lists, cross-tenant delete/bulk-delete/update refused, owner view intact",
		Anonymous:   true,
		Steps:       isolationSteps,
	}
}

func isolationSteps() []Step {
	var (
		owner, intruder *Env
		ownerAgents     []dto.Agent
		intruderAgent   dto.Agent
	)

	return []Step{
		{
			Name: "register two callers",
			Run: func(ctx context.Context, env *Env) error {
				a, err := env.Auth.Register(ctx)
				if err != nil {
					return err
				}
				b, err := env.Auth.Register(ctx)
				if err != nil {
					return err
				}
				env.Runner.Assert("registered callers are distinct", a.User.ID != b.User.ID,
					fmt.Sprintf("both callers are %q", a.User.ID))
				owner, intruder = env.as(a), env.as(b)
				return nil
			},
		},
		{
			Name: "each caller creates agents",
			Run: func(ctx context.Context, env *Env) error {
				var err error
				if ownerAgents, err = owner.createAgents(ctx, env.Factory.Agents(isolationOwnerAgents)); err != nil {
					return err
				}
				intruderAgent, err = intruder.createAgent(ctx, env.Factory.Agent())
				return err
			},
		},
		{
			Name: "lists are disjoint",
			Run: func(ctx context.Context, env *Env) error {
				mine, err := owner.listAgents(ctx, "owner lists agents")
				if err != nil {
					return nil
				}
				theirs, err := intruder.listAgents(ctx, "intruder lists agents")
				if err != nil {
					return nil
				}
				for _, a := range ownerAgents {
					env.Runner.Assert("owner sees "+a.Name, containsID(mine, a.ID), "agent missing from owner's list")
					env.Runner.Assert("intruder does not see "+a.Name, !containsID(theirs, a.ID), "lists overlap")
				}
				env.Runner.Assert("owner does not see intruder's agent", !containsID(mine, intruderAgent.ID), "lists overlap")
				env.Runner.Assert("intruder sees own agent", containsID(theirs, intruderAgent.ID), "agent missing")
				return nil
			},
		},
		{
			Name: "cross-tenant mutations refused",
			Run: func(ctx context.Context, env *Env) error {
				target := ownerAgents[0]
				path := "/agents/" + target.ID
				intruder.Runner.Check(ctx, client.Request{
					Name: "intruder cannot read owner's agent", Path: path, ExpectStatus: http.StatusNotFound,
				})
				intruder.Runner.Check(ctx, client.Request{
					Name: "intruder cannot update owner's agent", Method: http.MethodPut, Path: path,
					Body: env.Factory.Agent(), ExpectStatus: http.StatusNotFound,
				})
				intruder.Runner.Check(ctx, client.Request{
					Name: "intruder cannot delete owner's agent", Method: http.MethodDelete, Path: path,
					ExpectStatus: http.StatusNotFound,
				})
				for _, shape := range bulkShapes {
					intruder.bulkDelete(ctx, shape, "intruder cannot bulk-delete owner's agents",
						agentIDs(ownerAgents), http.StatusNotFound)
				}
				return nil
			},
		},
		{
			Name: "owner's view intact",
			Run: func(ctx context.Context, env *Env) error {
				for _, a := range ownerAgents {
					ok, body := owner.Runner.Check(ctx, client.Request{
						Name: "owner still reads " + a.Name, Path: "/agents/" + a.ID,
					})
					if ok {
						env.Runner.Assert(a.Name+" unchanged", body.String("name") == a.Name,
							fmt.Sprintf("name %q, want %q", body.String("name"), a.Name))
					}
				}
				mine, err := owner.listAgents(ctx, "owner lists agents after intrusion")
				if err != nil {
					return nil
				}
				var missing []string
				for _, a := range ownerAgents {
					if !containsID(mine, a.ID) {
						missing = append(missing, a.Name)
					}
				}
				env.Runner.Assert(fmt.Sprintf("owner's list still has all %d agents", len(ownerAgents)),
					len(missing) == 0, fmt.Sprintf("missing %v", missing))
				return nil
			},
		},
		{
			Name:   "cleanup",
			Always: true,
			Run: func(ctx context.Context, env *Env) error {
				if owner != nil {
					owner.cleanupAgents(ctx, ownerAgents)
				}
				if intruder != nil && intruderAgent.ID != "" {
					intruder.cleanupAgents(ctx, []dto.Agent{intruderAgent})
				}
				return nil
			},
		},
	}
}
