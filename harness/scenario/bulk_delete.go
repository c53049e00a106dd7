package scenario

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
)

// BulkDelete covers both bulk endpoint shapes and their all-or-nothing semantics.
func BulkDelete() Scenario {
	return Scenario{
		Name:        "bulk-delete",
		Description: "empty and unknown id lists, mixed lists delete nothing, counts match, Clear-All of Test Agent 1..5",
		Steps:       bulkDeleteSteps,
	}
}

// bulkShape is one of the two accepted request forms.
type bulkShape struct {
	label  string
	method string
	path   string
	body   func(ids []string) any
}

var bulkShapes = []bulkShape{
	{
		label:  "DELETE /agents/bulk",
		method: http.MethodDelete,
		path:   "/agents/bulk",
		body:   func(ids []string) any { return ids },
	},
	{
		label:  "POST /agents/bulk-delete",
		method: http.MethodPost,
		path:   "/agents/bulk-delete",
		body:   func(ids []string) any { return dto.BulkDeleteRequest{AgentIDs: ids} },
	},
}

func (e *Env) bulkDelete(ctx context.Context, shape bulkShape, name string, ids []string, status int) (int, bool) {
	if ids == nil {
		ids = []string{}
	}
	req := client.Request{
		Name:         fmt.Sprintf("%s: %s", shape.label, name),
		Method:       shape.method,
		Path:         shape.path,
		Body:         shape.body(ids),
		ExpectStatus: status,
	}
	if status == http.StatusOK {
		req.ExpectKeys = []string{"deleted_count"}
	}
	ok, body := e.Runner.Check(ctx, req)
	n, _ := body.Int("deleted_count")
	return n, ok
}

func bulkDeleteSteps() []Step {
	var kept []dto.Agent

	return []Step{
		{
			Name: "empty list deletes nothing",
			Run: func(ctx context.Context, env *Env) error {
				for _, shape := range bulkShapes {
					if n, ok := env.bulkDelete(ctx, shape, "empty list", nil, http.StatusOK); ok {
						env.Runner.Assert(shape.label+": empty list reports 0", n == 0, fmt.Sprintf("deleted_count %d", n))
					}
				}
				return nil
			},
		},
		{
			Name: "unknown ids are 404",
			Run: func(ctx context.Context, env *Env) error {
				for _, shape := range bulkShapes {
					env.bulkDelete(ctx, shape, "all unknown ids", []string{random.NewID(), random.NewID()}, http.StatusNotFound)
				}
				return nil
			},
		},
		{
			Name: "mixed list deletes nothing",
			Run: func(ctx context.Context, env *Env) error {
				var err error
				if kept, err = env.createAgents(ctx, env.Factory.Agents(2)); err != nil {
					return err
				}
				for _, shape := range bulkShapes {
					env.bulkDelete(ctx, shape, "known plus unknown id", []string{kept[0].ID, random.NewID()}, http.StatusNotFound)
				}
				agents, err := env.listAgents(ctx, "list after mixed bulk delete")
				if err != nil {
					return err
				}
				env.Runner.Assert("mixed bulk delete removed nothing",
					containsID(agents, kept[0].ID) && containsID(agents, kept[1].ID), "known agent was deleted")
				return nil
			},
		},
		{
			Name: "both shapes delete",
			Run: func(ctx context.Context, env *Env) error {
				for i, shape := range bulkShapes {
					if n, ok := env.bulkDelete(ctx, shape, "delete one agent", []string{kept[i].ID}, http.StatusOK); ok {
						env.Runner.Assert(shape.label+": count equals input", n == 1, fmt.Sprintf("deleted_count %d", n))
					}
				}
				agents, err := env.listAgents(ctx, "list after bulk deletes")
				if err != nil {
					return err
				}
				env.Runner.Assert("bulk-deleted agents gone",
					!containsID(agents, kept[0].ID) && !containsID(agents, kept[1].ID), "agent still listed")
				return nil
			},
		},
		{
			Name: "clear all test agents",
			Run: func(ctx context.Context, env *Env) error {
				specs := make([]dto.AgentSpec, 0, 5)
				for i := 1; i <= 5; i++ {
					specs = append(specs, env.Factory.AgentNamed(fmt.Sprintf("Test Agent %d", i)))
				}
				created, err := env.createAgents(ctx, specs)
				if err != nil {
					env.cleanupAgents(ctx, created)
					return err
				}

				n, ok := env.bulkDelete(ctx, bulkShapes[1], "Clear All", agentIDs(created), http.StatusOK)
				if ok {
					env.Runner.Assert("Clear All reports 5 deleted", n == 5, fmt.Sprintf("deleted_count %d", n))
				}
				agents, err := env.listAgents(ctx, "list after Clear All")
				if err != nil {
					return err
				}
				for _, a := range created {
					if containsID(agents, a.ID) {
						env.Runner.Assert("Clear All removed "+a.Name, false, "still listed")
						return nil
					}
				}
				env.Runner.Assert("Clear All removed every test agent", true, "")
				return nil
			},
		},
		{
			Name:   "cleanup",
			Always: true,
			Run: func(ctx context.Context, env *Env) error {
				env.cleanupAgents(ctx, kept)
				return nil
			},
		},
	}
}
