package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/Laisky/errors/v2"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/auth"
	"github.com/agentsim/simcheck/harness/client"
)

var (
	// unauthenticated are the statuses an endpoint may use to reject a missing or malformed bearer.
	unauthenticated = []int{http.StatusUnauthorized, http.StatusForbidden}
	// invalidPayload are the statuses accepted for a payload that fails validation.
	invalidPayload = []int{http.StatusBadRequest, http.StatusUnprocessableEntity}
)

// decodeList decodes a list response, tolerating a {"<key>": [...]} wrapper.
func decodeList[T any](body client.Body, wrapperKeys ...string) ([]T, error) {
	items := body.Items(wrapperKeys...)
	if items == nil && !body.IsList(wrapperKeys...) {
		return nil, errors.Errorf("response is not a list: %s", string(body.Bytes()))
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var out []T
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode list")
	}
	return out, nil
}

func (e *Env) createAgent(ctx context.Context, spec dto.AgentSpec) (dto.Agent, error) {
	ok, body := e.Runner.Check(ctx, client.Request{
		Name:         "create agent " + spec.Name,
		Method:       http.MethodPost,
		Path:         "/agents",
		Body:         spec,
		ExpectStatus: http.StatusOK,
		ExpectAnyOf:  []int{http.StatusCreated},
		ExpectKeys:   []string{"id"},
	})
	if !ok {
		return dto.Agent{}, errors.Errorf("could not create agent %q", spec.Name)
	}
	var agent dto.Agent
	if err := body.Decode(&agent); err != nil {
		return dto.Agent{}, err
	}
	return agent, nil
}

func (e *Env) createAgents(ctx context.Context, specs []dto.AgentSpec) ([]dto.Agent, error) {
	agents := make([]dto.Agent, 0, len(specs))
	for _, spec := range specs {
		agent, err := e.createAgent(ctx, spec)
		if err != nil {
			return agents, err
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

func (e *Env) listAgents(ctx context.Context, name string) ([]dto.Agent, error) {
	ok, body := e.Runner.Check(ctx, client.Request{Name: name, Path: "/agents"})
	if !ok {
		return nil, errors.New("could not list agents")
	}
	return decodeList[dto.Agent](body, "agents")
}

// cleanupAgents deletes agents one by one, accepting 404 for ones already gone.
func (e *Env) cleanupAgents(ctx context.Context, agents []dto.Agent) {
	for _, a := range agents {
		e.Runner.Check(ctx, client.Request{
			Name:         "cleanup agent " + a.Name,
			Method:       http.MethodDelete,
			Path:         "/agents/" + a.ID,
			ExpectStatus: http.StatusOK,
			ExpectAnyOf:  []int{http.StatusNoContent, http.StatusNotFound},
		})
	}
}

func (e *Env) state(ctx context.Context, name string) (dto.SimulationState, error) {
	ok, body := e.Runner.Check(ctx, client.Request{
		Name:       name,
		Path:       "/simulation/state",
		ExpectKeys: []string{"is_active"},
	})
	if !ok {
		return dto.SimulationState{}, errors.New("could not read simulation state")
	}
	var state dto.SimulationState
	if err := body.Decode(&state); err != nil {
		return dto.SimulationState{}, err
	}
	return state, nil
}

func (e *Env) conversations(ctx context.Context, name string) ([]dto.Conversation, error) {
	ok, body := e.Runner.Check(ctx, client.Request{Name: name, Path: "/conversations"})
	if !ok {
		return nil, errors.New("could not list conversations")
	}
	return decodeList[dto.Conversation](body, "conversations")
}

func (e *Env) observerMessages(ctx context.Context, name string) ([]dto.ObserverMessage, error) {
	ok, body := e.Runner.Check(ctx, client.Request{Name: name, Path: "/observer/messages"})
	if !ok {
		return nil, errors.New("could not list observer messages")
	}
	return decodeList[dto.ObserverMessage](body, "messages", "observer_messages")
}

// rejectsAnonymous checks that req is refused without a bearer.
func (e *Env) rejectsAnonymous(ctx context.Context, req client.Request) bool {
	req.Name = fmt.Sprintf("%s %s rejects missing bearer", req.Method, req.Path)
	req.SkipAuth = true
	req.ExpectStatus = http.StatusForbidden
	req.ExpectAnyOf = []int{http.StatusUnauthorized}
	ok, _ := e.Runner.Check(ctx, req)
	return ok
}

// forbidsAnonymous checks that req is refused with exactly 403 without a bearer.
func (e *Env) forbidsAnonymous(ctx context.Context, req client.Request) bool {
	req.Name = fmt.Sprintf("%s %s forbids missing bearer", req.Method, req.Path)
	req.SkipAuth = true
	req.ExpectStatus = http.StatusForbidden
	req.ExpectAnyOf = nil
	ok, _ := e.Runner.Check(ctx, req)
	return ok
}

func agentIDs(agents []dto.Agent) []string {
	ids := make([]string, 0, len(agents))
	for _, a := range agents {
		ids = append(ids, a.ID)
	}
	return ids
}

func containsID(agents []dto.Agent, id string) bool {
	return slices.ContainsFunc(agents, func(a dto.Agent) bool { return a.ID == id })
}

// as returns a copy of the environment acting as session.
// ownedByCaller asserts that a resource's user_id is the session user. A missing user_id fails.
func (e *Env) ownedByCaller(label, userID string) bool {
	return e.Runner.Assert(label, userID != "" && userID == e.Session.User.ID,
		fmt.Sprintf("user_id %q, caller %q", userID, e.Session.User.ID))
}

func (e *Env) as(s auth.Session) *Env {
	clone := *e
	clone.Runner = e.Runner.As(s.Token)
	clone.Auth = auth.NewHelper(clone.Runner, e.Config)
	clone.Session = s
	return &clone
}
