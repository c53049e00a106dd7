package scenario

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/Laisky/errors/v2"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
)

// Conversation covers round generation preconditions, participation and persistence.
func Conversation() Scenario {
	return Scenario{
		Name:        "conversation",
		Description: "fewer than two agents refused, unauthenticated refused, every agent speaks, round persisted",
		Steps:       conversationSteps,
	}
}

// generate requests one conversation round.
func (e *Env) generate(ctx context.Context, name string) (dto.Conversation, error) {
	ok, body := e.Runner.Check(ctx, client.Request{
		Name:       name,
		Method:     http.MethodPost,
		Path:       "/conversation/generate",
		ExpectKeys: []string{"messages"},
		Timed:      true,
		Timeout:    e.Config.GenerationTimeout,
	})
	if !ok {
		return dto.Conversation{}, errors.Errorf("%s: no conversation generated", name)
	}
	var conv dto.Conversation
	if err := body.Decode(&conv); err != nil {
		return dto.Conversation{}, err
	}
	return conv, nil
}

// speakers returns the agent ids and names that appear in conv.
func speakers(conv dto.Conversation) (ids, names []string) {
	for _, m := range conv.Messages {
		ids = append(ids, m.AgentID)
		names = append(names, m.AgentName)
	}
	return ids, names
}

// everyAgentSpoke asserts each agent contributed at least one message.
func (e *Env) everyAgentSpoke(label string, conv dto.Conversation, agents []dto.Agent) {
	ids, names := speakers(conv)
	var silent []string
	for _, a := range agents {
		if !slices.Contains(ids, a.ID) && !slices.Contains(names, a.Name) {
			silent = append(silent, a.Name)
		}
	}
	e.Runner.Assert(label, len(silent) == 0, fmt.Sprintf("agents without a message: %v", silent))
}

func conversationSteps() []Step {
	var (
		agents  []dto.Agent
		conv    dto.Conversation
		started bool
	)

	return []Step{
		{
			Name: "generation requires auth",
			Run: func(ctx context.Context, env *Env) error {
				env.forbidsAnonymous(ctx, client.Request{Method: http.MethodPost, Path: "/conversation/generate"})
				return nil
			},
		},
		{
			Name: "fewer than two agents refused",
			Run: func(ctx context.Context, env *Env) error {
				s, err := env.Auth.Register(ctx)
				if err != nil {
					return err
				}
				lonely := env.as(s)
				if !lonely.transition(ctx, "start", true) {
					return errors.New("could not start the simulation for a caller without agents")
				}
				defer lonely.transition(ctx, "pause", false)
				lonely.Runner.Check(ctx, client.Request{
					Name:         "generate with no agents is 400",
					Method:       http.MethodPost,
					Path:         "/conversation/generate",
					ExpectStatus: http.StatusBadRequest,
				})
				only, err := lonely.createAgent(ctx, env.Factory.Agent())
				if err != nil {
					return err
				}
				lonely.Runner.Check(ctx, client.Request{
					Name:         "generate with one agent is 400",
					Method:       http.MethodPost,
					Path:         "/conversation/generate",
					ExpectStatus: http.StatusBadRequest,
				})
				lonely.cleanupAgents(ctx, []dto.Agent{only})
				return nil
			},
		},
		{
			Name: "every agent speaks",
			Run: func(ctx context.Context, env *Env) error {
				var err error
				if agents, err = env.createAgents(ctx, env.Factory.Agents(3)); err != nil {
					return err
				}
				if started = env.transition(ctx, "start", true); !started {
					return errors.New("simulation did not start")
				}
				if conv, err = env.generate(ctx, "generate conversation"); err != nil {
					return err
				}
				env.everyAgentSpoke("every agent speaks in the round", conv, agents)
				env.Runner.Assert("round has messages", len(conv.Messages) >= len(agents),
					fmt.Sprintf("%d messages for %d agents", len(conv.Messages), len(agents)))
				env.ownedByCaller("conversation owned by caller", conv.UserID)
				return nil
			},
		},
		{
			Name: "conversation persisted",
			Run: func(ctx context.Context, env *Env) error {
				convs, err := env.conversations(ctx, "list conversations")
				if err != nil {
					return err
				}
				found := slices.ContainsFunc(convs, func(c dto.Conversation) bool { return c.ID == conv.ID })
				env.Runner.Assert("generated conversation listed", conv.ID != "" && found,
					fmt.Sprintf("conversation %q not among %d listed", conv.ID, len(convs)))
				return nil
			},
		},
		{
			Name:   "cleanup",
			Always: true,
			Run: func(ctx context.Context, env *Env) error {
				if started {
					env.transition(ctx, "pause", false)
				}
				env.cleanupAgents(ctx, agents)
				return nil
			},
		},
	}
}
