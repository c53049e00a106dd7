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

// Observer covers observer prompts: echo, per-agent responses, persistence and deduplication.
func Observer() Scenario {
	return Scenario{
		Name:        "observer",
		Description: "observer prompt echoed first, one response per agent, persisted once, empty and anonymous refused",
		Steps:       observerSteps,
	}
}

func (e *Env) sendObserver(ctx context.Context, prompt string) (dto.ObserverResponse, error) {
	ok, body := e.Runner.Check(ctx, client.Request{
		Name:       fmt.Sprintf("observer prompt %q", prompt),
		Method:     http.MethodPost,
		Path:       "/observer/send-message",
		Body:       dto.ObserverRequest{ObserverMessage: prompt},
		ExpectKeys: []string{"agent_responses"},
		Timed:      true,
		Timeout:    e.Config.GenerationTimeout,
	})
	if !ok {
		return dto.ObserverResponse{}, errors.Errorf("observer prompt %q not answered", prompt)
	}
	var resp dto.ObserverResponse
	if err := body.Decode(&resp); err != nil {
		return dto.ObserverResponse{}, err
	}
	return resp, nil
}

// checkObserverRound asserts the observer message leads the round and each agent answers once.
func (e *Env) checkObserverRound(prompt string, conv dto.Conversation, agents []dto.Agent) {
	first := dto.Message{}
	if len(conv.Messages) > 0 {
		first = conv.Messages[0]
	}
	e.Runner.Assert("first message is the observer's", first.AgentName == dto.ObserverName,
		fmt.Sprintf("first speaker %q", first.AgentName))
	e.Runner.Assert("observer message echoed verbatim", first.Message == prompt,
		fmt.Sprintf("first message %q", first.Message))
	e.Runner.Assert("observer round labelled", conv.ScenarioName == dto.ObserverScenarioName,
		fmt.Sprintf("scenario_name %q", conv.ScenarioName))

	counts := map[string]int{}
	for _, m := range conv.Messages {
		counts[m.AgentID]++
	}
	var wrong []string
	for _, a := range agents {
		if n := counts[a.ID]; n != 1 {
			wrong = append(wrong, fmt.Sprintf("%s spoke %d times", a.Name, n))
		}
	}
	e.Runner.Assert("one response per agent", len(wrong) == 0, fmt.Sprintf("%v", wrong))
}

// observerRounds counts the observer-led conversations opened by prompt.
func observerRounds(convs []dto.Conversation, prompt string) int {
	n := 0
	for _, c := range convs {
		if c.ScenarioName == dto.ObserverScenarioName && len(c.Messages) > 0 && c.Messages[0].Message == prompt {
			n++
		}
	}
	return n
}

// storedPrompts counts the stored observer messages whose text is prompt.
func storedPrompts(msgs []dto.ObserverMessage, prompt string) int {
	n := 0
	for _, m := range msgs {
		if m.Message == prompt {
			n++
		}
	}
	return n
}

func observerSteps() []Step {
	var (
		agents     []dto.Agent
		prompts    = factory.ObserverPrompts()[:2]
		responses  []dto.ObserverResponse
		started    bool
		baseRounds = map[string]int{}
		baseStored = map[string]int{}
	)

	return []Step{
		{
			Name: "observer requires auth",
			Run: func(ctx context.Context, env *Env) error {
				env.forbidsAnonymous(ctx, client.Request{
					Method: http.MethodPost,
					Path:   "/observer/send-message",
					Body:   dto.ObserverRequest{ObserverMessage: prompts[0]},
				})
				return nil
			},
		},
		{
			Name: "empty prompt refused",
			Run: func(ctx context.Context, env *Env) error {
				for _, blank := range []string{"", "   "} {
					env.Runner.Check(ctx, client.Request{
						Name:         fmt.Sprintf("observer prompt %q is 400", blank),
						Method:       http.MethodPost,
						Path:         "/observer/send-message",
						Body:         dto.ObserverRequest{ObserverMessage: blank},
						ExpectStatus: http.StatusBadRequest,
					})
				}
				return nil
			},
		},
		{
			Name: "create participants",
			Run: func(ctx context.Context, env *Env) error {
				var err error
				if agents, err = env.createAgents(ctx, env.Factory.Agents(2)); err != nil {
					return err
				}
				if started = env.transition(ctx, "start", true); !started {
					return errors.New("simulation did not start")
				}
				return nil
			},
		},
		{
			Name: "observer history before prompting",
			Run: func(ctx context.Context, env *Env) error {
				convs, err := env.conversations(ctx, "list conversations before prompting")
				if err != nil {
					return err
				}
				msgs, err := env.observerMessages(ctx, "list observer messages before prompting")
				if err != nil {
					return err
				}
				for _, p := range prompts {
					baseRounds[p] = observerRounds(convs, p)
					baseStored[p] = storedPrompts(msgs, p)
				}
				return nil
			},
		},
		{
			Name: "prompts answered",
			Run: func(ctx context.Context, env *Env) error {
				for _, p := range prompts {
					resp, err := env.sendObserver(ctx, p)
					if err != nil {
						return err
					}
					env.checkObserverRound(p, resp.AgentResponses, agents)
					responses = append(responses, resp)
				}
				a, b := responses[0].AgentResponses.ID, responses[1].AgentResponses.ID
				env.Runner.Assert("consecutive prompts create distinct conversations", a != "" && a != b,
					fmt.Sprintf("conversation ids %q and %q", a, b))
				return nil
			},
		},
		{
			Name: "prompts persisted once",
			Run: func(ctx context.Context, env *Env) error {
				msgs, err := env.observerMessages(ctx, "list observer messages")
				if err != nil {
					return err
				}
				convs, err := env.conversations(ctx, "list conversations")
				if err != nil {
					return err
				}
				for _, p := range prompts {
					n := storedPrompts(msgs, p) - baseStored[p]
					env.Runner.Assert(fmt.Sprintf("observer message %q stored once", p), n == 1,
						fmt.Sprintf("%d new copies", n))
					n = observerRounds(convs, p) - baseRounds[p]
					env.Runner.Assert(fmt.Sprintf("observer round for %q listed once", p), n == 1,
						fmt.Sprintf("%d new %q conversations led by it", n, dto.ObserverScenarioName))
				}
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
