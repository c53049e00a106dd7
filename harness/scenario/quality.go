package scenario

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/analyzer"
)

// Quality generates several rounds and holds their text to the analyzer thresholds.
func Quality() Scenario {
	return Scenario{
		Name:        "quality",
		Description: "generated rounds meet completion, cut-off, narration and length targets and show collaboration",
		Steps:       qualitySteps,
	}
}

// utterances converts a conversation into analyzer input.
func utterances(conv dto.Conversation) []analyzer.Utterance {
	out := make([]analyzer.Utterance, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		out = append(out, analyzer.Utterance{Speaker: m.AgentName, Text: m.Message})
	}
	return out
}

// recordChecks turns threshold checks into ledger assertions.
func (e *Env) recordChecks(checks []analyzer.Check) {
	for _, c := range checks {
		detail := ""
		if !c.OK {
			detail = c.Violation.String()
		}
		e.Runner.Assert(c.Name, c.OK, detail)
	}
}

func qualitySteps() []Step {
	var (
		agents  []dto.Agent
		rounds  [][]analyzer.Utterance
		started bool
	)

	return []Step{
		{
			Name: "create participants",
			Run: func(ctx context.Context, env *Env) error {
				var err error
				if agents, err = env.createAgents(ctx, env.Factory.Agents(3)); err != nil {
					return err
				}
				if started = env.transition(ctx, "start", true); !started {
					return errors.New("simulation did not start")
				}
				return nil
			},
		},
		{
			Name: "generate rounds",
			Run: func(ctx context.Context, env *Env) error {
				for i := 1; i <= env.Config.GenerationRounds; i++ {
					conv, err := env.generate(ctx, fmt.Sprintf("generate round %d", i))
					if err != nil {
						continue
					}
					rounds = append(rounds, utterances(conv))
				}
				if len(rounds) == 0 {
					return errors.New("no round could be generated")
				}
				return nil
			},
		},
		{
			Name: "text quality",
			Run: func(ctx context.Context, env *Env) error {
				var texts []string
				for _, round := range rounds {
					for _, u := range round {
						if u.Speaker != dto.ObserverName {
							texts = append(texts, u.Text)
						}
					}
				}
				stats, _ := analyzer.Aggregate(texts, env.Thresholds.Band)
				env.Logger.Info("utterance stats",
					zap.Int("utterances", stats.Total),
					zap.Float64("avg_words", stats.AvgWords),
					zap.Int("min_words", stats.MinWords),
					zap.Int("max_words", stats.MaxWords),
					zap.Float64("complete_rate", stats.CompleteRate))
				env.recordChecks(env.Thresholds.EvaluateStats(stats))
				return nil
			},
		},
		{
			Name: "collaboration",
			Run: func(ctx context.Context, env *Env) error {
				collab := analyzer.AnalyzeCollaboration(rounds, dto.ObserverName)
				env.Logger.Info("collaboration",
					zap.Int("messages", collab.Messages),
					zap.Float64("mention_rate", collab.MentionRate),
					zap.Float64("build_on_rate", collab.BuildOnRate),
					zap.Int("exchanges", collab.Exchanges))
				env.recordChecks(env.Thresholds.EvaluateCollaboration(collab))
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
