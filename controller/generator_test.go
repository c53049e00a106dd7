package controller

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/analyzer"
	"github.com/agentsim/simcheck/model"
)

func roundAgents() []*model.Agent {
	specs := []dto.AgentSpec{
		{Name: "Dr. Ada Vega", Archetype: "scientist", Goal: "Decode the signal.", Expertise: "Radio Astronomy", Background: "Ran the array for a decade"},
		{Name: "Marcus Hale", Archetype: "leader", Goal: "Keep the team aligned", Expertise: "Crisis management", Background: "Former mission commander"},
		{Name: "Iris Blum", Archetype: "skeptic", Goal: "Rule out instrument error", Expertise: "Signal processing", Background: "Spent years debunking false positives"},
	}
	agents := make([]*model.Agent, 0, len(specs))
	for _, s := range specs {
		agents = append(agents, model.NewAgent("u1", s))
	}
	return agents
}

func TestComposeRoundMeetsQualityTargets(t *testing.T) {
	state := &model.SimulationState{UserID: "u1", TimePeriod: "morning", ScenarioName: "Deep Space Signal Discovery"}

	var texts []string
	var rounds [][]analyzer.Utterance
	for round := 0; round < 5; round++ {
		messages := composeRound(roundAgents(), state, "", round)
		require.Len(t, messages, 3)

		var utterances []analyzer.Utterance
		for _, m := range messages {
			texts = append(texts, m.Message)
			utterances = append(utterances, analyzer.Utterance{Speaker: m.AgentName, Text: m.Message})
			require.NotEmpty(t, m.Mood)
		}
		rounds = append(rounds, utterances)
	}

	stats, analyses := analyzer.Aggregate(texts, analyzer.DefaultBand)
	for i, a := range analyses {
		require.True(t, a.Complete, texts[i])
		require.False(t, a.Narration, texts[i])
		require.GreaterOrEqual(t, a.Words, minUtteranceWords, texts[i])
		require.LessOrEqual(t, a.Words, maxUtteranceWords, texts[i])
	}
	require.Empty(t, analyzer.Violations(analyzer.DefaultThresholds().EvaluateStats(stats)))

	collab := analyzer.AnalyzeCollaboration(rounds, dto.ObserverName)
	require.Equal(t, 1.0, collab.MentionRate)
	require.Greater(t, collab.BuildOnRate, 0.5)
	require.Equal(t, 5, collab.Exchanges)
}

func TestComposeRoundWithObserverPrompt(t *testing.T) {
	state := &model.SimulationState{UserID: "u1", TimePeriod: "evening"}
	messages := composeRound(roundAgents()[:2], state, "Focus on safety first", 0)

	require.Len(t, messages, 3)
	require.Equal(t, dto.ObserverName, messages[0].AgentName)
	require.Equal(t, "Focus on safety first", messages[0].Message)
	require.Contains(t, messages[1].Message, "observer")
}

func TestSentence(t *testing.T) {
	require.Equal(t, "Decode the signal.", sentence("Decode the signal..."))
	require.Equal(t, "Wave hello.", sentence("*Wave* hello"))
	require.Empty(t, sentence(" ; "))
	require.False(t, strings.HasSuffix(sentence("ok,"), ",."))
}
