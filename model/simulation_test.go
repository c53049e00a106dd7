package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/dto"
)

func savedSpec(name string, favorite bool) dto.SavedAgentSpec {
	return dto.SavedAgentSpec{AgentSpec: testSpec(name), IsFavorite: favorite}
}

func TestStateAdvance(t *testing.T) {
	state := &SimulationState{CurrentDay: 1, TimePeriod: "morning"}
	state.Advance()
	require.Equal(t, "afternoon", state.TimePeriod)
	state.Advance()
	state.Advance()
	require.Equal(t, 2, state.CurrentDay)
	require.Equal(t, "morning", state.TimePeriod)

	state.TimePeriod = "midnight"
	state.Advance()
	require.Equal(t, "morning", state.TimePeriod)
}

func TestGetStateCreatesDefault(t *testing.T) {
	ctx := context.Background()
	owner := newTestUser(t)

	state, err := GetState(ctx, owner.ID)
	require.NoError(t, err)
	require.False(t, state.IsActive)
	require.Equal(t, 1, state.CurrentDay)

	again, err := GetState(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, state.ID, again.ID)
}

func TestResetUser(t *testing.T) {
	ctx := context.Background()
	owner := newTestUser(t)
	other := &User{ID: "other-" + owner.ID}

	state, err := GetState(ctx, owner.ID)
	require.NoError(t, err)
	state.IsActive = true
	state.Scenario = "A signal"
	state.ScenarioName = "Signal"
	require.NoError(t, SaveState(ctx, state))

	require.NoError(t, CreateAgent(ctx, NewAgent(owner.ID, testSpec("A"))))
	require.NoError(t, CreateAgent(ctx, NewAgent(other.ID, testSpec("B"))))
	conv := &Conversation{UserID: owner.ID, Messages: []dto.Message{{AgentName: "A", Message: "Hello."}}}
	require.NoError(t, CreateConversation(ctx, conv))
	require.Equal(t, 1, conv.RoundNumber)
	require.NoError(t, RecordObserverExchange(ctx, &ObserverMessage{Message: "Focus."}, &Conversation{UserID: owner.ID}))

	reset, err := ResetUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, state.ID, reset.ID)
	require.False(t, reset.IsActive)
	require.Empty(t, reset.Scenario)

	agents, err := ListAgents(ctx, owner.ID)
	require.NoError(t, err)
	require.Empty(t, agents)
	convs, err := ListConversations(ctx, owner.ID)
	require.NoError(t, err)
	require.Empty(t, convs)
	msgs, err := ListObserverMessages(ctx, owner.ID)
	require.NoError(t, err)
	require.Empty(t, msgs)

	others, err := ListAgents(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
}

func TestObserverExchangeRounds(t *testing.T) {
	ctx := context.Background()
	owner := newTestUser(t)

	for i := 0; i < 2; i++ {
		msg := &ObserverMessage{Message: "Prompt"}
		conv := &Conversation{UserID: owner.ID, ScenarioName: dto.ObserverScenarioName}
		require.NoError(t, RecordObserverExchange(ctx, msg, conv))
		require.Equal(t, conv.ID, msg.ConversationID)
		require.Equal(t, i+1, conv.RoundNumber)
	}

	convs, err := ListConversations(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	require.NotEqual(t, convs[0].ID, convs[1].ID)
	require.NotNil(t, convs[0].ToDTO().Messages)
}
