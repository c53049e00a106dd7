package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/common"
)

func validSpec() AgentSpec {
	return AgentSpec{
		Name:        "Dr. Ada",
		Archetype:   "scientist",
		Personality: Personality{Extroversion: 4, Optimism: 6, Curiosity: 9, Cooperativeness: 7, Energy: 5},
		Goal:        "Decode the signal",
		Expertise:   "Radio astronomy",
		Background:  "Former observatory lead",
	}
}

func TestAgentSpecValidation(t *testing.T) {
	require.NoError(t, common.Validate.Struct(validSpec()))

	bad := validSpec()
	bad.Archetype = "wizard"
	require.Error(t, common.Validate.Struct(bad))

	bad = validSpec()
	bad.Personality.Energy = 0
	require.Error(t, common.Validate.Struct(bad))

	bad = validSpec()
	bad.Goal = ""
	require.Error(t, common.Validate.Struct(bad))
}

func TestArchetypeVocabularyMatchesTag(t *testing.T) {
	for _, archetype := range Archetypes {
		spec := validSpec()
		spec.Archetype = archetype
		require.NoError(t, common.Validate.Struct(spec), archetype)
	}
}

func TestAgentFlattensSpec(t *testing.T) {
	raw, err := json.Marshal(Agent{AgentSpec: validSpec(), ID: "a1", UserID: "u1"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "Dr. Ada", decoded["name"])
	require.Equal(t, "u1", decoded["user_id"])
	require.Contains(t, decoded, "personality")
	require.NotContains(t, decoded, "avatar_prompt")
}

func TestSavedAgentCarriesFavorite(t *testing.T) {
	raw, err := json.Marshal(SavedAgent{Agent: Agent{AgentSpec: validSpec(), ID: "s1"}, IsFavorite: true})
	require.NoError(t, err)
	require.Contains(t, string(raw), `"is_favorite":true`)
}
