package controller

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/graceful"
	"github.com/agentsim/simcheck/dto"
)

var archetypeDescriptions = map[string]string{
	"scientist":  "Analytical and methodical, trusts data over intuition.",
	"leader":     "Decisive and organised, keeps the group moving toward a goal.",
	"skeptic":    "Questions assumptions and asks for evidence before agreeing.",
	"optimist":   "Sees opportunity in setbacks and keeps morale high.",
	"artist":     "Creative and expressive, offers unconventional angles.",
	"researcher": "Thorough and curious, digs into details others skip.",
	"introvert":  "Quiet and reflective, speaks up with well-considered points.",
	"mediator":   "Balances viewpoints and looks for common ground.",
	"adventurer": "Bold and energetic, eager to explore the unknown.",
}

// GetArchetypes returns the archetype vocabulary keyed by archetype name.
func GetArchetypes(c *gin.Context) {
	out := make(map[string]dto.ArchetypeInfo, len(dto.Archetypes))
	for _, name := range dto.Archetypes {
		out[name] = dto.ArchetypeInfo{Name: name, Description: archetypeDescriptions[name]}
	}
	c.JSON(http.StatusOK, out)
}

var randomScenarios = []dto.ScenarioRequest{
	{
		ScenarioName: "Deep Space Signal Discovery",
		Scenario:     "A team of researchers discovers an unexpected signal from deep space and must decide how to respond.",
	},
	{
		ScenarioName: "Island Supply Crisis",
		Scenario:     "A storm has cut a remote island off from the mainland and the community must ration supplies for two weeks.",
	},
	{
		ScenarioName: "Startup Pivot",
		Scenario:     "A small startup learns its main product is obsolete and has one month to choose a new direction.",
	},
	{
		ScenarioName: "Museum Night Shift",
		Scenario:     "A rare artifact goes missing during a museum night shift and the staff must work out what happened before morning.",
	},
	{
		ScenarioName: "City Water Shortage",
		Scenario:     "A growing city faces a summer water shortage and its council must agree on a fair plan.",
	},
}

func GetRandomScenario(c *gin.Context) {
	c.JSON(http.StatusOK, randomScenarios[rand.Intn(len(randomScenarios))])
}

// GetStatus reports liveness; it answers 503 while the server drains.
func GetStatus(c *gin.Context) {
	if graceful.IsDraining() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "draining"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"in_flight": graceful.InFlight(),
	})
}
