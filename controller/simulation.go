package controller

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/helper"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/middleware"
	"github.com/agentsim/simcheck/model"
)

func loadState(c *gin.Context) (*model.SimulationState, bool) {
	state, err := model.GetState(gmw.Ctx(c), middleware.UserID(c))
	if err != nil {
		abortWithStoreError(c, err, "simulation state")
		return nil, false
	}
	return state, true
}

func GetSimulationState(c *gin.Context) {
	state, ok := loadState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, state.ToDTO())
}

// setActive backs start, pause and resume.
func setActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadState(c)
		if !ok {
			return
		}
		state.IsActive = active
		if err := model.SaveState(gmw.Ctx(c), state); err != nil {
			abortWithStoreError(c, err, "simulation state")
			return
		}
		c.JSON(http.StatusOK, state.ToDTO())
	}
}

var (
	StartSimulation  = setActive(true)
	PauseSimulation  = setActive(false)
	ResumeSimulation = setActive(true)
)

// ResetSimulation clears the caller's agents, conversations, observer messages and scenario.
func ResetSimulation(c *gin.Context) {
	start := time.Now()
	state, err := model.ResetUser(gmw.Ctx(c), middleware.UserID(c))
	if err != nil {
		abortWithStoreError(c, err, "simulation")
		return
	}
	gmw.GetLogger(c).Info("simulation reset",
		zap.String("user_id", state.UserID),
		zap.Int64("elapsed_ms", helper.CalcElapsedTime(start)))
	c.JSON(http.StatusOK, dto.ResetResponse{
		Message: "Simulation reset successfully",
		State:   state.ToDTO(),
	})
}

// SetScenario installs a scenario; blank text or name is a 400.
func SetScenario(c *gin.Context) {
	var req dto.ScenarioRequest
	if !decodeJSON(c, &req) {
		return
	}
	req.Scenario = strings.TrimSpace(req.Scenario)
	req.ScenarioName = strings.TrimSpace(req.ScenarioName)
	if req.Scenario == "" || req.ScenarioName == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.New("Scenario text and name must not be empty"))
		return
	}

	state, ok := loadState(c)
	if !ok {
		return
	}
	state.Scenario = req.Scenario
	state.ScenarioName = req.ScenarioName
	if err := model.SaveState(gmw.Ctx(c), state); err != nil {
		abortWithStoreError(c, err, "simulation state")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Scenario updated successfully",
		"scenario":      state.Scenario,
		"scenario_name": state.ScenarioName,
	})
}

// FastForward generates conversations_per_period rounds for every period of target_days days.
func FastForward(c *gin.Context) {
	var req dto.FastForwardRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := gmw.Ctx(c)
	agents, ok := requireAgents(c, 2)
	if !ok {
		return
	}
	state, ok := loadState(c)
	if !ok {
		return
	}

	created := 0
	startDay := state.CurrentDay
	for state.CurrentDay < startDay+req.TargetDays {
		for i := 0; i < req.ConversationsPerPeriod; i++ {
			conv := newConversation(state)
			conv.Messages = composeRound(agents, state, "", created+i)
			if err := model.CreateConversation(ctx, conv); err != nil {
				abortWithStoreError(c, err, "conversation")
				return
			}
		}
		created += req.ConversationsPerPeriod
		state.Advance()
	}
	if err := model.SaveState(ctx, state); err != nil {
		abortWithStoreError(c, err, "simulation state")
		return
	}

	c.JSON(http.StatusOK, dto.FastForwardResponse{
		Message:              fmt.Sprintf("Fast-forwarded %d days", req.TargetDays),
		DaysAdvanced:         state.CurrentDay - startDay,
		ConversationsCreated: created,
		State:                state.ToDTO(),
	})
}

// loadActiveState is loadState that aborts with 400 while the simulation is paused or not started.
func loadActiveState(c *gin.Context) (*model.SimulationState, bool) {
	state, ok := loadState(c)
	if !ok {
		return nil, false
	}
	if !state.IsActive {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.New("Simulation is not active"))
		return nil, false
	}
	return state, true
}

// requireAgents loads the caller's agents and aborts with 400 when fewer than least exist.
func requireAgents(c *gin.Context, least int) ([]*model.Agent, bool) {
	agents, err := model.ListAgents(gmw.Ctx(c), middleware.UserID(c))
	if err != nil {
		abortWithStoreError(c, err, "agents")
		return nil, false
	}
	if len(agents) < least {
		middleware.AbortWithError(c, http.StatusBadRequest,
			errors.Errorf("At least %d agents are required, found %d", least, len(agents)))
		return nil, false
	}
	return agents, true
}

func newConversation(state *model.SimulationState) *model.Conversation {
	return &model.Conversation{
		UserID:       state.UserID,
		TimePeriod:   state.TimePeriod,
		Scenario:     state.Scenario,
		ScenarioName: state.ScenarioName,
	}
}
