package dto

// SimulationState is the caller's simulation state.
type SimulationState struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	IsActive     bool   `json:"is_active"`
	CurrentDay   int    `json:"current_day"`
	TimePeriod   string `json:"time_period"`
	Scenario     string `json:"scenario"`
	ScenarioName string `json:"scenario_name"`
}

// ScenarioRequest is the body of POST /simulation/set-scenario and the shape of a random scenario.
type ScenarioRequest struct {
	Scenario     string `json:"scenario" validate:"required"`
	ScenarioName string `json:"scenario_name" validate:"required"`
}

// FastForwardRequest is the body of POST /simulation/fast-forward.
type FastForwardRequest struct {
	TargetDays             int `json:"target_days" validate:"min=1,max=30"`
	ConversationsPerPeriod int `json:"conversations_per_period" validate:"min=1,max=5"`
}

// FastForwardResponse summarises a fast-forward run.
type FastForwardResponse struct {
	Message              string          `json:"message"`
	DaysAdvanced         int             `json:"days_advanced"`
	ConversationsCreated int             `json:"conversations_created"`
	State                SimulationState `json:"state"`
}

// ResetResponse acknowledges a fresh-start reset.
type ResetResponse struct {
	Message string          `json:"message"`
	State   SimulationState `json:"state"`
}
