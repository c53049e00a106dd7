package dto

import "time"

// Archetypes is the closed archetype vocabulary accepted by agent creation.
var Archetypes = []string{
	"scientist",
	"leader",
	"skeptic",
	"optimist",
	"artist",
	"researcher",
	"introvert",
	"mediator",
	"adventurer",
}

// Personality holds the five traits; all of them are always sent together.
type Personality struct {
	Extroversion    int `json:"extroversion" validate:"min=1,max=10"`
	Optimism        int `json:"optimism" validate:"min=1,max=10"`
	Curiosity       int `json:"curiosity" validate:"min=1,max=10"`
	Cooperativeness int `json:"cooperativeness" validate:"min=1,max=10"`
	Energy          int `json:"energy" validate:"min=1,max=10"`
}

// AgentSpec is the creation and update payload of an agent.
type AgentSpec struct {
	Name         string      `json:"name" validate:"required,max=120"`
	Archetype    string      `json:"archetype" validate:"required,oneof=scientist leader skeptic optimist artist researcher introvert mediator adventurer"`
	Personality  Personality `json:"personality" validate:"required"`
	Goal         string      `json:"goal" validate:"required,max=500"`
	Expertise    string      `json:"expertise" validate:"required,max=500"`
	Background   string      `json:"background" validate:"required,max=1000"`
	AvatarPrompt string      `json:"avatar_prompt,omitempty" validate:"max=500"`
}

// Agent is an agent as returned by the agent endpoints.
type Agent struct {
	AgentSpec
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedAgentSpec is the creation and update payload of a saved agent.
type SavedAgentSpec struct {
	AgentSpec
	IsFavorite bool `json:"is_favorite"`
}

// SavedAgent is an entry of the caller's saved-agent library.
type SavedAgent struct {
	Agent
	IsFavorite bool `json:"is_favorite"`
}

// BulkDeleteRequest is the object form accepted by POST /agents/bulk-delete.
type BulkDeleteRequest struct {
	AgentIDs []string `json:"agent_ids"`
}

// BulkDeleteResponse reports how many agents were removed.
type BulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}

// ArchetypeInfo describes one entry of GET /archetypes.
type ArchetypeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
