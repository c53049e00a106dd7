package dto

import "time"

// ObserverName labels the observer's own message inside a conversation.
const ObserverName = "Observer (You)"

// ObserverScenarioName labels conversations created by observer prompts.
const ObserverScenarioName = "Observer Guidance"

// Message is one utterance of a conversation.
type Message struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Message   string `json:"message"`
	Mood      string `json:"mood"`
}

// Conversation is a generated round of messages.
type Conversation struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RoundNumber  int       `json:"round_number"`
	TimePeriod   string    `json:"time_period"`
	Scenario     string    `json:"scenario"`
	ScenarioName string    `json:"scenario_name"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
}

// ObserverRequest is the body of POST /observer/send-message.
type ObserverRequest struct {
	ObserverMessage string `json:"observer_message" validate:"required"`
}

// ObserverMessage is a persisted observer prompt.
type ObserverMessage struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Message        string    `json:"message"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// ObserverResponse is returned by POST /observer/send-message.
type ObserverResponse struct {
	Message         string          `json:"message"`
	ObserverMessage ObserverMessage `json:"observer_message"`
	AgentResponses  Conversation    `json:"agent_responses"`
}
