package controller

import (
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/middleware"
	"github.com/agentsim/simcheck/model"
)

// GenerateConversation produces one round in which every agent speaks once.
func GenerateConversation(c *gin.Context) {
	agents, ok := requireAgents(c, 2)
	if !ok {
		return
	}
	state, ok := loadActiveState(c)
	if !ok {
		return
	}

	conv := newConversation(state)
	existing, err := model.ListConversations(gmw.Ctx(c), state.UserID)
	if err != nil {
		abortWithStoreError(c, err, "conversations")
		return
	}
	conv.Messages = composeRound(agents, state, "", len(existing))
	if err = model.CreateConversation(gmw.Ctx(c), conv); err != nil {
		abortWithStoreError(c, err, "conversation")
		return
	}
	c.JSON(http.StatusOK, conv.ToDTO())
}

func GetConversations(c *gin.Context) {
	convs, err := model.ListConversations(gmw.Ctx(c), middleware.UserID(c))
	if err != nil {
		abortWithStoreError(c, err, "conversations")
		return
	}
	out := make([]dto.Conversation, 0, len(convs))
	for _, conv := range convs {
		out = append(out, conv.ToDTO())
	}
	c.JSON(http.StatusOK, out)
}

// SendObserverMessage stores the prompt and answers it with a dedicated conversation
// whose first message is the observer's own.
func SendObserverMessage(c *gin.Context) {
	var req dto.ObserverRequest
	if !decodeJSON(c, &req) {
		return
	}
	prompt := strings.TrimSpace(req.ObserverMessage)
	if prompt == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.New("Observer message must not be empty"))
		return
	}
	agents, ok := requireAgents(c, 1)
	if !ok {
		return
	}
	state, ok := loadActiveState(c)
	if !ok {
		return
	}

	conv := newConversation(state)
	conv.ScenarioName = dto.ObserverScenarioName
	conv.Messages = composeRound(agents, state, prompt, 0)
	msg := &model.ObserverMessage{Message: prompt}
	if err := model.RecordObserverExchange(gmw.Ctx(c), msg, conv); err != nil {
		abortWithStoreError(c, err, "observer message")
		return
	}

	c.JSON(http.StatusOK, dto.ObserverResponse{
		Message:         "Observer message sent",
		ObserverMessage: msg.ToDTO(),
		AgentResponses:  conv.ToDTO(),
	})
}

func GetObserverMessages(c *gin.Context) {
	msgs, err := model.ListObserverMessages(gmw.Ctx(c), middleware.UserID(c))
	if err != nil {
		abortWithStoreError(c, err, "observer messages")
		return
	}
	out := make([]dto.ObserverMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ToDTO())
	}
	c.JSON(http.StatusOK, out)
}
