package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/image"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/middleware"
	"github.com/agentsim/simcheck/model"
)

// avatarFor renders an inline avatar for prompt. Provider outages and empty prompts yield "".
func avatarFor(c *gin.Context, prompt string) string {
	if strings.TrimSpace(prompt) == "" || config.RefServerFailProviders {
		return ""
	}
	url, err := image.RenderAvatarDataURL(prompt)
	if err != nil {
		gmw.GetLogger(c).Warn("avatar rendering failed", zap.Error(err))
		return ""
	}
	return url
}

func CreateAgent(c *gin.Context) {
	var spec dto.AgentSpec
	if !bindJSON(c, &spec) {
		return
	}

	agent := model.NewAgent(middleware.UserID(c), spec)
	agent.AvatarURL = avatarFor(c, spec.AvatarPrompt)
	if err := model.CreateAgent(gmw.Ctx(c), agent); err != nil {
		abortWithStoreError(c, err, "agent")
		return
	}
	c.JSON(http.StatusOK, agent.ToDTO())
}

func GetAgents(c *gin.Context) {
	agents, err := model.ListAgents(gmw.Ctx(c), middleware.UserID(c))
	if err != nil {
		abortWithStoreError(c, err, "agents")
		return
	}
	out := make([]dto.Agent, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.ToDTO())
	}
	c.JSON(http.StatusOK, out)
}

func GetAgent(c *gin.Context) {
	agent, err := model.GetAgent(gmw.Ctx(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		abortWithStoreError(c, err, "agent")
		return
	}
	c.JSON(http.StatusOK, agent.ToDTO())
}

// UpdateAgent replaces an agent; every mandatory field must be present.
func UpdateAgent(c *gin.Context) {
	var spec dto.AgentSpec
	if !bindJSON(c, &spec) {
		return
	}

	agent, err := model.UpdateAgent(gmw.Ctx(c), middleware.UserID(c), c.Param("id"), spec, avatarFor(c, spec.AvatarPrompt))
	if err != nil {
		abortWithStoreError(c, err, "agent")
		return
	}
	c.JSON(http.StatusOK, agent.ToDTO())
}

func DeleteAgent(c *gin.Context) {
	if err := model.DeleteAgent(gmw.Ctx(c), middleware.UserID(c), c.Param("id")); err != nil {
		abortWithStoreError(c, err, "agent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Agent deleted successfully"})
}

// BulkDeleteAgents serves both bulk endpoints; the body is either a bare array
// of ids or {"agent_ids": [...]}.
func BulkDeleteAgents(c *gin.Context) {
	ids, err := decodeAgentIDs(c.Request.Body)
	if err != nil {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, err)
		return
	}
	bulkDelete(c, ids)
}

func decodeAgentIDs(r io.Reader) ([]string, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	var ids []string
	if err = json.Unmarshal(body, &ids); err == nil {
		return ids, nil
	}
	var req dto.BulkDeleteRequest
	if err = json.Unmarshal(body, &req); err != nil {
		return nil, errors.New("expected a list of agent ids or {\"agent_ids\": [...]}")
	}
	return req.AgentIDs, nil
}

func bulkDelete(c *gin.Context, ids []string) {
	n, err := model.BulkDeleteAgents(gmw.Ctx(c), middleware.UserID(c), ids)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			middleware.AbortWithError(c, http.StatusNotFound, errors.New("one or more agents not found"))
			return
		}
		abortWithStoreError(c, err, "agents")
		return
	}
	c.JSON(http.StatusOK, dto.BulkDeleteResponse{
		Message:      "Agents deleted successfully",
		DeletedCount: n,
	})
}
