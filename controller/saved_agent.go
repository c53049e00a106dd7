package controller

import (
	"net/http"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/middleware"
	"github.com/agentsim/simcheck/model"
)

func GetSavedAgents(c *gin.Context) {
	saved, err := model.ListSavedAgents(gmw.Ctx(c), middleware.UserID(c))
	if err != nil {
		abortWithStoreError(c, err, "saved agents")
		return
	}
	out := make([]dto.SavedAgent, 0, len(saved))
	for _, s := range saved {
		out = append(out, s.ToDTO())
	}
	c.JSON(http.StatusOK, out)
}

func CreateSavedAgent(c *gin.Context) {
	var spec dto.SavedAgentSpec
	if !bindJSON(c, &spec) {
		return
	}

	saved, err := model.NewSavedAgent(middleware.UserID(c), spec)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	saved.AvatarURL = avatarFor(c, spec.AvatarPrompt)
	if err = model.CreateSavedAgent(gmw.Ctx(c), saved); err != nil {
		abortWithStoreError(c, err, "saved agent")
		return
	}
	c.JSON(http.StatusOK, saved.ToDTO())
}

func UpdateSavedAgent(c *gin.Context) {
	var spec dto.SavedAgentSpec
	if !bindJSON(c, &spec) {
		return
	}

	saved, err := model.UpdateSavedAgent(gmw.Ctx(c), middleware.UserID(c), c.Param("id"), spec)
	if err != nil {
		abortWithStoreError(c, err, "saved agent")
		return
	}
	c.JSON(http.StatusOK, saved.ToDTO())
}

// ToggleFavorite flips the favorite flag, or sets it when the body carries {"is_favorite": bool}.
func ToggleFavorite(c *gin.Context) {
	var req struct {
		IsFavorite *bool `json:"is_favorite"`
	}
	if c.Request.ContentLength != 0 && !decodeJSON(c, &req) {
		return
	}

	saved, err := model.SetFavorite(gmw.Ctx(c), middleware.UserID(c), c.Param("id"), req.IsFavorite)
	if err != nil {
		abortWithStoreError(c, err, "saved agent")
		return
	}
	c.JSON(http.StatusOK, saved.ToDTO())
}

func DeleteSavedAgent(c *gin.Context) {
	if err := model.DeleteSavedAgent(gmw.Ctx(c), middleware.UserID(c), c.Param("id")); err != nil {
		abortWithStoreError(c, err, "saved agent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Saved agent deleted successfully"})
}
