package router

import (
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/controller"
	"github.com/agentsim/simcheck/middleware"
)

func SetApiRouter(router *gin.Engine) {
	apiRouter := router.Group(config.DefaultAPIPrefix)
	apiRouter.GET("/status", controller.GetStatus)
	apiRouter.GET("/archetypes", controller.GetArchetypes)

	authRoute := apiRouter.Group("/auth")
	{
		authRoute.POST("/login", controller.Login)
		authRoute.POST("/register", controller.Register)
		authRoute.POST("/test-login", middleware.TestLoginCheck(), controller.TestLogin)

		selfRoute := authRoute.Group("")
		selfRoute.Use(middleware.UserAuth())
		{
			selfRoute.GET("/me", controller.GetSelf)
			selfRoute.PUT("/profile", controller.UpdateSelf)
		}
	}

	userRoute := apiRouter.Group("")
	userRoute.Use(middleware.UserAuth())
	{
		agentRoute := userRoute.Group("/agents")
		{
			agentRoute.GET("", controller.GetAgents)
			agentRoute.POST("", controller.CreateAgent)
			agentRoute.DELETE("/bulk", controller.BulkDeleteAgents)
			agentRoute.POST("/bulk-delete", controller.BulkDeleteAgents)
			agentRoute.GET("/:id", controller.GetAgent)
			agentRoute.PUT("/:id", controller.UpdateAgent)
			agentRoute.DELETE("/:id", controller.DeleteAgent)
		}

		savedRoute := userRoute.Group("/saved-agents")
		{
			savedRoute.GET("", controller.GetSavedAgents)
			savedRoute.POST("", controller.CreateSavedAgent)
			savedRoute.PUT("/:id", controller.UpdateSavedAgent)
			savedRoute.PUT("/:id/favorite", controller.ToggleFavorite)
			savedRoute.DELETE("/:id", controller.DeleteSavedAgent)
		}

		simulationRoute := userRoute.Group("/simulation")
		{
			simulationRoute.GET("/state", controller.GetSimulationState)
			simulationRoute.POST("/start", controller.StartSimulation)
			simulationRoute.POST("/pause", controller.PauseSimulation)
			simulationRoute.POST("/resume", controller.ResumeSimulation)
			simulationRoute.POST("/reset", controller.ResetSimulation)
			simulationRoute.POST("/fast-forward", controller.FastForward)
			simulationRoute.POST("/set-scenario", controller.SetScenario)
			simulationRoute.GET("/random-scenario", controller.GetRandomScenario)
		}

		userRoute.GET("/conversations", controller.GetConversations)
		userRoute.POST("/conversation/generate", controller.GenerateConversation)

		userRoute.POST("/observer/send-message", controller.SendObserverMessage)
		userRoute.GET("/observer/messages", controller.GetObserverMessages)

		userRoute.POST("/avatars/generate", controller.GenerateAvatar)
		userRoute.POST("/speech/transcribe", controller.TranscribeAudio)
		userRoute.POST("/speech/transcribe-scenario", controller.TranscribeScenario)
	}
}
