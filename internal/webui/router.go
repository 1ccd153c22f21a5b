package webui

import (
	"github.com/gin-gonic/gin"

	"chatterdash/internal/mentions"
	"chatterdash/internal/webui/handlers"
	"chatterdash/internal/webui/middleware"
)

// SetupRouter wires the dashboard API around the sync engine. pollRestart
// restarts the mention-sync schedule when the user saves a new interval
// or identity.
func SetupRouter(engine *mentions.Engine, pollRestart func(intervalSeconds int), allowedOrigins []string) *gin.Engine {
	r := gin.New()

	handlers.SetEngine(engine)
	handlers.SetPollRestart(pollRestart)

	r.Use(middleware.CORSMiddleware(allowedOrigins))
	r.Use(middleware.LoggingMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", handlers.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/mentions", handlers.GetMentions)
		api.POST("/mentions/:id/hide", handlers.HideMention)
		api.GET("/alert", handlers.AlertPulse)
		api.POST("/sync", handlers.TriggerSync)
		api.GET("/config", handlers.GetUserConfig)
		api.POST("/config", handlers.SaveUserConfig)
	}

	return r
}
