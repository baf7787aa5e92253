package server

import (
	"time"

	httpHandler "video-sync/interfaces/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	syncHandler httpHandler.ISyncHandler,
	callbackHandler httpHandler.ICallbackHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Webhooks from the remote service. Unauthenticated, always 200.
	router.POST("/callback/ingest/:token", callbackHandler.IngestCallback)
	router.POST("/callback/notification", callbackHandler.Notification)

	router.POST("/healthz", syncHandler.Health)

	api := router.Group("api")
	{
		api.POST("/sync/run", syncHandler.Run)
		api.GET("/sync/status", syncHandler.Status)
		api.POST("/sync/clear", syncHandler.Clear)

		api.POST("/videos/:remoteID/update-now", syncHandler.UpdateVideoNow)
		api.POST("/playlists/:remoteID/update-now", syncHandler.UpdatePlaylistNow)

		api.POST("/videos/push", syncHandler.PushVideo)
		api.POST("/playlists/push", syncHandler.PushPlaylist)

		api.POST("/subscriptions", syncHandler.CreateSubscription)
		api.DELETE("/subscriptions", syncHandler.DeleteSubscription)
	}

	return router
}
