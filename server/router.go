package server

import (
	"net/http"
	"time"

	httpHandler "tube-pulse/interfaces/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	trackerHandler httpHandler.ITrackerHandler,
	statsHandler httpHandler.IStatsHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201", "https://localhost:4200", "https://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("api")

	channels := api.Group("/channels")
	{
		channels.POST("", trackerHandler.RegisterChannel)
		channels.GET("", trackerHandler.ListChannels)
		channels.POST("/refresh", trackerHandler.RefreshAll)
		channels.POST("/:channelId/refresh", trackerHandler.RefreshChannel)
	}

	videos := api.Group("/videos")
	{
		videos.GET("", trackerHandler.ListVideos)
		videos.GET("/top", statsHandler.TopVideos)
		videos.GET("/top-per-channel", statsHandler.TopVideoPerChannel)
		videos.GET("/:videoId/snapshots", trackerHandler.ListSnapshots)
	}

	api.GET("/statistics", statsHandler.GetChannelRollups)

	return router
}
