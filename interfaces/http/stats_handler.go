package http

import (
	"errors"
	"net/http"

	"tube-pulse/usecase"

	"github.com/gin-gonic/gin"
)

// IStatsHandler defines the interface for statistics HTTP handlers
type IStatsHandler interface {
	TopVideos(ctx *gin.Context)
	TopVideoPerChannel(ctx *gin.Context)
	GetChannelRollups(ctx *gin.Context)
}

// StatsHandler implements the statistics HTTP handlers
type StatsHandler struct {
	statsUseCase usecase.IStatsUseCase
}

// NewStatsHandler creates a new stats handler instance
func NewStatsHandler(statsUseCase usecase.IStatsUseCase) IStatsHandler {
	return &StatsHandler{
		statsUseCase: statsUseCase,
	}
}

// TopVideos handles GET /api/videos/top
func (h *StatsHandler) TopVideos(ctx *gin.Context) {
	metric := ctx.Query("metric")
	limit := queryInt(ctx, "limit")

	ranked, err := h.statsUseCase.TopVideos(ctx.Request.Context(), metric, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownMetric) {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Unknown metric",
				"message": err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to rank videos",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ranked,
	})
}

// TopVideoPerChannel handles GET /api/videos/top-per-channel
func (h *StatsHandler) TopVideoPerChannel(ctx *gin.Context) {
	metric := ctx.Query("metric")

	ranked, err := h.statsUseCase.TopVideoPerChannel(ctx.Request.Context(), metric)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownMetric) {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Unknown metric",
				"message": err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to rank videos per channel",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ranked,
	})
}

// GetChannelRollups handles GET /api/statistics
func (h *StatsHandler) GetChannelRollups(ctx *gin.Context) {
	payload, source, err := h.statsUseCase.GetChannelRollups(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute channel rollups",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"source":  source,
		"data":    payload,
	})
}
