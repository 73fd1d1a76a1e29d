package http

import (
	"errors"
	"net/http"
	"strconv"

	"tube-pulse/domain/repository"
	"tube-pulse/usecase"

	"github.com/gin-gonic/gin"
)

// ITrackerHandler defines the interface for channel tracking HTTP handlers
type ITrackerHandler interface {
	// Channel operations
	RegisterChannel(ctx *gin.Context)
	RefreshAll(ctx *gin.Context)
	RefreshChannel(ctx *gin.Context)
	ListChannels(ctx *gin.Context)

	// Video operations
	ListVideos(ctx *gin.Context)
	ListSnapshots(ctx *gin.Context)
}

// TrackerHandler implements the channel tracking HTTP handlers
type TrackerHandler struct {
	trackerUseCase usecase.ITrackerUseCase
}

// NewTrackerHandler creates a new tracker handler instance
func NewTrackerHandler(trackerUseCase usecase.ITrackerUseCase) ITrackerHandler {
	return &TrackerHandler{
		trackerUseCase: trackerUseCase,
	}
}

// RegisterChannel handles POST /api/channels
func (h *TrackerHandler) RegisterChannel(ctx *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Identifier is required",
		})
		return
	}

	report, err := h.trackerUseCase.RegisterChannel(ctx.Request.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUnresolvableIdentifier) {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Identifier could not be resolved",
				"message": err.Error(),
			})
			return
		}
		if errors.Is(err, repository.ErrChannelNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Channel not found upstream",
				"message": err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to register channel",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    report,
	})
}

// RefreshAll handles POST /api/channels/refresh
func (h *TrackerHandler) RefreshAll(ctx *gin.Context) {
	outcomes, err := h.trackerUseCase.RefreshAll(ctx.Request.Context(), 0)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to refresh channels",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    outcomes,
	})
}

// RefreshChannel handles POST /api/channels/:channelId/refresh
func (h *TrackerHandler) RefreshChannel(ctx *gin.Context) {
	channelID, err := strconv.ParseInt(ctx.Param("channelId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Channel ID must be numeric",
		})
		return
	}

	report, err := h.trackerUseCase.RefreshChannel(ctx.Request.Context(), channelID)
	if err != nil {
		if errors.Is(err, usecase.ErrChannelNotTracked) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Channel is not tracked",
				"message": err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to refresh channel",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// ListChannels handles GET /api/channels
func (h *TrackerHandler) ListChannels(ctx *gin.Context) {
	page := queryInt(ctx, "page")
	limit := queryInt(ctx, "limit")

	response, err := h.trackerUseCase.ListChannels(ctx.Request.Context(), page, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list channels",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// ListVideos handles GET /api/videos
func (h *TrackerHandler) ListVideos(ctx *gin.Context) {
	page := queryInt(ctx, "page")
	limit := queryInt(ctx, "limit")
	q := ctx.Query("q")

	response, err := h.trackerUseCase.ListVideos(ctx.Request.Context(), page, limit, q)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list videos",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// ListSnapshots handles GET /api/videos/:videoId/snapshots
func (h *TrackerHandler) ListSnapshots(ctx *gin.Context) {
	videoID := ctx.Param("videoId")
	if videoID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Video ID is required",
		})
		return
	}

	snapshots, err := h.trackerUseCase.ListSnapshots(ctx.Request.Context(), videoID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list snapshots",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshots,
	})
}

func queryInt(ctx *gin.Context, name string) int {
	raw := ctx.Query(name)
	if raw == "" {
		return 0
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return val
}
