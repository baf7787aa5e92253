package http

import (
	"net/http"

	"video-sync/domain/model"
	"video-sync/infrastructure/logger"
	"video-sync/usecase"

	"github.com/gin-gonic/gin"
)

type ISyncHandler interface {
	Run(ctx *gin.Context)
	Status(ctx *gin.Context)
	Clear(ctx *gin.Context)
	UpdateVideoNow(ctx *gin.Context)
	UpdatePlaylistNow(ctx *gin.Context)
	PushVideo(ctx *gin.Context)
	PushPlaylist(ctx *gin.Context)
	CreateSubscription(ctx *gin.Context)
	DeleteSubscription(ctx *gin.Context)
	Health(ctx *gin.Context)
}

type SyncHandler struct {
	orchestrator usecase.ISyncOrchestrator
	pusher       usecase.IPusher
}

func NewSyncHandler(orchestrator usecase.ISyncOrchestrator, pusher usecase.IPusher) ISyncHandler {
	return &SyncHandler{orchestrator: orchestrator, pusher: pusher}
}

// Run seeds one discovery task per credential profile and drains every queue
// once. Remaining depth tells the caller (cron, admin button) to come back.
func (h *SyncHandler) Run(ctx *gin.Context) {
	seeded, err := h.orchestrator.EnqueueClientSyncs(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	report, err := h.orchestrator.Run(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err.Error()).Error("sync run failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"seeded":        seeded,
		"processed":     report.Processed,
		"fully_handled": report.FullyHandled,
		"remaining":     report.Remaining,
	})
}

func (h *SyncHandler) Status(ctx *gin.Context) {
	counts, err := h.orchestrator.Status(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"queues": counts})
}

func (h *SyncHandler) Clear(ctx *gin.Context) {
	if err := h.orchestrator.Clear(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (h *SyncHandler) UpdateVideoNow(ctx *gin.Context) {
	remoteID := ctx.Param("remoteID")
	video, err := h.pusher.UpdateVideoNow(ctx.Request.Context(), remoteID)
	if err != nil {
		status := http.StatusInternalServerError
		if usecase.IsRemoteNotFound(err) || usecase.IsConfigurationError(err) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *SyncHandler) UpdatePlaylistNow(ctx *gin.Context) {
	remoteID := ctx.Param("remoteID")
	playlist, err := h.pusher.UpdatePlaylistNow(ctx.Request.Context(), remoteID)
	if err != nil {
		status := http.StatusInternalServerError
		if usecase.IsRemoteNotFound(err) || usecase.IsConfigurationError(err) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"playlist": playlist})
}

// PushVideo takes the full edited record; the pusher derives the partial
// remote update by diffing it against the stored mirror.
func (h *SyncHandler) PushVideo(ctx *gin.Context) {
	var edited model.Video
	if err := ctx.ShouldBindJSON(&edited); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	video, err := h.pusher.PushVideo(ctx.Request.Context(), &edited)
	if err != nil {
		status := http.StatusInternalServerError
		if usecase.IsConfigurationError(err) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *SyncHandler) PushPlaylist(ctx *gin.Context) {
	var edited model.Playlist
	if err := ctx.ShouldBindJSON(&edited); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	playlist, err := h.pusher.PushPlaylist(ctx.Request.Context(), &edited)
	if err != nil {
		status := http.StatusInternalServerError
		if usecase.IsConfigurationError(err) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"playlist": playlist})
}

type subscriptionRequest struct {
	ProfileID int64    `json:"profile_id" binding:"required"`
	Endpoint  string   `json:"endpoint"`
	Events    []string `json:"events"`
	ID        int64    `json:"id"`
}

func (h *SyncHandler) CreateSubscription(ctx *gin.Context) {
	var req subscriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Endpoint == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "profile_id and endpoint required"})
		return
	}
	sub, err := h.pusher.CreateSubscription(ctx.Request.Context(), req.ProfileID, req.Endpoint, req.Events)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"subscription": sub})
}

func (h *SyncHandler) DeleteSubscription(ctx *gin.Context) {
	var req subscriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "profile_id and id required"})
		return
	}
	if err := h.pusher.DeleteSubscription(ctx.Request.Context(), req.ProfileID, req.ID); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *SyncHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
