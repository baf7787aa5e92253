package http

import (
	"net/http"

	"video-sync/domain/dto"
	"video-sync/infrastructure/logger"
	"video-sync/usecase"

	"github.com/gin-gonic/gin"
)

type ICallbackHandler interface {
	IngestCallback(ctx *gin.Context)
	Notification(ctx *gin.Context)
}

// CallbackHandler receives webhooks from the remote service. Both endpoints
// answer 200 no matter what: the remote side must never learn to retry on
// local bookkeeping failures.
type CallbackHandler struct {
	callbacks usecase.ICallbackHandler
}

func NewCallbackHandler(callbacks usecase.ICallbackHandler) ICallbackHandler {
	return &CallbackHandler{callbacks: callbacks}
}

func (h *CallbackHandler) IngestCallback(ctx *gin.Context) {
	token := ctx.Param("token")
	var payload dto.IngestCallback
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		logger.GetLogger().WithField("error", err.Error()).Warn("undecodable ingest callback body")
		ctx.Status(http.StatusOK)
		return
	}
	if err := h.callbacks.HandleIngestCallback(ctx.Request.Context(), token, &payload); err != nil {
		logger.GetLogger().WithField("error", err.Error()).Error("ingest callback processing failed")
	}
	ctx.Status(http.StatusOK)
}

func (h *CallbackHandler) Notification(ctx *gin.Context) {
	var payload dto.NotificationEvent
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		logger.GetLogger().WithField("error", err.Error()).Warn("undecodable notification body")
		ctx.Status(http.StatusOK)
		return
	}
	if err := h.callbacks.HandleNotification(ctx.Request.Context(), &payload); err != nil {
		logger.GetLogger().WithField("event", payload.Event).WithField("error", err.Error()).
			Error("notification processing failed")
	}
	ctx.Status(http.StatusOK)
}
