package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventrelay/internal/domain/events"
	"eventrelay/internal/domain/notify"
	"eventrelay/internal/domain/push"
	"eventrelay/internal/domain/webhook"
)

type Handler struct {
	EventSvc   events.Service
	WebhookSvc webhook.Service
	NotifySvc  notify.Service
	Hub        *push.Hub
	Log        *zap.Logger
}

func New(
	eventSvc events.Service,
	webhookSvc webhook.Service,
	notifySvc notify.Service,
	hub *push.Hub,
	log *zap.Logger,
) *Handler {
	return &Handler{
		EventSvc:   eventSvc,
		WebhookSvc: webhookSvc,
		NotifySvc:  notifySvc,
		Hub:        hub,
		Log:        log,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
