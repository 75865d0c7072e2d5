package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"eventrelay/internal/app/http/handler"
	"eventrelay/internal/app/http/middleware"
)

func NewRouter(h *handler.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		middleware.ZapLogger(log),
		middleware.ZapRecovery(log),
	)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/events/emit", h.EventsEmit)
	r.GET("/events/history", h.EventsHistory)
	r.GET("/events/archive", h.EventsArchive)

	r.POST("/webhooks/register", h.WebhooksRegister)
	r.POST("/webhooks/unregister", h.WebhooksUnregister)
	r.GET("/webhooks/list", h.WebhooksList)

	r.POST("/notifications/send", h.NotificationsSend)
	r.GET("/notifications/list", h.NotificationsList)

	r.GET("/push/stream", h.PushStream)
	r.GET("/push/connections", h.PushConnections)

	return r
}
