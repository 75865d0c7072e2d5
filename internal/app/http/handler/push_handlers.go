package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventrelay/internal/app/dto"
	"eventrelay/internal/infrastructure/sse"
)

func (h *Handler) PushStream(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		h.badRequest(c, "user_id is required")
		return
	}

	conn := sse.NewConn(sse.DefaultBuffer)
	h.Hub.Register(userID, conn)
	defer h.Hub.Unregister(userID, conn)
	defer conn.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("connected", userID)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg := <-conn.Messages():
			c.SSEvent("message", string(msg))
			return true
		case <-conn.Done():
			return false
		case <-ctx.Done():
			return false
		}
	})
}

func (h *Handler) PushConnections(c *gin.Context) {
	users := h.Hub.Connections()
	c.JSON(http.StatusOK, dto.PushConnectionsResponse{
		Users: users,
		Count: len(users),
	})
}
