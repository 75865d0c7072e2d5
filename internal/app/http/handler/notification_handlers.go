package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventrelay/internal/app/dto"
	"eventrelay/internal/domain/notify"
)

func (h *Handler) NotificationsSend(c *gin.Context) {
	var body dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}
	if body.Channel == "" {
		h.badRequest(c, "channel is required")
		return
	}
	if body.Recipient == "" {
		h.badRequest(c, "recipient is required")
		return
	}

	n, err := h.NotifySvc.Send(c.Request.Context(), notify.SendInput{
		Channel:   body.Channel,
		Recipient: body.Recipient,
		Subject:   body.Subject,
		Content:   body.Content,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := struct {
		Notification dto.Notification `json:"notification"`
	}{
		Notification: toNotificationDTO(n),
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) NotificationsList(c *gin.Context) {
	var f notify.ListFilter

	if raw := c.Query("channel"); raw != "" {
		ch, err := notify.ParseChannel(raw)
		if err != nil {
			h.writeError(c, err)
			return
		}
		f.Channel = ch
	}

	if raw := c.Query("status"); raw != "" {
		st := notify.Status(raw)
		if st != notify.StatusPending && st != notify.StatusSent && st != notify.StatusFailed {
			h.badRequest(c, "status must be one of pending, sent, failed")
			return
		}
		f.Status = st
	}

	res := h.NotifySvc.List(c.Request.Context(), f)

	resp := dto.NotificationListResponse{
		Notifications: make([]dto.Notification, 0, len(res)),
	}
	for _, n := range res {
		resp.Notifications = append(resp.Notifications, toNotificationDTO(n))
	}
	resp.Count = len(resp.Notifications)

	c.JSON(http.StatusOK, resp)
}

func toNotificationDTO(n notify.Notification) dto.Notification {
	return dto.Notification{
		ID:        n.ID,
		EventID:   n.EventID,
		Channel:   string(n.Channel),
		Recipient: n.Recipient,
		Subject:   n.Subject,
		Content:   n.Content,
		Status:    string(n.Status),
		Attempts:  n.Attempts,
		CreatedAt: n.CreatedAt,
		SentAt:    n.SentAt,
	}
}
