package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventrelay/internal/app/dto"
	"eventrelay/internal/domain/webhook"
)

func (h *Handler) WebhooksRegister(c *gin.Context) {
	var body dto.RegisterWebhookRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}
	if body.URL == "" {
		h.badRequest(c, "url is required")
		return
	}

	in := webhook.RegisterInput{
		URL:        body.URL,
		EventTypes: body.EventTypes,
		Secret:     body.Secret,
		Headers:    body.Headers,
		RetryCount: body.RetryCount,
		Active:     body.Active,
	}
	if body.TimeoutSeconds != nil {
		d := time.Duration(*body.TimeoutSeconds) * time.Second
		in.Timeout = &d
	}

	ep, err := h.WebhookSvc.Register(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := struct {
		Endpoint dto.WebhookEndpoint `json:"endpoint"`
	}{
		Endpoint: toEndpointDTO(ep),
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) WebhooksUnregister(c *gin.Context) {
	var body dto.UnregisterWebhookRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}
	if body.EndpointID == "" {
		h.badRequest(c, "endpoint_id is required")
		return
	}

	removed := h.WebhookSvc.Unregister(c.Request.Context(), body.EndpointID)
	c.JSON(http.StatusOK, dto.UnregisterWebhookResponse{Removed: removed})
}

func (h *Handler) WebhooksList(c *gin.Context) {
	eps := h.WebhookSvc.List(c.Request.Context())

	resp := dto.WebhookListResponse{
		Endpoints: make([]dto.WebhookEndpoint, 0, len(eps)),
	}
	for _, ep := range eps {
		resp.Endpoints = append(resp.Endpoints, toEndpointDTO(ep))
	}
	resp.Count = len(resp.Endpoints)

	c.JSON(http.StatusOK, resp)
}

func toEndpointDTO(ep webhook.Endpoint) dto.WebhookEndpoint {
	out := dto.WebhookEndpoint{
		ID:             ep.ID,
		URL:            ep.URL,
		EventTypes:     make([]string, 0, len(ep.EventTypes)),
		RetryCount:     ep.RetryCount,
		TimeoutSeconds: int(ep.Timeout / time.Second),
		Active:         ep.Active,
		CreatedAt:      ep.CreatedAt,
		LastAttemptAt:  ep.LastAttemptAt,
		LastStatus:     ep.LastStatus,
		LastError:      ep.LastError,
	}
	for _, t := range ep.EventTypes {
		out.EventTypes = append(out.EventTypes, string(t))
	}
	return out
}
