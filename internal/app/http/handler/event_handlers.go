package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventrelay/internal/app/dto"
	"eventrelay/internal/domain"
	"eventrelay/internal/domain/events"
)

func (h *Handler) EventsEmit(c *gin.Context) {
	var body dto.EmitEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}
	if body.Type == "" {
		h.badRequest(c, "type is required")
		return
	}

	e, err := h.EventSvc.Emit(c.Request.Context(), events.EmitInput{
		Type:      body.Type,
		Source:    body.Source,
		Data:      body.Data,
		UserID:    body.UserID,
		ProjectID: body.ProjectID,
		Metadata:  body.Metadata,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.EmitEventResponse{
		EventID: e.ID,
		Status:  "accepted",
	})
}

func (h *Handler) EventsHistory(c *gin.Context) {
	f, ok := h.historyFilter(c)
	if !ok {
		return
	}

	res := h.EventSvc.History(c.Request.Context(), f)
	c.JSON(http.StatusOK, toEventList(res))
}

func (h *Handler) EventsArchive(c *gin.Context) {
	f, ok := h.historyFilter(c)
	if !ok {
		return
	}

	res, err := h.EventSvc.Archived(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEventList(res))
}

func (h *Handler) historyFilter(c *gin.Context) (domain.HistoryFilter, bool) {
	f := domain.HistoryFilter{
		UserID:    c.Query("user_id"),
		ProjectID: c.Query("project_id"),
	}

	if raw := c.Query("type"); raw != "" {
		t, err := domain.ParseEventType(raw)
		if err != nil {
			h.writeError(c, err)
			return domain.HistoryFilter{}, false
		}
		f.Type = t
	}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.badRequest(c, "limit must be a positive integer")
			return domain.HistoryFilter{}, false
		}
		f.Limit = n
	}

	return f, true
}

func toEventList(res []domain.Event) dto.EventListResponse {
	resp := dto.EventListResponse{
		Events: make([]dto.Event, 0, len(res)),
	}
	for _, e := range res {
		resp.Events = append(resp.Events, toEventDTO(e))
	}
	resp.Count = len(resp.Events)
	return resp
}

func toEventDTO(e domain.Event) dto.Event {
	return dto.Event{
		ID:        e.ID,
		Type:      string(e.Type),
		Source:    e.Source,
		Timestamp: e.Timestamp,
		Data:      e.Data,
		UserID:    e.UserID,
		ProjectID: e.ProjectID,
		Metadata:  e.Metadata,
	}
}
