package domain

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeProjectCreated       EventType = "project.created"
	EventTypeProjectUpdated       EventType = "project.updated"
	EventTypeProjectDeleted       EventType = "project.deleted"
	EventTypeBlockAdded           EventType = "block.added"
	EventTypeBlockUpdated         EventType = "block.updated"
	EventTypeBlockRemoved         EventType = "block.removed"
	EventTypeProposalGenerated    EventType = "proposal.generated"
	EventTypeProposalApproved     EventType = "proposal.approved"
	EventTypeProposalRejected     EventType = "proposal.rejected"
	EventTypePricingCalculated    EventType = "pricing.calculated"
	EventTypeConfigurationChanged EventType = "configuration.changed"
	EventTypeUserRegistered       EventType = "user.registered"
	EventTypeUserLogin            EventType = "user.login"
	EventTypeSystemError          EventType = "system.error"
	EventTypeAPICall              EventType = "api.call"
)

var eventTypes = []EventType{
	EventTypeProjectCreated,
	EventTypeProjectUpdated,
	EventTypeProjectDeleted,
	EventTypeBlockAdded,
	EventTypeBlockUpdated,
	EventTypeBlockRemoved,
	EventTypeProposalGenerated,
	EventTypeProposalApproved,
	EventTypeProposalRejected,
	EventTypePricingCalculated,
	EventTypeConfigurationChanged,
	EventTypeUserRegistered,
	EventTypeUserLogin,
	EventTypeSystemError,
	EventTypeAPICall,
}

var eventTypeSet = func() map[EventType]struct{} {
	s := make(map[EventType]struct{}, len(eventTypes))
	for _, t := range eventTypes {
		s[t] = struct{}{}
	}
	return s
}()

func AllEventTypes() []EventType {
	out := make([]EventType, len(eventTypes))
	copy(out, eventTypes)
	return out
}

func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if _, ok := eventTypeSet[t]; !ok {
		return "", &DomainError{
			Code:       ErrorCodeInvalidEventType,
			Message:    "unknown event type: " + s,
			HTTPStatus: http.StatusBadRequest,
		}
	}
	return t, nil
}

type Event struct {
	ID        string
	Type      EventType
	Source    string
	Timestamp time.Time
	Data      map[string]any
	UserID    string
	ProjectID string
	Metadata  map[string]any
}

func NewEvent(t EventType, source string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
