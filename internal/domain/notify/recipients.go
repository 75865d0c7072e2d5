package notify

import (
	"fmt"

	"eventrelay/internal/domain"
)

const adminEmail = "admin@eventrelay.io"

func recipientsFor(e domain.Event) []Recipient {
	switch e.Type {
	case domain.EventTypeUserRegistered:
		return []Recipient{{
			Channel: ChannelEmail,
			Address: dataString(e.Data, "email", ""),
			Name:    dataString(e.Data, "full_name", "User"),
		}}
	case domain.EventTypeProjectCreated, domain.EventTypeProposalGenerated:
		return []Recipient{{
			Channel: ChannelEmail,
			Address: dataString(e.Data, "user_email", ""),
			Name:    dataString(e.Data, "user_name", "User"),
		}}
	case domain.EventTypeSystemError:
		return []Recipient{{
			Channel: ChannelEmail,
			Address: adminEmail,
			Name:    "Administrator",
		}}
	default:
		return nil
	}
}

func dataString(data map[string]any, key, fallback string) string {
	v, ok := data[key]
	if !ok {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
