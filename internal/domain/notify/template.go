package notify

import (
	"fmt"
	"regexp"
	"strings"

	"eventrelay/internal/domain"
)

type Template struct {
	Subject string
	Content string
}

type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing template field: " + e.Field
}

func templateKey(t domain.EventType) string {
	return strings.ReplaceAll(string(t), ".", "_")
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

func render(tmpl string, fields map[string]any) (string, error) {
	var missing string
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := fields[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return fmt.Sprint(v)
	})
	if missing != "" {
		return "", &MissingFieldError{Field: missing}
	}
	return out, nil
}

func renderFields(e domain.Event, r Recipient) map[string]any {
	fields := make(map[string]any, len(e.Data)+5)
	for k, v := range e.Data {
		fields[k] = v
	}
	fields["timestamp"] = e.Timestamp.Format("02/01/2006 15:04:05")
	fields["event_id"] = e.ID
	fields["user_name"] = r.Name
	if _, ok := fields["user_id"]; !ok {
		fields["user_id"] = e.UserID
	}
	if _, ok := fields["project_id"]; !ok {
		fields["project_id"] = e.ProjectID
	}
	return fields
}

func defaultTemplates() map[string]Template {
	return map[string]Template{
		"project_created": {
			Subject: "New project created: {project_name}",
			Content: `Hello {user_name},

Your project "{project_name}" was created successfully.

Details:
- Project ID: {project_id}
- Created At: {created_at}
- Application: {application}

You can open the project from your dashboard.

The Platform Team`,
		},
		"proposal_generated": {
			Subject: "Proposal generated: {proposal_number}",
			Content: `Hello {user_name},

A new proposal was generated for the project "{project_name}".

Proposal details:
- Number: {proposal_number}
- Total Value: {total_value}
- Valid Until: {valid_until}

The proposal is available for download in the system.

The Platform Team`,
		},
		"user_registered": {
			Subject: "Welcome to the platform",
			Content: `Hello {user_name},

Welcome aboard!

Your account was created successfully. You can now:
- Create projects
- Configure equipment
- Generate commercial proposals
- Calculate prices in real time

Start by creating your first project!

The Platform Team`,
		},
		"system_error": {
			Subject: "System Alert - {error_type}",
			Content: `System alert

Error Type: {error_type}
Timestamp: {timestamp}
User: {user_id}
Project: {project_id}

Details:
{error_details}

This is an automated system alert.`,
		},
	}
}
