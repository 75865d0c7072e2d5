package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"eventrelay/internal/domain"
)

const insertChunkSize = 500

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func (r *EventStore) SaveBatch(ctx context.Context, events []domain.Event) error {
	for start := 0; start < len(events); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(events) {
			end = len(events)
		}
		if err := r.insertChunk(ctx, events[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *EventStore) insertChunk(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO events_archive
		(event_id, type, source, occurred_at, data, user_id, project_id, metadata)
		VALUES `)

	args := make([]any, 0, len(events)*8)
	for i, e := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)

		data, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("marshal event data: %w", err)
		}

		var metadata []byte
		if e.Metadata != nil {
			metadata, err = json.Marshal(e.Metadata)
			if err != nil {
				return fmt.Errorf("marshal event metadata: %w", err)
			}
		}

		args = append(args,
			e.ID,
			string(e.Type),
			e.Source,
			e.Timestamp,
			data,
			nullString(e.UserID),
			nullString(e.ProjectID),
			metadata,
		)
	}

	sb.WriteString(" ON CONFLICT (event_id) DO NOTHING")

	_, err := exec(ctx, r.db, sb.String(), args...)
	return err
}

func (r *EventStore) Query(ctx context.Context, f domain.HistoryFilter) ([]domain.Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	conds := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if f.Type != "" {
		args = append(args, string(f.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.ProjectID != "" {
		args = append(args, f.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, limit)
	q := fmt.Sprintf(`SELECT event_id, type, source, occurred_at, data, user_id, project_id, metadata
		FROM (
			SELECT event_id, type, source, occurred_at, data, user_id, project_id, metadata
			FROM events_archive%s
			ORDER BY occurred_at DESC, event_id DESC
			LIMIT $%d
		) recent
		ORDER BY occurred_at ASC, event_id ASC`, where, len(args))

	rows, err := query(ctx, r.db, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Event
	for rows.Next() {
		var (
			e         domain.Event
			typ       string
			occurred  time.Time
			data      []byte
			userID    sql.NullString
			projectID sql.NullString
			metadata  []byte
		)
		if err := rows.Scan(&e.ID, &typ, &e.Source, &occurred, &data, &userID, &projectID, &metadata); err != nil {
			return nil, err
		}

		e.Type = domain.EventType(typ)
		e.Timestamp = occurred.UTC()
		e.UserID = userID.String
		e.ProjectID = projectID.String

		if err := json.Unmarshal(data, &e.Data); err != nil {
			return nil, fmt.Errorf("unmarshal event data: %w", err)
		}
		if metadata != nil {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}

		res = append(res, e)
	}
	return res, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
