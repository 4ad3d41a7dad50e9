package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSink persists audit events to the audit_events table.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (
			id, timestamp, action, email, actor, role,
			request_id, client_ip, detail
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		string(event.Action),
		event.Email,
		event.Actor,
		event.Role,
		event.RequestID,
		event.ClientIP,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByEmail returns events for a registrant, oldest first.
func (s *PostgresSink) ListByEmail(ctx context.Context, email string) ([]Event, error) {
	query := `
		SELECT id, timestamp, action, email, actor, role,
			   request_id, client_ip, detail
		FROM audit_events
		WHERE email = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event  Event
			action string
		)
		if err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&action,
			&event.Email,
			&event.Actor,
			&event.Role,
			&event.RequestID,
			&event.ClientIP,
			&event.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = Action(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
