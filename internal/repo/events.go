package repo

import (
	"context"
	"database/sql"
	"strings"

	"newsdesk/internal/domain"
)

// LatestEvents returns the newest audit events, optionally filtered. Any empty
// filter is skipped.
func (r Repo) LatestEvents(ctx context.Context, limit int, evtType, entityKind, entityID string) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	clauses := []string{}
	args := []any{}
	if evtType != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, evtType)
	}
	if entityKind != "" {
		clauses = append(clauses, "entity_kind = ?")
		args = append(args, entityKind)
	}
	if entityID != "" {
		clauses = append(clauses, "entity_id = ?")
		args = append(args, entityID)
	}
	query := `SELECT id, ts, type, entity_kind, entity_id, actor_id, payload_json FROM events`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var entity sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &entity, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		e.EntityID = entity.String
		out = append(out, e)
	}
	return out, rows.Err()
}
