package workflow

import (
	"context"

	"newsdesk/internal/domain"
)

// ListEvents returns the newest audit events. Admins only.
func (s Service) ListEvents(ctx context.Context, actor domain.Actor, limit int, evtType, entityKind, entityID string) ([]domain.Event, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, PermissionDeniedError{Action: "read the audit log"}
	}
	return s.Repo.LatestEvents(ctx, limit, evtType, entityKind, entityID)
}
