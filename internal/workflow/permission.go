package workflow

import "newsdesk/internal/domain"

// CanEdit grants edit rights to editors, admins, and the owner. Edit carries
// no status restriction; status changes themselves go through
// ValidateTransition.
func CanEdit(viewer domain.Actor, ownerID string) bool {
	if viewer.Role.Privileged() {
		return true
	}
	return viewer.ID == ownerID
}

// CanDelete grants delete rights to editors and admins unconditionally. The
// owner may delete only while the article is still a draft.
func CanDelete(viewer domain.Actor, ownerID string, status domain.Status) bool {
	if viewer.Role.Privileged() {
		return true
	}
	if viewer.ID == ownerID {
		return status == domain.StatusDraft
	}
	return false
}
