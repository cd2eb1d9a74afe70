package workflow

import "newsdesk/internal/domain"

// ValidateTransition checks a requested status change against the role's
// allow-list. Requesting the current status is always a no-op and passes
// without further checks. The caller is expected to have cleared edit
// permission first; this only rules on the (from, to, role) triple.
//
//	author: draft -> pending_review, rejected -> pending_review (resubmit),
//	        pending_review -> draft (retract)
//	editor: pending_review -> published (approve), pending_review -> rejected
//	admin:  pending_review -> published|rejected, published -> archived,
//	        archived -> published
//	reader: none
func ValidateTransition(current, requested domain.Status, role domain.Role) error {
	if requested == current {
		return nil
	}
	switch role {
	case domain.RoleAuthor:
		if current == domain.StatusDraft && requested == domain.StatusPendingReview {
			return nil
		}
		if current == domain.StatusRejected && requested == domain.StatusPendingReview {
			return nil
		}
		if current == domain.StatusPendingReview && requested == domain.StatusDraft {
			return nil
		}
	case domain.RoleEditor:
		if current == domain.StatusPendingReview &&
			(requested == domain.StatusPublished || requested == domain.StatusRejected) {
			return nil
		}
	case domain.RoleAdmin:
		if current == domain.StatusPendingReview &&
			(requested == domain.StatusPublished || requested == domain.StatusRejected) {
			return nil
		}
		if current == domain.StatusPublished && requested == domain.StatusArchived {
			return nil
		}
		if current == domain.StatusArchived && requested == domain.StatusPublished {
			return nil
		}
	case domain.RoleReader:
		// readers never transition anything
	}
	return InvalidTransitionError{Role: role, From: current, To: requested}
}
