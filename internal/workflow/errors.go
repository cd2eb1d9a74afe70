package workflow

import (
	"fmt"

	"newsdesk/internal/domain"
)

// PermissionDeniedError indicates the actor lacks rights over an existing
// article. It is deliberately distinct from repo.ErrNotFound: a hidden article
// reads as not-found, an article the actor can see but not touch reads as
// permission denied.
type PermissionDeniedError struct {
	Action string
}

func (e PermissionDeniedError) Error() string {
	return fmt.Sprintf("not authorized to %s", e.Action)
}

// InvalidTransitionError indicates a status change outside the role's
// allow-list. A business rejection, not a system failure.
type InvalidTransitionError struct {
	Role domain.Role
	From domain.Status
	To   domain.Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot change status from %s to %s", e.Role, e.From, e.To)
}

// ValidationError reports bad input: duplicate slug, missing required field.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) ValidationError {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}
