package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidStage marks a stage value outside the known enumeration.
	// Not recoverable by retry; a configuration or data error.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrInvalidTransition marks a task lifecycle transition that is not
	// legal from the task's current status. User-correctable.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotAssignable marks a start attempt by a staff member who is not
	// the task's assignee.
	ErrNotAssignable = errors.New("not assignable")

	// ErrMissingReason marks a reject call without a rework reason.
	ErrMissingReason = errors.New("missing reason")

	// ErrStageIncomplete marks an advance attempt while mandatory tasks in
	// the current stage are not yet approved.
	ErrStageIncomplete = errors.New("stage incomplete")

	// ErrRoleNotAllowed marks an operation the actor's role does not grant.
	ErrRoleNotAllowed = errors.New("role not allowed")

	// ErrNotFound marks a missing item or task record.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a conditional task update that lost a race: the
	// stored status no longer matched the status the transition was
	// computed from.
	ErrConflict = errors.New("concurrent update conflict")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = errors.New("workflow error")
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsUserCorrectable reports whether the error represents a condition the
// acting staff member can fix by retrying the right action, as opposed to a
// persistence or configuration failure.
func IsUserCorrectable(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotAssignable),
		errors.Is(err, ErrMissingReason),
		errors.Is(err, ErrStageIncomplete),
		errors.Is(err, ErrRoleNotAllowed):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "workflow failure"
	}
	return strings.Join(parts, ": ")
}
