package action

import (
	"errors"
	"fmt"
)

var (
	// ErrTriggerDepth is returned when TriggerActionList nests deeper than
	// Runner.MaxDepth.
	ErrTriggerDepth = errors.New("action: trigger depth exceeded")

	// ErrNoPresenter is returned by a Present action on a runner without
	// a presenter.
	ErrNoPresenter = errors.New("action: no presenter")

	// ErrMissingResource is returned when an action names a nil resource.
	ErrMissingResource = errors.New("action: missing resource")
)

// Error reports the action that aborted a run.
type Error struct {
	List  string
	Index int
	Type  ActionType
	Err   error
}

func (e *Error) Error() string {
	if e.List != "" {
		return fmt.Sprintf("action: %s[%d] %s: %v", e.List, e.Index, e.Type, e.Err)
	}
	return fmt.Sprintf("action: [%d] %s: %v", e.Index, e.Type, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
