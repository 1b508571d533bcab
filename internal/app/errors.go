package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the loop or application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrLoopClosed is returned when posting to a stopped loop.
	ErrLoopClosed = errors.New("event loop closed")

	// ErrUnknownCommand is returned for input the console does not understand.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNotAvailable is returned for a command that makes no sense in the
	// current stage, such as "buy" with no preview open.
	ErrNotAvailable = errors.New("command not available here")

	// ErrInvalidTransition is returned for a checkout flow move the flow
	// does not allow.
	ErrInvalidTransition = errors.New("invalid flow transition")

	// ErrNoSuchCard is returned when a card number is out of range.
	ErrNoSuchCard = errors.New("no such card")
)

// ComponentError represents an error from a specific component.
type ComponentError struct {
	Component string // Component name (e.g., "api", "state", "view")
	Action    string // Action being performed
	Err       error  // Underlying error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{
		Component: component,
		Action:    action,
		Err:       err,
	}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}

	if e.Action != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Component, e.Action)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}

	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches both the wrapper itself and the wrapped error.
func (e *ComponentError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*ComponentError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}

// TransitionError describes a rejected flow move.
type TransitionError struct {
	From Stage
	To   Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
