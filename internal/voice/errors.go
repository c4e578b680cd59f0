package voice

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotUnderstood is matched by every UnrecognizedCommandError
var ErrNotUnderstood = errors.New("command not understood")

// ItemNotFoundError reports a spoken item phrase that matches no menu item
type ItemNotFoundError struct {
	Phrase string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("could not find %q on the menu, try saying the exact item name", e.Phrase)
}

// UnrecognizedCommandError reports a transcript that matches no command
type UnrecognizedCommandError struct {
	Transcript string
	Examples   []string
}

func (e *UnrecognizedCommandError) Error() string {
	quoted := make([]string, len(e.Examples))
	for i, ex := range e.Examples {
		quoted[i] = fmt.Sprintf("%q", ex)
	}
	return fmt.Sprintf("%s, try commands like %s", ErrNotUnderstood, strings.Join(quoted, ", "))
}

func (e *UnrecognizedCommandError) Unwrap() error {
	return ErrNotUnderstood
}

// HandlerError wraps a failure returned by an injected handler
type HandlerError struct {
	Action Action
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
