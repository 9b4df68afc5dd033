package config

import "fmt"

// Error is a configuration failure detected before the control loop starts.
// It always names what was wrong so a missing field does not surface as a
// zero value deep inside the controller.
type Error struct {
	Field  string // dotted key path, empty for file-level failures
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config: field %s: %s", e.Field, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Reason, e.Err)
	}
	return "config: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func missingField(path string) *Error {
	return &Error{Field: path, Reason: "required field missing"}
}
