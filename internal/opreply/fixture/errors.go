package fixture

import (
	"errors"
	"fmt"
)

var (
	ErrFixtureDecode  = errors.New("fixture: unable to decode TOML")
	ErrFixtureInvalid = errors.New("fixture: invalid fixture")
)

// FixtureError reports a fixture that could not be read or built. Field
// names the offending key, e.g. "op[1].code".
type FixtureError struct {
	Path  string
	Field string
	Err   error
	Cause error
}

func (e *FixtureError) Error() string {
	msg := e.Err.Error()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field=%s", e.Field)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FixtureError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func invalid(field string, cause error) error {
	return &FixtureError{Field: field, Err: ErrFixtureInvalid, Cause: cause}
}
