package snapshot

import (
	"errors"
	"fmt"
)

// ParseError reports a config description line that could not be accepted.
// The line is rejected whole.
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse config line %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot parse config line %q: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
