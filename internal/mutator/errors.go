package mutator

import (
	"errors"

	"brokerconf/internal/admin"
)

// ErrorKind classifies why a change failed.
type ErrorKind string

const (
	KindUnknownConfig    ErrorKind = "UnknownConfig"
	KindReadOnlyConfig   ErrorKind = "ReadOnlyConfig"
	KindNotDynamic       ErrorKind = "NotDynamic"
	KindUnknownNode      ErrorKind = "UnknownNode"
	KindExecutionTimeout ErrorKind = "ExecutionTimeout"
	KindProtocolError    ErrorKind = "ProtocolError"
)

var (
	// ErrUnknownConfig is returned for configs the broker does not report
	// and that are not allow-listed.
	ErrUnknownConfig = errors.New("config not found")

	// ErrReadOnlyConfig is returned for configs that cannot change at runtime.
	ErrReadOnlyConfig = errors.New("config is read-only")

	// ErrNotDynamic is returned when removing a config that has no dynamic
	// per-broker value.
	ErrNotDynamic = errors.New("config is not a dynamic broker config")

	// ErrUnknownNode is returned for brokers that are not cluster members.
	ErrUnknownNode = errors.New("broker not found")

	// ErrExecutionTimeout is returned when a broker's alter handle did not
	// resolve in time.
	ErrExecutionTimeout = errors.New("timed out waiting for broker")
)

// KindOf maps an error to its ErrorKind. Anything unrecognised is a protocol
// error.
func KindOf(err error) ErrorKind {
	var waitErr *admin.WaitError
	switch {
	case errors.Is(err, ErrUnknownConfig):
		return KindUnknownConfig
	case errors.Is(err, ErrReadOnlyConfig):
		return KindReadOnlyConfig
	case errors.Is(err, ErrNotDynamic):
		return KindNotDynamic
	case errors.Is(err, ErrUnknownNode):
		return KindUnknownNode
	case errors.Is(err, ErrExecutionTimeout), errors.As(err, &waitErr):
		return KindExecutionTimeout
	default:
		return KindProtocolError
	}
}
