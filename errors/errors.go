package errors

import (
	"fmt"
)

type ErrorCode int

const (
	InternalError ErrorCode = iota
	InvalidConfiguration
	ConnectionFailed
	QueryFailed
	SchemaMismatch
	ConversionFailed
	SourceExhausted
)

func NewInternalError(ref string) AgentError {
	return NewAgentErrorf(InternalError, "Internal error - reference: %s please consult the logs for details", ref)
}

func NewInvalidConfigurationError(msg string) AgentError {
	return NewAgentErrorf(InvalidConfiguration, "Invalid configuration: %s", msg)
}

func NewConnectionError(cause error) AgentError {
	return NewAgentErrorf(ConnectionFailed, "Cannot connect to data source: %v", cause)
}

func NewQueryError(query string, cause error) AgentError {
	return NewAgentErrorf(QueryFailed, "Query failed: %q: %v", query, cause)
}

func NewSchemaMismatchError(partition int, expected int, actual int) AgentError {
	return NewAgentErrorf(SchemaMismatch, "Partition %d returned %d columns, schema has %d", partition, actual, expected)
}

func NewConversionError(value interface{}, target string) AgentError {
	return NewAgentErrorf(ConversionFailed, "Cannot convert value %v of type %T to %s", value, value, target)
}

func NewExhaustedError(cells int) AgentError {
	return NewAgentErrorf(SourceExhausted, "Result set exhausted after %d cells", cells)
}

func NewAgentErrorf(errorCode ErrorCode, msgFormat string, args ...interface{}) AgentError {
	msg := fmt.Sprintf(fmt.Sprintf("CXA%04d - %s", errorCode, msgFormat), args...)
	return AgentError{Code: errorCode, Msg: msg}
}

func NewAgentError(errorCode ErrorCode, msg string) AgentError {
	return AgentError{Code: errorCode, Msg: msg}
}

// AgentError is an error with a code that callers can act on, it is what the contracts of the data sources,
// writers and the dispatcher return for conditions caused by the environment.
type AgentError struct {
	Code ErrorCode
	Msg  string
}

func (u AgentError) Error() string {
	return u.Msg
}

// GetCode returns the code of the first AgentError in err's chain.
func GetCode(err error) (ErrorCode, bool) {
	var aerr AgentError
	if As(err, &aerr) {
		return aerr.Code, true
	}
	return 0, false
}

// HasCode reports whether err carries an AgentError with the given code.
func HasCode(err error, code ErrorCode) bool {
	c, ok := GetCode(err)
	return ok && c == code
}

// MaybeAddStack adds a stack trace to err unless it is an AgentError, which is returned as is.
func MaybeAddStack(err error) error {
	if _, ok := err.(AgentError); !ok {
		return WithStack(err)
	}
	return err
}
