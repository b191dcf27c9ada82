package types

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures by how the guard reacts to them.
type ErrorType string

const (
	// ConfigError is fatal and only raised before the first poll completes.
	ConfigError ErrorType = "CONFIG_ERROR"
	// ConnectivityError is retried with exponential backoff.
	ConnectivityError ErrorType = "CONNECTIVITY_ERROR"
	// StateCorruptionError falls back to an empty state mapping.
	StateCorruptionError ErrorType = "STATE_CORRUPTION_ERROR"
	// PolicyApplyError is retried naturally on the next tick.
	PolicyApplyError ErrorType = "POLICY_APPLY_ERROR"
)

func (t ErrorType) String() string {
	return string(t)
}

type Error struct {
	Type ErrorType
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Msg)
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(typ ErrorType, msg string, err error) *Error {
	return &Error{Type: typ, Msg: msg, Err: err}
}

func NewConfigError(format string, args ...any) *Error {
	return &Error{Type: ConfigError, Msg: fmt.Sprintf(format, args...)}
}

func NewConnectivityError(msg string, err error) *Error {
	return NewError(ConnectivityError, msg, err)
}

func NewStateCorruptionError(msg string, err error) *Error {
	return NewError(StateCorruptionError, msg, err)
}

func NewPolicyApplyError(msg string, err error) *Error {
	return NewError(PolicyApplyError, msg, err)
}

// TypeOf returns the type of the first *Error in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return "", false
}

func IsConfigError(err error) bool {
	return isType(err, ConfigError)
}

func IsConnectivityError(err error) bool {
	return isType(err, ConnectivityError)
}

func IsStateCorruptionError(err error) bool {
	return isType(err, StateCorruptionError)
}

func IsPolicyApplyError(err error) bool {
	return isType(err, PolicyApplyError)
}

func isType(err error, typ ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == typ
}
