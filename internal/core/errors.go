package core

import "fmt"

// Error is the domain error type. Every failure surfaced by the engine
// carries a stable Code so callers can branch with errors.Is against the
// sentinels below regardless of the wrapped cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches two *Error values by code, so a wrapped sentinel still
// satisfies errors.Is(err, sentinel).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// WrapError attaches a cause to one of the sentinel errors.
func WrapError(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Cause: cause}
}

var (
	// Data errors.
	ErrSeriesInvalid   = &Error{Code: "SERIES_INVALID", Message: "OHLCV series is malformed"}
	ErrDataUnavailable = &Error{Code: "DATA_UNAVAILABLE", Message: "market data unavailable"}

	// Strategy errors.
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data for strategy"}
	ErrUnknownStrategy  = &Error{Code: "UNKNOWN_STRATEGY", Message: "strategy not registered"}
	ErrInvalidParameter = &Error{Code: "INVALID_PARAMETER", Message: "strategy parameter invalid"}

	// Config errors.
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
