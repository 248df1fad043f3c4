package service

import "fmt"

type ValidationKind int

const (
	InvalidDateFormat ValidationKind = iota + 1
	DateTooOld
	DateInFuture
	DateOrder
)

func (k ValidationKind) String() string {
	switch k {
	case InvalidDateFormat:
		return "invalid_date_format"
	case DateTooOld:
		return "date_too_old"
	case DateInFuture:
		return "date_in_future"
	case DateOrder:
		return "date_order"
	default:
		return "unknown"
	}
}

// ValidationError is a user-facing rejection of request input, raised before any I/O.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(kind ValidationKind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}
