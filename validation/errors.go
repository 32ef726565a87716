package validation

import (
	"errors"
	"strings"
)

// Kind is the machine-readable class of a field error.
type Kind string

const (
	KindMissingField      Kind = "missing_field"
	KindEmptyTitle        Kind = "empty_title"
	KindTitleTooLong      Kind = "title_too_long"
	KindInvalidType       Kind = "invalid_type"
	KindOutOfRange        Kind = "out_of_range"
	KindInvalidDateFormat Kind = "invalid_date_format"
	KindDateInPast        Kind = "date_in_past"
	KindInvalidStatus     Kind = "invalid_status"
)

const (
	MsgFieldRequired = "field required"
	MsgEmptyTitle    = "Title must not be empty"
	MsgTitleTooLong  = "Title must be at most 255 characters"
	MsgNotInteger    = "value is not a valid integer"
	MsgNotString     = "value is not a valid string"
	MsgNotBoolean    = "value is not a valid boolean"
	MsgNotStringList = "value is not a valid list of strings"
	MsgPriorityRange = "Priority must be between 1 and 5"
	MsgInvalidDate   = "invalid date format"
	MsgDateInPast    = "Due date cannot be in the past"
	MsgStatusNull    = "Status value cannot be null"
	MsgStatusTooLong = "Status value too long"
	MsgStatusInvalid = "Invalid status value"
)

// FieldError is a single violation tied to the offending field.
type FieldError struct {
	Field   string
	Kind    Kind
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors is an ordered, non-empty list of field errors.
type Errors []*FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any error of the given kind was recorded for field.
func (e Errors) Has(field string, kind Kind) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Kind == kind {
			return true
		}
	}
	return false
}

// AsErrors extracts the field errors carried by err.
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
