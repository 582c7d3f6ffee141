package igc

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a decode failure
type ErrorKind int

const (
	// LineTooShort means the line is shorter than the minimum for its kind
	LineTooShort ErrorKind = iota + 1
	// MalformedNumericField means a fixed-width field is not purely decimal digits
	MalformedNumericField
	// MalformedPrimitive means a delegated date, time or position parse failed
	MalformedPrimitive
	// UnexpectedLeadingTag means a decoder was handed a line of another kind
	UnexpectedLeadingTag
	// MalformedField means a fixed-width field holds a value outside its alphabet
	MalformedField
)

// Sentinel errors matched by errors.Is against a *ParseError
var (
	ErrLineTooShort          = errors.New("line too short")
	ErrMalformedNumericField = errors.New("malformed numeric field")
	ErrMalformedPrimitive    = errors.New("malformed primitive")
	ErrUnexpectedLeadingTag  = errors.New("unexpected leading tag")
	ErrMalformedField        = errors.New("malformed field")
)

// String returns the human-readable class of the error kind
func (k ErrorKind) String() string {
	switch k {
	case LineTooShort:
		return "line too short"
	case MalformedNumericField:
		return "malformed numeric field"
	case MalformedPrimitive:
		return "malformed primitive"
	case UnexpectedLeadingTag:
		return "unexpected leading tag"
	case MalformedField:
		return "malformed field"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case LineTooShort:
		return ErrLineTooShort
	case MalformedNumericField:
		return ErrMalformedNumericField
	case MalformedPrimitive:
		return ErrMalformedPrimitive
	case UnexpectedLeadingTag:
		return ErrUnexpectedLeadingTag
	case MalformedField:
		return ErrMalformedField
	default:
		return nil
	}
}

// ParseError describes why a line could not be decoded.
// Record names the record kind being decoded, Field the field within it and
// Value the offending substring. Field and Value are empty for failures that
// concern the whole line; Detail then says what was expected.
type ParseError struct {
	Kind   ErrorKind
	Record string
	Field  string
	Value  string
	Detail string
	Line   string
	Err    error // underlying primitive failure, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Record, e.Kind)
	if e.Field != "" {
		msg += fmt.Sprintf(" in %s", e.Field)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Detail != "" {
		msg += ", " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Line != "" {
		msg += fmt.Sprintf(" (line %q)", e.Line)
	}
	return msg
}

// Unwrap exposes both the class sentinel and the wrapped primitive failure
func (e *ParseError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func tooShort(record, line string, min int) *ParseError {
	return &ParseError{
		Kind:   LineTooShort,
		Record: record,
		Detail: fmt.Sprintf("need %d bytes, got %d", min, len(line)),
		Line:   line,
	}
}

func badTag(record, line string, want byte) *ParseError {
	e := &ParseError{
		Kind:   UnexpectedLeadingTag,
		Record: record,
		Detail: fmt.Sprintf("want %q", want),
		Line:   line,
	}
	if len(line) > 0 {
		e.Value = line[:1]
	}
	return e
}

func badPrimitive(record, field, line, value string, err error) *ParseError {
	return &ParseError{
		Kind:   MalformedPrimitive,
		Record: record,
		Field:  field,
		Value:  value,
		Line:   line,
		Err:    err,
	}
}
