package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFormat is returned for a config file that is neither TOML nor YAML.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrTypeMismatch matches values that cast cannot convert to the setting's type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed matches every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError reports a config file the decoder rejected. Line and Column
// are zero when the decoder gives no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	where := e.Path
	switch {
	case e.Line > 0 && e.Column > 0:
		where = fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	case e.Line > 0:
		where = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	return "config " + where + ": " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrorCode says which rule a setting broke.
type ErrorCode string

const (
	ErrCodeUnknownSetting  ErrorCode = "unknown_setting"
	ErrCodeTypeMismatch    ErrorCode = "type_mismatch"
	ErrCodeOutOfRange      ErrorCode = "out_of_range"
	ErrCodeInvalidEnum     ErrorCode = "invalid_enum"
	ErrCodeRequiredMissing ErrorCode = "required_missing"
)

// ValidationError is one rejected setting.
type ValidationError struct {
	Path    string
	Message string
	Value   any
	Code    ErrorCode
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s (got %v)", e.Path, e.Message, e.Value)
}

// Is matches ErrValidationFailed, and ErrTypeMismatch for conversion failures.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidationFailed:
		return true
	case ErrTypeMismatch:
		return e.Code == ErrCodeTypeMismatch
	}
	return false
}

// ValidationErrors holds every failure found in one pass, in setting order.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	var b strings.Builder
	for i, err := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap lets errors.Is and errors.As see each failure.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, err := range e {
		errs = append(errs, err)
	}
	return errs
}
