package errortypes

import "fmt"

// ErrTemplate extends the error interface to add details on the template in
// which the error occurred.
type ErrTemplate interface {
	error
	Template() string

	// Line returns the best-available line number for the error, counted
	// from 1. Zero means the line could not be determined.
	Line() int
}

// NewErrTemplatef creates an error conforming to the ErrTemplate interface.
func NewErrTemplatef(template string, line int, format string, args ...interface{}) error {
	return &errTemplate{
		error:    fmt.Errorf(format, args...),
		template: template,
		line:     line,
	}
}

// IsErrTemplate identifies whether or not the root cause of the provided error
// is of the ErrTemplate type. Wrapped errors are unwrapped via the Cause() or
// Unwrap() functions.
func IsErrTemplate(err error) bool {
	if err == nil {
		return false
	}
	err = rootCause(err)

	_, isErrTemplate := err.(ErrTemplate)
	return isErrTemplate
}

// ToErrTemplate converts the input error to an ErrTemplate if possible, or nil
// if not. If IsErrTemplate returns true, this will not return nil.
func ToErrTemplate(err error) ErrTemplate {
	if err == nil {
		return nil
	}
	err = rootCause(err)
	if out, isErrTemplate := err.(ErrTemplate); isErrTemplate {
		return out
	}
	return nil
}

func rootCause(err error) error {
	type causer interface {
		Cause() error
	}
	type unwrapper interface {
		Unwrap() error
	}

	for {
		switch e := err.(type) {
		case causer:
			err = e.Cause()
		case unwrapper:
			if e.Unwrap() == nil {
				return err
			}
			err = e.Unwrap()
		default:
			return err
		}
	}
}

var _ ErrTemplate = &errTemplate{}

type errTemplate struct {
	error
	template string
	line     int
}

func (e *errTemplate) Template() string {
	return e.template
}

func (e *errTemplate) Line() int {
	return e.line
}
