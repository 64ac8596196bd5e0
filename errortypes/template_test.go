package errortypes_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/htxgo/htx/errortypes"
)

func TestIsErrTemplate(t *testing.T) {
	var tests = []struct {
		name string
		in   error
		out  bool
	}{
		{
			name: "nil",
			out:  false,
		},
		{
			name: "errors.New",
			in:   errors.New("an error"),
			out:  false,
		},
		{
			name: "new ErrTemplate",
			in:   errortypes.NewErrTemplatef("/views/index.htx", 3, "message"),
			out:  true,
		},
		{
			name: "wrapped ErrTemplate",
			in:   fmt.Errorf("compile: %w", errortypes.NewErrTemplatef("/views/index.htx", 3, "message")),
			out:  true,
		},
	}
	for _, test := range tests {
		got := errortypes.IsErrTemplate(test.in)
		if got != test.out {
			t.Errorf("%s: Expected %v, got %v", test.name, test.out, got)
		}
	}
}

func TestToErrTemplate(t *testing.T) {
	var tests = []struct {
		name             string
		in               error
		expectNil        bool
		expectedTemplate string
		expectedLine     int
	}{
		{
			name:      "nil",
			expectNil: true,
		},
		{
			name:      "errors.New",
			in:        errors.New("an error"),
			expectNil: true,
		},
		{
			name:             "new ErrTemplate",
			in:               errortypes.NewErrTemplatef("/views/index.htx", 7, "message"),
			expectNil:        false,
			expectedTemplate: "/views/index.htx",
			expectedLine:     7,
		},
		{
			name:             "unknown line",
			in:               errortypes.NewErrTemplatef("/views/index.htx", 0, "message"),
			expectNil:        false,
			expectedTemplate: "/views/index.htx",
			expectedLine:     0,
		},
	}
	for _, test := range tests {
		got := errortypes.ToErrTemplate(test.in)
		if test.expectNil && got != nil {
			t.Errorf("%s: expected ErrTemplate to be nil", test.name)
		}
		if !test.expectNil {
			if got == nil {
				t.Errorf("%s: expected ErrTemplate to be non-nil", test.name)
				return
			}
			if got.Template() != test.expectedTemplate {
				t.Errorf("%s: expected template '%s', got '%s'", test.name, test.expectedTemplate, got.Template())
			}
			if got.Line() != test.expectedLine {
				t.Errorf("%s: expected line %d, got %d", test.name, test.expectedLine, got.Line())
			}
		}
	}
}
