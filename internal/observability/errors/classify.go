package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"
)

// Class names for errors that carry no useful concrete type.
const (
	ClassCanceled = "canceled"
	ClassTimeout  = "timeout"
	ClassUnknown  = "unknown"
)

// Classify returns a normalized error type name suitable for tagging metrics/logs.
// Context errors map to fixed classes; anything else is unwrapped to the innermost
// concrete type and converted to snake_case-ish.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case goerrors.Is(err, context.Canceled):
		return ClassCanceled
	case goerrors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	}

	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ClassUnknown
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return ClassUnknown
	}
	return name
}
