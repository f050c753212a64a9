package router

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrEmptyRouteTable    = errors.New("route table is empty")
	ErrInvalidPattern     = errors.New("invalid route pattern")
	ErrMissingView        = errors.New("route has no view")
	ErrMissingBackend     = errors.New("history backend is nil")
	ErrHistoryUnavailable = errors.New("history unavailable")
	ErrInvalidMode        = errors.New("navigation mode must be push or replace")
)

// ConfigurationErrorKind categorizes configuration errors.
type ConfigurationErrorKind string

const (
	EmptyRouteTable ConfigurationErrorKind = "EMPTY_ROUTE_TABLE"
	InvalidPattern  ConfigurationErrorKind = "INVALID_PATTERN"
	MissingView     ConfigurationErrorKind = "MISSING_VIEW"
	MissingBackend  ConfigurationErrorKind = "MISSING_BACKEND"
)

// ConfigurationError is returned when a router cannot be built from its
// configuration. It is fatal at startup.
type ConfigurationError struct {
	Kind ConfigurationErrorKind

	// Index is the offending route's position, or -1.
	Index int

	// Path is the offending route pattern, if any.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("router configuration: %s: route %d (%q): %v", e.Kind, e.Index, e.Path, e.Err)
	}
	return fmt.Sprintf("router configuration: %s: %v", e.Kind, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error kind.
func (e *ConfigurationError) Is(target error) bool {
	switch e.Kind {
	case EmptyRouteTable:
		return target == ErrEmptyRouteTable
	case InvalidPattern:
		return target == ErrInvalidPattern
	case MissingView:
		return target == ErrMissingView
	case MissingBackend:
		return target == ErrMissingBackend
	}
	return false
}

// NavigationErrorKind categorizes navigation errors.
type NavigationErrorKind string

const (
	HistoryUnavailable NavigationErrorKind = "HISTORY_UNAVAILABLE"
)

// NavigationError is returned when the history backend rejects a
// navigation. The router state is left as it was before the call.
type NavigationError struct {
	Kind NavigationErrorKind
	Path string
	Mode NavigationMode
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s %q: %s: %v", e.Mode, e.Path, e.Kind, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Is matches ErrHistoryUnavailable.
func (e *NavigationError) Is(target error) bool {
	return e.Kind == HistoryUnavailable && target == ErrHistoryUnavailable
}
