package router

import "context"

// ViewHandle is an opaque reference to a view owned by the view registry.
// The router stores and returns handles but never interprets them.
type ViewHandle string

// RouteEntry binds a path pattern to a view.
type RouteEntry struct {
	// Path is the route pattern (e.g., "/projects/:id").
	Path string `json:"path"`

	// View is the handle rendered when Path matches.
	View ViewHandle `json:"view"`
}

// RouteTable is an ordered list of routes. Order is the tie-break between
// patterns matching the same path.
type RouteTable []RouteEntry

// NavigationMode selects how a navigation is recorded in history.
type NavigationMode uint8

const (
	// Push adds a new history entry.
	Push NavigationMode = iota
	// Replace overwrites the current history entry.
	Replace
	// Pop records a change the backend already applied (back, forward,
	// typed address). It cannot be requested through Navigate.
	Pop
)

// String returns the mode name.
func (m NavigationMode) String() string {
	switch m {
	case Push:
		return "push"
	case Replace:
		return "replace"
	case Pop:
		return "pop"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of matching a path against the route table.
type Resolution struct {
	// Matched reports whether any entry matched.
	Matched bool

	// Entry is a copy of the matched entry. Zero when unmatched.
	Entry RouteEntry

	// Index is the position of Entry in the table, or -1.
	Index int

	// Params are the extracted route parameters.
	Params map[string]string

	// Path is the canonical path that was matched.
	Path string

	// Query is the query string of the input (without "?").
	Query string
}

// View returns the matched view handle, or "" when unmatched.
func (r Resolution) View() ViewHandle {
	if !r.Matched {
		return ""
	}
	return r.Entry.View
}

// NavigationState is the router's view of where the application is.
type NavigationState struct {
	// CurrentPath is the last path requested or reported, exactly as given.
	CurrentPath string

	// Matched is the entry matching CurrentPath, or nil.
	Matched *RouteEntry

	// Params are the parameters extracted for Matched.
	Params map[string]string
}

// View returns the matched view handle, or "" when unmatched.
func (s NavigationState) View() ViewHandle {
	if s.Matched == nil {
		return ""
	}
	return s.Matched.View
}

// Navigation describes one state transition passed through middleware.
type Navigation struct {
	// Context is the caller's context (context.Background for pops).
	Context context.Context

	// Path is the requested path as given by the caller or the backend.
	Path string

	// Mode is how the transition is recorded.
	Mode NavigationMode

	// Resolution is the match result for Path.
	Resolution Resolution

	// From is the current path before the transition.
	From string
}

// Middleware wraps navigation commits.
type Middleware interface {
	// Handle processes the navigation and optionally calls next.
	// Returning without calling next cancels a push or replace and the
	// returned error is reported to the caller. Pops are committed
	// regardless, and an error returned after next is only logged.
	// Middleware must not call back into the Router.
	Handle(nav *Navigation, next func() error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(nav *Navigation, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(nav *Navigation, next func() error) error {
	return f(nav, next)
}

// Backend is the navigation primitive the router drives.
// Addresses are address-bar strings; the router converts between addresses
// and application paths with its history mode.
type Backend interface {
	// Current returns the current address.
	Current() string

	// Push adds a history entry for address.
	Push(address string) error

	// Replace overwrites the current history entry with address.
	Replace(address string) error

	// Observe registers fn for address changes the backend did not receive
	// through Push or Replace. The returned func removes the registration.
	Observe(fn func(address string)) (stop func())
}

// Traverser is implemented by backends that can move through history.
type Traverser interface {
	Back() error
	Forward() error
}
