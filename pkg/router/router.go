package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nerviz/viewrouter/pkg/history"
)

// Router resolves paths against a route table and keeps NavigationState in
// sync with a history backend.
//
// All state transitions are serialized: a navigation requested by the
// application and an address change reported by the backend never
// interleave. Subscribers run after the transition has been committed,
// outside the lock, so they may navigate.
type Router struct {
	table   *Table
	mode    history.Mode
	backend Backend
	logger  *slog.Logger

	middleware []Middleware

	mu    sync.Mutex
	state NavigationState

	subMu       sync.Mutex
	subscribers map[int]func(NavigationState)
	nextSubID   int

	stopObserve func()
	closeOnce   sync.Once
}

// Option configures a Router.
type Option func(*Router)

// WithMiddleware appends navigation middleware. Middleware runs in order,
// first to last, around every commit.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// WithLogger sets the router's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a router.
//
// The table is validated before the backend is touched, so a
// *ConfigurationError leaves the backend unused. On success the initial
// state is seeded from backend.Current and the router starts observing the
// backend.
func New(routes RouteTable, mode history.Mode, backend Backend, opts ...Option) (*Router, error) {
	table, err := Compile(routes)
	if err != nil {
		return nil, err
	}
	return NewWithTable(table, mode, backend, opts...)
}

// NewWithTable creates a router over an already compiled table. Hosts that
// serve many sessions compile the table once and share it.
func NewWithTable(table *Table, mode history.Mode, backend Backend, opts ...Option) (*Router, error) {
	if table == nil || table.Len() == 0 {
		return nil, &ConfigurationError{Kind: EmptyRouteTable, Index: -1, Err: ErrEmptyRouteTable}
	}
	if backend == nil {
		return nil, &ConfigurationError{Kind: MissingBackend, Index: -1, Err: ErrMissingBackend}
	}

	r := &Router{
		table:       table,
		mode:        mode,
		backend:     backend,
		logger:      slog.Default().With("component", "router"),
		subscribers: make(map[int]func(NavigationState)),
	}
	for _, opt := range opts {
		opt(r)
	}

	initial := mode.Path(backend.Current())
	r.state = stateFor(initial, table.Resolve(initial))
	r.stopObserve = backend.Observe(r.OnHistoryChange)

	r.logger.Debug("router started",
		"routes", table.Len(),
		"mode", mode.String(),
		"path", initial,
		"matched", r.state.Matched != nil)

	return r, nil
}

// Resolve matches path against the route table. It has no side effects.
func (r *Router) Resolve(path string) Resolution {
	return r.table.Resolve(path)
}

// Table returns the router's compiled route table.
func (r *Router) Table() *Table {
	return r.table
}

// Mode returns the router's history mode.
func (r *Router) Mode() history.Mode {
	return r.mode
}

// State returns a copy of the current navigation state.
func (r *Router) State() NavigationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyState(r.state)
}

// Navigate moves the application to path, recording it with mode.
func (r *Router) Navigate(path string, mode NavigationMode) error {
	return r.NavigateContext(context.Background(), path, mode)
}

// NavigateContext is Navigate with a context passed to middleware.
//
// The path is resolved, the backend is asked to push or replace the entry,
// and only then is the state committed. If the backend refuses, a
// *NavigationError is returned and the state is unchanged. An unmatched
// path is committed with a nil Matched entry. Once committed, a navigation
// stands: an error a middleware returns after next is logged, not returned.
// Modes other than Push and Replace fail with ErrInvalidMode.
func (r *Router) NavigateContext(ctx context.Context, path string, mode NavigationMode) error {
	if mode != Push && mode != Replace {
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	state, err := r.transition(ctx, path, mode, func(address string) error {
		if mode == Replace {
			return r.backend.Replace(address)
		}
		return r.backend.Push(address)
	})
	if err != nil {
		return err
	}

	r.notify(state)
	return nil
}

// OnHistoryChange commits an address change reported by the backend.
// Middleware sees it with Mode Pop but cannot veto it.
func (r *Router) OnHistoryChange(address string) {
	path := r.mode.Path(address)
	state, _ := r.transition(context.Background(), path, Pop, nil)
	r.notify(state)
}

// Back asks the backend to move one entry back. The resulting address
// change arrives through OnHistoryChange.
func (r *Router) Back() error {
	return r.traverse(Traverser.Back, "back")
}

// Forward asks the backend to move one entry forward.
func (r *Router) Forward() error {
	return r.traverse(Traverser.Forward, "forward")
}

func (r *Router) traverse(move func(Traverser) error, name string) error {
	t, ok := r.backend.(Traverser)
	if !ok {
		return &NavigationError{Kind: HistoryUnavailable, Path: name, Mode: Pop, Err: ErrHistoryUnavailable}
	}
	if err := move(t); err != nil {
		return &NavigationError{Kind: HistoryUnavailable, Path: name, Mode: Pop, Err: err}
	}
	return nil
}

// Subscribe registers fn to receive the state after every committed
// transition. The returned func removes the registration.
func (r *Router) Subscribe(fn func(NavigationState)) (cancel func()) {
	r.subMu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.subscribers, id)
		r.subMu.Unlock()
	}
}

// Close stops observing the backend. It is safe to call more than once.
func (r *Router) Close() {
	r.closeOnce.Do(func() {
		if r.stopObserve != nil {
			r.stopObserve()
		}
	})
}

// transition runs the middleware chain around apply and the commit.
// apply is nil for changes the backend already owns.
func (r *Router) transition(ctx context.Context, path string, mode NavigationMode, apply func(address string) error) (NavigationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nav := &Navigation{
		Context:    ctx,
		Path:       path,
		Mode:       mode,
		Resolution: r.table.Resolve(path),
		From:       r.state.CurrentPath,
	}

	committed := false
	commit := func() {
		r.state = stateFor(path, nav.Resolution)
		committed = true
	}
	err := composeMiddleware(nav, r.middleware, func() error {
		if apply != nil {
			if err := apply(r.mode.Href(path)); err != nil {
				return &NavigationError{Kind: HistoryUnavailable, Path: path, Mode: mode, Err: err}
			}
		}
		commit()
		return nil
	})

	switch {
	case committed && err != nil:
		// The backend already holds the entry.
		r.logger.Warn("middleware failed after commit", "path", path, "mode", mode.String(), "error", err)
	case !committed && mode == Pop:
		// The backend has already moved; the state follows it.
		r.logger.Warn("history change committed despite middleware", "path", path, "error", err)
		commit()
	case err != nil:
		r.logger.Debug("navigation failed", "path", path, "mode", mode.String(), "error", err)
		return NavigationState{}, err
	case !committed:
		r.logger.Debug("navigation cancelled by middleware", "path", path, "mode", mode.String())
		return NavigationState{}, ErrNavigationCancelled
	}

	r.logger.Debug("navigated",
		"from", nav.From,
		"path", path,
		"mode", mode.String(),
		"view", string(nav.Resolution.View()),
		"matched", nav.Resolution.Matched)

	return copyState(r.state), nil
}

func (r *Router) notify(state NavigationState) {
	r.subMu.Lock()
	fns := make([]func(NavigationState), 0, len(r.subscribers))
	for id := 0; id < r.nextSubID; id++ {
		if fn, ok := r.subscribers[id]; ok {
			fns = append(fns, fn)
		}
	}
	r.subMu.Unlock()

	for _, fn := range fns {
		fn(copyState(state))
	}
}

func stateFor(path string, res Resolution) NavigationState {
	state := NavigationState{CurrentPath: path}
	if res.Matched {
		entry := res.Entry
		state.Matched = &entry
		state.Params = res.Params
	}
	return state
}

func copyState(s NavigationState) NavigationState {
	out := NavigationState{CurrentPath: s.CurrentPath}
	if s.Matched != nil {
		entry := *s.Matched
		out.Matched = &entry
	}
	if s.Params != nil {
		out.Params = make(map[string]string, len(s.Params))
		for k, v := range s.Params {
			out.Params[k] = v
		}
	}
	return out
}
