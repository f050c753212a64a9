// Package views holds the renderable views addressed by router view handles.
//
// The router never looks inside a view: it hands back a ViewHandle and the
// hosting shell asks the Registry to render it.
package views

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/nerviz/viewrouter/pkg/routepath"
	"github.com/nerviz/viewrouter/pkg/router"
)

// Registry errors.
var (
	ErrDuplicateView = errors.New("view already registered")
	ErrUnknownView   = errors.New("unknown view")
)

// Data is passed to a view when it renders.
type Data struct {
	// Path is the current path as the router recorded it.
	Path string

	// Params are the route parameters.
	Params map[string]string

	// Query is the query string of Path (without "?").
	Query string
}

// View renders one screen of the application.
type View interface {
	Title() string
	Render(w io.Writer, data Data) error
}

// Registry maps view handles to views.
type Registry struct {
	mu       sync.RWMutex
	views    map[router.ViewHandle]View
	notFound View
}

// NewRegistry creates an empty registry using the default not-found view.
func NewRegistry() *Registry {
	return &Registry{
		views:    make(map[router.ViewHandle]View),
		notFound: NotFound(),
	}
}

// Register adds a view under handle.
func (r *Registry) Register(handle router.ViewHandle, view View) error {
	if handle == "" || view == nil {
		return fmt.Errorf("register view %q: handle and view are required", handle)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.views[handle]; exists {
		return fmt.Errorf("register view %q: %w", handle, ErrDuplicateView)
	}
	r.views[handle] = view
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(handle router.ViewHandle, view View) {
	if err := r.Register(handle, view); err != nil {
		panic(err)
	}
}

// SetNotFound replaces the view rendered for unmatched paths.
func (r *Registry) SetNotFound(view View) {
	r.mu.Lock()
	r.notFound = view
	r.mu.Unlock()
}

// Lookup returns the view registered under handle.
func (r *Registry) Lookup(handle router.ViewHandle) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[handle]
	return v, ok
}

// Handles returns the registered handles in sorted order.
func (r *Registry) Handles() []router.ViewHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handles := make([]router.ViewHandle, 0, len(r.views))
	for h := range r.views {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// Check returns an error naming every route whose view is not registered.
func (r *Registry) Check(routes router.RouteTable) error {
	var missing []error
	for i, route := range routes {
		if _, ok := r.Lookup(route.View); !ok {
			missing = append(missing, fmt.Errorf("route %d (%q): %w %q", i, route.Path, ErrUnknownView, route.View))
		}
	}
	return errors.Join(missing...)
}

// Rendered is the output of rendering a navigation state.
type Rendered struct {
	Handle router.ViewHandle
	Title  string
	HTML   template.HTML
	Found  bool
}

// RenderState renders the view matched by state, or the not-found view when
// the state is unmatched.
func (r *Registry) RenderState(state router.NavigationState) (Rendered, error) {
	data := Data{Path: state.CurrentPath, Params: state.Params, Query: queryOf(state.CurrentPath)}

	var (
		view  View
		found bool
	)
	if state.Matched != nil {
		v, ok := r.Lookup(state.Matched.View)
		if !ok {
			return Rendered{}, fmt.Errorf("render %q: %w %q", state.CurrentPath, ErrUnknownView, state.Matched.View)
		}
		view, found = v, true
	} else {
		r.mu.RLock()
		view = r.notFound
		r.mu.RUnlock()
	}

	var buf bytes.Buffer
	if err := view.Render(&buf, data); err != nil {
		return Rendered{}, fmt.Errorf("render %q: %w", state.CurrentPath, err)
	}

	return Rendered{
		Handle: state.View(),
		Title:  view.Title(),
		HTML:   template.HTML(buf.String()),
		Found:  found,
	}, nil
}

func queryOf(path string) string {
	path, _, _ = strings.Cut(path, "#")
	_, query := routepath.SplitPathAndQuery(path)
	return query
}
