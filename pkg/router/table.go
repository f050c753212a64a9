package router

import (
	"github.com/nerviz/viewrouter/pkg/routepath"
)

// Table is a compiled, immutable route table.
type Table struct {
	entries  []RouteEntry
	patterns []*routepath.Pattern
}

// Compile validates routes and compiles their patterns.
//
// Errors are *ConfigurationError: EmptyRouteTable for an empty list,
// InvalidPattern for a pattern routepath.Compile rejects, MissingView for an
// empty view handle. Duplicate patterns are accepted; the earlier entry
// shadows the later one.
func Compile(routes RouteTable) (*Table, error) {
	if len(routes) == 0 {
		return nil, &ConfigurationError{Kind: EmptyRouteTable, Index: -1, Err: ErrEmptyRouteTable}
	}

	t := &Table{
		entries:  make([]RouteEntry, len(routes)),
		patterns: make([]*routepath.Pattern, len(routes)),
	}
	copy(t.entries, routes)

	for i, entry := range t.entries {
		p, err := routepath.Compile(entry.Path)
		if err != nil {
			return nil, &ConfigurationError{Kind: InvalidPattern, Index: i, Path: entry.Path, Err: err}
		}
		if entry.View == "" {
			return nil, &ConfigurationError{Kind: MissingView, Index: i, Path: entry.Path, Err: ErrMissingView}
		}
		t.patterns[i] = p
	}

	return t, nil
}

// Resolve matches path against the table in declaration order.
// It never fails: a path that cannot be canonicalized is unmatched.
func (t *Table) Resolve(path string) Resolution {
	canon, err := routepath.Canonicalize(path)
	if err != nil {
		return Resolution{Index: -1, Path: path}
	}

	for i, p := range t.patterns {
		if params, ok := p.Match(canon.Path); ok {
			return Resolution{
				Matched: true,
				Entry:   t.entries[i],
				Index:   i,
				Params:  params,
				Path:    canon.Path,
				Query:   canon.Query,
			}
		}
	}

	return Resolution{Index: -1, Path: canon.Path, Query: canon.Query}
}

// Entries returns a copy of the table's routes in declaration order.
func (t *Table) Entries() RouteTable {
	return append(RouteTable(nil), t.entries...)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.entries)
}

// Shadowed reports entries that can never match because an earlier entry
// has the identical pattern. The result maps the shadowed index to the
// index that wins.
func (t *Table) Shadowed() map[int]int {
	first := make(map[string]int, len(t.entries))
	shadowed := make(map[int]int)
	for i, e := range t.entries {
		if j, ok := first[e.Path]; ok {
			shadowed[i] = j
			continue
		}
		first[e.Path] = i
	}
	return shadowed
}
