// Package router maps URL paths to view handles and keeps navigation state
// in sync with a history backend.
//
// # Route Table
//
// Routes are declared once, as an ordered list:
//
//	table := router.RouteTable{
//	    {Path: "/", View: "main"},
//	    {Path: "/config", View: "config"},
//	    {Path: "/projects/:id:int", View: "project"},
//	    {Path: "/files/*path", View: "files"},
//	}
//
// Entries are tried in declaration order and the first match wins, so a
// literal route declared before a parameter route shadows it, and a
// duplicate pattern declared later is never reached.
//
// # Patterns
//
//	/config          literal
//	/projects/:id    any single segment, captured as "id"
//	/projects/:id:int
//	                 single segment constrained to int (also uint, uuid)
//	/files/*path     one or more trailing segments, captured as "path"
//
// # Resolution
//
// Resolve canonicalizes the path (query and fragment stripped, repeated
// slashes collapsed, dot segments resolved, trailing slash removed) and
// returns a Resolution. An unmatched path is a normal result, not an error;
// the hosting shell decides what to render for it.
//
// # Navigation
//
//	backend := history.NewMemory("/")
//	r, err := router.New(table, history.Web, backend)
//	if err != nil {
//	    log.Fatal(err) // *ConfigurationError
//	}
//
//	if err := r.Navigate("/config", router.Push); err != nil {
//	    // *NavigationError, state unchanged
//	}
//
//	state := r.State()
//	// state.CurrentPath == "/config", state.Matched.View == "config"
//
// Address changes that originate in the environment (back/forward buttons,
// typed URLs) reach the router through Backend.Observe and are committed
// with OnHistoryChange.
package router
