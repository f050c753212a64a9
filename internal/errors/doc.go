// Package errors provides coded, actionable diagnostics for the viewrouter
// command.
//
// Every diagnostic has a code that maps to a short message and a longer
// explanation:
//   - R1xx: configuration (viewrouter.json, route table, assets)
//   - R2xx: navigation (history backend, bridge)
//   - R3xx: command line usage and server lifecycle
//
// Configuration diagnostics can point into viewrouter.json:
//
//	err := errors.New("R102").
//	    WithLocation("viewrouter.json", 7, 14).
//	    WithSuggestion("Remove the trailing comma")
//
//	fmt.Println(err.Format())
//	// ERROR R102: Invalid configuration file
//	//
//	//   viewrouter.json:7:14
//	//
//	//        5 │   "routes": [
//	//        6 │     {"path": "/", "view": "main"},
//	//   →    7 │   ],
//	//          │              ^
//	//  ...
//
// Router errors are converted with FromRouter.
package errors
