package errors

import "sort"

// Template defines a registered diagnostic.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]Template{
	// ============================================
	// Configuration (R100-R199)
	// ============================================

	"R101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The command looks for viewrouter.json in the working directory unless --config names another file.",
	},
	"R102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "viewrouter.json could not be parsed as JSON.",
	},
	"R103": {
		Category: CategoryConfig,
		Message:  "Invalid history mode",
		Detail:   `The history mode must be "web" or "hash".`,
	},
	"R104": {
		Category: CategoryConfig,
		Message:  "Invalid server port",
		Detail:   "The port must be between 0 and 65535.",
	},
	"R105": {
		Category: CategoryConfig,
		Message:  "Route table is empty",
		Detail:   "A router needs at least one route.",
	},
	"R106": {
		Category: CategoryConfig,
		Message:  "Invalid route pattern",
		Detail:   `Route patterns start with "/" and use ":name", ":name:type" and a final "*name" for dynamic segments.`,
	},
	"R107": {
		Category: CategoryConfig,
		Message:  "Route has no view",
		Detail:   "Every route must name the view it renders.",
	},
	"R108": {
		Category: CategoryConfig,
		Message:  "History backend missing",
		Detail:   "The router was created without a history backend.",
	},
	"R109": {
		Category: CategoryConfig,
		Message:  "Unknown view",
		Detail:   "A route names a view that is not registered.",
	},
	"R110": {
		Category: CategoryConfig,
		Message:  "Invalid asset configuration",
		Detail:   "Assets are served either from a directory or from an S3 bucket.",
	},
	"R111": {
		Category: CategoryConfig,
		Message:  "Invalid logging configuration",
		Detail:   `The log level must be debug, info, warn or error, and the format text or json.`,
	},

	// ============================================
	// Navigation (R200-R299)
	// ============================================

	"R201": {
		Category: CategoryNavigation,
		Message:  "History unavailable",
		Detail:   "The history backend rejected the navigation. The router state is unchanged.",
	},
	"R202": {
		Category: CategoryNavigation,
		Message:  "Navigation cancelled",
		Detail:   "A navigation middleware returned without committing the navigation.",
	},
	"R203": {
		Category: CategoryNavigation,
		Message:  "No route matches",
		Detail:   "The path did not match any route. The application shows the not-found view.",
	},
	"R204": {
		Category: CategoryNavigation,
		Message:  "Bridge handshake failed",
		Detail:   "The browser client did not send its current address after connecting.",
	},

	// ============================================
	// CLI (R300-R399)
	// ============================================

	"R300": {
		Category: CategoryCLI,
		Message:  "Command failed",
	},
	"R301": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
	"R302": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
}

// GetAllCodes returns all registered codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for a code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
