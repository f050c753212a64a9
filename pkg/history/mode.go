// Package history provides address-bar modes and history backends for the
// router.
//
// A Mode decides how a logical application path is represented in the
// address bar. Web mode uses the path itself and needs the hosting server to
// answer arbitrary paths with the application shell; Hash mode keeps the
// document at "/" and carries the path after a "#".
//
// Memory is a complete in-process backend with a back/forward stack. It is
// used by tests and by hosts that have no browser attached.
package history

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when the environment cannot perform a history
// mutation.
var ErrUnavailable = errors.New("history unavailable")

// Mode selects how navigation is represented in the address bar.
type Mode uint8

const (
	// Web uses plain paths ("/config").
	Web Mode = iota
	// Hash uses fragment addresses ("/#/config").
	Hash
)

// hashPrefix is the address prefix used in Hash mode.
const hashPrefix = "/#"

// ParseMode parses a configured history mode.
// "web" and "history" select Web; "hash" selects Hash.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "web", "history":
		return Web, nil
	case "hash":
		return Hash, nil
	default:
		return Web, fmt.Errorf("unknown history mode %q", s)
	}
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Web:
		return "web"
	case Hash:
		return "hash"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// Href converts an application path into an address-bar address.
func (m Mode) Href(path string) string {
	if path == "" {
		path = "/"
	}
	if m == Hash {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return hashPrefix + path
	}
	return path
}

// Path converts an address-bar address back into an application path.
// In Hash mode an address without a fragment maps to "/".
func (m Mode) Path(address string) string {
	if m != Hash {
		if address == "" {
			return "/"
		}
		return address
	}
	_, fragment, ok := strings.Cut(address, "#")
	if !ok || fragment == "" {
		return "/"
	}
	if !strings.HasPrefix(fragment, "/") {
		fragment = "/" + fragment
	}
	return fragment
}
