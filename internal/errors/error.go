package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/nerviz/viewrouter/pkg/router"
)

// Category represents the type of diagnostic.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryNavigation Category = "navigation"
	CategoryCLI        Category = "cli"
)

// Location is a position in a file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Diagnostic is a structured error with an optional file location and a
// suggestion for fixing it.
type Diagnostic struct {
	// Code is a unique identifier (e.g., "R106").
	Code string

	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	Location *Location

	// Context contains the file lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// Example shows a correct configuration.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Diagnostic) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Diagnostic) Unwrap() error {
	return e.Wrapped
}

// WithLocation points the diagnostic at file:line:column and loads the
// surrounding lines.
func (e *Diagnostic) WithLocation(file string, line, column int) *Diagnostic {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *Diagnostic) WithSuggestion(s string) *Diagnostic {
	e.Suggestion = s
	return e
}

// WithExample adds an example.
func (e *Diagnostic) WithExample(ex string) *Diagnostic {
	e.Example = ex
	return e
}

// WithDetail replaces the explanation.
func (e *Diagnostic) WithDetail(d string) *Diagnostic {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Diagnostic) Wrap(err error) *Diagnostic {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a Diagnostic from a registered code.
func New(code string) *Diagnostic {
	template, ok := registry[code]
	if !ok {
		return &Diagnostic{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Diagnostic{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a Diagnostic with a formatted message and no code.
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a Diagnostic with code, unless it already is one.
func FromError(err error, code string) *Diagnostic {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d
	}
	return New(code).Wrap(err)
}

// FromRouter maps a router error to its diagnostic code. Errors the router
// does not define are wrapped as R300.
func FromRouter(err error) *Diagnostic {
	if err == nil {
		return nil
	}

	var cfgErr *router.ConfigurationError
	if stderrors.As(err, &cfgErr) {
		code := "R105"
		switch cfgErr.Kind {
		case router.InvalidPattern:
			code = "R106"
		case router.MissingView:
			code = "R107"
		case router.MissingBackend:
			code = "R108"
		}
		d := New(code).Wrap(err)
		if cfgErr.Index >= 0 {
			d.Detail = fmt.Sprintf("Route %d (%q): %v", cfgErr.Index, cfgErr.Path, cfgErr.Err)
		}
		return d
	}

	var navErr *router.NavigationError
	if stderrors.As(err, &navErr) {
		return New("R201").
			WithDetail(fmt.Sprintf("%s %q was rejected by the history backend: %v", navErr.Mode, navErr.Path, navErr.Err)).
			Wrap(err)
	}
	if stderrors.Is(err, router.ErrNavigationCancelled) {
		return New("R202").Wrap(err)
	}

	return FromError(err, "R300")
}
