package routepath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SegmentKind identifies how a pattern segment matches.
type SegmentKind uint8

const (
	// SegmentStatic matches one path segment literally.
	SegmentStatic SegmentKind = iota
	// SegmentParam matches any one path segment (":id").
	SegmentParam
	// SegmentCatchAll matches one or more trailing segments ("*slug").
	SegmentCatchAll
)

// Segment is one compiled element of a Pattern.
type Segment struct {
	Kind SegmentKind

	// Value is the literal text for static segments.
	Value string

	// Name is the parameter name for param and catch-all segments.
	Name string

	// Type is the parameter constraint ("string", "int", "uint", "uuid").
	Type string
}

// Pattern is a compiled route pattern such as "/projects/:id:int/*rest".
type Pattern struct {
	raw      string
	segments []Segment
}

// PatternError describes why a route pattern failed to compile.
type PatternError struct {
	Pattern string
	Reason  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid route pattern %q: %s", e.Pattern, e.Reason)
}

var paramNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compile parses a route pattern.
//
// Patterns are absolute and canonical: they start with "/", contain no
// empty, "." or ".." segments and carry no trailing slash (except "/").
// Dynamic segments use ":name" or ":name:type"; a final "*name" captures
// the remainder of the path.
func Compile(pattern string) (*Pattern, error) {
	fail := func(reason string) (*Pattern, error) {
		return nil, &PatternError{Pattern: pattern, Reason: reason}
	}

	if !strings.HasPrefix(pattern, "/") {
		return fail("must start with /")
	}
	if strings.ContainsAny(pattern, "?#\\") {
		return fail("must not contain query, fragment or backslash")
	}
	if pattern == "/" {
		return &Pattern{raw: pattern}, nil
	}
	if strings.HasSuffix(pattern, "/") {
		return fail("trailing slash")
	}

	parts := strings.Split(pattern[1:], "/")
	segments := make([]Segment, 0, len(parts))
	seen := make(map[string]bool)

	for i, part := range parts {
		switch {
		case part == "" || part == "." || part == "..":
			return fail(fmt.Sprintf("segment %d is %q", i+1, part))

		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return fail("catch-all must be the last segment")
			}
			name := part[1:]
			if !paramNameRegex.MatchString(name) {
				return fail(fmt.Sprintf("invalid catch-all name %q", name))
			}
			if seen[name] {
				return fail(fmt.Sprintf("duplicate parameter %q", name))
			}
			seen[name] = true
			segments = append(segments, Segment{Kind: SegmentCatchAll, Name: name, Type: "[]string"})

		case strings.HasPrefix(part, ":"):
			name, typ := parseParamSegment(part)
			if !paramNameRegex.MatchString(name) {
				return fail(fmt.Sprintf("invalid parameter name %q", name))
			}
			if !knownParamType(typ) {
				return fail(fmt.Sprintf("unknown parameter type %q", typ))
			}
			if seen[name] {
				return fail(fmt.Sprintf("duplicate parameter %q", name))
			}
			seen[name] = true
			segments = append(segments, Segment{Kind: SegmentParam, Name: name, Type: typ})

		default:
			value, err := DecodeSegment(part, false)
			if err != nil {
				return fail(err.Error())
			}
			segments = append(segments, Segment{Kind: SegmentStatic, Value: value})
		}
	}

	return &Pattern{raw: pattern, segments: segments}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern source.
func (p *Pattern) String() string {
	return p.raw
}

// Segments returns a copy of the compiled segments.
func (p *Pattern) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Match matches a canonical path against the pattern and returns the
// extracted parameters. Parameter values are percent-decoded; catch-all
// values join the decoded segments with "/".
func (p *Pattern) Match(path string) (map[string]string, bool) {
	parts := SplitPath(path)
	params := make(map[string]string)

	for i, seg := range p.segments {
		if seg.Kind == SegmentCatchAll {
			if i >= len(parts) {
				return nil, false
			}
			rest := make([]string, 0, len(parts)-i)
			for _, part := range parts[i:] {
				decoded, err := DecodeSegment(part, true)
				if err != nil {
					return nil, false
				}
				rest = append(rest, decoded)
			}
			params[seg.Name] = strings.Join(rest, "/")
			return params, true
		}

		if i >= len(parts) {
			return nil, false
		}
		decoded, err := DecodeSegment(parts[i], false)
		if err != nil {
			return nil, false
		}

		switch seg.Kind {
		case SegmentStatic:
			if decoded != seg.Value {
				return nil, false
			}
		case SegmentParam:
			if ValidateParam(decoded, seg.Type) != nil {
				return nil, false
			}
			params[seg.Name] = decoded
		}
	}

	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}

func knownParamType(typ string) bool {
	switch typ {
	case "string", "int", "int64", "int32", "uint", "uint64", "uint32", "uuid":
		return true
	}
	return false
}

// uuidRegex matches valid UUIDs.
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ValidateParam validates a parameter value against its expected type.
func ValidateParam(value, paramType string) error {
	switch paramType {
	case "int", "int64", "int32":
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
	case "uint", "uint64", "uint32":
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
	case "uuid":
		if !uuidRegex.MatchString(value) {
			return fmt.Errorf("invalid UUID: %s", value)
		}
	}
	return nil
}
