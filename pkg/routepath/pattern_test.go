package routepath

import (
	"errors"
	"reflect"
	"testing"
)

func TestCompileRejectsInvalidPatterns(t *testing.T) {
	invalid := []string{
		"",
		"config",
		"/config/",
		"/a//b",
		"/a/./b",
		"/a/../b",
		"/a?x=1",
		"/a#b",
		"/a\\b",
		"/:",
		"/:1abc",
		"/:id:float",
		"/*rest/more",
		"/*",
		"/:id/:id",
		"/:id/*id",
	}
	for _, p := range invalid {
		t.Run(p, func(t *testing.T) {
			_, err := Compile(p)
			var pe *PatternError
			if !errors.As(err, &pe) {
				t.Fatalf("Compile(%q) error = %v, want *PatternError", p, err)
			}
			if pe.Pattern != p {
				t.Errorf("PatternError.Pattern = %q, want %q", pe.Pattern, p)
			}
		})
	}
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    map[string]string
		ok      bool
	}{
		{"/", "/", map[string]string{}, true},
		{"/", "/config", nil, false},
		{"/config", "/config", map[string]string{}, true},
		{"/config", "/", nil, false},
		{"/config", "/config/models", nil, false},
		{"/users/:id", "/users/42", map[string]string{"id": "42"}, true},
		{"/users/:id", "/users", nil, false},
		{"/users/:id:int", "/users/42", map[string]string{"id": "42"}, true},
		{"/users/:id:int", "/users/abc", nil, false},
		{"/users/:id:uint", "/users/-1", nil, false},
		{"/docs/:id:uuid", "/docs/123e4567-e89b-12d3-a456-426614174000",
			map[string]string{"id": "123e4567-e89b-12d3-a456-426614174000"}, true},
		{"/docs/:id:uuid", "/docs/nope", nil, false},
		{"/files/*path", "/files/a/b/c", map[string]string{"path": "a/b/c"}, true},
		{"/files/*path", "/files", nil, false},
		{"/files/*path", "/files/a%2Fb", map[string]string{"path": "a/b"}, true},
		{"/users/:name", "/users/a%2Fb", nil, false},
		{"/users/:name", "/users/caf%C3%A9", map[string]string{"name": "café"}, true},
		{"/café", "/caf%C3%A9", map[string]string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			p := MustCompile(tt.pattern)
			got, ok := p.Match(tt.path)
			if ok != tt.ok {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match(%q) params = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPatternSegments(t *testing.T) {
	p := MustCompile("/projects/:id:int/*rest")
	want := []Segment{
		{Kind: SegmentStatic, Value: "projects"},
		{Kind: SegmentParam, Name: "id", Type: "int"},
		{Kind: SegmentCatchAll, Name: "rest", Type: "[]string"},
	}
	if got := p.Segments(); !reflect.DeepEqual(got, want) {
		t.Errorf("Segments() = %+v, want %+v", got, want)
	}
	if p.String() != "/projects/:id:int/*rest" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile should panic on invalid pattern")
		}
	}()
	MustCompile("no-slash")
}

func TestValidateParam(t *testing.T) {
	tests := []struct {
		value, typ string
		wantErr    bool
	}{
		{"123", "int", false},
		{"-5", "int", false},
		{"abc", "int", true},
		{"7", "uint", false},
		{"-7", "uint", true},
		{"anything", "string", false},
		{"anything", "", false},
		{"123e4567-e89b-12d3-a456-426614174000", "uuid", false},
		{"123", "uuid", true},
	}
	for _, tt := range tests {
		err := ValidateParam(tt.value, tt.typ)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateParam(%q, %q) error = %v, wantErr %v", tt.value, tt.typ, err, tt.wantErr)
		}
	}
}
