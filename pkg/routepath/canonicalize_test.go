package routepath

import (
	"errors"
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantPath     string
		wantQuery    string
		wantFragment string
		wantChanged  bool
		wantErr      error
	}{
		{name: "root", input: "/", wantPath: "/"},
		{name: "empty string", input: "", wantPath: "/", wantChanged: true},
		{name: "no leading slash", input: "config", wantPath: "/config", wantChanged: true},
		{name: "trailing slash", input: "/config/", wantPath: "/config", wantChanged: true},
		{name: "collapse slashes", input: "/blog//post", wantPath: "/blog/post", wantChanged: true},
		{name: "single dot", input: "/blog/./post", wantPath: "/blog/post", wantChanged: true},
		{name: "double dot", input: "/blog/posts/../other", wantPath: "/blog/other", wantChanged: true},
		{name: "double dot to root", input: "/blog/../", wantPath: "/", wantChanged: true},
		{name: "query stripped", input: "/config?tab=models", wantPath: "/config", wantQuery: "tab=models"},
		{name: "fragment stripped", input: "/config#section", wantPath: "/config", wantFragment: "section"},
		{
			name:         "query and fragment",
			input:        "/config/?a=1#top",
			wantPath:     "/config",
			wantQuery:    "a=1",
			wantFragment: "top",
			wantChanged:  true,
		},
		{name: "question mark inside fragment", input: "/#/config?x=1", wantPath: "/", wantFragment: "/config?x=1"},
		{name: "valid escape", input: "/caf%C3%A9", wantPath: "/caf%C3%A9"},
		{name: "backslash", input: "/a\\b", wantErr: ErrBackslashInPath},
		{name: "nul byte", input: "/a%00b", wantErr: ErrNullByteInPath},
		{name: "bad escape", input: "/a%GG", wantErr: ErrInvalidPercentEscape},
		{name: "truncated escape", input: "/a%2", wantErr: ErrInvalidPercentEscape},
		{name: "escapes root", input: "/../secret", wantErr: ErrPathEscapesRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Canonicalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Canonicalize(%q) unexpected error: %v", tt.input, err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, tt.wantPath)
			}
			if got.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", got.Query, tt.wantQuery)
			}
			if got.Fragment != tt.wantFragment {
				t.Errorf("Fragment = %q, want %q", got.Fragment, tt.wantFragment)
			}
			if got.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", got.Changed, tt.wantChanged)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{"/", "/config/", "a//b/./c/..", "/x?y#z"}
	for _, in := range inputs {
		first, err := Canonicalize(in)
		if err != nil {
			t.Fatalf("Canonicalize(%q): %v", in, err)
		}
		second, err := Canonicalize(first.Path)
		if err != nil {
			t.Fatalf("Canonicalize(%q): %v", first.Path, err)
		}
		if second.Path != first.Path || second.Changed {
			t.Errorf("Canonicalize not idempotent for %q: %q then %q", in, first.Path, second.Path)
		}
	}
}

func TestDecodeSegment(t *testing.T) {
	if got, err := DecodeSegment("caf%C3%A9", false); err != nil || got != "café" {
		t.Errorf("DecodeSegment = %q, %v", got, err)
	}
	if _, err := DecodeSegment("a%2Fb", false); !errors.Is(err, ErrEncodedSlashInSegment) {
		t.Errorf("expected ErrEncodedSlashInSegment, got %v", err)
	}
	if got, err := DecodeSegment("a%2Fb", true); err != nil || got != "a/b" {
		t.Errorf("catch-all DecodeSegment = %q, %v", got, err)
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"/config", []string{"config"}},
		{"/a/b/c", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := SplitPath(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitPath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
