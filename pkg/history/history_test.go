package history

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Web, false},
		{"web", Web, false},
		{"history", Web, false},
		{"HASH", Hash, false},
		{" hash ", Hash, false},
		{"memory", Web, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModeHrefPathRoundTrip(t *testing.T) {
	paths := []string{"/", "/config", "/users/42?tab=a"}
	for _, mode := range []Mode{Web, Hash} {
		for _, p := range paths {
			if got := mode.Path(mode.Href(p)); got != p {
				t.Errorf("%v: Path(Href(%q)) = %q", mode, p, got)
			}
		}
	}
}

func TestModeHash(t *testing.T) {
	if got := Hash.Href("/config"); got != "/#/config" {
		t.Errorf("Hash.Href = %q, want /#/config", got)
	}
	if got := Hash.Path("/"); got != "/" {
		t.Errorf("Hash.Path(/) = %q, want /", got)
	}
	if got := Hash.Path("/index.html#config"); got != "/config" {
		t.Errorf("Hash.Path = %q, want /config", got)
	}
	if got := Web.Href(""); got != "/" {
		t.Errorf("Web.Href(\"\") = %q, want /", got)
	}
	if Web.String() != "web" || Hash.String() != "hash" {
		t.Errorf("unexpected mode names %q %q", Web, Hash)
	}
}

func TestMemoryPushReplace(t *testing.T) {
	m := NewMemory("/")
	if err := m.Push("/config"); err != nil {
		t.Fatal(err)
	}
	if err := m.Replace("/config?tab=2"); err != nil {
		t.Fatal(err)
	}
	entries, idx := m.Entries()
	if !reflect.DeepEqual(entries, []string{"/", "/config?tab=2"}) || idx != 1 {
		t.Errorf("Entries() = %v, %d", entries, idx)
	}
	if m.Current() != "/config?tab=2" {
		t.Errorf("Current() = %q", m.Current())
	}
}

func TestMemoryBackForwardNotifies(t *testing.T) {
	m := NewMemory("/")
	var seen []string
	stop := m.Observe(func(addr string) { seen = append(seen, addr) })

	_ = m.Push("/a")
	_ = m.Push("/b")
	if len(seen) != 0 {
		t.Fatalf("Push should not notify, got %v", seen)
	}

	if err := m.Back(); err != nil {
		t.Fatal(err)
	}
	if err := m.Back(); err != nil {
		t.Fatal(err)
	}
	if err := m.Back(); err != nil { // already at start
		t.Fatal(err)
	}
	if err := m.Forward(); err != nil {
		t.Fatal(err)
	}

	want := []string{"/a", "/", "/a"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("notifications = %v, want %v", seen, want)
	}

	// Push from the middle drops forward entries.
	_ = m.Push("/c")
	entries, idx := m.Entries()
	if !reflect.DeepEqual(entries, []string{"/", "/a", "/c"}) || idx != 2 {
		t.Errorf("Entries() = %v, %d", entries, idx)
	}

	stop()
	_ = m.Back()
	if len(seen) != 3 {
		t.Errorf("stopped observer still notified: %v", seen)
	}
}

func TestMemoryVisit(t *testing.T) {
	m := NewMemory("")
	var got string
	m.Observe(func(addr string) { got = addr })
	if err := m.Visit("/config"); err != nil {
		t.Fatal(err)
	}
	if got != "/config" || m.Len() != 2 {
		t.Errorf("Visit: observed %q, len %d", got, m.Len())
	}
}

func TestMemoryUnavailable(t *testing.T) {
	m := NewMemory("/")
	m.SetAvailable(false)

	for name, fn := range map[string]func() error{
		"push":    func() error { return m.Push("/x") },
		"replace": func() error { return m.Replace("/x") },
		"back":    m.Back,
		"visit":   func() error { return m.Visit("/x") },
	} {
		if err := fn(); !errors.Is(err, ErrUnavailable) {
			t.Errorf("%s: error = %v, want ErrUnavailable", name, err)
		}
	}
	if m.Current() != "/" || m.Len() != 1 {
		t.Errorf("unavailable backend was mutated: %q len %d", m.Current(), m.Len())
	}

	m.SetAvailable(true)
	if err := m.Push("/x"); err != nil {
		t.Errorf("Push after SetAvailable(true): %v", err)
	}
}
