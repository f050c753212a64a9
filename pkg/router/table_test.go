package router

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nerviz/viewrouter/pkg/routepath"
)

func TestCompileCopiesRoutes(t *testing.T) {
	routes := appRoutes()
	table, err := Compile(routes)
	if err != nil {
		t.Fatal(err)
	}

	routes[1].View = "mutated"
	if v := table.Resolve("/config").View(); v != configView {
		t.Errorf("table follows caller mutation: %q", v)
	}

	entries := table.Entries()
	entries[0].View = "mutated"
	if v := table.Resolve("/").View(); v != mainView {
		t.Errorf("Entries() exposed internal slice: %q", v)
	}
}

func TestCompileInvalidPatternCause(t *testing.T) {
	_, err := Compile(RouteTable{{Path: "/a//b", View: "x"}})
	var pe *routepath.PatternError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want wrapped *routepath.PatternError", err)
	}
	if !strings.Contains(err.Error(), "INVALID_PATTERN") || !strings.Contains(err.Error(), "/a//b") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestTableShadowed(t *testing.T) {
	table, err := Compile(RouteTable{
		{Path: "/", View: "main"},
		{Path: "/config", View: "config"},
		{Path: "/config", View: "config-2"},
		{Path: "/", View: "main-2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]int{2: 1, 3: 0}
	if got := table.Shadowed(); !reflect.DeepEqual(got, want) {
		t.Errorf("Shadowed() = %v, want %v", got, want)
	}
}

func TestResolutionQuery(t *testing.T) {
	table, _ := Compile(appRoutes())
	res := table.Resolve("/config/?tab=models")
	if res.Path != "/config" || res.Query != "tab=models" {
		t.Errorf("Path = %q Query = %q", res.Path, res.Query)
	}
	miss := table.Resolve("/nope?x=1")
	if miss.Matched || miss.Path != "/nope" || miss.Query != "x=1" {
		t.Errorf("unmatched resolution = %+v", miss)
	}
}

func TestErrorStrings(t *testing.T) {
	cfg := &ConfigurationError{Kind: EmptyRouteTable, Index: -1, Err: ErrEmptyRouteTable}
	if !strings.Contains(cfg.Error(), "EMPTY_ROUTE_TABLE") {
		t.Errorf("ConfigurationError.Error() = %q", cfg.Error())
	}
	nav := &NavigationError{Kind: HistoryUnavailable, Path: "/x", Mode: Push, Err: ErrHistoryUnavailable}
	if !strings.Contains(nav.Error(), "push") || !strings.Contains(nav.Error(), "/x") {
		t.Errorf("NavigationError.Error() = %q", nav.Error())
	}
	if errors.Is(cfg, ErrHistoryUnavailable) {
		t.Error("ConfigurationError should not match ErrHistoryUnavailable")
	}
}
