package views

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nerviz/viewrouter/pkg/router"
)

type failingView struct{}

func (failingView) Title() string { return "fail" }
func (failingView) Render(io.Writer, Data) error { return errors.New("render failed") }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegister("main", MustTemplateView("Main", `<h1>main {{.Path}}</h1>`))
	reg.MustRegister("user", MustTemplateView("User", `<h1>user {{index .Params "id"}} {{.Query}}</h1>`))
	return reg
}

func TestRegistryRegister(t *testing.T) {
	reg := testRegistry(t)

	if err := reg.Register("main", MustTemplateView("x", "x")); !errors.Is(err, ErrDuplicateView) {
		t.Errorf("duplicate error = %v", err)
	}
	if err := reg.Register("", MustTemplateView("x", "x")); err == nil {
		t.Error("expected error for empty handle")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Error("expected error for nil view")
	}

	if _, ok := reg.Lookup("main"); !ok {
		t.Error("Lookup(main) missing")
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Error("Lookup(nope) found")
	}

	handles := reg.Handles()
	if len(handles) != 2 || handles[0] != "main" || handles[1] != "user" {
		t.Errorf("Handles() = %v", handles)
	}
}

func TestRegistryCheck(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Check(router.RouteTable{{Path: "/", View: "main"}}); err != nil {
		t.Errorf("Check() = %v", err)
	}
	err := reg.Check(router.RouteTable{{Path: "/", View: "main"}, {Path: "/config", View: "config"}})
	if !errors.Is(err, ErrUnknownView) || !strings.Contains(err.Error(), `"config"`) {
		t.Errorf("Check() = %v", err)
	}
}

func TestRenderStateMatched(t *testing.T) {
	reg := testRegistry(t)
	state := router.NavigationState{
		CurrentPath: "/users/7?tab=a#top",
		Matched:     &router.RouteEntry{Path: "/users/:id", View: "user"},
		Params:      map[string]string{"id": "7"},
	}
	out, err := reg.RenderState(state)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Found || out.Handle != "user" || out.Title != "User" {
		t.Errorf("RenderState() = %+v", out)
	}
	if string(out.HTML) != "<h1>user 7 tab=a</h1>" {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestRenderStateNotFound(t *testing.T) {
	reg := testRegistry(t)
	out, err := reg.RenderState(router.NavigationState{CurrentPath: "/<script>"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Found || out.Handle != "" || out.Title != "Not found" {
		t.Errorf("RenderState() = %+v", out)
	}
	if strings.Contains(string(out.HTML), "<script>") {
		t.Errorf("path not escaped: %s", out.HTML)
	}

	reg.SetNotFound(MustTemplateView("Custom", "custom"))
	out, _ = reg.RenderState(router.NavigationState{CurrentPath: "/x"})
	if out.Title != "Custom" || string(out.HTML) != "custom" {
		t.Errorf("custom not-found = %+v", out)
	}
}

func TestRenderStateErrors(t *testing.T) {
	reg := testRegistry(t)
	_, err := reg.RenderState(router.NavigationState{
		CurrentPath: "/config",
		Matched:     &router.RouteEntry{Path: "/config", View: "config"},
	})
	if !errors.Is(err, ErrUnknownView) {
		t.Errorf("error = %v, want ErrUnknownView", err)
	}

	reg.MustRegister("broken", failingView{})
	_, err = reg.RenderState(router.NavigationState{
		CurrentPath: "/broken",
		Matched:     &router.RouteEntry{Path: "/broken", View: "broken"},
	})
	if err == nil || !strings.Contains(err.Error(), "render failed") {
		t.Errorf("error = %v", err)
	}
}

func TestNewTemplateViewParseError(t *testing.T) {
	if _, err := NewTemplateView("bad", "{{.Path"); err == nil {
		t.Error("expected parse error")
	}
}
