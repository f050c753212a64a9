package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nerviz/viewrouter/pkg/bridge"
	"github.com/nerviz/viewrouter/pkg/history"
	"github.com/nerviz/viewrouter/pkg/middleware"
	"github.com/nerviz/viewrouter/pkg/router"
	"github.com/nerviz/viewrouter/pkg/static"
	"github.com/nerviz/viewrouter/pkg/views"
	"github.com/prometheus/client_golang/prometheus"
)

func testTable(t *testing.T) *router.Table {
	t.Helper()
	table, err := router.Compile(router.RouteTable{
		{Path: "/", View: "home"},
		{Path: "/users/:id", View: "user"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func testViews() *views.Registry {
	reg := views.NewRegistry()
	reg.MustRegister("home", views.MustTemplateView("Home", `<h1>home</h1>`))
	reg.MustRegister("user", views.MustTemplateView("User", `<h1>user {{index .Params "id"}}</h1>`))
	return reg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	if opts.Table == nil {
		opts.Table = testTable(t)
	}
	if opts.Views == nil {
		opts.Views = testViews()
	}
	opts.Logger = quietLogger()

	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Options{Views: testViews()}); !errors.Is(err, router.ErrEmptyRouteTable) {
		t.Errorf("nil table error = %v", err)
	}
	if _, err := New(Options{Table: testTable(t)}); err == nil {
		t.Error("nil views should fail")
	}

	reg := views.NewRegistry()
	reg.MustRegister("home", views.MustTemplateView("Home", "home"))
	_, err := New(Options{Table: testTable(t), Views: reg})
	if !errors.Is(err, views.ErrUnknownView) {
		t.Errorf("missing view error = %v", err)
	}
}

func TestDocumentWebMode(t *testing.T) {
	_, ts := newTestServer(t, Options{Name: "Demo", Mode: history.Web, Stylesheet: "/assets/app.css"})

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/users/42", http.StatusOK},
		{"/users/42?tab=posts", http.StatusOK},
		{"/nope", http.StatusNotFound},
		{"/users/42/extra", http.StatusNotFound},
	}
	for _, tt := range tests {
		status, body := get(t, ts.URL+tt.path)
		if status != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.path, status, tt.status)
		}
		for _, want := range []string{
			"<title>Demo</title>",
			`<main id="view" data-mode="web" data-socket="/_nav/ws">`,
			`href="/assets/app.css"`,
			"new WebSocket",
		} {
			if !strings.Contains(body, want) {
				t.Errorf("GET %s body missing %q", tt.path, want)
			}
		}
	}
}

func TestDocumentHashMode(t *testing.T) {
	_, ts := newTestServer(t, Options{Mode: history.Hash})

	status, body := get(t, ts.URL+"/")
	if status != http.StatusOK || !strings.Contains(body, `data-mode="hash"`) {
		t.Errorf("GET / = %d", status)
	}
	if status, _ := get(t, ts.URL+"/users/1"); status != http.StatusNotFound {
		t.Errorf("GET /users/1 in hash mode = %d, want 404", status)
	}
}

func TestDocumentMethod(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST / = %d", resp.StatusCode)
	}

	resp, err = http.Head(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("HEAD /nope = %d", resp.StatusCode)
	}
}

func TestAssets(t *testing.T) {
	fsys := fstest.MapFS{"app.css": {Data: []byte("body{}")}}
	_, ts := newTestServer(t, Options{Assets: static.NewDir(fsys), AssetPrefix: "/static/"})

	status, body := get(t, ts.URL+"/static/app.css")
	if status != http.StatusOK || body != "body{}" {
		t.Errorf("GET /static/app.css = %d %q", status, body)
	}
	if status, _ := get(t, ts.URL+"/static/missing.css"); status != http.StatusNotFound {
		t.Errorf("missing asset status = %d", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))
	_, ts := newTestServer(t, Options{Metrics: metrics, Gatherer: reg})

	status, body := get(t, ts.URL+"/metrics")
	if status != http.StatusOK || !strings.Contains(body, "viewrouter_active_connections") {
		t.Errorf("GET /metrics = %d\n%s", status, body)
	}

	_, ts = newTestServer(t, Options{})
	if status, _ := get(t, ts.URL+"/metrics"); status != http.StatusNotFound {
		t.Errorf("metrics disabled: GET /metrics = %d, want 404", status)
	}
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func connect(t *testing.T, ts *httptest.Server, address string) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + SocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	c := &client{t: t, conn: conn}
	c.send(bridge.Message{Type: bridge.TypeInit, Address: address})
	return c
}

func (c *client) send(msg bridge.Message) {
	c.t.Helper()
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *client) expect(typ bridge.MessageType) bridge.Message {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg bridge.Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		c.t.Fatalf("read: %v", err)
	}
	if msg.Type != typ {
		c.t.Fatalf("frame type = %q, want %q (%+v)", msg.Type, typ, msg)
	}
	return msg
}

func TestBridgeSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))
	s, ts := newTestServer(t, Options{Mode: history.Web, Metrics: metrics, Gatherer: reg})

	c := connect(t, ts, "/users/7")

	msg := c.expect(bridge.TypeRender)
	if msg.View != "user" || !msg.Found || msg.Title != "User" || msg.HTML != "<h1>user 7</h1>" {
		t.Errorf("initial render = %+v", msg)
	}
	if n := s.ActiveConnections(); n != 1 {
		t.Errorf("ActiveConnections() = %d, want 1", n)
	}

	c.send(bridge.Message{Type: bridge.TypeNavigate, Path: "/"})
	if msg := c.expect(bridge.TypePush); msg.Address != "/" {
		t.Errorf("push address = %q", msg.Address)
	}
	if msg := c.expect(bridge.TypeRender); msg.View != "home" || msg.Path != "/" {
		t.Errorf("render after navigate = %+v", msg)
	}

	c.send(bridge.Message{Type: bridge.TypeNavigate, Path: "/users/9", Replace: true})
	if msg := c.expect(bridge.TypeReplace); msg.Address != "/users/9" {
		t.Errorf("replace address = %q", msg.Address)
	}
	c.expect(bridge.TypeRender)

	c.send(bridge.Message{Type: bridge.TypePop, Address: "/missing"})
	msg = c.expect(bridge.TypeRender)
	if msg.Found || msg.View != "" || !strings.Contains(msg.HTML, "/missing") {
		t.Errorf("render after unmatched pop = %+v", msg)
	}
}

func TestBridgeHashMode(t *testing.T) {
	_, ts := newTestServer(t, Options{Mode: history.Hash})

	c := connect(t, ts, "/#/users/3")
	if msg := c.expect(bridge.TypeRender); msg.View != "user" || msg.Path != "/users/3" {
		t.Errorf("initial render = %+v", msg)
	}

	c.send(bridge.Message{Type: bridge.TypeNavigate, Path: "/"})
	if msg := c.expect(bridge.TypePush); msg.Address != "/#/" {
		t.Errorf("push address = %q, want /#/", msg.Address)
	}
}

func TestBridgeBadHandshake(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + SocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(bridge.Message{Type: bridge.TypePop, Address: "/"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg bridge.Message
	if err := conn.ReadJSON(&msg); err == nil {
		t.Errorf("expected closed connection, got %+v", msg)
	}
}

func TestServeShutdown(t *testing.T) {
	table := testTable(t)
	s, err := New(Options{Table: table, Views: testViews(), Logger: quietLogger(), ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + SocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(bridge.Message{Type: bridge.TypeInit, Address: "/"}); err != nil {
		t.Fatal(err)
	}
	var msg bridge.Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != bridge.TypeRender {
		t.Fatalf("initial frame = %+v, %v", msg, err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err == nil {
		t.Error("bridge still open after shutdown")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.ActiveConnections() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := s.ActiveConnections(); n != 0 {
		t.Errorf("ActiveConnections() after shutdown = %d", n)
	}
}
