// Package shell hosts the application: it serves the document for every
// application path, the navigation bridge, static assets and metrics.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/nerviz/viewrouter/pkg/bridge"
	"github.com/nerviz/viewrouter/pkg/history"
	"github.com/nerviz/viewrouter/pkg/middleware"
	"github.com/nerviz/viewrouter/pkg/router"
	"github.com/nerviz/viewrouter/pkg/static"
	"github.com/nerviz/viewrouter/pkg/views"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SocketPath is where the navigation bridge is served.
const SocketPath = "/_nav/ws"

// Options configures a Server.
type Options struct {
	// Name is the document title.
	Name string

	Mode  history.Mode
	Table *router.Table
	Views *views.Registry

	// Assets serves files under AssetPrefix when set.
	Assets      static.Source
	AssetPrefix string
	AssetCache  static.CacheMode

	// Stylesheet is linked from the document when set (e.g., "/assets/app.css").
	Stylesheet string

	// Metrics records navigation and bridge metrics when set. MetricsPath
	// exposes Gatherer.
	Metrics     *middleware.Metrics
	MetricsPath string
	Gatherer    prometheus.Gatherer

	// Tracing enables the OpenTelemetry navigation middleware.
	Tracing    bool
	TracerName string

	// Address is the listen address for ListenAndServe.
	Address         string
	ShutdownTimeout time.Duration

	Bridge bridge.Config
	Logger *slog.Logger
}

// Server is the hosting shell.
type Server struct {
	opts       Options
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	middleware []router.Middleware
	handler    http.Handler

	mu    sync.Mutex
	conns map[*bridge.Backend]struct{}
}

// New creates a Server. Every route's view must be registered.
func New(opts Options) (*Server, error) {
	if opts.Table == nil || opts.Table.Len() == 0 {
		return nil, &router.ConfigurationError{Kind: router.EmptyRouteTable, Index: -1, Err: router.ErrEmptyRouteTable}
	}
	if opts.Views == nil {
		return nil, errors.New("shell: views registry is required")
	}
	if err := opts.Views.Check(opts.Table.Entries()); err != nil {
		return nil, fmt.Errorf("shell: %w", err)
	}
	if opts.Name == "" {
		opts.Name = "viewrouter"
	}
	if opts.AssetPrefix == "" {
		opts.AssetPrefix = "/assets/"
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Bridge.Logger == nil {
		opts.Bridge.Logger = logger
	}

	s := &Server{
		opts:   opts,
		logger: logger.With("component", "shell"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*bridge.Backend]struct{}),
	}

	if opts.Metrics != nil {
		s.middleware = append(s.middleware, opts.Metrics.Middleware())
	}
	if opts.Tracing {
		s.middleware = append(s.middleware, middleware.OpenTelemetry(middleware.WithTracerName(opts.TracerName)))
	}
	s.middleware = append(s.middleware, middleware.Logging(logger))

	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, s.opts.MetricsPath, promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get(SocketPath, s.handleBridge)
	if s.opts.Assets != nil {
		r.Handle(s.opts.AssetPrefix+"*", static.Handler(s.opts.Assets, static.HandlerConfig{
			Prefix: s.opts.AssetPrefix,
			Cache:  s.opts.AssetCache,
			Logger: s.logger,
		}))
	}
	r.NotFound(s.handleDocument)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
	return r
}

// Handler returns the shell's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()))
	})
}

// handleDocument answers every application path with the document. In Web
// mode an unmatched path gets a 404 status with the same document, so the
// client still renders the not-found view. In Hash mode only "/" is served.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	status := http.StatusOK
	switch s.opts.Mode {
	case history.Hash:
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
	default:
		path := r.URL.EscapedPath()
		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}
		if !s.opts.Table.Resolve(path).Matched {
			status = http.StatusNotFound
		}
	}

	var buf bytes.Buffer
	if err := writeDocument(&buf, documentData{
		Title:      s.opts.Name,
		Mode:       s.opts.Mode.String(),
		SocketPath: SocketPath,
		Stylesheet: s.opts.Stylesheet,
	}); err != nil {
		s.logger.Error("document render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if r.Method == http.MethodGet {
		_, _ = w.Write(buf.Bytes())
	}
}

// handleBridge runs one browser connection: a bridge backend, a router on
// top of it, and a render of every committed state.
func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.recordBridgeError("upgrade")
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	b, err := bridge.Accept(conn, s.opts.Bridge)
	if err != nil {
		s.recordBridgeError("handshake")
		s.logger.Warn("bridge handshake failed", "error", err)
		conn.Close()
		return
	}
	s.track(b)
	defer s.untrack(b)
	defer b.Close()

	logger := s.logger.With("remote", r.RemoteAddr)
	rt, err := router.NewWithTable(s.opts.Table, s.opts.Mode, b,
		router.WithLogger(logger),
		router.WithMiddleware(s.middleware...),
	)
	if err != nil {
		logger.Error("router setup failed", "error", err)
		return
	}
	defer rt.Close()

	render := func(state router.NavigationState) {
		out, err := s.opts.Views.RenderState(state)
		if err != nil {
			if s.opts.Metrics != nil {
				s.opts.Metrics.RecordRenderError()
			}
			logger.Error("render failed", "path", state.CurrentPath, "error", err)
			_ = b.Send(bridge.Message{Type: bridge.TypeError, Error: "render failed"})
			return
		}
		if err := b.Send(bridge.Message{
			Type:  bridge.TypeRender,
			Path:  state.CurrentPath,
			View:  string(out.Handle),
			Title: out.Title,
			HTML:  string(out.HTML),
			Found: out.Found,
		}); err != nil {
			s.recordBridgeError("write")
		}
	}
	cancel := rt.Subscribe(render)
	defer cancel()

	b.OnNavigate(func(path string, replace bool) {
		mode := router.Push
		if replace {
			mode = router.Replace
		}
		if err := rt.NavigateContext(r.Context(), path, mode); err != nil {
			logger.Warn("navigation failed", "path", path, "error", err)
			_ = b.Send(bridge.Message{Type: bridge.TypeError, Path: path, Error: err.Error()})
		}
	})

	render(rt.State())

	if err := b.Serve(r.Context()); err != nil && !errors.Is(err, context.Canceled) {
		s.recordBridgeError("read")
		logger.Debug("bridge closed", "error", err)
	}
}

func (s *Server) recordBridgeError(kind string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordBridgeError(kind)
	}
}

func (s *Server) track(b *bridge.Backend) {
	s.mu.Lock()
	s.conns[b] = struct{}{}
	s.mu.Unlock()
	if s.opts.Metrics != nil {
		s.opts.Metrics.ConnectionOpened()
	}
}

func (s *Server) untrack(b *bridge.Backend) {
	s.mu.Lock()
	delete(s.conns, b)
	s.mu.Unlock()
	if s.opts.Metrics != nil {
		s.opts.Metrics.ConnectionClosed()
	}
}

// ActiveConnections returns the number of open bridges.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// closeBridges closes every open bridge. Hijacked connections are not
// closed by http.Server.Shutdown.
func (s *Server) closeBridges() {
	s.mu.Lock()
	conns := make([]*bridge.Backend, 0, len(s.conns))
	for b := range s.conns {
		conns = append(conns, b)
	}
	s.mu.Unlock()

	for _, b := range conns {
		_ = b.Close()
	}
}

// ListenAndServe serves on Options.Address until ctx is done, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String(), "mode", s.opts.Mode.String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		s.closeBridges()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		s.logger.Info("server shutdown complete")
		return nil
	}
}
