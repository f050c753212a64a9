package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nerviz/viewrouter/pkg/history"
)

// ErrBadHandshake is returned by Accept when the first frame is not init.
var ErrBadHandshake = errors.New("bridge: expected init message")

// Config configures a Backend.
type Config struct {
	// HandshakeTimeout bounds the wait for the init frame.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// Logger receives connection events.
	Logger *slog.Logger
}

// DefaultConfig returns the default bridge configuration.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Backend is a history backend driven over one WebSocket connection.
// It implements router.Backend and router.Traverser.
type Backend struct {
	conn   *websocket.Conn
	config Config
	logger *slog.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	current   string
	observers map[int]func(string)
	nextID    int
	onNav     func(path string, replace bool)

	closed atomic.Bool
}

// Accept reads the client's init frame from conn and returns a backend
// positioned at the reported address.
func Accept(conn *websocket.Conn, config Config) (*Backend, error) {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = DefaultConfig().HandshakeTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	_ = conn.SetReadDeadline(time.Now().Add(config.HandshakeTimeout))
	var init Message
	if err := conn.ReadJSON(&init); err != nil {
		return nil, fmt.Errorf("bridge: read init: %w", err)
	}
	if init.Type != TypeInit {
		return nil, fmt.Errorf("%w, got %q", ErrBadHandshake, init.Type)
	}
	_ = conn.SetReadDeadline(time.Time{})

	address := init.Address
	if address == "" {
		address = "/"
	}

	return &Backend{
		conn:      conn,
		config:    config,
		logger:    logger.With("component", "bridge", "remote", conn.RemoteAddr().String()),
		current:   address,
		observers: make(map[int]func(string)),
	}, nil
}

// Current returns the last address reported by or sent to the client.
func (b *Backend) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Push tells the client to push address.
func (b *Backend) Push(address string) error {
	if err := b.Send(Message{Type: TypePush, Address: address}); err != nil {
		return err
	}
	b.setCurrent(address)
	return nil
}

// Replace tells the client to replace its current entry with address.
func (b *Backend) Replace(address string) error {
	if err := b.Send(Message{Type: TypeReplace, Address: address}); err != nil {
		return err
	}
	b.setCurrent(address)
	return nil
}

// Back tells the client to go back. The new address arrives as a pop frame.
func (b *Backend) Back() error {
	return b.Send(Message{Type: TypeBack})
}

// Forward tells the client to go forward.
func (b *Backend) Forward() error {
	return b.Send(Message{Type: TypeForward})
}

// Observe registers fn for pop frames.
func (b *Backend) Observe(fn func(address string)) (stop func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.observers[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.observers, id)
		b.mu.Unlock()
	}
}

// OnNavigate sets the handler for navigate frames (in-app link clicks).
func (b *Backend) OnNavigate(fn func(path string, replace bool)) {
	b.mu.Lock()
	b.onNav = fn
	b.mu.Unlock()
}

// Send writes a frame to the client. Failures wrap history.ErrUnavailable.
func (b *Backend) Send(msg Message) error {
	if b.closed.Load() {
		return fmt.Errorf("%w: connection closed", history.ErrUnavailable)
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	_ = b.conn.SetWriteDeadline(time.Now().Add(b.config.WriteTimeout))
	if err := b.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("%w: %v", history.ErrUnavailable, err)
	}
	return nil
}

// Serve reads client frames until the connection fails or ctx is done.
// Frames are handled one at a time on the calling goroutine.
func (b *Backend) Serve(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = b.Close()
		case <-done:
		}
	}()

	for {
		var msg Message
		if err := b.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("bridge: read: %w", err)
		}
		b.handle(msg)
	}
}

func (b *Backend) handle(msg Message) {
	switch msg.Type {
	case TypePop:
		b.setCurrent(msg.Address)
		b.mu.Lock()
		fns := make([]func(string), 0, len(b.observers))
		for id := 0; id < b.nextID; id++ {
			if fn, ok := b.observers[id]; ok {
				fns = append(fns, fn)
			}
		}
		b.mu.Unlock()
		for _, fn := range fns {
			fn(msg.Address)
		}

	case TypeNavigate:
		b.mu.Lock()
		fn := b.onNav
		b.mu.Unlock()
		if fn != nil {
			fn(msg.Path, msg.Replace)
		}

	default:
		b.logger.Debug("ignoring frame", "type", string(msg.Type))
	}
}

// Close closes the connection. Further sends fail.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.writeMu.Lock()
	_ = b.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	b.writeMu.Unlock()
	return b.conn.Close()
}

func (b *Backend) setCurrent(address string) {
	if address == "" {
		address = "/"
	}
	b.mu.Lock()
	b.current = address
	b.mu.Unlock()
}
