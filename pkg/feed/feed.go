// Package feed serves a statecell value to WebSocket clients.
//
// Each accepted connection mounts a component instance on the cell's loop:
// the client receives a JSON value message on connect and after every
// fan-out, and may send set messages to mutate the cell. Closing the
// connection unmounts the instance, detaching its observer in O(1).
package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/statecell-dev/statecell/pkg/runloop"
	"github.com/statecell-dev/statecell/pkg/statecell"
)

// valueMessage is pushed to clients on connect and on every fan-out.
type valueMessage[T any] struct {
	Value T `json:"value"`
}

// setMessage is accepted from clients to mutate the cell.
type setMessage struct {
	Set json.RawMessage `json:"set"`
}

// Config holds feed settings shared across value types.
type Config struct {
	// Logger for connection lifecycle and protocol errors.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// CheckOrigin overrides the upgrader's origin check.
	// If nil, the upgrader's default same-origin policy applies.
	CheckOrigin func(r *http.Request) bool

	// SendBuffer is the per-client outbound queue length (default: 16).
	// A client that falls this far behind is disconnected.
	SendBuffer int

	// WriteTimeout bounds each outbound write (default: 10s).
	WriteTimeout time.Duration
}

// Option configures a feed.
type Option func(*Config)

// WithLogger sets the feed logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = check
	}
}

// WithSendBuffer sets the per-client outbound queue length.
func WithSendBuffer(n int) Option {
	return func(c *Config) {
		c.SendBuffer = n
	}
}

// WithWriteTimeout sets the per-message write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = d
	}
}

// Feed is an http.Handler that upgrades requests to WebSocket and wires
// each connection to one cell as a mounted observer.
type Feed[T any] struct {
	cell     *statecell.Cell[T]
	loop     *runloop.Loop
	config   Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// New creates a feed for the given cell. All cell access happens on loop.
func New[T any](cell *statecell.Cell[T], loop *runloop.Loop, opts ...Option) *Feed[T] {
	config := Config{
		SendBuffer:   16,
		WriteTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&config)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Feed[T]{
		cell:   cell,
		loop:   loop,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and blocks until the client leaves.
func (f *Feed[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	out := make(chan []byte, f.config.SendBuffer)

	var closeOnce sync.Once
	closeConn := func() {
		closeOnce.Do(func() { _ = conn.Close() })
	}

	// The render body runs on the loop: first synchronously at mount,
	// then after every fan-out that touches this observer's slot.
	m := f.loop.Mount(func(o *statecell.Owner) {
		v, _ := f.cell.Use(o)
		data, err := json.Marshal(valueMessage[T]{Value: v})
		if err != nil {
			f.logger.Error("value encode failed", "cell", f.cell.Name(), "error", err)
			return
		}
		select {
		case out <- data:
		default:
			f.logger.Warn("dropping slow client", "cell", f.cell.Name())
			closeConn()
		}
	})

	go f.writeLoop(conn, out)
	f.readLoop(conn)

	// Reader is gone: unmount first so no further renders can touch out.
	m.Unmount()
	close(out)
	closeConn()
}

// writeLoop drains the outbound queue onto the connection.
func (f *Feed[T]) writeLoop(conn *websocket.Conn, out <-chan []byte) {
	for data := range out {
		_ = conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = conn.Close()
			return
		}
	}
}

// readLoop consumes client messages until the connection closes.
// Malformed messages are logged and skipped; set messages dispatch a
// write onto the loop.
func (f *Feed[T]) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				f.logger.Error("read error", "error", err)
			}
			return
		}

		var in setMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			f.logger.Warn("invalid message", "error", err)
			continue
		}
		if in.Set == nil {
			continue
		}

		var v T
		if err := json.Unmarshal(in.Set, &v); err != nil {
			f.logger.Warn("invalid set payload", "cell", f.cell.Name(), "error", err)
			continue
		}

		f.loop.Dispatch(func() { f.cell.Set(v) })
	}
}
