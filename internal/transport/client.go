// Package transport turns one websocket into a typed, reconnecting event
// bus. Inbound frames are decoded into protocol messages and delivered on a
// single channel; the owner drains it and calls Dispatch, so handlers always
// run on the owner's goroutine.
package transport

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"deadgrid.app/internal/protocol"
)

// State of the connection. Owned solely by the Client.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Pseudo-tags for lifecycle handlers; message handlers register under the
// wire tag itself.
const (
	EventOpen  = "open"
	EventClose = "close"
	EventError = "error"
)

// Event is one delivery from the socket: a decoded message or a lifecycle
// change.
type Event struct {
	// Tag is the wire message tag, or one of EventOpen/EventClose/EventError.
	Tag string
	Msg protocol.Message // set when Tag is a message tag
	Err error            // set for EventError

	// Exhausted is set on the EventClose after the reconnect budget is
	// spent; no further automatic connect will happen.
	Exhausted bool
}

// Handler runs synchronously from Dispatch, in registration order.
type Handler func(Event)

// Config for one client connection.
type Config struct {
	URL   string
	Token string // opaque auth, appended as a query parameter when set

	// Reconnect policy: delay = attempt * BaseDelay, at most MaxAttempts
	// attempts before giving up.
	BaseDelay   time.Duration
	MaxAttempts int

	WriteTimeout time.Duration

	// Tap, when set, sees every raw frame that crosses the socket ("in" or
	// "out"). Used by the traffic recorder; must be safe for concurrent
	// calls.
	Tap func(dir string, raw []byte)

	Log *log.Logger
}

// Client owns one socket. Send is a silent no-op unless the state is open;
// nothing is queued.
type Client struct {
	cfg Config
	log *log.Logger

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	attempts int
	gen      int // connection generation, fences stale read loops

	events   chan Event
	handlers map[string][]Handler

	dropped int
}

func NewClient(cfg Config) *Client {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		cfg:      cfg,
		log:      logger,
		events:   make(chan Event, 256),
		handlers: map[string][]Handler{},
	}
}

// On registers a handler for a message tag or lifecycle pseudo-tag. Zero or
// more handlers per tag; they run in registration order.
func (c *Client) On(tag string, h Handler) {
	c.handlers[tag] = append(c.handlers[tag], h)
}

// Events exposes the delivery channel. The owner must drain it and feed
// each event to Dispatch.
func (c *Client) Events() <-chan Event { return c.events }

// Dispatch runs the registered handlers for one event synchronously.
// Unhandled tags are silently ignored.
func (c *Client) Dispatch(ev Event) {
	for _, h := range c.handlers[ev.Tag] {
		h(ev)
	}
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the socket. Exactly one socket is ever open; calling
// Connect on a non-idle client is an error. A failed first dial is returned
// to the caller; only closures after a successful connect auto-reconnect.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("connect in state %s", c.state)
	}
	c.state = StateConnecting
	c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(c.dialURL(), nil)
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	c.adopt(conn)
	return nil
}

func (c *Client) dialURL() string {
	if c.cfg.Token == "" {
		return c.cfg.URL
	}
	sep := "?"
	for _, r := range c.cfg.URL {
		if r == '?' {
			sep = "&"
		}
	}
	return c.cfg.URL + sep + "init_data=" + c.cfg.Token
}

func (c *Client) adopt(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.emit(Event{Tag: EventOpen})
	go c.readLoop(conn, gen)
}

// Send encodes and writes one message. Outside the open state it drops the
// message silently; the input timer keeps firing regardless of connectivity
// and must not error.
func (c *Client) Send(msg protocol.Message) {
	b, err := protocol.Encode(msg)
	if err != nil {
		c.log.Printf("encode %s: %v", msg.Tag(), err)
		return
	}

	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open || conn == nil {
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		// The read loop sees the same failure and drives reconnect.
		c.log.Printf("write %s: %v", msg.Tag(), err)
		return
	}
	if c.cfg.Tap != nil {
		c.cfg.Tap("out", b)
	}
}

// Disconnect marks the reconnect budget as spent, then closes the socket.
// No automatic connect happens afterwards; Send stays a safe no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.attempts = c.cfg.MaxAttempts
	conn := c.conn
	c.conn = nil
	if c.state != StateClosed {
		c.state = StateClosed
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleClosure(gen, err)
			return
		}
		if c.cfg.Tap != nil {
			c.cfg.Tap("in", raw)
		}
		msg, err := protocol.Decode(raw)
		if err != nil {
			// Malformed payloads never affect connection state.
			c.log.Printf("drop malformed frame: %v", err)
			continue
		}
		if u, ok := msg.(protocol.UnknownMsg); ok {
			c.log.Printf("drop unknown message type %q", u.Type)
			continue
		}
		c.emit(Event{Tag: msg.Tag(), Msg: msg})
	}
}

func (c *Client) handleClosure(gen int, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		// A newer connection already replaced this one.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	if c.state == StateClosed {
		// Explicit disconnect; report the close, no retry.
		c.mu.Unlock()
		c.emit(Event{Tag: EventClose, Exhausted: true})
		return
	}

	c.attempts++
	attempt := c.attempts
	if attempt > c.cfg.MaxAttempts {
		c.state = StateClosed
		c.mu.Unlock()
		c.log.Printf("reconnect budget spent after %d attempts", c.cfg.MaxAttempts)
		c.emit(Event{Tag: EventClose, Exhausted: true})
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.emit(Event{Tag: EventError, Err: cause})
	c.emit(Event{Tag: EventClose})

	delay := time.Duration(attempt) * c.cfg.BaseDelay
	c.log.Printf("connection lost (%v), reconnect attempt %d/%d in %s", cause, attempt, c.cfg.MaxAttempts, delay)
	time.AfterFunc(delay, func() { c.redial(gen) })
}

func (c *Client) redial(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateConnecting {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(c.dialURL(), nil)
	if err != nil {
		c.handleClosure(gen, err)
		return
	}
	c.adopt(conn)
}

// emit never blocks the socket goroutines; if the owner stops draining
// (teardown in progress) events are dropped with a diagnostic.
func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.mu.Lock()
		c.dropped++
		n := c.dropped
		c.mu.Unlock()
		c.log.Printf("event channel full, dropped %s (total %d)", ev.Tag, n)
	}
}
