// Package realtime implements the shared push channel to the backend. One
// Channel is created at application scope and injected into every consumer;
// only the Channel itself touches the connection lifecycle. Consumers join
// rooms and subscribe handlers, and must unsubscribe on teardown.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/TheRealCocky/Leilao-client/internal/auction"
	"github.com/TheRealCocky/Leilao-client/internal/notify"
)

// ErrChannelClosed is returned by operations on a Channel after Close.
var ErrChannelClosed = errors.New("realtime channel is closed")

// Config holds connection settings for the channel.
type Config struct {
	URL             string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	MaxReconnects   int // negative means unlimited
	ReconnectWait   time.Duration
}

// DefaultConfig returns the default channel configuration for a URL.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  64 * 1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
	}
}

// Handler receives decoded push events. Nil callbacks are skipped. Events
// are delivered in arrival order from a single dispatch goroutine.
type Handler struct {
	AuctionUpdated func(patch auction.Patch)
	NewBid         func(auctionID string, bid auction.Bid)
	Notification   func(n notify.Notification)
}

type subscription struct {
	id      int
	handler Handler
}

// Channel owns one websocket connection to the backend push endpoint. It
// dials lazily on first need and redials with the joined rooms replayed.
type Channel struct {
	id     string
	config Config
	dialer *websocket.Dialer
	log    zerolog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	send    chan []byte
	joined  map[string]bool
	subs    []subscription
	nextSub int
	closed  bool
}

// NewChannel creates a disconnected Channel. The connection is established
// on the first Connect or Join.
func NewChannel(config Config, log zerolog.Logger) *Channel {
	id := uuid.New().String()
	return &Channel{
		id:     id,
		config: config,
		dialer: &websocket.Dialer{
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
			HandshakeTimeout: config.WriteTimeout,
		},
		joined: make(map[string]bool),
		log:    log.With().Str("channel_id", id).Logger(),
	}
}

// Connect establishes the connection if it is not already up. Idempotent.
func (c *Channel) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	if c.conn != nil {
		return nil
	}
	return c.dialLocked()
}

// Join requests delivery of events scoped to the given room (a user
// identity). Idempotent: joining the same room twice sends one join intent.
// Joined rooms are replayed automatically after a redial.
func (c *Channel) Join(roomID string) error {
	if roomID == "" {
		return errors.New("room id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	if c.conn == nil {
		if err := c.dialLocked(); err != nil {
			return err
		}
	}
	if c.joined[roomID] {
		return nil
	}

	frame, err := joinFrame(roomID)
	if err != nil {
		return err
	}
	c.joined[roomID] = true
	c.enqueueLocked(frame)

	c.log.Info().Str("room", roomID).Msg("joined room")
	return nil
}

// Subscribe registers a handler for push events and returns the function
// that removes it. Callers must invoke the returned function when their view
// goes away; a leaked handler means duplicate delivery after remount.
func (c *Channel) Subscribe(h Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscription{id: id, handler: h})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subs {
			if sub.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Close tears the connection down permanently. Further Connect/Join calls
// fail with ErrChannelClosed.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.log.Info().Msg("channel closed")
	return nil
}

// dialLocked dials the endpoint and starts the pumps. Caller holds c.mu.
func (c *Channel) dialLocked() error {
	conn, _, err := c.dialer.Dial(c.config.URL, nil)
	if err != nil {
		return err
	}

	c.conn = conn
	send := make(chan []byte, 256)
	c.send = send

	go c.writePump(conn, send)
	go c.readPump(conn)

	// Replay join intents so a redial lands back in the same rooms.
	for room := range c.joined {
		frame, err := joinFrame(room)
		if err != nil {
			continue
		}
		c.enqueueLocked(frame)
	}

	c.log.Info().Str("url", c.config.URL).Msg("channel connected")
	return nil
}

// enqueueLocked queues a frame for the write pump. Caller holds c.mu.
func (c *Channel) enqueueLocked(frame []byte) {
	if c.send == nil {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.log.Warn().Msg("send buffer full, dropping frame")
	}
}

// writePump sends queued frames and pings until the send channel closes or a
// write fails.
func (c *Channel) writePump(conn *websocket.Conn, send chan []byte) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Error().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Error().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

// readPump reads frames and dispatches them in arrival order until the
// connection drops.
func (c *Channel) readPump(conn *websocket.Conn) {
	defer c.handleDisconnect(conn)

	conn.SetReadLimit(c.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Error().Err(err).Msg("unexpected close")
			}
			return
		}
		c.dispatch(frame)
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	}
}

// dispatch decodes a frame and fans it out to the subscribed handlers.
func (c *Channel) dispatch(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.log.Warn().Err(err).Msg("dropping undecodable frame")
		return
	}

	payload, err := ParseEventPayload(&env)
	if err != nil {
		c.log.Warn().Err(err).Str("event", string(env.Event)).Msg("dropping malformed payload")
		return
	}
	if payload == nil {
		c.log.Debug().Str("event", string(env.Event)).Msg("dropping unknown event")
		return
	}

	c.mu.Lock()
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		switch p := payload.(type) {
		case auction.Patch:
			if sub.handler.AuctionUpdated != nil {
				sub.handler.AuctionUpdated(p)
			}
		case NewBidPayload:
			if sub.handler.NewBid != nil {
				sub.handler.NewBid(p.AuctionID, p.Bid)
			}
		case notify.Notification:
			if sub.handler.Notification != nil {
				sub.handler.Notification(p)
			}
		}
	}
}

// handleDisconnect cleans up after a dropped connection and schedules a
// redial unless the channel was closed.
func (c *Channel) handleDisconnect(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn != conn {
		// A stale pump for an already-replaced connection.
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = nil
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
	closed := c.closed
	c.mu.Unlock()

	conn.Close()
	if !closed {
		c.log.Warn().Msg("connection lost, scheduling reconnect")
		go c.reconnect()
	}
}

// reconnect redials until it succeeds, the attempts run out, or the channel
// is closed.
func (c *Channel) reconnect() {
	for attempt := 0; c.config.MaxReconnects < 0 || attempt < c.config.MaxReconnects; attempt++ {
		time.Sleep(c.config.ReconnectWait)

		c.mu.Lock()
		if c.closed || c.conn != nil {
			c.mu.Unlock()
			return
		}
		err := c.dialLocked()
		c.mu.Unlock()

		if err == nil {
			c.log.Info().Int("attempt", attempt+1).Msg("reconnected")
			return
		}
		c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("reconnect failed")
	}
	c.log.Error().Msg("giving up on reconnect")
}
