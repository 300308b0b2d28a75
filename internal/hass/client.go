package hass

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/plexdeck/plexdeck/internal/logging"
	"github.com/plexdeck/plexdeck/internal/protocol"
	"github.com/plexdeck/plexdeck/internal/statestore"
	"github.com/plexdeck/plexdeck/internal/urls"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed for the server's auth handshake messages
	handshakeWait = 15 * time.Second

	// Application-level ping interval (the HA websocket API expects
	// ping/pong messages, not websocket control frames)
	pingPeriod = 30 * time.Second

	// Reconnect backoff bounds
	initialBackoff = time.Second
	maxBackoff     = time.Minute
)

// Status describes the connection state reported through Notices.
type Status int

const (
	StatusConnecting Status = iota
	StatusConnected
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Notice is a connection lifecycle report for the host UI.
type Notice struct {
	Status Status
	Err    error
}

// AuthError reports a rejected access token. It is fatal: retrying with
// the same token cannot succeed.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected: %s", e.Message)
}

// Client maintains the websocket session with Home Assistant. It writes
// into the statestore mirror and signals the host through the Pushes
// channel after every write; it also implements card.Dispatcher.
type Client struct {
	endpoint string
	token    string
	store    *statestore.Store

	writeMu sync.Mutex
	conn    *websocket.Conn

	// pushes is a coalesced dirty signal: capacity one, dropped when the
	// host has not yet consumed the previous signal. The host reads a
	// fresh snapshot when it reacts, so a dropped signal loses nothing.
	pushes  chan struct{}
	notices chan Notice
}

// NewClient creates a client for the Home Assistant instance at baseURL.
func NewClient(baseURL, token string, store *statestore.Store) (*Client, error) {
	endpoint, err := urls.Websocket(baseURL)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("access token is required")
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		store:    store,
		pushes:   make(chan struct{}, 1),
		notices:  make(chan Notice, 8),
	}, nil
}

// Pushes signals that the state mirror changed. Redundant pushes are
// expected; the fingerprint tracker filters them.
func (c *Client) Pushes() <-chan struct{} {
	return c.pushes
}

// Notices reports connection lifecycle changes.
func (c *Client) Notices() <-chan Notice {
	return c.notices
}

// Run connects and serves the session until ctx is cancelled, redialing
// with exponential backoff after transport failures. It returns early
// only on a fatal error (rejected token).
func (c *Client) Run(ctx context.Context) error {
	backoff := initialBackoff

	for {
		c.notify(Notice{Status: StatusConnecting})

		err := c.serve(ctx)
		if authErr, ok := err.(*AuthError); ok {
			c.notify(Notice{Status: StatusDisconnected, Err: authErr})
			return authErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.notify(Notice{Status: StatusDisconnected, Err: err})
		logging.Warn("Session ended, reconnecting",
			zap.String("endpoint", c.endpoint),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// serve runs one full session: dial, authenticate, prime the mirror,
// subscribe, then pump messages until the connection drops.
func (c *Client) serve(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeWait}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	defer conn.Close()
	logging.LogConnection(c.endpoint, "dialed")

	if err := c.authenticate(conn); err != nil {
		return err
	}
	logging.LogConnection(c.endpoint, "authenticated")

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	defer func() {
		c.writeMu.Lock()
		c.conn = nil
		c.writeMu.Unlock()
	}()

	getStates := protocol.NewGetStates()
	if err := c.writeJSON(getStates); err != nil {
		return fmt.Errorf("get_states: %w", err)
	}
	if err := c.writeJSON(protocol.NewSubscribeStateChanges()); err != nil {
		return fmt.Errorf("subscribe_events: %w", err)
	}

	c.notify(Notice{Status: StatusConnected})

	// Keepalive pings until the read loop returns.
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go c.pingLoop(pingCtx)

	// Stop reading when the caller cancels; closing the connection is the
	// only way to unblock ReadMessage.
	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	return c.readLoop(conn, getStates.ID)
}

// authenticate performs the auth_required/auth/auth_ok exchange.
func (c *Client) authenticate(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeWait))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read auth challenge: %w", err)
	}
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		return err
	}
	if env.Type != protocol.TypeAuthRequired {
		return fmt.Errorf("unexpected handshake message: %s", env.Type)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(protocol.NewAuth(c.token)); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	_, data, err = conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read auth result: %w", err)
	}
	env, err = protocol.ParseEnvelope(data)
	if err != nil {
		return err
	}
	switch env.Type {
	case protocol.TypeAuthOK:
		return nil
	case protocol.TypeAuthInvalid:
		return &AuthError{Message: env.Message}
	default:
		return fmt.Errorf("unexpected auth reply: %s", env.Type)
	}
}

// readLoop processes incoming messages until the connection fails.
func (c *Client) readLoop(conn *websocket.Conn, getStatesID uint64) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		env, err := protocol.ParseEnvelope(data)
		if err != nil {
			logging.Warn("Dropping malformed message", zap.Error(err))
			continue
		}

		switch env.Type {
		case protocol.TypeEvent:
			change, err := protocol.ParseStateChange(env)
			if err != nil {
				logging.Warn("Dropping malformed event", zap.Error(err))
				continue
			}
			if change == nil {
				continue
			}
			if change.Removed() {
				c.store.Apply(statestore.Entity{EntityID: change.EntityID}, true)
			} else {
				c.store.Apply(*change.NewState, false)
			}
			c.signalPush()

		case protocol.TypeResult:
			if env.ID == getStatesID {
				entities, err := protocol.ParseStates(env)
				if err != nil {
					return fmt.Errorf("initial states: %w", err)
				}
				c.store.Replace(entities)
				logging.Info("State mirror primed", zap.Int("entities", len(entities)))
				c.signalPush()
				continue
			}
			// Results of call_service and subscribe commands. The card
			// never waits on these; failures belong to the backend's own
			// reporting, so just log them.
			if env.Success != nil && !*env.Success {
				fields := []zap.Field{zap.Uint64("id", env.ID)}
				if env.Error != nil {
					fields = append(fields,
						zap.String("code", env.Error.Code),
						zap.String("message", env.Error.Message),
					)
				}
				logging.Warn("Command rejected by server", fields...)
			}

		case protocol.TypePong:
			// Keepalive answered; nothing to do.

		default:
			logging.Debug("Ignoring message", zap.String("type", env.Type))
		}
	}
}

// pingLoop sends application-level pings until ctx is cancelled.
func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.writeJSON(protocol.NewPing()); err != nil {
				logging.Debug("Ping failed", zap.Error(err))
				return
			}
		}
	}
}

// Dispatch sends a call_service message and returns once it is on the
// wire. It implements card.Dispatcher: no result is awaited.
func (c *Client) Dispatch(domain, service string, data map[string]any) error {
	return c.writeJSON(protocol.NewCallService(domain, service, data))
}

// writeJSON serializes one message onto the connection under the write
// lock. Gorilla connections permit only one concurrent writer.
func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// signalPush sets the coalesced dirty flag without blocking.
func (c *Client) signalPush() {
	select {
	case c.pushes <- struct{}{}:
	default:
	}
}

// notify reports a lifecycle change without blocking; if the host is not
// draining notices the oldest information is simply dropped.
func (c *Client) notify(n Notice) {
	select {
	case c.notices <- n:
	default:
	}
}
