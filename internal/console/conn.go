// ABOUTME: Client side of the persistent socket to the database proxy
// ABOUTME: Sends raw query text verbatim and decodes each reply frame into a Result

package console

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const handshakeTimeout = 10 * time.Second

// Conn is one long-lived connection to the database proxy. Send and Receive
// may be used from different goroutines; each must have a single caller.
type Conn struct {
	id     string
	socket *websocket.Conn

	closeOnce sync.Once
	closeErr  error
	logger    *slog.Logger
}

// Dial opens the proxy socket. When token is non-empty it is forwarded as a
// bearer credential on the handshake.
func Dial(ctx context.Context, proxyURL, token, id string) (*Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	socket, resp, err := dialer.DialContext(ctx, proxyURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing database proxy: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dialing database proxy: %w", err)
	}

	c := &Conn{
		id:     id,
		socket: socket,
		logger: slog.Default().With("component", "console", "console_id", id),
	}
	c.logger.Info("connected to database proxy", "url", proxyURL)
	return c, nil
}

// ID identifies this console session in logs.
func (c *Conn) ID() string {
	return c.id
}

// Send forwards query text to the proxy unchanged.
func (c *Conn) Send(query string) error {
	if err := c.socket.WriteMessage(websocket.TextMessage, []byte(query)); err != nil {
		return fmt.Errorf("sending query: %w", err)
	}
	return nil
}

// Receive blocks for the next proxy frame and decodes it. Transport errors
// and decode errors are both returned; the latter wrap ErrNotText or
// ErrMalformedFrame.
func (c *Conn) Receive() (Result, error) {
	messageType, frame, err := c.socket.ReadMessage()
	if err != nil {
		return nil, err
	}
	return Decode(messageType, frame)
}

// Close sends a normal closure and tears down the socket. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = c.socket.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.closeErr = c.socket.Close()
	})
	return c.closeErr
}
