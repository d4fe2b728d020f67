// ABOUTME: Pumps one admin browser socket to the database proxy and back
// ABOUTME: Queries pass through verbatim; results are decoded, rendered, and replace the previous result

package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Renderer turns a decoded result into the frame sent to the browser.
type Renderer func(Result) ([]byte, error)

var (
	errBrowserClosed = errors.New("browser closed the console")
	errProxyClosed   = errors.New("database proxy closed the connection")
	errRender        = errors.New("rendering result")
)

// Close reasons sent to the browser.
const (
	ReasonMalformed   = "malformed result from database proxy"
	ReasonProxyLost   = "database proxy connection lost"
	ReasonProxyClosed = "database proxy closed the connection"
	ReasonShutdown    = "server shutting down"
	ReasonRenderFault = "could not render result"
)

// Bridge couples a browser socket to a proxy connection for the lifetime of
// one admin page.
type Bridge struct {
	browser *websocket.Conn
	proxy   *Conn
	render  Renderer
	logger  *slog.Logger
}

// NewBridge creates a bridge. The bridge owns both sockets and closes them when Run returns.
func NewBridge(browser *websocket.Conn, proxy *Conn, render Renderer) *Bridge {
	return &Bridge{
		browser: browser,
		proxy:   proxy,
		render:  render,
		logger:  slog.Default().With("component", "console", "console_id", proxy.ID()),
	}
}

// Run pumps frames until either side closes or ctx is canceled. A malformed
// proxy frame stops the bridge and is returned as an error wrapping
// ErrMalformedFrame or ErrNotText; ordinary closure returns nil.
func (b *Bridge) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(b.forwardQueries)
	g.Go(b.forwardResults)
	g.Go(func() error {
		<-gctx.Done()
		b.shutdown(context.Cause(gctx))
		return nil
	})

	err := g.Wait()
	switch {
	case errors.Is(err, ErrMalformedFrame), errors.Is(err, ErrNotText):
		return err
	case ctx.Err() != nil:
		b.logger.Info("console closed", "reason", context.Cause(ctx))
		return nil
	case errors.Is(err, errBrowserClosed), errors.Is(err, errProxyClosed):
		b.logger.Info("console closed", "reason", err)
		return nil
	default:
		return err
	}
}

// forwardQueries sends every browser text frame to the proxy unchanged.
func (b *Bridge) forwardQueries() error {
	for {
		messageType, data, err := b.browser.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return errBrowserClosed
			}
			return fmt.Errorf("%w: %v", errBrowserClosed, err)
		}
		if messageType != websocket.TextMessage {
			b.logger.Warn("ignoring non-text frame from browser", "type", messageType)
			continue
		}

		b.logger.Debug("forwarding query", "bytes", len(data))
		if err := b.proxy.Send(string(data)); err != nil {
			return err
		}
	}
}

// forwardResults decodes each proxy frame, renders it, and sends it to the browser.
func (b *Bridge) forwardResults() error {
	for {
		result, err := b.proxy.Receive()
		if err != nil {
			if errors.Is(err, ErrMalformedFrame) || errors.Is(err, ErrNotText) {
				return err
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return errProxyClosed
			}
			return fmt.Errorf("reading from database proxy: %w", err)
		}

		frame, err := b.render(result)
		if err != nil {
			return fmt.Errorf("%w: %v", errRender, err)
		}

		if err := b.browser.WriteMessage(websocket.TextMessage, frame); err != nil {
			return fmt.Errorf("%w: %v", errBrowserClosed, err)
		}
	}
}

// shutdown tells the browser why the console ended and closes both sockets.
func (b *Bridge) shutdown(cause error) {
	code, reason := closeReason(cause)
	deadline := time.Now().Add(time.Second)
	_ = b.browser.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = b.browser.Close()
	_ = b.proxy.Close()
}

func closeReason(cause error) (int, string) {
	switch {
	case errors.Is(cause, ErrMalformedFrame), errors.Is(cause, ErrNotText):
		return websocket.CloseUnsupportedData, ReasonMalformed
	case errors.Is(cause, errBrowserClosed):
		return websocket.CloseNormalClosure, ""
	case errors.Is(cause, errProxyClosed):
		return websocket.CloseNormalClosure, ReasonProxyClosed
	case errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
		return websocket.CloseGoingAway, ReasonShutdown
	case errors.Is(cause, errRender):
		return websocket.CloseInternalServerErr, ReasonRenderFault
	default:
		return websocket.CloseInternalServerErr, ReasonProxyLost
	}
}
