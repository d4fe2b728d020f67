// ABOUTME: Development database proxy over websocket
// ABOUTME: Executes each text frame against the store and answers with one JSON frame

package devstack

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/2389/gatehouse/internal/auth"
)

// Proxy serves the database socket.
type Proxy struct {
	store    *Store
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewProxy creates a database proxy over store.
func NewProxy(store *Store) *Proxy {
	return &Proxy{
		store:  store,
		logger: slog.Default().With("component", "devstack.proxy"),
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := auth.MustFromContext(r.Context())

	ws, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Warn("upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	logger := p.logger.With("username", claims.Username)
	logger.Info("database session opened")

	for {
		messageType, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("database session ended", "error", err)
			} else {
				logger.Info("database session closed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		logger.Debug("executing query", "query", string(msg))
		if err := ws.WriteMessage(websocket.TextMessage, p.store.Execute(r.Context(), string(msg))); err != nil {
			logger.Warn("writing reply", "error", err)
			return
		}
	}
}
