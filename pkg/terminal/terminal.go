// Package terminal serves the interpreter to a browser over a websocket.
package terminal

import (
	"context"
	"errors"
	"net/http"

	"github.com/antibyte/retrobasic/pkg/auth"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/resources"
	"github.com/antibyte/retrobasic/pkg/shared"

	"github.com/gorilla/websocket"
)

// SessionFunc runs one interpreter session on a connected client. It returns
// when the session ends; ctx is cancelled when the socket closes.
type SessionFunc func(ctx context.Context, client *Client)

// Handler upgrades authenticated requests and runs a session per connection.
type Handler struct {
	sessions *resources.SessionManager
	upgrader websocket.Upgrader
	run      SessionFunc
}

// NewHandler creates a websocket handler. The session manager decides how many
// connections are admitted at once.
func NewHandler(sessions *resources.SessionManager, run SessionFunc) *Handler {
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		run: run,
	}
}

// ServeHTTP requires a session token, then hands the connection to the session.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.RequireSessionToken(h.handleWebSocket)(w, r)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := auth.SessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := h.sessions.RegisterSession(sessionID, r.RemoteAddr, cancel); err != nil {
		cancel()
		if errors.Is(err, resources.ErrSessionLimit) || errors.Is(err, resources.ErrSessionActive) {
			logger.Warn(logger.AreaWebSocket, "connection from %s refused: %v", r.RemoteAddr, err)
			http.Error(w, "Another session is active", http.StatusConflict)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	defer h.sessions.UnregisterSession(sessionID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error(logger.AreaWebSocket, "upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	logger.Info(logger.AreaWebSocket, "session %s connected from %s", sessionID, r.RemoteAddr)

	client := newClient(conn, sessionID, cancel)
	client.onInput = func() { h.sessions.UpdateActivity(sessionID) }
	if err := client.writeMessage(shared.Message{Type: shared.MessageTypeSession, SessionID: sessionID}); err != nil {
		logger.Warn(logger.AreaWebSocket, "session %s: %v", sessionID, err)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.run(ctx, client)
	client.Close()
	logger.Info(logger.AreaWebSocket, "session %s disconnected", sessionID)
}
