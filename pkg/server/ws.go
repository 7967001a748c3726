package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"blackjackd/pkg/logging"
)

// Client-to-server message types.
const (
	eventStartGame    = "start_game"
	eventPlayerAction = "player_action"
	eventResetGame    = "reset_game"
)

// Server-to-client message types.
const (
	eventAwaitingStart   = "awaiting_start"
	eventGameStateUpdate = "game_state_update"
	eventGameOver        = "game_over"
	eventError           = "error"
)

const (
	awaitingStartMessage = "Please start a new game."
	gameOverMessage      = "You ran out of money! Game Over."
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 120 * time.Second
	pingPeriod = 30 * time.Second

	// sendBuffer is the per-connection outgoing queue; slow readers drop
	// messages rather than block the server.
	sendBuffer = 64
)

// inEnvelope frames client-to-server messages.
type inEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outEnvelope frames server-to-client messages.
type outEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// messagePayload carries plain-text notices and errors.
type messagePayload struct {
	Message string `json:"message"`
}

// awaitingStartPayload tells a fresh client its session id so it can resume
// over reconnects.
type awaitingStartPayload struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type startGamePayload struct {
	Difficulty string `json:"difficulty"`
	BetAmount  int64  `json:"bet_amount"`
}

type playerActionPayload struct {
	Action string `json:"action"`
}

// Gateway upgrades websocket connections and routes envelopes to the
// server's commands. It registers itself as the server's Publisher so the
// turn scheduler can push state between client messages.
type Gateway struct {
	server   *Server
	log      slog.Logger
	upgrader websocket.Upgrader
	started  time.Time

	mu    sync.RWMutex
	conns map[string]*wsConn // session id -> live connection
}

// wsConn is one client connection bound to a session id.
type wsConn struct {
	sessionID string
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewGateway creates the websocket gateway and installs it as the server's
// publisher.
func NewGateway(server *Server, logBackend *logging.LogBackend) *Gateway {
	log := slog.Disabled
	if logBackend != nil {
		log = logBackend.Logger("GATE")
	}

	g := &Gateway{
		server: server,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		started: time.Now(),
		conns:   make(map[string]*wsConn),
	}
	server.SetPublisher(g)
	return g
}

// ServeHTTP upgrades the request and runs the connection's read loop until
// the client goes away.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	c := &wsConn{
		sessionID: sessionID,
		ws:        ws,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
	}
	g.register(c)
	g.log.Infof("Client connected: %s", sessionID)

	go g.writePump(c)

	// Replay existing state, or tell the client to start fresh.
	state, err := g.server.Connect(context.Background(), sessionID)
	switch {
	case err == nil:
		g.sendTo(c, eventGameStateUpdate, state)
	case errors.Is(err, ErrSessionNotFound):
		g.log.Infof("No existing session found for %s, awaiting start_game", sessionID)
		g.sendTo(c, eventAwaitingStart, awaitingStartPayload{
			Message:   awaitingStartMessage,
			SessionID: sessionID,
		})
	default:
		g.log.Errorf("Failed to resume session %s: %v", sessionID, err)
		g.sendTo(c, eventError, messagePayload{Message: "failed to load game session"})
	}

	g.readPump(c)
}

// register makes c the connection for its session id. An older connection
// under the same id is closed; the newest client wins.
func (g *Gateway) register(c *wsConn) {
	g.mu.Lock()
	old := g.conns[c.sessionID]
	g.conns[c.sessionID] = c
	g.mu.Unlock()

	if old != nil {
		g.log.Debugf("Replacing connection for session %s", c.sessionID)
		old.closeWith(websocket.CloseGoingAway, "session taken over by another connection")
	}
}

// unregister drops c from the registry unless a newer connection already
// replaced it.
func (g *Gateway) unregister(c *wsConn) {
	g.mu.Lock()
	if g.conns[c.sessionID] == c {
		delete(g.conns, c.sessionID)
	}
	g.mu.Unlock()
	c.close()
}

// Publish implements Publisher. Events for sessions without a live
// connection are dropped.
func (g *Gateway) Publish(sessionID, event string, payload interface{}) {
	g.mu.RLock()
	c := g.conns[sessionID]
	g.mu.RUnlock()

	if c == nil {
		g.log.Debugf("No connection for session %s, dropping %s", sessionID, event)
		return
	}
	g.sendTo(c, event, payload)
}

// Close tears down every live connection.
func (g *Gateway) Close() {
	g.mu.Lock()
	conns := make([]*wsConn, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.conns = make(map[string]*wsConn)
	g.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

// sendTo queues an envelope on the connection, best effort.
func (g *Gateway) sendTo(c *wsConn, event string, payload interface{}) {
	data, err := json.Marshal(outEnvelope{Type: event, Payload: payload})
	if err != nil {
		g.log.Errorf("Failed to marshal %s event for %s: %v", event, c.sessionID, err)
		return
	}
	if !c.trySend(data) {
		g.log.Warnf("Dropping %s event for session %s", event, c.sessionID)
	}
}

func (g *Gateway) sendError(c *wsConn, err error) {
	g.sendTo(c, eventError, messagePayload{Message: err.Error()})
}

// readPump consumes client envelopes until the connection drops, then
// persists the session's balance.
func (g *Gateway) readPump(c *wsConn) {
	defer func() {
		g.unregister(c)
		g.server.Disconnect(context.Background(), c.sessionID)
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Debugf("Read error for session %s: %v", c.sessionID, err)
			}
			return
		}

		var env inEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			g.sendTo(c, eventError, messagePayload{Message: "invalid message"})
			continue
		}
		g.handleEnvelope(c, &env)
	}
}

// handleEnvelope dispatches one client envelope to the matching command.
func (g *Gateway) handleEnvelope(c *wsConn, env *inEnvelope) {
	ctx := context.Background()

	switch env.Type {
	case eventStartGame:
		var p startGamePayload
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				g.sendTo(c, eventError, messagePayload{Message: "invalid start_game payload"})
				return
			}
		}
		state, err := g.server.StartGame(ctx, c.sessionID, p.Difficulty, p.BetAmount)
		if err != nil {
			g.sendError(c, err)
			return
		}
		g.sendTo(c, eventGameStateUpdate, state)

	case eventPlayerAction:
		var p playerActionPayload
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				g.sendTo(c, eventError, messagePayload{Message: "invalid player_action payload"})
				return
			}
		}
		state, err := g.server.PlayerAction(ctx, c.sessionID, p.Action)
		if err != nil {
			g.sendError(c, err)
			return
		}
		g.sendTo(c, eventGameStateUpdate, state)

	case eventResetGame:
		state, err := g.server.ResetGame(ctx, c.sessionID)
		if err != nil {
			g.sendError(c, err)
			return
		}
		g.sendTo(c, eventGameStateUpdate, state)

	default:
		g.sendTo(c, eventError, messagePayload{Message: "unknown message type: " + env.Type})
	}
}

// writePump owns all writes on the websocket, including keepalive pings.
func (g *Gateway) writePump(c *wsConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// trySend queues data unless the connection is closed or its buffer is
// full.
func (c *wsConn) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// close shuts the connection down exactly once. A close frame is sent
// first so the client can tell a deliberate close from a dropped
// transport and skip its reconnect logic.
func (c *wsConn) close() {
	c.closeWith(websocket.CloseGoingAway, "")
}

func (c *wsConn) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.ws.Close()
	})
}
