package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/capture"
	"github.com/voxtake/voxtake/internal/waveform"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The service binds to localhost and serves its own UI.
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 512

	// sendQueueSize bounds the per-client outbound queue. Waveform frames
	// dominate the traffic and are disposable, so a full queue drops the
	// message instead of stalling the broadcaster.
	sendQueueSize = 64
)

// CanvasTarget receives canvas pixel dimensions reported by a client.
type CanvasTarget interface {
	SetCanvasSize(width, height int)
}

// inboundMessage is what UI clients send over the socket.
type inboundMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type stateMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

type resultMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type historyMessage struct {
	Type string `json:"type"`
}

type waveformMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Points []int  `json:"points"`
}

type wsClient struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub fans session events and waveform frames out to every connected UI
// client, and feeds canvas resize reports back into the visualizer.
type Hub struct {
	logger zerolog.Logger

	mu      sync.RWMutex
	canvas  CanvasTarget
	clients map[uuid.UUID]*wsClient
}

// NewHub creates a hub pushing canvas reports into target. The target
// may be nil at construction and attached later with SetCanvasTarget;
// the hub and the visualizer reference each other.
func NewHub(target CanvasTarget, logger zerolog.Logger) *Hub {
	return &Hub{
		canvas:  target,
		logger:  logger,
		clients: make(map[uuid.UUID]*wsClient),
	}
}

// SetCanvasTarget attaches the receiver of canvas resize reports.
func (h *Hub) SetCanvasTarget(target CanvasTarget) {
	h.mu.Lock()
	h.canvas = target
	h.mu.Unlock()
}

// HandleWS upgrades the request and serves the client until it leaves.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := &wsClient{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()
	h.logger.Debug().Str("client_id", client.id.String()).Str("remote", conn.RemoteAddr().String()).Msg("UI client connected")

	go h.writePump(client)
	h.readPump(client)
}

func (h *Hub) readPump(client *wsClient) {
	defer h.drop(client)

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Str("client_id", client.id.String()).Msg("Websocket read failed")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Debug().Err(err).Msg("Ignoring malformed websocket message")
			continue
		}

		switch msg.Type {
		case "canvas":
			h.mu.RLock()
			canvas := h.canvas
			h.mu.RUnlock()
			if canvas != nil {
				canvas.SetCanvasSize(msg.Width, msg.Height)
			}
		default:
			h.logger.Debug().Str("type", msg.Type).Msg("Ignoring unknown websocket message type")
		}
	}
}

func (h *Hub) writePump(client *wsClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()
	client.conn.Close()
	h.logger.Debug().Str("client_id", client.id.String()).Msg("UI client disconnected")
}

// ClientCount returns the number of connected UI clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode websocket message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// Slow client; drop the message rather than block everyone.
		}
	}
}

// SendFrame pushes one rendered waveform frame to all clients.
func (h *Hub) SendFrame(f waveform.Frame) {
	h.broadcast(waveformMessage{Type: "waveform", Width: f.Width, Height: f.Height, Points: f.Points})
}

// StateChanged pushes a session lifecycle transition to all clients.
func (h *Hub) StateChanged(state capture.State) {
	h.broadcast(stateMessage{Type: "state", State: state.String()})
}

// ResultUpdated pushes the current result display text to all clients.
func (h *Hub) ResultUpdated(text string) {
	h.broadcast(resultMessage{Type: "result", Text: text})
}

// HistoryChanged tells clients to refetch the transcription history.
func (h *Hub) HistoryChanged() {
	h.broadcast(historyMessage{Type: "history"})
}
