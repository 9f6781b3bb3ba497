package net

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Routes registers the service endpoints on a fresh mux.
func (h *Hub) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/diagnostics", h.handleDiagnostics)
	mux.HandleFunc("/join", h.handleJoin)
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (h *Hub) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.DiagnosticsSnapshot())
}

func (h *Hub) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	join, err := h.Join(r.Context())
	if err != nil {
		http.Error(w, "failed to join", http.StatusInternalServerError)
		return
	}
	writeJSON(w, join)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("id")
	if agentID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed for %s: %v", agentID, err)
		return
	}

	sub, ok := h.Subscribe(agentID, conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown agent")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	if err := h.sendInitialState(sub); err != nil {
		h.Disconnect(r.Context(), agentID)
		return
	}

	ctx := r.Context()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.Disconnect(ctx, agentID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", agentID, err)
			continue
		}

		reply, err := h.HandleClientMessage(ctx, agentID, msg)
		if err != nil {
			log.Printf("rejected message from %s: %v", agentID, err)
			continue
		}
		if reply == nil {
			continue
		}
		if err := sub.writeJSON(reply); err != nil {
			h.Disconnect(ctx, agentID)
			return
		}
	}
}

func (h *Hub) sendInitialState(sub *subscriber) error {
	tick, agents := h.world.Snapshot()
	initial := stateMessage{
		Ver:        ProtoVersion,
		Type:       "state",
		Tick:       tick,
		Agents:     agents,
		ServerTime: time.Now().UnixMilli(),
	}
	return sub.writeJSON(initial)
}

func (s *subscriber) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
