package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// snapshotBroadcastInterval is how often a battle's snapshot is pushed
	// to its connected WebSocket clients.
	snapshotBroadcastInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if IsAllowedOrigin(origin) {
			return true
		}

		log.Printf("websocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection with its source IP.
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// battleHub broadcasts one battle's snapshots to every client subscribed to
// it. One hub per live battle, created lazily on first WebSocket connection
// and torn down when the last client disconnects.
type battleHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex
	wsLimiter  *WebSocketRateLimiter

	entry    *BattleEntry
	stopChan chan struct{}
	stopOnce sync.Once
}

func newBattleHub(entry *BattleEntry) *battleHub {
	h := &battleHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		entry:      entry,
		stopChan:   make(chan struct{}),
	}
	go h.run()
	go h.broadcastLoop()
	return h
}

func (h *battleHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()
			count := h.ClientCount()
			log.Printf("battle %s: client connected from %s (%d total)", h.entry.State.ID, client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			count := h.ClientCount()
			log.Printf("battle %s: client disconnected (%d remaining)", h.entry.State.ID, count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					h.mu.RUnlock()
					h.mu.Lock()
					if client, ok := h.clients[conn]; ok {
						h.wsLimiter.Release(client.ip)
						delete(h.clients, conn)
					}
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
			IncrementWSMessages()

		case <-h.stopChan:
			return
		}
	}
}

// broadcastLoop polls the battle's latest snapshot and fans it out on a
// fixed ticker rather than hooking into the tick loop directly.
func (h *battleHub) broadcastLoop() {
	ticker := time.NewTicker(snapshotBroadcastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopChan:
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			h.Broadcast("battle:snapshot", h.entry.Snapshot())
		}
	}
}

// Broadcast sends an event-tagged message to every connected client.
func (h *battleHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{"event": event, "data": data}
	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure).
	}
}

// ClientCount returns the number of connected clients.
func (h *battleHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// stop halts the hub's goroutines and closes every connection. Called when
// the last client disconnects so an idle battle doesn't keep a ticker alive.
func (h *battleHub) stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
		}
		h.clients = make(map[*websocket.Conn]*wsClient)
		h.mu.Unlock()
	})
}

// hubRegistry lazily creates and tears down one battleHub per battle ID.
type hubRegistry struct {
	mu   sync.Mutex
	hubs map[string]*battleHub
}

func newHubRegistry() *hubRegistry {
	return &hubRegistry{hubs: make(map[string]*battleHub)}
}

func (r *hubRegistry) get(entry *BattleEntry) *battleHub {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.hubs[entry.State.ID]; ok {
		return h
	}
	h := newBattleHub(entry)
	r.hubs[entry.State.ID] = h
	return h
}

func (r *hubRegistry) release(battleID string) {
	r.mu.Lock()
	h, ok := r.hubs[battleID]
	if ok {
		delete(r.hubs, battleID)
	}
	r.mu.Unlock()
	if ok {
		h.stop()
	}
}

// handleBattleWebSocket upgrades a per-battle connection and subscribes it
// to that battle's snapshot broadcasts, applying any inbound command
// messages the same way the HTTP /command endpoint does.
func (h *routerHandlers) handleBattleWebSocket(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.battleFromPath(w, r)
	if !ok {
		return
	}

	ip := GetClientIP(r)
	hub := h.hubs.get(entry)

	hub.mu.RLock()
	total := len(hub.clients)
	hub.mu.RUnlock()
	if total >= MaxWSConnectionsTotal {
		log.Printf("websocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !hub.wsLimiter.Allow(ip) {
		log.Printf("websocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		hub.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	hub.register <- client

	go func() {
		defer func() {
			hub.unregister <- conn
			if hub.ClientCount() == 0 {
				h.hubs.release(entry.State.ID)
			}
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var req CommandRequest
			if err := json.Unmarshal(message, &req); err != nil {
				continue
			}
			if err := entry.ApplyCommand(req.ToCommand()); err != nil {
				log.Printf("battle %s: ws command rejected: %v", entry.State.ID, err)
			}
		}
	}()
}
