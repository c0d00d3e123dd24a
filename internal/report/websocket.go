package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"arbscan/internal/model"
)

// Hub broadcasts each reporting cycle to subscribed websocket clients.
// A client whose write fails is dropped; the publish continues for the rest.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a hub serving /ws on addr.
func NewHub(logger *slog.Logger, addr string) *Hub {
	h := &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleSubscribe)
	h.server = &http.Server{Addr: addr, Handler: mux}
	return h
}

// Start serves subscriptions until ctx is cancelled.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = h.server.Shutdown(shutdownCtx)
	}()
	go func() {
		h.logger.Info("websocket hub listening", "addr", h.server.Addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("websocket hub stopped", "error", err)
		}
	}()
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("websocket client subscribed", "remote", r.RemoteAddr, "clients", n)

	// Drain reads so close frames and pings are processed; unregister on
	// the first read error.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// ClientCount returns the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish broadcasts the cycle as one JSON message per client.
func (h *Hub) Publish(_ context.Context, opportunities []model.ArbitrageOpportunity) error {
	doc := snapshot{
		Timestamp:     time.Now(),
		Count:         len(opportunities),
		Opportunities: opportunities,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("dropping disconnected client", "error", err)
			h.drop(conn)
		}
	}
	return nil
}
