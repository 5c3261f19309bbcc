package httpapi

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/launch"
	"solana-token-launchpad/internal/observability"
)

// ProgressHub fans creation step events out to WebSocket subscribers.
// It plugs into the launcher as its StepObserver; each client subscribes
// to one wallet's events via ?wallet=, or to all events without it.
type ProgressHub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]string // conn -> wallet filter ("" = all)
}

// NewProgressHub creates an empty hub.
func NewProgressHub(logger *log.Logger) *ProgressHub {
	if logger == nil {
		logger = log.New(os.Stdout, "[progress] ", log.LstdFlags|log.Lshortfile)
	}
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			// The HTTP layer already allows any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]string),
	}
}

var _ launch.StepObserver = (*ProgressHub)(nil)

// ObserveStep broadcasts one step event to matching subscribers.
// Connections that fail to write are dropped.
func (h *ProgressHub) ObserveStep(e domain.StepEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, wallet := range h.clients {
		if wallet != "" && wallet != e.Wallet {
			continue
		}
		if err := conn.WriteJSON(e); err != nil {
			h.logger.Printf("progress write failed, dropping client: %v", err)
			h.dropLocked(conn)
		}
	}
}

func (h *ProgressHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	wallet := r.URL.Query().Get("wallet")
	h.mu.Lock()
	h.clients[conn] = wallet
	h.mu.Unlock()
	observability.DefaultMetrics.WSClientsConnected.Inc()

	// Reader loop only to detect closure; clients are not expected to send.
	go func() {
		defer func() {
			h.mu.Lock()
			h.dropLocked(conn)
			h.mu.Unlock()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// dropLocked removes and closes a connection. Caller holds h.mu.
func (h *ProgressHub) dropLocked(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
	observability.DefaultMetrics.WSClientsConnected.Dec()
}

// ClientCount reports the number of connected subscribers.
func (h *ProgressHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
