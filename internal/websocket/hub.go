package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"todo-web/pkg/logger"
)

// Conn adalah bagian dari *websocket.Conn yang dipakai Hub.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client merepresentasikan satu tab browser yang terhubung. Setiap client
// punya antrean kirim sendiri yang ditulis oleh goroutine writer miliknya.
type Client struct {
	Conn      Conn
	AccountID int

	send chan []byte
}

// Event dikirim ke semua tab milik akun yang sama setelah data berubah.
type Event struct {
	Type       string `json:"type"`
	TaskID     int    `json:"task_id"`
	CheckboxID int    `json:"checkbox_id,omitempty"`
}

const (
	TaskCreated     = "task.created"
	TaskUpdated     = "task.updated"
	TaskDeleted     = "task.deleted"
	CheckboxCreated = "checkbox.created"
	CheckboxToggled = "checkbox.toggled"
	CheckboxDeleted = "checkbox.deleted"
)

const (
	broadcastBacklog = 64
	// clientBacklog is how many events a slow client may fall behind
	// before the hub drops it.
	clientBacklog = 16
	writeWait     = 10 * time.Second
)

type deadlineSetter interface {
	SetWriteDeadline(t time.Time) error
}

type message struct {
	accountID int
	payload   []byte
}

// Hub mengelola koneksi WebSocket. Semua state client hanya disentuh
// oleh goroutine Run; Run tidak pernah menulis ke socket sendiri.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, broadcastBacklog),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run menjalankan loop Hub sampai Stop dipanggil.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			client.send = make(chan []byte, clientBacklog)
			h.clients[client] = true
			go client.writeLoop()
		case client := <-h.unregister:
			h.drop(client)
		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.AccountID != msg.accountID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					logger.SystemLogger.Warn("websocket client too slow, dropped", zap.Int("account_id", client.AccountID))
					h.drop(client)
				}
			}
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish mengirim event ke semua client milik accountID. Tidak pernah
// blocking: event dibuang jika antrean penuh.
func (h *Hub) Publish(accountID int, ev Event) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding websocket event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{accountID: accountID, payload: payload}:
	default:
		logger.SystemLogger.Warn("websocket backlog full, event dropped", zap.String("type", ev.Type))
	}
}

// drop must only be called from Run. Closing the connection also unblocks
// a writer stuck in WriteMessage.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		_ = client.Conn.Close()
	}
}

// writeLoop kirim pesan dari antrean client sampai antrean ditutup oleh hub.
func (c *Client) writeLoop() {
	failed := false
	for payload := range c.send {
		if failed {
			continue
		}
		if d, ok := c.Conn.(deadlineSetter); ok {
			_ = d.SetWriteDeadline(time.Now().Add(writeWait))
		}
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.ErrorLogger.Warn("websocket write failed", zap.Int("account_id", c.AccountID), zap.Error(err))
			// the read loop sees the closed socket and unregisters
			_ = c.Conn.Close()
			failed = true
		}
	}
}
