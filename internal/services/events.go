package services

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campus-access-backend/internal/models"
)

// AccessLogPublisher receives every access log right after it is stored.
type AccessLogPublisher interface {
	Publish(entry models.AccessLog)
}

// AccessLogHub fans new access logs out to websocket subscribers.
type AccessLogHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan models.AccessLog
}

func NewAccessLogHub() *AccessLogHub {
	return &AccessLogHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan models.AccessLog, 64),
	}
}

func (h *AccessLogHub) Run(ctx context.Context) {
	for {
		select {
		case entry := <-h.ch:
			h.send(AccessLogEvent(entry))
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Publish drops the event when the hub is saturated; subscribers are best effort.
func (h *AccessLogHub) Publish(entry models.AccessLog) {
	select {
	case h.ch <- entry:
	default:
	}
}

func (h *AccessLogHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *AccessLogHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *AccessLogHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// send runs only on the Run goroutine, so each conn has a single writer.
// The lock guards the client set, not the writes.
func (h *AccessLogHub) send(event AccessLogView) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			_ = conn.Close()
			h.Remove(conn)
		}
	}
}

func (h *AccessLogHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

// AccessLogView is the wire shape of an access log.
type AccessLogView struct {
	ID         string            `json:"id"`
	CardID     *string           `json:"card_id"`
	AccessedAt time.Time         `json:"accessed_at"`
	Location   string            `json:"location"`
	AccessType models.AccessType `json:"access_type"`
	Granted    bool              `json:"granted"`
}

func AccessLogEvent(entry models.AccessLog) AccessLogView {
	return AccessLogView{
		ID:         entry.ID,
		CardID:     entry.CardID,
		AccessedAt: entry.AccessedAt,
		Location:   entry.Location,
		AccessType: entry.AccessType,
		Granted:    entry.Granted,
	}
}
