package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
)

func newHubServer(t *testing.T, hub *services.AccessLogHub) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(conn)
		defer hub.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func waitSubscribers(hub *services.AccessLogHub, want int, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		for hub.Subscribers() < want {
			time.Sleep(5 * time.Millisecond)
		}
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestHubDeliversPublishedLog(t *testing.T) {
	hub := services.NewAccessLogHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	url := newHubServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if !waitSubscribers(hub, 1, 2*time.Second) {
		t.Fatal("subscriber never registered")
	}

	hub.Publish(models.AccessLog{ID: "log-1", Location: "Lab", AccessType: models.AccessExit, Granted: true})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event services.AccessLogView
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.ID != "log-1" || event.AccessType != models.AccessExit {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestHubAddIsNotBlockedBySlowSubscriber(t *testing.T) {
	hub := services.NewAccessLogHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	url := newHubServer(t, hub)

	// Never reads, so the hub's writes to it stall once the socket buffers fill.
	slow, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial slow: %v", err)
	}
	defer slow.Close()
	if !waitSubscribers(hub, 1, 2*time.Second) {
		t.Fatal("slow subscriber never registered")
	}

	big := strings.Repeat("x", 1<<20)
	for i := 0; i < 32; i++ {
		hub.Publish(models.AccessLog{ID: "bulk", Location: big, AccessType: models.AccessEntry, Granted: true})
	}
	time.Sleep(200 * time.Millisecond)

	fresh, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial fresh: %v", err)
	}
	defer fresh.Close()
	if !waitSubscribers(hub, 2, time.Second) {
		t.Fatal("expected new subscriber to register while a write is stalled")
	}
}
