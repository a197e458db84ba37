package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/config"
	httpapi "campus-access-backend/internal/http"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store/memory"
)

var monday = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type harness struct {
	t   *testing.T
	srv *httpapi.Server
	ts  *httptest.Server
	hub *services.AccessLogHub
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", JWTIssuer: "campus-test", AccessTTLSeconds: 3600}
	hub := services.NewAccessLogHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httpapi.NewServer(cfg, httpapi.Deps{
		Store: memory.New(),
		Clock: clock.Fake(monday),
		Hub:   hub,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &harness{t: t, srv: srv, ts: ts, hub: hub}
}

// user creates an account directly through the service and logs it in.
func (h *harness) user(email string, role models.Role) (models.User, string) {
	h.t.Helper()
	u, err := h.srv.Users.Create(context.Background(), services.NewUser{Email: email, Password: "password123", Role: role})
	if err != nil {
		h.t.Fatalf("create user: %v", err)
	}
	var out map[string]interface{}
	status := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "password123"}, &out)
	if status != http.StatusOK {
		h.t.Fatalf("login %s: status %d", email, status)
	}
	return u, out["access_token"].(string)
}

func (h *harness) do(method, path, token string, body interface{}, out interface{}) int {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			h.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.ts.URL+path, reader)
	if err != nil {
		h.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			h.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (h *harness) expect(status, want int, what string) {
	h.t.Helper()
	if status != want {
		h.t.Fatalf("%s: expected status %d, got %d", what, want, status)
	}
}

// ── Auth ──

func TestLoginAndMe(t *testing.T) {
	h := newHarness(t)
	u, token := h.user("admin@campus.test", models.RoleAdmin)

	var me map[string]interface{}
	h.expect(h.do(http.MethodGet, "/api/v1/auth/me", token, nil, &me), http.StatusOK, "me")
	if me["id"] != u.ID || me["role"] != "admin" {
		t.Fatalf("unexpected me payload: %v", me)
	}

	var bad httpapi.ErrorResponse
	status := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@campus.test", "password": "wrong-password"}, &bad)
	h.expect(status, http.StatusUnauthorized, "bad password")
	if bad.Code != "auth_failed" || bad.Message != "Incorrect email or password" {
		t.Fatalf("unexpected error body: %+v", bad)
	}

	h.expect(h.do(http.MethodGet, "/api/v1/auth/me", "", nil, nil), http.StatusUnauthorized, "missing token")
	h.expect(h.do(http.MethodGet, "/api/v1/auth/me", "garbage", nil, nil), http.StatusUnauthorized, "garbage token")
	h.expect(h.do(http.MethodPost, "/api/v1/auth/logout", token, nil, nil), http.StatusOK, "logout")
}

func TestDeletedUserTokenIsRejected(t *testing.T) {
	h := newHarness(t)
	u, token := h.user("gone@campus.test", models.RoleStudent)
	if err := h.srv.Users.Delete(context.Background(), u.ID); err != nil {
		t.Fatal(err)
	}
	h.expect(h.do(http.MethodGet, "/api/v1/auth/me", token, nil, nil), http.StatusUnauthorized, "deleted user")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h := newHarness(t)
	_, admin := h.user("admin@campus.test", models.RoleAdmin)
	student, studentToken := h.user("s@campus.test", models.RoleStudent)

	room := map[string]interface{}{"name": "A101", "location": "Building A", "capacity": 30}
	h.expect(h.do(http.MethodPost, "/api/v1/rooms", studentToken, room, nil), http.StatusForbidden, "student creates room")
	h.expect(h.do(http.MethodPost, "/api/v1/rooms", admin, room, nil), http.StatusCreated, "admin creates room")
	h.expect(h.do(http.MethodGet, "/api/v1/rooms", studentToken, nil, nil), http.StatusOK, "student lists rooms")

	// an extra admin role is honoured
	h.expect(h.do(http.MethodPost, "/api/v1/users/"+student.ID+"/roles", admin, map[string]string{"role": "admin"}, nil), http.StatusOK, "assign role")
	h.expect(h.do(http.MethodGet, "/api/v1/users", studentToken, nil, nil), http.StatusOK, "promoted student lists users")
}

func TestValidationErrors(t *testing.T) {
	h := newHarness(t)
	_, admin := h.user("admin@campus.test", models.RoleAdmin)

	var errBody httpapi.ErrorResponse
	status := h.do(http.MethodPost, "/api/v1/users", admin, map[string]string{"email": "x@campus.test", "password": "short", "role": "student"}, &errBody)
	h.expect(status, http.StatusBadRequest, "short password")
	if errBody.Code != "invalid_input" || !strings.Contains(errBody.Message, "password") {
		t.Fatalf("unexpected error body: %+v", errBody)
	}
	h.expect(h.do(http.MethodGet, "/api/v1/rooms?limit=0", admin, nil, nil), http.StatusBadRequest, "limit 0")
	h.expect(h.do(http.MethodGet, "/api/v1/rooms?min_capacity=-1", admin, nil, nil), http.StatusBadRequest, "negative capacity")
}

// ── Reservations ──

func TestReservationLifecycle(t *testing.T) {
	h := newHarness(t)
	_, admin := h.user("admin@campus.test", models.RoleAdmin)
	_, owner := h.user("owner@campus.test", models.RoleProfessor)
	_, other := h.user("other@campus.test", models.RoleStudent)

	var room map[string]interface{}
	h.expect(h.do(http.MethodPost, "/api/v1/rooms", admin, map[string]interface{}{"name": "B2", "location": "Building B", "capacity": 30}, &room), http.StatusCreated, "room")
	roomID := room["id"].(string)

	book := func(token, start, end string, occupants int, out interface{}) int {
		return h.do(http.MethodPost, "/api/v1/reservations", token, map[string]interface{}{
			"room_id": roomID, "start_time": start, "end_time": end, "expected_occupants": occupants,
		}, out)
	}

	var first map[string]interface{}
	h.expect(book(owner, "2026-03-02T10:00:00Z", "2026-03-02T11:00:00Z", 20, &first), http.StatusCreated, "first booking")

	var conflict httpapi.ErrorResponse
	h.expect(book(other, "2026-03-02T10:30:00Z", "2026-03-02T11:30:00Z", 5, &conflict), http.StatusBadRequest, "overlap")
	if conflict.Code != "conflict" {
		t.Fatalf("expected conflict code, got %+v", conflict)
	}
	h.expect(book(other, "2026-03-02T11:00:00Z", "2026-03-02T12:00:00Z", 5, nil), http.StatusCreated, "touching booking")
	h.expect(book(other, "2026-03-02T13:00:00Z", "2026-03-02T14:00:00Z", 31, nil), http.StatusBadRequest, "over capacity")

	var avail map[string]interface{}
	h.expect(h.do(http.MethodGet, "/api/v1/reservations/room/"+roomID+"/availability?start_time=2026-03-02T09:00:00Z&end_time=2026-03-02T10:30:00Z", other, nil, &avail), http.StatusOK, "availability")
	if avail["is_available"] != false || len(avail["conflicting_reservations"].([]interface{})) != 1 {
		t.Fatalf("unexpected availability: %v", avail)
	}

	id := first["id"].(string)
	patch := map[string]interface{}{"expected_occupants": 25}
	h.expect(h.do(http.MethodPut, "/api/v1/reservations/"+id, other, patch, nil), http.StatusForbidden, "non-owner update")
	h.expect(h.do(http.MethodPut, "/api/v1/reservations/"+id, owner, patch, nil), http.StatusOK, "owner update")
	h.expect(h.do(http.MethodDelete, "/api/v1/reservations/"+id, other, nil, nil), http.StatusForbidden, "non-owner delete")
	h.expect(h.do(http.MethodDelete, "/api/v1/reservations/"+id, admin, nil, nil), http.StatusNoContent, "admin delete")
	h.expect(h.do(http.MethodGet, "/api/v1/reservations/"+id, owner, nil, nil), http.StatusNotFound, "deleted reservation")
}

func TestBookingForSomeoneElseNeedsAdmin(t *testing.T) {
	h := newHarness(t)
	_, admin := h.user("admin@campus.test", models.RoleAdmin)
	victim, _ := h.user("victim@campus.test", models.RoleStudent)
	_, student := h.user("s@campus.test", models.RoleStudent)

	var room map[string]interface{}
	h.do(http.MethodPost, "/api/v1/rooms", admin, map[string]interface{}{"name": "C3", "location": "Building C", "capacity": 10}, &room)
	body := map[string]interface{}{
		"room_id": room["id"], "start_time": "2026-03-02T10:00:00Z", "end_time": "2026-03-02T11:00:00Z",
		"expected_occupants": 2, "reserved_by": victim.ID,
	}
	h.expect(h.do(http.MethodPost, "/api/v1/reservations", student, body, nil), http.StatusForbidden, "student books for other")

	var created map[string]interface{}
	h.expect(h.do(http.MethodPost, "/api/v1/reservations", admin, body, &created), http.StatusCreated, "admin books for other")
	if created["reserved_by"] != victim.ID {
		t.Fatalf("expected reservation for %s, got %v", victim.ID, created["reserved_by"])
	}
}

// ── Access ──

func TestSimulateAccessAndBypass(t *testing.T) {
	h := newHarness(t)
	_, admin := h.user("admin@campus.test", models.RoleAdmin)
	holder, holderToken := h.user("holder@campus.test", models.RoleStudent)

	var disabled, lost map[string]interface{}
	h.expect(h.do(http.MethodPost, "/api/v1/access-cards", admin, map[string]interface{}{"user_id": holder.ID, "card_number": "CARD-1", "status": "disabled"}, &disabled), http.StatusCreated, "disabled card")
	h.expect(h.do(http.MethodPost, "/api/v1/access-cards", admin, map[string]interface{}{"user_id": holder.ID, "card_number": "CARD-2", "status": "lost"}, &lost), http.StatusCreated, "lost card")

	var denied map[string]interface{}
	h.expect(h.do(http.MethodPost, "/api/v1/access-logs/simulate-access?card_number=CARD-1&location=Library&access_type=entry", holderToken, nil, &denied), http.StatusCreated, "simulate")
	if denied["access_type"] != "denied" || denied["granted"] != false {
		t.Fatalf("expected denied log, got %v", denied)
	}

	var forced map[string]interface{}
	h.expect(h.do(http.MethodPost, "/api/v1/access-logs", holderToken, map[string]string{"card_id": lost["id"].(string), "location": "Gym", "access_type": "entry"}, nil), http.StatusForbidden, "student bypass")
	h.expect(h.do(http.MethodPost, "/api/v1/access-logs", admin, map[string]string{"card_id": lost["id"].(string), "location": "Gym", "access_type": "entry"}, &forced), http.StatusCreated, "admin bypass")
	if forced["access_type"] != "entry" || forced["granted"] != true {
		t.Fatalf("expected entry log, got %v", forced)
	}

	h.expect(h.do(http.MethodPost, "/api/v1/access-logs/simulate-access?card_number=NOPE&location=Library&access_type=entry", holderToken, nil, nil), http.StatusNotFound, "unknown card")
	h.expect(h.do(http.MethodPost, "/api/v1/access-logs/simulate-access?card_number=CARD-1&location=Library&access_type=teleport", holderToken, nil, nil), http.StatusBadRequest, "bad type")

	var logs []map[string]interface{}
	h.expect(h.do(http.MethodGet, "/api/v1/access-logs/user/"+holder.ID, admin, nil, &logs), http.StatusOK, "logs by user")
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}

	var stats map[string]interface{}
	h.expect(h.do(http.MethodGet, "/api/v1/access-logs/stats/summary", admin, nil, &stats), http.StatusOK, "stats")
	if stats["total_attempts"] != float64(2) || stats["success_rate"] != float64(50) {
		t.Fatalf("unexpected stats: %v", stats)
	}

	var card map[string]interface{}
	h.expect(h.do(http.MethodPut, "/api/v1/access-cards/"+disabled["id"].(string)+"/status?status=bogus", admin, nil, nil), http.StatusBadRequest, "bad status")
	h.expect(h.do(http.MethodPut, "/api/v1/access-cards/"+disabled["id"].(string)+"/status?status=active", admin, nil, &card), http.StatusOK, "reactivate")
	if card["status"] != "active" {
		t.Fatalf("expected active card, got %v", card)
	}
}

func TestSimulateAccessRequiresAccessType(t *testing.T) {
	h := newHarness(t)
	_, admin := h.user("admin@campus.test", models.RoleAdmin)
	holder, holderToken := h.user("holder@campus.test", models.RoleStudent)
	h.expect(h.do(http.MethodPost, "/api/v1/access-cards", admin, map[string]interface{}{"user_id": holder.ID, "card_number": "CARD-7"}, nil), http.StatusCreated, "active card")

	for _, query := range []string{
		"card_number=CARD-7&location=Library",
		"card_number=CARD-7&location=Library&access_type=",
	} {
		var errBody httpapi.ErrorResponse
		h.expect(h.do(http.MethodPost, "/api/v1/access-logs/simulate-access?"+query, holderToken, nil, &errBody), http.StatusBadRequest, query)
		if errBody.Code != "invalid_input" {
			t.Fatalf("%s: expected invalid_input, got %+v", query, errBody)
		}
	}

	var logs []map[string]interface{}
	h.expect(h.do(http.MethodGet, "/api/v1/access-logs/user/"+holder.ID, admin, nil, &logs), http.StatusOK, "logs by user")
	if len(logs) != 0 {
		t.Fatalf("expected no logs, got %v", logs)
	}
	var stats map[string]interface{}
	h.expect(h.do(http.MethodGet, "/api/v1/access-logs/stats/summary", admin, nil, &stats), http.StatusOK, "stats")
	if stats["total_attempts"] != float64(0) {
		t.Fatalf("expected no attempts, got %v", stats)
	}
}

func TestAccessLogStream(t *testing.T) {
	h := newHarness(t)
	_, admin := h.user("admin@campus.test", models.RoleAdmin)
	holder, holderToken := h.user("holder@campus.test", models.RoleStudent)
	h.do(http.MethodPost, "/api/v1/access-cards", admin, map[string]interface{}{"user_id": holder.ID, "card_number": "CARD-9"}, nil)

	wsURL := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/ws/access-logs?token="
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL+holderToken, nil); err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin stream, got err=%v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+admin, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.expect(h.do(http.MethodPost, "/api/v1/access-logs/simulate-access?card_number=CARD-9&location=Lab&access_type=entry", holderToken, nil, nil), http.StatusCreated, "simulate")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event services.AccessLogView
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Location != "Lab" || event.AccessType != models.AccessEntry || !event.Granted {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestRequestLoggerKeepsHijacker(t *testing.T) {
	ts := httptest.NewServer(httpapi.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "no hijacker", http.StatusInternalServerError)
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 8\r\nConnection: close\r\n\r\nhijacked")
		_ = buf.Flush()
	})))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "hijacked" {
		t.Fatalf("expected hijacked response, got %d %q", resp.StatusCode, body)
	}
}

// ── Operational endpoints ──

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	h.expect(h.do(http.MethodGet, "/health", "", nil, nil), http.StatusOK, "health")
	h.expect(h.do(http.MethodGet, "/ready", "", nil, nil), http.StatusOK, "ready")

	_, admin := h.user("admin@campus.test", models.RoleAdmin)
	holder, _ := h.user("holder@campus.test", models.RoleStudent)
	h.do(http.MethodPost, "/api/v1/access-cards", admin, map[string]interface{}{"user_id": holder.ID, "card_number": "CARD-5"}, nil)
	h.do(http.MethodPost, "/api/v1/access-logs/simulate-access?card_number=CARD-5&location=Lab&access_type=entry", admin, nil, nil)

	resp, err := http.Get(h.ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `campus_access_decisions_total{access_type="entry"} 1`) {
		t.Fatalf("metrics missing access decision counter:\n%s", body)
	}
}
