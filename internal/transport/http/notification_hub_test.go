package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"studysync/internal/auth"
	"studysync/internal/domain"
)

func newHubFixture(t *testing.T) (*NotificationHub, *auth.Manager, string) {
	t.Helper()
	tokens := auth.NewManager("test-secret", time.Hour)
	hub := NewNotificationHub(tokens)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return hub, tokens, wsURL
}

func dialHub(t *testing.T, wsURL, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *NotificationHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		count := len(hub.subscribers)
		hub.mu.RUnlock()
		if count == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber count never reached %d", n)
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub, tokens, wsURL := newHubFixture(t)

	tokenA, _ := tokens.Issue("user-a", domain.RoleStudent)
	tokenB, _ := tokens.Issue("user-b", domain.RoleStudent)
	connA := dialHub(t, wsURL, tokenA)
	connB := dialHub(t, wsURL, tokenB)
	waitForSubscribers(t, hub, 2)

	hub.Notify(context.Background(), domain.Notification{
		Message:  "New quiz available: Fractions (Maths)",
		Severity: domain.SeverityInfo,
	})

	for _, conn := range []*websocket.Conn{connA, connB} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got domain.Notification
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read: %v", err)
		}
		if got.Message != "New quiz available: Fractions (Maths)" || got.Severity != domain.SeverityInfo {
			t.Fatalf("unexpected notification %+v", got)
		}
	}
}

func TestHubTargetedNotification(t *testing.T) {
	hub, tokens, wsURL := newHubFixture(t)

	tokenA, _ := tokens.Issue("user-a", domain.RoleStudent)
	tokenB, _ := tokens.Issue("user-b", domain.RoleStudent)
	connA := dialHub(t, wsURL, tokenA)
	connB := dialHub(t, wsURL, tokenB)
	waitForSubscribers(t, hub, 2)

	hub.Notify(context.Background(), domain.Notification{
		UserID:   "user-a",
		Message:  "You earned a badge",
		Severity: domain.SeverityInfo,
	})

	connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.Notification
	if err := connA.ReadJSON(&got); err != nil {
		t.Fatalf("target must receive: %v", err)
	}
	if got.UserID != "user-a" {
		t.Fatalf("unexpected notification %+v", got)
	}

	connB.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if err := connB.ReadJSON(&got); err == nil {
		t.Fatalf("bystander must not receive a targeted notification, got %+v", got)
	}
}

func TestHubRejectsBadToken(t *testing.T) {
	_, _, wsURL := newHubFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=garbage", nil)
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
	if resp != nil {
		resp.Body.Close()
	}
}

func TestHubDropsSubscriberOnDisconnect(t *testing.T) {
	hub, tokens, wsURL := newHubFixture(t)

	token, _ := tokens.Issue("user-a", domain.RoleStudent)
	conn := dialHub(t, wsURL, token)
	waitForSubscribers(t, hub, 1)

	conn.Close()
	waitForSubscribers(t, hub, 0)
}
