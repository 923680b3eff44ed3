package http

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"studysync/internal/auth"
	"studysync/internal/domain"
)

// NotificationHub implements app.Notifier over websockets. Delivery is
// best-effort by contract: a failed or absent subscriber never affects the
// request that triggered the notification.
type NotificationHub struct {
	tokens   *auth.Manager
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	userID string
	ch     chan domain.Notification
}

func NewNotificationHub(tokens *auth.Manager) *NotificationHub {
	return &NotificationHub{
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Notify fans the notification out to the target user's connections, or to
// everyone when UserID is empty. Slow consumers lose their oldest pending
// notification rather than blocking the sender.
func (h *NotificationHub) Notify(_ context.Context, n domain.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		if n.UserID != "" && n.UserID != sub.userID {
			continue
		}
		select {
		case sub.ch <- n:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- n:
			default:
			}
		}
	}
}

// ServeWS upgrades the connection and streams notifications until the client
// disconnects. The token rides in a query parameter because browser
// websocket clients cannot set headers.
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	claims, err := h.tokens.Parse(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := &subscriber{userID: claims.UserID, ch: make(chan domain.Notification, 8)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.subscribers, sub)
		h.mu.Unlock()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			// Clients never send payloads; reading only detects the close.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n := <-sub.ch:
			if err := conn.WriteJSON(n); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
