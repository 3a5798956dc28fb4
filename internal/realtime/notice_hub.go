package realtime

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
)

// Event is the frame pushed to a subscribed user.
type Event struct {
	Type   string         `json:"type"`
	Notice *models.Notice `json:"notice"`
}

// NoticeHub tracks live connections per user and pushes new notices to them.
type NoticeHub struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]map[*Conn]struct{}
}

func NewNoticeHub() *NoticeHub {
	return &NoticeHub{
		users: make(map[primitive.ObjectID]map[*Conn]struct{}),
	}
}

func (h *NoticeHub) Register(userID primitive.ObjectID, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[*Conn]struct{})
	}
	h.users[userID][conn] = struct{}{}
}

func (h *NoticeHub) Unregister(userID primitive.ObjectID, conn *Conn) {
	h.mu.Lock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *NoticeHub) Connections(userID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// CloseAll closes every connection; their handlers then return.
func (h *NoticeHub) CloseAll() {
	h.mu.Lock()
	users := h.users
	h.users = make(map[primitive.ObjectID]map[*Conn]struct{})
	h.mu.Unlock()
	for _, conns := range users {
		for conn := range conns {
			_ = conn.Close()
		}
	}
}

func (h *NoticeHub) Name() string { return "websocket" }

// Deliver pushes notice to every connection of every addressed team member.
// Connections that fail to accept the frame are dropped.
func (h *NoticeHub) Deliver(_ context.Context, notice *models.Notice, _ []models.User) error {
	type target struct {
		user primitive.ObjectID
		conn *Conn
	}
	var targets []target
	h.mu.RLock()
	for _, uid := range notice.Team {
		for conn := range h.users[uid] {
			targets = append(targets, target{uid, conn})
		}
	}
	h.mu.RUnlock()

	ev := Event{Type: "notice", Notice: notice}
	for _, t := range targets {
		if err := t.conn.WriteJSON(ev); err != nil {
			logging.Logger.Debugf("[ws][push][drop] user=%s: %v", t.user.Hex(), err)
			h.Unregister(t.user, t.conn)
		}
	}
	return nil
}
