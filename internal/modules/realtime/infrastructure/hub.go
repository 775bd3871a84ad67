package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"kanbanApi/internal/modules/realtime/application/port"
	"kanbanApi/internal/modules/realtime/domain"
	"kanbanApi/internal/shared/logging"
)

type connSet map[*Connection]struct{}

// Hub is the in-process registry of live connections. It owns topic
// membership, user bindings and watch rooms; nothing else mutates them.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*Connection
	topics   map[string]connSet
	users    map[string]connSet
	watchers map[string]connSet
}

func NewHub() *Hub {
	return &Hub{
		conns:    make(map[string]*Connection),
		topics:   make(map[string]connSet),
		users:    make(map[string]connSet),
		watchers: make(map[string]connSet),
	}
}

// Register adds a freshly connected socket to the registry.
func (h *Hub) Register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
	slog.Info("socket connected", slog.String("connId", c.id))
}

// Subscribe moves c into topic, leaving its previous topic first.
// It reports false when c was already in topic.
func (h *Hub) Subscribe(c *Connection, topic string) bool {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.conns[c.id]; !live {
		return false
	}
	if c.topic == topic {
		return false
	}
	if c.topic != "" {
		slog.Info("socket leaving topic", slog.String("connId", c.id), slog.String("topic", c.topic))
		removeFrom(h.topics, c.topic, c)
	}
	addTo(h.topics, topic, c)
	c.topic = topic
	slog.Info("socket joined topic", slog.String("connId", c.id), slog.String("topic", topic))
	return true
}

// Unsubscribe removes c from its current topic, if any.
func (h *Hub) Unsubscribe(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.topic == "" {
		return
	}
	removeFrom(h.topics, c.topic, c)
	c.topic = ""
}

// Watch adds c to the watch room of userID. Watch rooms are independent of the topic.
func (h *Hub) Watch(c *Connection, userID string) {
	room := domain.WatchRoom(userID)
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.conns[c.id]; !live {
		return
	}
	addTo(h.watchers, room, c)
	c.watching[room] = struct{}{}
}

// BindUser associates userID with c, replacing any previous binding of c.
func (h *Hub) BindUser(c *Connection, userID string) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.conns[c.id]; !live {
		return
	}
	if c.userID != "" {
		removeFrom(h.users, c.userID, c)
	}
	addTo(h.users, userID, c)
	c.userID = userID
	slog.Info("socket bound to user", slog.String("connId", c.id), slog.String("userId", userID))
}

// UnbindUser clears the user binding of c. Topic membership is kept.
func (h *Hub) UnbindUser(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.userID == "" {
		return
	}
	removeFrom(h.users, c.userID, c)
	slog.Info("socket unbound from user", slog.String("connId", c.id), slog.String("userId", c.userID))
	c.userID = ""
}

// Detach tears c down: it leaves every topic, binding and watch room, and its
// send queue is closed. Calling Detach twice is harmless.
func (h *Hub) Detach(c *Connection) {
	if c == nil {
		return
	}
	h.mu.Lock()
	if _, live := h.conns[c.id]; live {
		delete(h.conns, c.id)
		if c.topic != "" {
			removeFrom(h.topics, c.topic, c)
		}
		if c.userID != "" {
			removeFrom(h.users, c.userID, c)
		}
		for room := range c.watching {
			removeFrom(h.watchers, room, c)
		}
		slog.Info("socket disconnected", slog.String("connId", c.id), slog.String("userId", c.userID), slog.String("topic", c.topic))
	}
	h.mu.Unlock()
	c.close()
}

// EmitToTopic delivers an event to every connection subscribed to topic.
func (h *Hub) EmitToTopic(ctx context.Context, topic, eventType string, payload any) int {
	h.mu.RLock()
	targets := collect(h.topics[strings.TrimSpace(topic)], nil)
	h.mu.RUnlock()
	return h.deliver(ctx, targets, eventType, payload)
}

// EmitToUser delivers an event to the connections bound to userID. A user
// without live connections is offline, which is not an error.
func (h *Hub) EmitToUser(ctx context.Context, userID, eventType string, payload any) int {
	h.mu.RLock()
	targets := collect(h.users[strings.TrimSpace(userID)], nil)
	h.mu.RUnlock()
	if len(targets) == 0 {
		logging.FromContext(ctx).Info("no active socket for user", slog.String("userId", userID), slog.String("type", eventType))
		return 0
	}
	return h.deliver(ctx, targets, eventType, payload)
}

// EmitTo delivers an event to the watchers of label, or to every connection when label is empty.
func (h *Hub) EmitTo(ctx context.Context, label, eventType string, payload any) int {
	h.mu.RLock()
	var targets []*Connection
	if room := domain.WatchRoom(label); room != "" {
		targets = collect(h.watchers[room], nil)
	} else {
		targets = h.allLocked(nil)
	}
	h.mu.RUnlock()
	return h.deliver(ctx, targets, eventType, payload)
}

// Broadcast fans a change event out, excluding the acting user's own
// connection when it can be resolved:
//
//	actor resolved, topic set:   topic members except the actor
//	actor resolved, no topic:    every live connection except the actor
//	actor unresolved, topic set: every topic member
//	neither:                     every live connection
//
// The actor resolves only when exactly one live connection is bound to it.
func (h *Hub) Broadcast(ctx context.Context, evt domain.ChangeEvent) int {
	logger := logging.FromContext(ctx)
	topic := strings.TrimSpace(evt.Topic)

	h.mu.RLock()
	actor := h.resolveUserLocked(evt.ActingUserID)
	var targets []*Connection
	switch {
	case actor != nil && topic != "":
		logger.Info("broadcast to topic excluding actor", slog.String("type", evt.Kind), slog.String("topic", topic), slog.String("userId", evt.ActingUserID))
		targets = collect(h.topics[topic], actor)
	case actor != nil:
		logger.Info("broadcast to all excluding actor", slog.String("type", evt.Kind), slog.String("userId", evt.ActingUserID))
		targets = h.allLocked(actor)
	case topic != "":
		logger.Info("broadcast to topic", slog.String("type", evt.Kind), slog.String("topic", topic))
		targets = collect(h.topics[topic], nil)
	default:
		logger.Info("broadcast to all", slog.String("type", evt.Kind))
		targets = h.allLocked(nil)
	}
	h.mu.RUnlock()

	return h.deliver(ctx, targets, evt.Kind, evt.Payload)
}

// TopicOf returns the topic c is subscribed to.
func (h *Hub) TopicOf(c *Connection) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.topic
}

// UserOf returns the user bound to c.
func (h *Hub) UserOf(c *Connection) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.userID
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Members returns the number of connections subscribed to topic.
func (h *Hub) Members(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) resolveUserLocked(userID string) *Connection {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	bound := h.users[userID]
	if len(bound) != 1 {
		return nil
	}
	for c := range bound {
		return c
	}
	return nil
}

func (h *Hub) allLocked(exclude *Connection) []*Connection {
	out := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		if c != exclude {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) deliver(ctx context.Context, targets []*Connection, eventType string, payload any) int {
	if len(targets) == 0 {
		return 0
	}
	data, err := json.Marshal(domain.Frame{Type: eventType, Data: payload})
	if err != nil {
		logging.FromContext(ctx).Error("socket frame marshal error", slog.String("type", eventType), slog.Any("error", err))
		return 0
	}
	delivered := 0
	for _, c := range targets {
		switch c.enqueue(data) {
		case enqueued:
			delivered++
		case overflowed:
			slog.Warn("socket send buffer full", slog.String("connId", c.id))
			go h.Detach(c)
		}
	}
	return delivered
}

func collect(set connSet, exclude *Connection) []*Connection {
	out := make([]*Connection, 0, len(set))
	for c := range set {
		if c != exclude {
			out = append(out, c)
		}
	}
	return out
}

func addTo(index map[string]connSet, key string, c *Connection) {
	set := index[key]
	if set == nil {
		set = make(connSet)
		index[key] = set
	}
	set[c] = struct{}{}
}

func removeFrom(index map[string]connSet, key string, c *Connection) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(index, key)
	}
}

var _ port.Broadcaster = (*Hub)(nil)
