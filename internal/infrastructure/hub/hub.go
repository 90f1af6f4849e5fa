package hub

import (
	"context"
	"fmt"
	"sync"

	"go-deribit-gateway/internal/infrastructure/logger"
)

// Hub accepts downstream consumer connections and routes inbound topic
// updates to the consumers subscribed to each topic. It holds only a
// lookup-by-topic relation over connection IDs; the connections themselves
// live in a separate registry removed precisely on disconnect.
//
// Registration, subscription, disconnect cleanup and broadcast all serialize
// on one mutex, so a consumer is never broadcast to after it has been removed
// and a subscribe cannot race a concurrent disconnect.
type Hub struct {
	mu          sync.Mutex
	connections map[string]Connection
	topics      map[string]map[string]Connection
	running     bool

	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a hub. Start must be called before connections are accepted.
func New(log logger.Logger) *Hub {
	return &Hub{
		connections: make(map[string]Connection),
		topics:      make(map[string]map[string]Connection),
		logger:      log.WithField("component", "hub"),
	}
}

// Start marks the hub as running. It is an error to start a running hub.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return fmt.Errorf("hub is already running")
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	h.running = true
	h.logger.Info("hub started")
	return nil
}

// Stop closes every consumer connection and clears all topic memberships.
// Stopping a stopped hub is a no-op.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	h.cancel()

	for id, conn := range h.connections {
		if err := conn.Close(); err != nil {
			h.logger.Errorf("close connection %s: %v", id, err)
		}
	}
	h.connections = make(map[string]Connection)
	h.topics = make(map[string]map[string]Connection)

	h.running = false
	h.logger.Info("hub stopped")
	return nil
}

// IsRunning reports whether the hub accepts connections.
func (h *Hub) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Register adds a consumer connection with no topic memberships yet. The hub
// watches the connection context and cleans up when it is cancelled.
func (h *Hub) Register(conn Connection) error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return fmt.Errorf("hub is not running")
	}
	h.connections[conn.ID()] = conn
	h.mu.Unlock()

	h.logger.Infof("consumer %s connected (type: %s)", conn.ID(), conn.Type())

	go func() {
		select {
		case <-conn.Context().Done():
		case <-h.ctx.Done():
			return
		}
		h.Unregister(conn.ID())
	}()

	return nil
}

// Unregister removes a consumer from the registry and from every topic set.
// It is safe to call for an unknown or already removed ID.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	conn, exists := h.connections[connID]
	if exists {
		delete(h.connections, connID)
	}
	for topic, consumers := range h.topics {
		delete(consumers, connID)
		if len(consumers) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()

	if exists {
		_ = conn.Close()
		h.logger.Infof("consumer %s disconnected", connID)
	}
}

// HandleMessage interprets one inbound consumer frame. A recognized subscribe
// command adds the consumer to that topic's set; anything else is logged and
// discarded. Subscriptions are additive: re-subscribing under a new topic
// keeps prior memberships.
func (h *Hub) HandleMessage(connID string, data []byte) {
	topic, err := ParseSubscribeCommand(data)
	if err != nil {
		h.logger.Warnf("consumer %s: %v", connID, err)
		return
	}

	if err := h.Subscribe(connID, topic); err != nil {
		h.logger.Warnf("consumer %s: %v", connID, err)
	}
}

// Subscribe registers a consumer's interest in a topic.
func (h *Hub) Subscribe(connID, topic string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, exists := h.connections[connID]
	if !exists {
		return fmt.Errorf("unknown consumer %s", connID)
	}

	consumers, ok := h.topics[topic]
	if !ok {
		consumers = make(map[string]Connection)
		h.topics[topic] = consumers
	}
	consumers[connID] = conn

	h.logger.Infof("consumer %s subscribed to %s", connID, topic)
	return nil
}

// Broadcast forwards a payload verbatim to every consumer subscribed to the
// topic. A topic with no subscribers is a no-op. Fan-out is best effort: a
// failing consumer is logged and skipped, never halting delivery to others.
func (h *Hub) Broadcast(topic, payload string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	consumers := h.topics[topic]
	if len(consumers) == 0 {
		return
	}

	for id, conn := range consumers {
		if err := conn.Send(h.ctx, payload); err != nil {
			h.logger.Errorf("send to consumer %s on %s: %v", id, topic, err)
		}
	}
}

// ConnectionCount returns the number of registered consumers.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// SubscriberCount returns the number of consumers registered under a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// Topics returns the topics that currently have at least one subscriber.
func (h *Hub) Topics() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	topics := make([]string, 0, len(h.topics))
	for topic := range h.topics {
		topics = append(topics, topic)
	}
	return topics
}
