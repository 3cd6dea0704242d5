package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"family-tracker/backend/internal/metrics"
)

// DefaultHeartbeat is the liveness ping period.
const DefaultHeartbeat = 30 * time.Second

// Hub tracks live clients by family group and fans events out to them.
// No lock is held while writing to a connection.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[*Client]struct{})}
}

// Register adds c to its group.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.groups[c.groupID]
	if !ok {
		set = make(map[*Client]struct{})
		h.groups[c.groupID] = set
	}
	if _, dup := set[c]; dup {
		return
	}
	set[c] = struct{}{}
	metrics.RealtimeConnections.Inc()
}

// Unregister removes c from its group. Unknown clients are ignored.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked drops c, closes its send queue, and prunes an empty group. Returns false if c was not registered.
func (h *Hub) removeLocked(c *Client) bool {
	set, ok := h.groups[c.groupID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.groups, c.groupID)
	}
	metrics.RealtimeConnections.Dec()
	return true
}

// Broadcast encodes ev once and queues it to every client of groupID.
// A client whose queue is full is dropped instead of blocking the rest of the group.
// Returns the number of clients the frame was queued to.
func (h *Hub) Broadcast(groupID string, ev Envelope) (int, error) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}
	return h.deliver(groupID, msg), nil
}

// Send broadcasts payload to groupID as an event of the given kind.
func (h *Hub) Send(groupID, kind string, payload any) error {
	_, err := h.Broadcast(groupID, Envelope{Type: kind, Data: payload})
	return err
}

func (h *Hub) deliver(groupID string, msg []byte) int {
	if groupID == "" {
		return 0
	}
	var slow []*Client
	sent := 0
	h.mu.RLock()
	for c := range h.groups[groupID] {
		if c.enqueue(msg) {
			sent++
		} else {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	if len(slow) > 0 {
		h.drop(slow, "slow")
	}
	return sent
}

// drop removes clients and closes their connections outside the lock.
func (h *Hub) drop(clients []*Client, reason string) {
	var removed []*Client
	h.mu.Lock()
	for _, c := range clients {
		if h.removeLocked(c) {
			removed = append(removed, c)
		}
	}
	h.mu.Unlock()
	for _, c := range removed {
		c.conn.Close()
		metrics.RealtimeDropped.WithLabelValues(reason).Inc()
		log.Printf("realtime: dropped client user=%s group=%s reason=%s", c.userID, c.groupID, reason)
	}
}

// Sweep runs one heartbeat round. A client that has not answered the previous ping is
// terminated and removed; every other client is marked pending and pinged.
func (h *Hub) Sweep() {
	var dead []*Client
	h.mu.RLock()
	for _, set := range h.groups {
		for c := range set {
			if !c.alive.Load() {
				dead = append(dead, c)
				continue
			}
			c.alive.Store(false)
			select {
			case c.ping <- struct{}{}:
			default:
			}
		}
	}
	h.mu.RUnlock()
	if len(dead) > 0 {
		h.drop(dead, "heartbeat")
	}
}

// RunHeartbeat calls Sweep every interval until ctx is done. interval <= 0 uses DefaultHeartbeat.
func (h *Hub) RunHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHeartbeat
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep()
		}
	}
}

// Count returns the number of clients registered for groupID.
func (h *Hub) Count(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}

// Groups returns the number of groups with at least one client.
func (h *Hub) Groups() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups)
}

// Close removes every client and closes their connections. Used at shutdown.
func (h *Hub) Close() {
	var all []*Client
	h.mu.Lock()
	for _, set := range h.groups {
		for c := range set {
			all = append(all, c)
		}
	}
	for _, c := range all {
		h.removeLocked(c)
	}
	h.mu.Unlock()
	for _, c := range all {
		c.conn.Close()
	}
}
