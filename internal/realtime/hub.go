// Package realtime tracks live client connections, groups them into
// broadcast channels, and fans committed task and room changes out to them.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUnknownConn is returned for connections that were never admitted or
	// are already disconnected.
	ErrUnknownConn = errors.New("connection not registered")
	// ErrRegistryClosed is returned by Admit after Shutdown.
	ErrRegistryClosed = errors.New("registry is shut down")
)

// UserChannel names the private channel of a user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

type channel struct {
	// serializes broadcasts so every member sees the same order
	mu      sync.Mutex
	members map[uuid.UUID]*Conn
}

// Registry is the process-wide set of live connections and the channels they
// are subscribed to.
//
// Membership changes take the write lock. Broadcasts take the read lock plus
// the channel's own mutex, so broadcasts on different channels run in
// parallel while broadcasts on one channel are delivered in publish order.
type Registry struct {
	mu       sync.RWMutex
	conns    map[uuid.UUID]*Conn
	subs     map[uuid.UUID]map[string]struct{}
	channels map[string]*channel
	closed   bool

	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:    make(map[uuid.UUID]*Conn),
		subs:     make(map[uuid.UUID]map[string]struct{}),
		channels: make(map[string]*channel),
		logger:   logger.With("component", "registry"),
	}
}

// Admit registers conn and greets it with a connected event.
func (r *Registry) Admit(conn *Conn) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRegistryClosed
	}
	r.conns[conn.ID()] = conn
	r.subs[conn.ID()] = make(map[string]struct{})
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Debug("connection admitted", "conn_id", conn.ID(), "connections", total)
	r.Send(conn, Envelope{Event: EventConnected, Data: Connected{Message: "Connected to server"}})
	return nil
}

// Join subscribes conn to name. Joining twice is a no-op.
func (r *Registry) Join(conn *Conn, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.subs[conn.ID()]
	if !ok {
		return ErrUnknownConn
	}
	ch, ok := r.channels[name]
	if !ok {
		ch = &channel{members: make(map[uuid.UUID]*Conn)}
		r.channels[name] = ch
	}
	ch.members[conn.ID()] = conn
	subs[name] = struct{}{}
	return nil
}

// Leave unsubscribes conn from name and reports whether it was a member.
func (r *Registry) Leave(conn *Conn, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.subs[conn.ID()]
	if !ok {
		return false
	}
	if _, ok := subs[name]; !ok {
		return false
	}
	delete(subs, name)
	r.removeMemberLocked(name, conn.ID())
	return true
}

// Disconnect drops every subscription of conn and closes its outbound queue.
// Calling it again is a no-op.
func (r *Registry) Disconnect(conn *Conn) {
	r.mu.Lock()
	subs, ok := r.subs[conn.ID()]
	if ok {
		for name := range subs {
			r.removeMemberLocked(name, conn.ID())
		}
		delete(r.subs, conn.ID())
		delete(r.conns, conn.ID())
	}
	total := len(r.conns)
	r.mu.Unlock()

	conn.close()
	if ok {
		r.logger.Debug("connection removed", "conn_id", conn.ID(), "channels", len(subs), "connections", total)
	}
}

func (r *Registry) removeMemberLocked(name string, id uuid.UUID) {
	ch, ok := r.channels[name]
	if !ok {
		return
	}
	delete(ch.members, id)
	if len(ch.members) == 0 {
		delete(r.channels, name)
	}
}

// Broadcast queues event for every member of name and returns how many
// connections accepted it. Members with a full queue miss the event.
func (r *Registry) Broadcast(name string, event Envelope) int {
	frame, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("encode event", "event", event.Event, "error", err)
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[name]
	if !ok {
		return 0
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()

	delivered := 0
	for id, conn := range ch.members {
		if conn.enqueue(frame) {
			delivered++
			continue
		}
		r.logger.Warn("dropping event for slow connection", "conn_id", id, "channel", name, "event", event.Event)
	}
	return delivered
}

// Send queues event for conn alone.
func (r *Registry) Send(conn *Conn, event Envelope) bool {
	frame, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("encode event", "event", event.Event, "error", err)
		return false
	}
	if !conn.enqueue(frame) {
		r.logger.Warn("dropping direct event", "conn_id", conn.ID(), "event", event.Event)
		return false
	}
	return true
}

// IsMember reports whether conn is subscribed to name.
func (r *Registry) IsMember(conn *Conn, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subs[conn.ID()][name]
	return ok
}

// Members returns the ids of the connections subscribed to name.
func (r *Registry) Members(name string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	if !ok {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(ch.members))
	for id := range ch.members {
		ids = append(ids, id)
	}
	return ids
}

// ChannelsOf lists the channels conn is subscribed to, sorted.
func (r *Registry) ChannelsOf(conn *Conn) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.subs[conn.ID()]))
	for name := range r.subs[conn.ID()] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Shutdown disconnects every connection and rejects further Admit calls.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.closed = true
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.conns = make(map[uuid.UUID]*Conn)
	r.subs = make(map[uuid.UUID]map[string]struct{})
	r.channels = make(map[string]*channel)
	r.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
	r.logger.Info("registry shut down", "connections", len(conns))
}
