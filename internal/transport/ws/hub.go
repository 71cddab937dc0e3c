package ws

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/cwrk-planet/signal-relay/internal/domain"
	"github.com/cwrk-planet/signal-relay/pkg/logger"
)

// Conn is one room member. Send must not block: it queues or fails.
type Conn interface {
	Send(msg Message) error
	Close() error
	ID() string
}

// Recorder receives registry events; metrics.Metrics implements it.
type Recorder interface {
	RoomOpened()
	RoomClosed()
	ConnJoined()
	ConnLeft()
	Relayed()
	Dropped(reason string)
}

type nopRecorder struct{}

func (nopRecorder) RoomOpened()    {}
func (nopRecorder) RoomClosed()    {}
func (nopRecorder) ConnJoined()    {}
func (nopRecorder) ConnLeft()      {}
func (nopRecorder) Relayed()       {}
func (nopRecorder) Dropped(string) {}

type room struct {
	mu      sync.RWMutex
	members map[Conn]struct{}
	// dead is set once the room has been unlinked from the hub; joins retry.
	dead bool
}

// Hub maps room ids to their members. The hub lock only guards the map;
// membership is guarded per room so unrelated rooms never contend.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room

	reclaimEmpty bool
	rec          Recorder
	log          *slog.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithReclaimEmpty drops a room from the map when its last member leaves.
func WithReclaimEmpty(on bool) Option {
	return func(h *Hub) { h.reclaimEmpty = on }
}

// WithRecorder reports registry events to r. A nil r is ignored.
func WithRecorder(r Recorder) Option {
	return func(h *Hub) {
		if r != nil {
			h.rec = r
		}
	}
}

// WithLogger overrides the logger, which defaults to logger.L().
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms: make(map[string]*room),
		rec:   nopRecorder{},
		log:   logger.L(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Join adds c to roomID, creating the room on first use.
func (h *Hub) Join(roomID string, c Conn) {
	for {
		r := h.getOrCreate(roomID)

		r.mu.Lock()
		if r.dead {
			r.mu.Unlock()
			h.unlink(roomID, r)
			continue
		}
		_, already := r.members[c]
		r.members[c] = struct{}{}
		r.mu.Unlock()

		if !already {
			h.rec.ConnJoined()
		}
		return
	}
}

// Leave removes c from roomID. Unknown rooms and connections are a no-op.
func (h *Hub) Leave(roomID string, c Conn) {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	_, ok := r.members[c]
	delete(r.members, c)
	reclaim := ok && h.reclaimEmpty && len(r.members) == 0
	if reclaim {
		r.dead = true
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	h.rec.ConnLeft()
	if reclaim {
		h.unlink(roomID, r)
	}
}

// Broadcast queues msg for every member of roomID except sender.
// Per-member failures are recorded and skipped; they never reach the sender.
func (h *Hub) Broadcast(roomID string, sender Conn, msg Message) {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.RLock()
	peers := make([]Conn, 0, len(r.members))
	for c := range r.members {
		if c == sender {
			continue
		}
		peers = append(peers, c)
	}
	r.mu.RUnlock()

	for _, c := range peers {
		if err := c.Send(msg); err != nil {
			reason := dropReason(err)
			h.rec.Dropped(reason)
			h.log.Debug("ws relay dropped", "room", roomID, "conn", c.ID(), "reason", reason)
			continue
		}
		h.rec.Relayed()
	}
}

// Members returns the number of connections currently in roomID.
func (h *Hub) Members(roomID string) int {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r == nil {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Stats lists every room known to the hub, empty ones included, sorted by id.
func (h *Hub) Stats() []domain.RoomStats {
	h.mu.RLock()
	snapshot := make(map[string]*room, len(h.rooms))
	for id, r := range h.rooms {
		snapshot[id] = r
	}
	h.mu.RUnlock()

	out := make([]domain.RoomStats, 0, len(snapshot))
	for id, r := range snapshot {
		r.mu.RLock()
		n := len(r.members)
		r.mu.RUnlock()
		out = append(out, domain.RoomStats{ID: id, Members: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CloseAll closes every member connection. Their read loops then Leave.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	rooms := make([]*room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		r.mu.RLock()
		conns := make([]Conn, 0, len(r.members))
		for c := range r.members {
			conns = append(conns, c)
		}
		r.mu.RUnlock()

		for _, c := range conns {
			if err := c.Close(); err != nil {
				h.log.Debug("ws close failed", "conn", c.ID(), "err", err)
			}
		}
	}
}

func (h *Hub) getOrCreate(roomID string) *room {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r != nil {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if r = h.rooms[roomID]; r == nil {
		r = &room{members: make(map[Conn]struct{})}
		h.rooms[roomID] = r
		h.rec.RoomOpened()
	}
	return r
}

// unlink removes r from the map if it is still the entry for roomID.
func (h *Hub) unlink(roomID string, r *room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == r {
		delete(h.rooms, roomID)
		h.rec.RoomClosed()
	}
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrConnClosed):
		return DropClosed
	case errors.Is(err, domain.ErrSendQueueFull):
		return DropQueueFull
	default:
		return DropError
	}
}
