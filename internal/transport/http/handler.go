package http

import (
	"encoding/json"
	"net/http"

	"github.com/cwrk-planet/signal-relay/internal/domain"
)

type StatsProvider interface {
	Stats() []domain.RoomStats
}

type Handler struct {
	rooms StatsProvider
}

func NewHandler(rooms StatsProvider) *Handler {
	return &Handler{rooms: rooms}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	stats := h.rooms.Stats()
	members := 0
	for _, s := range stats {
		members += s.Members
	}
	writeJSON(w, http.StatusOK, RoomsResponse{
		Rooms:       stats,
		Total:       len(stats),
		Connections: members,
	})
}
