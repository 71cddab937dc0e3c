package http

import "github.com/cwrk-planet/signal-relay/internal/domain"

type RoomsResponse struct {
	Rooms       []domain.RoomStats `json:"rooms"`
	Total       int                `json:"total"`
	Connections int                `json:"connections"`
}
