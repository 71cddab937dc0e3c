package domain

// RoomStats is a point-in-time view of one room in the registry.
type RoomStats struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
}
