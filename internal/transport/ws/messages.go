package ws

import "github.com/gorilla/websocket"

// Message is one relayed frame. Data is never inspected.
type Message struct {
	Type int // websocket.TextMessage | websocket.BinaryMessage
	Data []byte
}

func Text(s string) Message   { return Message{Type: websocket.TextMessage, Data: []byte(s)} }
func Binary(b []byte) Message { return Message{Type: websocket.BinaryMessage, Data: b} }

// Drop reasons reported to the Recorder.
const (
	DropClosed    = "closed"
	DropQueueFull = "queue_full"
	DropError     = "error"
)
