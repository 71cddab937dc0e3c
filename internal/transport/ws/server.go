package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cwrk-planet/signal-relay/pkg/logger"
)

type Config struct {
	ReadLimit      int64
	PingEvery      time.Duration
	WriteWait      time.Duration
	SendQueue      int
	AllowedOrigins []string
}

func (c Config) withDefaults() Config {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 1 << 20
	}
	if c.PingEvery <= 0 {
		c.PingEvery = 15 * time.Second
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 5 * time.Second
	}
	if c.SendQueue <= 0 {
		c.SendQueue = 256
	}
	return c
}

// Server upgrades requests and runs one read loop and one write loop per
// connection. The Hub calls are the only state mutations.
type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	cfg      Config
}

func NewServer(hub *Hub, cfg Config) *Server {
	cfg = cfg.withDefaults()
	return &Server{
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
	}
}

// HandleWS serves GET /<any>/<roomID> with a websocket upgrade.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := RoomIDFromPath(r.URL.EscapedPath())
	log := logger.FromContext(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		log.Warn("ws upgrade failed", "room", roomID, "err", err)
		return
	}

	c := newWsConn(conn, roomID, s.cfg.SendQueue, s.cfg.WriteWait)
	s.hub.Join(roomID, c)
	log = log.With("room", roomID, "conn", c.ID())
	log.Info("ws joined", "remote", r.RemoteAddr)

	go s.writeLoop(c, log)
	s.readLoop(c, log)

	s.hub.Leave(roomID, c)
	if err := c.Close(); err != nil {
		log.Debug("ws close failed", "err", err)
	}
	log.Info("ws left")
}

func (s *Server) readLoop(c *wsConn, log *slog.Logger) {
	idle := 2 * s.cfg.PingEvery
	c.conn.SetReadLimit(s.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(idle))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idle))
	})

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				log.Debug("ws read failed", "err", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(idle))

		s.hub.Broadcast(c.RoomID(), c, Message{Type: typ, Data: data})
	}
}

func (s *Server) writeLoop(c *wsConn, log *slog.Logger) {
	ticker := time.NewTicker(s.cfg.PingEvery)
	defer ticker.Stop()
	// A dead writer must end the read loop too.
	defer func() { _ = c.Close() }()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := c.conn.WriteMessage(msg.Type, msg.Data); err != nil {
				log.Debug("ws write failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteWait)); err != nil {
				log.Debug("ws ping failed", "err", err)
				return
			}
		case <-c.closed:
			return
		}
	}
}
