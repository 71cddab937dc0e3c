package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	httpmw "github.com/cwrk-planet/signal-relay/internal/transport/http/middleware"
)

type Deps struct {
	Handler *Handler
	// WS serves every websocket upgrade regardless of path.
	WS      http.HandlerFunc
	Metrics http.Handler
	// Static is optional; without it non-upgrade requests to unknown paths get 404.
	Static         http.Handler
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httpmw.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	// Upgrades on any path join the room named by the last segment,
	// so they are taken before route matching.
	r.Use(upgrades(d.WS))

	r.Get("/healthz", d.Handler.Health)
	r.Get("/rooms", d.Handler.ListRooms)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
		if d.Static != nil {
			d.Static.ServeHTTP(w, req)
			return
		}
		http.NotFound(w, req)
	})

	return r
}

func upgrades(ws http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) {
				ws(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
