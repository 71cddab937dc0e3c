package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwrk-planet/signal-relay/config"
	"github.com/cwrk-planet/signal-relay/internal/metrics"
	grpcx "github.com/cwrk-planet/signal-relay/internal/transport/grpc"
	httpx "github.com/cwrk-planet/signal-relay/internal/transport/http"
	"github.com/cwrk-planet/signal-relay/internal/transport/ws"
	"github.com/cwrk-planet/signal-relay/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting signal-relay",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- rooms ---
	m := metrics.New()
	hub := ws.NewHub(
		ws.WithReclaimEmpty(cfg.Rooms.ReclaimEmpty),
		ws.WithRecorder(m),
	)
	wsServer := ws.NewServer(hub, ws.Config{
		ReadLimit:      cfg.WS.ReadLimit,
		PingEvery:      cfg.WS.PingEvery,
		WriteWait:      cfg.WS.WriteWait,
		SendQueue:      cfg.WS.SendQueue,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	// --- HTTP ---
	var static http.Handler
	if cfg.Static.Dir != "" {
		static = httpx.NewStaticHandler(cfg.Static.Dir, cfg.Static.Index)
	}
	router := httpx.NewRouter(httpx.Deps{
		Handler:        httpx.NewHandler(hub),
		WS:             wsServer.HandleWS,
		Metrics:        m.Handler(),
		Static:         static,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	// --- run ---
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcSrv *grpcx.Server
	if cfg.GRPC.Addr != "" {
		grpcSrv = grpcx.NewServer()
		go func() {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr)
			if err != nil {
				errCh <- err
				return
			}
			slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	// --- graceful shutdown ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		slog.Error("server error", "err", err)
		exitCode = 1
	}

	if grpcSrv != nil {
		grpcSrv.SetServing(false)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// Shutdown does not track hijacked connections; close them explicitly.
	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
	hub.CloseAll()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}

	slog.Info("stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
