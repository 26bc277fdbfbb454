package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/logger/pkg/logger"

	"github.com/Jayeshkushwaha/SocketChat/config"
	"github.com/Jayeshkushwaha/SocketChat/internal/directory"
	"github.com/Jayeshkushwaha/SocketChat/internal/presence"
	"github.com/Jayeshkushwaha/SocketChat/internal/reconcile"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
	"github.com/Jayeshkushwaha/SocketChat/internal/rooms"
	"github.com/Jayeshkushwaha/SocketChat/internal/router"
	"github.com/Jayeshkushwaha/SocketChat/internal/service"
	"github.com/Jayeshkushwaha/SocketChat/internal/storage"
	httpx "github.com/Jayeshkushwaha/SocketChat/internal/transport/http"
	"github.com/Jayeshkushwaha/SocketChat/internal/transport/ws"
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
	slog.Info("starting relay",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- волатильный журнал сообщений ---
	history, err := storage.OpenMessageLog(cfg.Relay.HistoryLimit)
	if err != nil {
		log.Fatalf("message log: %v", err)
	}
	defer func() { _ = history.Close() }()

	// --- ядро ---
	reg := registry.New()
	dir := directory.New()
	roomStore := rooms.New(reg)
	engine := reconcile.New(reg, roomStore, dir)
	engine.SetRecheckDelay(cfg.RecheckDelayDuration())
	msgRouter := router.New(reg, roomStore, dir, engine, history)
	relay := service.NewRelayService(reg, roomStore, dir, engine, msgRouter)

	presence.New(reg).Attach()

	// --- транспорт ---
	wsServer := ws.NewServer(relay)
	handler := httpx.NewHandler(relay, history)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpx.NewRouter(handler, wsServer),
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown: новые события не принимаем, in-flight не ждём ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
