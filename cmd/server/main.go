package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/services"
	handlers "chatrelay/internal/handlers/http"
	"chatrelay/internal/infrastructure/middleware"
	"chatrelay/internal/infrastructure/monitoring"
	"chatrelay/internal/infrastructure/repositories/memory"
	wsignal "chatrelay/internal/infrastructure/signal"
	"chatrelay/pkg/config"
	"chatrelay/pkg/logger"
	"chatrelay/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := os.Getenv("CHATRELAY_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()
	sugar := zlog.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "chatrelay",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize tracing", "error", err)
	}

	rooms := make([]domain.RoomID, 0, len(cfg.Rooms))
	for _, room := range cfg.Rooms {
		rooms = append(rooms, domain.RoomID(room))
	}

	// Shared state container; all tables live behind one lock.
	store := memory.NewSessionStore(rooms)

	manager := wsignal.NewConnectionManager(cfg.WebSocket.WriteTimeout, sugar)

	roomService := services.NewRoomService(store, store, manager, sugar)
	sessionService := services.NewSessionService(store, store, store, roomService, manager, sugar)
	chatService := services.NewChatService(store, store, store, manager, sugar)
	relayService := services.NewRelayService(store, store, manager, sugar)

	collector := monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)

	wsServer := wsignal.NewWebSocketServer(manager, sessionService, roomService, chatService, relayService, collector, sugar)
	wsServer.SetPingInterval(cfg.WebSocket.PingInterval)
	wsServer.SetPongTimeout(cfg.WebSocket.PongTimeout)
	wsServer.SetWriteTimeout(cfg.WebSocket.WriteTimeout)
	wsServer.SetMaxMessageSize(cfg.WebSocket.MaxMessageSize)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(sugar))

	router.GET("/ws", func(c *gin.Context) {
		wsServer.HandleWebSocket(c.Writer, c.Request)
	})
	router.GET("/healthz", gin.WrapF(wsServer.HealthCheck))
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	roomHandler := handlers.NewRoomHandler(roomService)
	roomHandler.SetupRoutes(router, middleware.TracingMiddleware(), middleware.ErrorHandlerMiddleware(sugar))

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("chatrelay server started", "address", cfg.Server.Address, "rooms", cfg.Rooms)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server error", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("forced shutdown", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("tracer shutdown failed", "error", err)
	}
	sugar.Info("server exited")
}
