package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Owoblo/exam-monitor/internal/bridge"
	"github.com/Owoblo/exam-monitor/internal/config"
	"github.com/Owoblo/exam-monitor/internal/handler"
	"github.com/Owoblo/exam-monitor/internal/hub"
	"github.com/Owoblo/exam-monitor/internal/kafka"
	"github.com/Owoblo/exam-monitor/internal/service"
	"github.com/Owoblo/exam-monitor/internal/store"
	pkglog "github.com/Owoblo/exam-monitor/pkg/log"
	"github.com/Owoblo/exam-monitor/pkg/middleware"
	"github.com/Owoblo/exam-monitor/pkg/pubsub"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: "exam-monitor",
		Env:         cfg.Env,
	})
	logger := pkglog.L()

	logger.Info().Str("version", version).Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).
		Dur("heartbeat_interval", cfg.Stream.HeartbeatInterval).Int("queue_size", cfg.Stream.QueueSize).
		Msg("starting exam monitor")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize stores and hub
	liveState := store.NewMemoryLiveStateStore()
	violations := store.NewMemoryViolationLog()
	relay := store.NewMemorySignalingRelay()
	h := hub.NewHub(cfg.Stream)

	// Initialize Kafka flag exporter (optional)
	var flagProducer kafka.FlagEventProducer
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka producer, flag export disabled")
		} else {
			flagProducer = producer
			defer producer.Close()
			logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka flag export enabled")
		}
	}

	// Initialize mirror publisher (optional)
	var mirror *bridge.Mirror
	if cfg.Mirror.Enabled {
		publisher, err := pubsub.NewPublisher(cfg.Mirror.PubSub)
		if err != nil {
			logger.Warn().Err(err).Str("driver", cfg.Mirror.PubSub.Driver).Msg("failed to create mirror publisher, mirror disabled")
		} else {
			mirror = bridge.NewMirror(h, publisher)
			defer publisher.Close()
			logger.Info().Str("driver", cfg.Mirror.PubSub.Driver).Str("source", mirror.Source()).Msg("event mirror enabled")
		}
	}

	monitorSvc := service.NewMonitorService(h, liveState, violations, relay, flagProducer)

	// Initialize handlers
	httpHandler := handler.NewHTTPHandler(monitorSvc, h)
	streamHandler := handler.NewStreamHandler(h)
	wsHandler := handler.NewWSHandler(h, cfg.WebSocket)
	iceHandler := handler.NewICEHandler(cfg.WebRTC.ICEServers)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger, pkglog.AccessOptions{
		QuietPaths:  []string{"/health"},
		StreamPaths: []string{"/stream", "/ws"},
	}))

	// Register routes
	httpHandler.RegisterRoutes(r)
	streamHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)
	iceHandler.RegisterRoutes(r)

	cors := middleware.NewCORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         cfg.CORS.MaxAge,
	})

	// WriteTimeout stays zero: streams stay open indefinitely.
	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     cors(r),
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("exam monitor listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if mirror != nil {
		g.Go(func() error {
			return mirror.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down exam monitor")

		// Closing the hub ends every open stream so Shutdown does not wait on them.
		h.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("exam monitor exited with error")
	}

	logger.Info().Msg("exam monitor stopped")
}
