package main

import (
	"FaceLiveness/internal/config"
	"FaceLiveness/pkg/log"
	"FaceLiveness/pkg/redis"
	websocketPkg "FaceLiveness/pkg/websocket"
	"context"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.NewLogger().Fatalf("Error loading .env file: %v", err)
	}
	logger := log.NewLogger()

	livenessConfig, err := config.LoadLivenessConfig()
	if err != nil {
		logger.Fatalf("Invalid liveness configuration: %v", err)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	redisServer := redis.New()
	faceClient := websocketPkg.NewAIWebSocketClient(logger)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithDatabase(),
		config.WithRedisServer(redisServer),
		config.WithWebSocket(faceClient),
		config.WithMiddleware(),
		config.WithS3Client(),
		config.WithUtils(),
		config.WithLivenessConfig(livenessConfig),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started successfully")
		return server.Run()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Server stopped with error: %v", err)
	}

	logger.Info("Server stopped")
}
