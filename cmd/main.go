package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/config"
	gRPC "github.com/desync-labs/tx-manager/boc-submitter/internal/grpc"
	messageBroker "github.com/desync-labs/tx-manager/boc-submitter/internal/message-broker"
	services "github.com/desync-labs/tx-manager/boc-submitter/internal/service"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/store"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
	"github.com/go-redis/redis"
)

func main() {
	config, err := config.NewConfig()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		panic(err)
	}

	logOpts := slog.LevelDebug
	if config.GetEnvironment() == "production" {
		logOpts = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logOpts,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	slog.Info("Starting service...", "service name", config.GetApplicationName())

	slog.Debug("Redis URL", "url", config.RedisUrl)
	slog.Debug("TON RPC endpoint", "url", config.Endpoint.Endpoint)

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr: config.RedisUrl, // Redis server address
		DB:   0,               // Default DB
	})

	_, err = redisClient.Ping().Result()
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messageBroker, err := messageBroker.NewRabbitMQ(config.RabitMQUrl, ctx)
	if err != nil {
		slog.Error("Failed to create message broker", "error", err)
		return
	}

	// One pooled client shared by every submission
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: config.WorkerPoolSize,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	sender := toncenter.NewSubmitter(toncenter.WithHTTPClient(httpClient))

	submitterService := services.NewSubmitterService(sender, config.Endpoint,
		store.NewRedisStore(redisClient, config.SubmissionTTL), messageBroker)

	listener := services.NewListenerService(submitterService, messageBroker, []int{1, 2, 3}, ctx, config.WorkerPoolSize, config.Endpoint.Timeout)
	if err := listener.SetupSubmissionListener(); err != nil {
		slog.Error("Failed to set up submission listener", "error", err)
		return
	}

	grpcServer := gRPC.NewGrpcServer(submitterService)

	// Start gRPC server asynchronously in a goroutine
	go func() {
		if err := grpcServer.Start(config.PortNumber); err != nil {
			slog.Error("Failed to start gRPC server", "error", err)
		}
	}()

	// Listen for interrupt or termination signals for graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received
	sig := <-stopCh
	slog.Info("Received signal: " + sig.String() + ". Shutting down...")

	grpcServer.Stop()
	listener.Shutdown()
	cancel()

	redisClient.Close()
	messageBroker.Close()
	httpClient.CloseIdleConnections()

	slog.Info("Shutdown complete.")
}
