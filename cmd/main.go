package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/app/registry"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/app/server"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/app/worker"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/config"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/services"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/platform/logger"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/platform/telemetry"
	mongoPlugin "github.com/ArmandoKoffi/ChatApp-backend/internal/plugins/mongo"
	redisPlugin "github.com/ArmandoKoffi/ChatApp-backend/internal/plugins/redis"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	db, mongoClose, err := mongoPlugin.New(ctx, *cfg.Mongo)
	if err != nil {
		log.Error("failed to connect to mongodb", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClose(context.Background()); err != nil {
			log.Error("mongodb disconnect failed", "err", err)
		}
	}()

	rdb, err := redisPlugin.NewRedisClient(ctx, *cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Repositories
	userRepo := mongoPlugin.NewUserRepository(db)
	messageRepo := mongoPlugin.NewMessageRepository(db)
	roomRepo := mongoPlugin.NewChatRoomRepository(db)
	queue := redisPlugin.NewRedisMessageQueue(log, rdb, cfg.Redis.MessageStream)

	// Core
	presence := registry.NewRegistry()
	gate := services.NewBlockGateService(log, userRepo)
	messageSvc := services.NewMessageService(log, queue)
	tokenSvc := services.NewTokenService(cfg.SecretToken)
	router := services.NewRouterService(log, presence, gate, userRepo, roomRepo, messageSvc)

	// Persist worker
	persist := worker.NewPersistWorker(log, queue, messageRepo, cfg.Worker.MessageGroup)
	go func() {
		if err := persist.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("persist worker stopped", "err", err)
		}
	}()

	// Server
	srv := server.NewServer(cfg.Service.Addr, log, tokenSvc, router)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("server failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "err", err)
	}
	log.Info("application stopped")
}
