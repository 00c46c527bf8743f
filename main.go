package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "taskflow-backend/cmd/api"
	authdomain "taskflow-backend/internal/auth/domain"
	authRepo "taskflow-backend/internal/auth/repository"
	authUsecase "taskflow-backend/internal/auth/usecase"
	pushdomain "taskflow-backend/internal/push/domain"
	"taskflow-backend/internal/push/gateway"
	pushRepo "taskflow-backend/internal/push/repository"
	pushUsecase "taskflow-backend/internal/push/usecase"
	taskdomain "taskflow-backend/internal/task/domain"
	taskRepo "taskflow-backend/internal/task/repository"
	"taskflow-backend/internal/task/scheduler"
	taskUsecase "taskflow-backend/internal/task/usecase"
	"taskflow-backend/pkg/config"
	"taskflow-backend/pkg/database"
	"taskflow-backend/pkg/logger"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewConnection(cfg, zlog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := database.Migrate(db,
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&taskdomain.Task{},
		&pushdomain.PushSubscription{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	taskRepository := taskRepo.NewGormTaskRepository(db)
	subscriptionRepository := pushRepo.NewSubscriptionRepository(db)

	pushGateway, err := gateway.NewFromConfig(ctx, cfg.Push, zlog.Named("push"))
	if err != nil {
		return fmt.Errorf("init push gateway: %w", err)
	}

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(userRepository, cfg, zlog.Named("auth"))
	taskUc := taskUsecase.NewTaskUsecase(taskRepository, cfg.Reminder.Offset, zlog.Named("tasks"))
	pushUc := pushUsecase.NewPushUsecase(subscriptionRepository, cfg.Push.VAPIDPublicKey, zlog.Named("push"))

	reminders := scheduler.New(taskRepository, subscriptionRepository, pushGateway, scheduler.Config{
		Interval:       cfg.Reminder.ScanInterval,
		Window:         cfg.Reminder.Window,
		Offset:         cfg.Reminder.Offset,
		IncludeOverdue: cfg.Reminder.IncludeOverdue,
	}, zlog.Named("task_scheduler"))
	if err := reminders.Start(); err != nil {
		return err
	}

	handler := api.NewHandler(authUc, taskUc, pushUc, cfg, zlog)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("db_driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		zlog.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			reminders.Stop(shutdownCtx)
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http server shutdown", zap.Error(err))
	}
	reminders.Stop(shutdownCtx)
	zlog.Info("server stopped")
	return nil
}
