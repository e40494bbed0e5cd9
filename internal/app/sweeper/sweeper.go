// Package sweeper собирает воркер, удаляющий истёкшие пакеты подписки.
package sweeper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/meal-subscription/internal/config"
	"github.com/magabrotheeeer/meal-subscription/internal/grpc/server"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	sweeperservice "github.com/magabrotheeeer/meal-subscription/internal/services/sweeper"
	"github.com/magabrotheeeer/meal-subscription/internal/storage/repository"
)

const (
	dbAttempts     = 10
	dbRetryDelay   = 3 * time.Second
	healthInterval = 30 * time.Second
	serviceName    = "sweeper"
)

// App представляет приложение очистки пакетов.
type App struct {
	sweeperService *sweeperservice.SweeperService
	health         *server.HealthServer
	db             io.Closer
	interval       time.Duration
	logger         *slog.Logger
}

// New создает новый экземпляр приложения очистки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = db.WaitReady(ctx, dbAttempts, dbRetryDelay); err != nil {
		_ = db.Close()
		return nil, err
	}

	health, err := server.NewHealthServer(cfg.Sweeper.GRPCHealthAddress, serviceName, logger, db.CheckDatabaseReady)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		sweeperService: sweeperservice.NewSweeperService(db, logger),
		health:         health,
		db:             db,
		interval:       cfg.Sweeper.Interval,
		logger:         logger,
	}, nil
}

// Run запускает очистку и health-сервер до отмены ctx.
// Если health-сервер упал, очистка останавливается и Run возвращает его ошибку.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		err := a.health.Run(ctx, healthInterval)
		if err != nil {
			a.logger.Error("health server stopped", sl.Err(err))
		}
		cancel()
		errCh <- err
	}()

	a.sweeperService.Run(ctx, a.interval)
	cancel()

	a.logger.Info("shutting down sweeper service")
	err := <-errCh
	if closeErr := a.db.Close(); closeErr != nil {
		a.logger.Error("failed to close storage", sl.Err(closeErr))
	}
	return err
}
