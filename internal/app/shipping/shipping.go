// Package shipping собирает воркер, открывающий доставки по событиям о заказах.
package shipping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/meal-subscription/internal/config"
	"github.com/magabrotheeeer/meal-subscription/internal/grpc/server"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	"github.com/magabrotheeeer/meal-subscription/internal/rabbitmq"
	shippingservice "github.com/magabrotheeeer/meal-subscription/internal/services/shipping"
	"github.com/magabrotheeeer/meal-subscription/internal/storage/repository"
)

const (
	dbAttempts     = 10
	dbRetryDelay   = 3 * time.Second
	healthInterval = 30 * time.Second
	serviceName    = "shipping-worker"
)

var errConsumerStopped = errors.New("orders.scheduled consumer stopped")

// App представляет воркер доставок.
type App struct {
	conn            *amqp.Connection
	ch              *amqp.Channel
	db              *repository.Storage
	health          *server.HealthServer
	shippingService *shippingservice.ShippingService
	consumed        <-chan struct{}
	logger          *slog.Logger
}

// New создает новый экземпляр воркера доставок.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = db.WaitReady(ctx, dbAttempts, dbRetryDelay); err != nil {
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.OrdersExchange, rabbitmq.OrderQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	a := &App{
		conn:            conn,
		ch:              ch,
		db:              db,
		shippingService: shippingservice.NewShippingService(db, cfg.Shipping.MessengerContact, logger),
		logger:          logger,
	}
	a.health, err = server.NewHealthServer(cfg.Shipping.GRPCHealthAddress, serviceName, logger,
		db.CheckDatabaseReady, a.consumerAlive)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// consumerAlive сообщает об ошибке, если потребитель очереди уже остановился.
func (a *App) consumerAlive(context.Context) error {
	select {
	case <-a.consumed:
		return errConsumerStopped
	default:
		return nil
	}
}

// Run потребляет события о заказах до отмены ctx. Воркер завершается с ошибкой,
// если брокер закрыл канал доставки или упал health-сервер.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumed, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.OrderScheduledQueue, a.shippingService.HandleOrderScheduled)
	if err != nil {
		a.logger.Error("failed to start orders.scheduled consumer", sl.Err(err))
		a.close()
		return err
	}
	a.consumed = consumed

	err = a.supervise(ctx, cancel)
	a.logger.Info("shipping worker shutting down gracefully")
	a.close()
	return err
}

// supervise держит health-сервер, пока не отменён ctx, не остановился
// потребитель или не упал сам сервер.
func (a *App) supervise(ctx context.Context, cancel context.CancelFunc) error {
	healthErr := make(chan error, 1)
	go func() { healthErr <- a.health.Run(ctx, healthInterval) }()

	var err error
	select {
	case <-ctx.Done():
	case <-a.consumed:
		if ctx.Err() == nil {
			a.logger.Error("delivery channel closed by broker")
			err = errConsumerStopped
		}
	case err = <-healthErr:
		a.logger.Error("health server stopped", sl.Err(err))
		cancel()
		return err
	}

	cancel()
	if herr := <-healthErr; err == nil {
		err = herr
	}
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
