package mealsubscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/meal-subscription/internal/cache"
	"github.com/magabrotheeeer/meal-subscription/internal/config"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/jwt"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	"github.com/magabrotheeeer/meal-subscription/internal/migrations"
	"github.com/magabrotheeeer/meal-subscription/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/meal-subscription/internal/services/auth"
	calendarservice "github.com/magabrotheeeer/meal-subscription/internal/services/calendar"
	catalogservice "github.com/magabrotheeeer/meal-subscription/internal/services/catalog"
	orderservice "github.com/magabrotheeeer/meal-subscription/internal/services/orders"
	packageservice "github.com/magabrotheeeer/meal-subscription/internal/services/packages"
	shippingservice "github.com/magabrotheeeer/meal-subscription/internal/services/shipping"
	sweeperservice "github.com/magabrotheeeer/meal-subscription/internal/services/sweeper"
	"github.com/magabrotheeeer/meal-subscription/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP API со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилище, применяет миграции, поднимает кеш и брокер
// и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.OrdersExchange, rabbitmq.OrderQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	packageService := packageservice.NewPackageService(db, logger)
	catalogService := catalogservice.NewCatalogService(db, logger)

	services := Services{
		Auth:     authservice.NewAuthService(db, jwtMaker, logger),
		Packages: packageService,
		Orders: orderservice.NewOrderService(db, packageService, catalogService,
			rabbitmq.NewOrderPublisher(ch), cacheRedis, logger),
		Calendar: calendarservice.NewCalendarService(db, cacheRedis, cfg.CalendarCacheTTL, logger),
		Catalog:  catalogService,
		Shipping: shippingservice.NewShippingService(db, cfg.Shipping.MessengerContact, logger),
		Sweeper:  sweeperservice.NewSweeperService(db, logger),
		Health:   db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run обслуживает HTTP до отмены ctx, затем останавливает сервер и закрывает ресурсы.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
