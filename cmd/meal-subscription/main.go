// Package main Meal Subscription API
//
// @title           Meal Subscription API
// @version         1.0
// @description     API для подписок на питание: пакеты, меню, ежедневные заказы, календарь и доставки
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/meal-subscription/docs"
	"github.com/magabrotheeeer/meal-subscription/internal/app/mealsubscription"
	"github.com/magabrotheeeer/meal-subscription/internal/config"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/logger"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, cfg.Log)

	log.Info("starting meal-subscription", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := mealsubscription.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("meal-subscription stopped gracefully")
}
