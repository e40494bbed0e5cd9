// Package mealsubscription собирает HTTP API сервиса подписок на питание.
package mealsubscription

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/meal-subscription/internal/config"
	"github.com/magabrotheeeer/meal-subscription/internal/http/handlers/auth"
	"github.com/magabrotheeeer/meal-subscription/internal/http/handlers/calendar"
	"github.com/magabrotheeeer/meal-subscription/internal/http/handlers/catalog"
	"github.com/magabrotheeeer/meal-subscription/internal/http/handlers/health"
	"github.com/magabrotheeeer/meal-subscription/internal/http/handlers/orders"
	"github.com/magabrotheeeer/meal-subscription/internal/http/handlers/packages"
	"github.com/magabrotheeeer/meal-subscription/internal/http/handlers/shipments"
	"github.com/magabrotheeeer/meal-subscription/internal/http/handlers/users"
	"github.com/magabrotheeeer/meal-subscription/internal/http/middlewarectx"
	"github.com/magabrotheeeer/meal-subscription/internal/metrics"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
	authservice "github.com/magabrotheeeer/meal-subscription/internal/services/auth"
	calendarservice "github.com/magabrotheeeer/meal-subscription/internal/services/calendar"
	catalogservice "github.com/magabrotheeeer/meal-subscription/internal/services/catalog"
	orderservice "github.com/magabrotheeeer/meal-subscription/internal/services/orders"
	packageservice "github.com/magabrotheeeer/meal-subscription/internal/services/packages"
	shippingservice "github.com/magabrotheeeer/meal-subscription/internal/services/shipping"
	sweeperservice "github.com/magabrotheeeer/meal-subscription/internal/services/sweeper"
)

// Services собирает сервисы, которые обслуживает API.
type Services struct {
	Auth     *authservice.AuthService
	Packages *packageservice.PackageService
	Orders   *orderservice.OrderService
	Calendar *calendarservice.CalendarService
	Catalog  *catalogservice.CatalogService
	Shipping *shippingservice.ShippingService
	Sweeper  *sweeperservice.SweeperService
	Health   health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
	)

	authHandler := auth.New(logger, s.Auth)
	usersHandler := users.New(logger, s.Auth)
	packagesHandler := packages.New(logger, s.Packages, s.Sweeper)
	ordersHandler := orders.New(logger, s.Orders)
	catalogHandler := catalog.New(logger, s.Catalog)
	shipmentsHandler := shipments.New(logger, s.Shipping)

	designerOnly := middlewarectx.RequireRole(logger, models.RoleMealDesigner)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/health", health.New(logger, s.Health).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(cfg.RateLimit), cfg.RateBurst))

			r.Get("/me", authHandler.Me)
			r.With(designerOnly).Get("/users", usersHandler.List)
			r.Get("/users/{uid}", usersHandler.Get)

			r.Post("/packages", packagesHandler.Create)
			r.Get("/packages", packagesHandler.List)
			r.Get("/packages/active", packagesHandler.Active)
			r.With(designerOnly).Get("/packages/all", packagesHandler.ListAll)
			r.With(designerOnly).Delete("/packages/expired", packagesHandler.SweepExpired)
			r.Delete("/packages/{id}", packagesHandler.Remove)

			r.Post("/orders", ordersHandler.Upsert)
			r.Post("/orders/autofill", ordersHandler.AutoFill)
			r.Get("/orders", ordersHandler.List)
			r.Get("/orders/track/{tracking}", ordersHandler.Track)
			r.Get("/calendar", calendar.New(logger, s.Calendar).ServeHTTP)

			r.Get("/ingredients", catalogHandler.ListIngredients)
			r.Get("/ingredients/{id}", catalogHandler.GetIngredient)
			r.Get("/menus", catalogHandler.ListMenus)
			r.Get("/menus/{id}", catalogHandler.GetMenu)
			r.Get("/menus/name/{name}", catalogHandler.GetMenuByName)
			r.Group(func(r chi.Router) {
				r.Use(designerOnly)
				r.Post("/ingredients", catalogHandler.CreateIngredient)
				r.Put("/ingredients/{id}", catalogHandler.UpdateIngredient)
				r.Delete("/ingredients/{id}", catalogHandler.RemoveIngredient)
				r.Post("/menus", catalogHandler.CreateMenu)
				r.Put("/menus/{id}", catalogHandler.UpdateMenu)
				r.Delete("/menus/{id}", catalogHandler.RemoveMenu)
			})

			r.Post("/shipments", shipmentsHandler.Create)
			r.Get("/shipments", shipmentsHandler.List)
			r.With(middlewarectx.RequireRole(logger, models.RoleMessenger)).Put("/shipments/{id}", shipmentsHandler.UpdateStatus)
			r.Delete("/shipments/{id}", shipmentsHandler.Remove)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
