// Package metrics объявляет метрики Prometheus сервиса и middleware для HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meal_subscription"

// Источники создания заказа.
const (
	SourceManual   = "manual"
	SourceAutofill = "autofill"
)

var (
	// OrdersScheduled считает созданные заказы по источнику.
	OrdersScheduled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_scheduled_total",
		Help:      "Number of daily orders created.",
	}, []string{"source"})

	// PackagesCreated считает добавленные пакеты по уровню.
	PackagesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packages_created_total",
		Help:      "Number of subscription packages added.",
	}, []string{"tier"})

	// PackagesExpired считает пакеты, удалённые по истечении срока.
	PackagesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packages_expired_total",
		Help:      "Number of packages removed by the expiry sweep.",
	})

	// ShipmentsCreated считает открытые доставки.
	ShipmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_created_total",
		Help:      "Number of shipments opened for scheduled orders.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware измеряет длительность запросов. В метку route попадает
// шаблон маршрута chi, а не сырой путь.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
