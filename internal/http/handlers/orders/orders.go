// Package orders реализует HTTP-обработчики ежедневных заказов: запись на дату,
// автозаполнение окна активного пакета и список заказов пользователя.
package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/meal-subscription/internal/http/middlewarectx"
	"github.com/magabrotheeeer/meal-subscription/internal/http/request"
	"github.com/magabrotheeeer/meal-subscription/internal/http/response"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Service описывает планировщик заказов.
type Service interface {
	UpsertOrder(ctx context.Context, email string, req models.OrderRequest) (*models.DailyOrder, error)
	AutoFill(ctx context.Context, email string) ([]*models.DailyOrder, error)
	ListOrders(ctx context.Context, email string) ([]*models.DailyOrder, error)
	GetByTrackingNumber(ctx context.Context, tracking string) (*models.DailyOrder, error)
}

// Handler обрабатывает HTTP-запросы к заказам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Upsert godoc
// @Summary Заказ на дату
// @Description Создает заказ на дату или перезаписывает существующий. Меню задаётся через menu_id или полями снимка.
// @Tags Orders
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.OrderRequest true "Заказ"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Нет активного пакета или меню"
// @Router /orders [post]
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.orders.upsert")

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	var req models.OrderRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}

	o, err := h.service.UpsertOrder(r.Context(), email, req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	log.Info("order saved", slog.Int64("id", o.ID), slog.String("tracking_number", o.TrackingNumber))
	response.RenderOK(w, r, map[string]any{"order": o})
}

// AutoFill godoc
// @Summary Автозаполнение заказов
// @Description Заполняет свободные дни 30-дневного окна активного пакета меню его уровня.
// @Tags Orders
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Созданные заказы"
// @Failure 404 {object} response.ErrorResponse "Нет активного пакета или меню уровня"
// @Router /orders/autofill [post]
func (h *Handler) AutoFill(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.orders.autofill")

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	created, err := h.service.AutoFill(r.Context(), email)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{
		"created_count": len(created),
		"orders":        created,
	})
}

// List godoc
// @Summary Заказы пользователя
// @Tags Orders
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /orders [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.orders.list")

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	res, err := h.service.ListOrders(r.Context(), email)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"orders": res})
}

// Track godoc
// @Summary Заказ по трек-номеру
// @Tags Orders
// @Produce  json
// @Security BearerAuth
// @Param tracking path string true "Трек-номер"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /orders/track/{tracking} [get]
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.orders.track")

	o, err := h.service.GetByTrackingNumber(r.Context(), chi.URLParam(r, "tracking"))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"order": o})
}
