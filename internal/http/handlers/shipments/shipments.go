// Package shipments реализует HTTP-обработчики доставок.
package shipments

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/meal-subscription/internal/http/request"
	"github.com/magabrotheeeer/meal-subscription/internal/http/response"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Service описывает бизнес-логику доставок.
type Service interface {
	CreateForTracking(ctx context.Context, tracking string) (*models.Shipment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context) ([]*models.Shipment, error)
	Delete(ctx context.Context, id int64) error
}

// Handler обрабатывает HTTP-запросы к доставкам.
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

// Create godoc
// @Summary Создать доставку
// @Description Создает доставку заказа по трек-номеру. Повторный запрос возвращает существующую доставку.
// @Tags Shipments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ShipmentRequest true "Трек-номер"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Заказ или курьер не найден"
// @Router /shipments [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.shipments.create")

	var req models.ShipmentRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}
	sh, err := h.service.CreateForTracking(r.Context(), req.TrackingNumber)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderCreated(w, r, map[string]any{"shipment": sh})
}

// List godoc
// @Summary Список доставок
// @Tags Shipments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /shipments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.shipments.list")

	res, err := h.service.List(r.Context())
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"shipments": res})
}

// UpdateStatus godoc
// @Summary Сменить статус доставки
// @Tags Shipments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID доставки"
// @Param request body models.ShipmentStatusRequest true "Статус"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Недопустимый статус"
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /shipments/{id} [put]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.shipments.update_status")

	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	var req models.ShipmentStatusRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}
	if err := h.service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"id": id, "status": req.Status})
}

// Remove godoc
// @Summary Удалить доставку
// @Tags Shipments
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID доставки"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /shipments/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.shipments.remove")

	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"deleted_id": id})
}
