// Package calendar реализует HTTP-обработчик годового календаря заказов.
package calendar

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/meal-subscription/internal/http/middlewarectx"
	"github.com/magabrotheeeer/meal-subscription/internal/http/response"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Service строит проекцию календаря.
type Service interface {
	ProjectYear(ctx context.Context, email string, year int) (*models.Calendar, error)
}

// Handler обрабатывает запрос календаря.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Календарь заказов
// @Description 12 месяцев года; для дня без заказа detail пустой и status 0.
// @Tags Orders
// @Produce  json
// @Security BearerAuth
// @Param year query int false "Год, по умолчанию 2024"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /calendar [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.calendar"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 || y > 9999 {
			response.RenderBadRequest(w, r, "invalid year")
			return
		}
		year = y
	}

	res, err := h.service.ProjectYear(r.Context(), email, year)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, res)
}
