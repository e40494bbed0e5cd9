// Package packages реализует HTTP-обработчики пакетов подписки: добавление с проверкой
// иерархии уровней, активный пакет, удаление и ручной запуск очистки истёкших пакетов.
package packages

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/meal-subscription/internal/http/middlewarectx"
	"github.com/magabrotheeeer/meal-subscription/internal/http/request"
	"github.com/magabrotheeeer/meal-subscription/internal/http/response"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/calendar"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Service описывает жизненный цикл пакетов.
type Service interface {
	AddPackage(ctx context.Context, email string, req models.PackageRequest) (*models.Package, bool, error)
	GetActivePackage(ctx context.Context, email string, at time.Time) (*models.Package, error)
	ListPackages(ctx context.Context, email string) ([]*models.Package, error)
	ListAll(ctx context.Context) ([]*models.Package, error)
	DeletePackage(ctx context.Context, email string, id int64) error
}

// Sweeper удаляет истёкшие пакеты.
type Sweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// Handler обрабатывает HTTP-запросы к пакетам.
type Handler struct {
	log      *slog.Logger
	service  Service
	sweeper  Sweeper
	validate *validator.Validate
	now      func() time.Time
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, sweeper Sweeper) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sweeper:  sweeper,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func views(list []*models.Package) []models.PackageView {
	res := make([]models.PackageView, 0, len(list))
	for _, p := range list {
		res = append(res, p.View())
	}
	return res
}

// Create godoc
// @Summary Добавить пакет
// @Description Уровень должен быть выше всех имеющихся. Повторный уровень возвращает существующий пакет.
// @Tags Packages
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.PackageRequest true "Данные пакета"
// @Success 201 {object} response.Response "Пакет добавлен"
// @Success 200 {object} response.Response "Уровень уже оформлен"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или недопустимый уровень"
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /packages [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.packages.create")

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	var req models.PackageRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}

	p, already, err := h.service.AddPackage(r.Context(), email, req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	if already {
		log.Info("tier already subscribed", slog.Int64("id", p.ID))
		response.RenderOK(w, r, map[string]any{
			"message": "already subscribed",
			"package": p.View(),
		})
		return
	}
	log.Info("package created", slog.Int64("id", p.ID))
	response.RenderCreated(w, r, map[string]any{"package": p.View()})
}

// List godoc
// @Summary Пакеты текущего пользователя
// @Tags Packages
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /packages [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.packages.list")

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	res, err := h.service.ListPackages(r.Context(), email)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"packages": views(res)})
}

// Active godoc
// @Summary Активный пакет
// @Description Пакет, окно которого содержит дату date (по умолчанию сегодня).
// @Tags Packages
// @Produce  json
// @Security BearerAuth
// @Param date query string false "Дата YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Нет активного пакета"
// @Router /packages/active [get]
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.packages.active")

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	at := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := calendar.Parse(raw)
		if err != nil {
			response.RenderBadRequest(w, r, "date must be in format YYYY-MM-DD")
			return
		}
		at = parsed
	}

	p, err := h.service.GetActivePackage(r.Context(), email, at)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"package": p.View()})
}

// ListAll godoc
// @Summary Пакеты всех пользователей
// @Tags Packages
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /packages/all [get]
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.packages.list_all")

	res, err := h.service.ListAll(r.Context())
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"packages": views(res)})
}

// Remove godoc
// @Summary Удалить пакет
// @Description Заказы пакета не удаляются.
// @Tags Packages
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пакета"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /packages/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.packages.remove")

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	if err := h.service.DeletePackage(r.Context(), email, id); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"deleted_id": id})
}

// SweepExpired godoc
// @Summary Удалить истёкшие пакеты
// @Tags Packages
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /packages/expired [delete]
func (h *Handler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.packages.sweep_expired")

	n, err := h.sweeper.SweepExpired(r.Context(), h.now())
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"deleted_count": n})
}
