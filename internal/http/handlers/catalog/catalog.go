// Package catalog реализует HTTP-обработчики каталога: ингредиенты и меню.
package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/meal-subscription/internal/http/request"
	"github.com/magabrotheeeer/meal-subscription/internal/http/response"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Service описывает бизнес-логику каталога.
type Service interface {
	CreateIngredient(ctx context.Context, req models.IngredientRequest) (*models.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*models.Ingredient, error)
	ListIngredients(ctx context.Context) ([]*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id int64, req models.IngredientRequest) (*models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id int64) error

	CreateMenu(ctx context.Context, req models.MenuRequest) (*models.Menu, error)
	UpdateMenu(ctx context.Context, id int64, req models.MenuRequest) (*models.Menu, error)
	GetMenu(ctx context.Context, id int64) (*models.Menu, error)
	GetMenuByName(ctx context.Context, name string) (*models.Menu, error)
	ListMenus(ctx context.Context, tier string) ([]*models.Menu, error)
	DeleteMenu(ctx context.Context, id int64) error
}

// Handler обрабатывает HTTP-запросы к каталогу.
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

// CreateIngredient godoc
// @Summary Добавить ингредиент
// @Tags Ingredients
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.IngredientRequest true "Ингредиент"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или имя занято"
// @Failure 403 {object} response.ErrorResponse
// @Router /ingredients [post]
func (h *Handler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.create_ingredient")

	var req models.IngredientRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}
	in, err := h.service.CreateIngredient(r.Context(), req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderCreated(w, r, map[string]any{"ingredient": in})
}

// ListIngredients godoc
// @Summary Список ингредиентов
// @Tags Ingredients
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /ingredients [get]
func (h *Handler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.list_ingredients")

	res, err := h.service.ListIngredients(r.Context())
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"ingredients": res})
}

// GetIngredient godoc
// @Summary Ингредиент по ID
// @Tags Ingredients
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID ингредиента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /ingredients/{id} [get]
func (h *Handler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.get_ingredient")

	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	in, err := h.service.GetIngredient(r.Context(), id)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"ingredient": in})
}

// UpdateIngredient godoc
// @Summary Обновить ингредиент
// @Tags Ingredients
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID ингредиента"
// @Param request body models.IngredientRequest true "Ингредиент"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /ingredients/{id} [put]
func (h *Handler) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.update_ingredient")

	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	var req models.IngredientRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}
	in, err := h.service.UpdateIngredient(r.Context(), id, req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"ingredient": in})
}

// RemoveIngredient godoc
// @Summary Удалить ингредиент
// @Tags Ingredients
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID ингредиента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /ingredients/{id} [delete]
func (h *Handler) RemoveIngredient(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.remove_ingredient")

	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	if err := h.service.DeleteIngredient(r.Context(), id); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"deleted_id": id})
}

// CreateMenu godoc
// @Summary Добавить меню
// @Description Ингредиенты задаются по имени и должны существовать.
// @Tags Menus
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.MenuRequest true "Меню"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /menus [post]
func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.create_menu")

	var req models.MenuRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}
	m, err := h.service.CreateMenu(r.Context(), req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderCreated(w, r, map[string]any{"menu": m})
}

// ListMenus godoc
// @Summary Список меню
// @Tags Menus
// @Produce  json
// @Security BearerAuth
// @Param tier query string false "Уровень: Basic, Deluxe, Premium"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /menus [get]
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.list_menus")

	res, err := h.service.ListMenus(r.Context(), r.URL.Query().Get("tier"))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"menus": res})
}

// GetMenu godoc
// @Summary Меню по ID
// @Tags Menus
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID меню"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /menus/{id} [get]
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.get_menu")

	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	m, err := h.service.GetMenu(r.Context(), id)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"menu": m})
}

// GetMenuByName godoc
// @Summary Меню по названию
// @Tags Menus
// @Produce  json
// @Security BearerAuth
// @Param name path string true "Название меню"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /menus/name/{name} [get]
func (h *Handler) GetMenuByName(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.get_menu_by_name")

	m, err := h.service.GetMenuByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"menu": m})
}

// UpdateMenu godoc
// @Summary Обновить меню
// @Description Снимки в уже созданных заказах не меняются.
// @Tags Menus
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID меню"
// @Param request body models.MenuRequest true "Меню"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /menus/{id} [put]
func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.update_menu")

	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	var req models.MenuRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}
	m, err := h.service.UpdateMenu(r.Context(), id, req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"menu": m})
}

// RemoveMenu godoc
// @Summary Удалить меню
// @Tags Menus
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID меню"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /menus/{id} [delete]
func (h *Handler) RemoveMenu(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.remove_menu")

	id, ok := request.ID(w, r, log)
	if !ok {
		return
	}
	if err := h.service.DeleteMenu(r.Context(), id); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"deleted_id": id})
}
