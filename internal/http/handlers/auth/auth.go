// Package auth реализует HTTP-обработчики регистрации, входа, выхода и профиля текущего пользователя.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/meal-subscription/internal/http/middlewarectx"
	"github.com/magabrotheeeer/meal-subscription/internal/http/request"
	"github.com/magabrotheeeer/meal-subscription/internal/http/response"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// LoginRequest содержит учетные данные для входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	CurrentUser(ctx context.Context, email string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы аутентификации.
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

// Register godoc
// @Summary Регистрация пользователя
// @Description Создает пользователя с ролью CUSTOMER, если роль не указана.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.RegisterRequest true "Данные пользователя"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или email уже занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.register")

	var req models.RegisterRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}

	uid, err := h.service.Register(r.Context(), req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("user registered", slog.String("uid", uid))
	response.RenderCreated(w, r, map[string]any{
		"uid":   uid,
		"email": req.Email,
	})
}

// Login godoc
// @Summary Авторизация пользователя
// @Description Проверяет email и пароль, возвращает JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body LoginRequest true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.login")

	var req LoginRequest
	if !request.DecodeValid(w, r, log, h.validate, &req) {
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("login success", slog.String("email", user.Email))
	response.RenderOK(w, r, map[string]any{
		"token": token,
		"role":  user.Role,
		"email": user.Email,
	})
}

// Logout godoc
// @Summary Выход
// @Description Токены не хранятся на сервере, клиент удаляет свой токен.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.logger(r, "handlers.auth.logout").Info("logout")
	response.RenderOK(w, r, map[string]any{"message": "Logout successful"})
}

// Me godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.me")

	email, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderError(w, r, log, models.ErrUnauthorized)
		return
	}
	user, err := h.service.CurrentUser(r.Context(), email)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.RenderOK(w, r, map[string]any{"user": user})
}
