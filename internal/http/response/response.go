// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ответ с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// specific — доменные ошибки, текст которых отдаётся клиенту как есть.
var specific = []error{
	models.ErrNoActivePackage,
	models.ErrNoMenusForTier,
	models.ErrUserNotFound,
}

// FromError сопоставляет ошибку сервиса со статусом HTTP и телом ответа.
// Ошибка валидации отдаётся вместе с именем поля. Неизвестные ошибки
// превращаются в 500 без раскрытия причины.
func FromError(err error) (int, ErrorResponse) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, Error(ve.Error())
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, Error(models.ErrValidation.Error())
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, Error(models.ErrUnauthorized.Error())
	case errors.Is(err, models.ErrNotFound):
		for _, s := range specific {
			if errors.Is(err, s) {
				return http.StatusNotFound, Error(s.Error())
			}
		}
		return http.StatusNotFound, Error(models.ErrNotFound.Error())
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// ValidationError формирует ответ на основе ошибок валидации.
// Каждое нарушение превращается в текст, всё объединяется через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters long", err.Field(), err.Param()))
		case "gte", "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is out of range", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// RenderError пишет ответ для ошибки сервиса. Внутренние ошибки логируются как Error,
// клиентские как Warn.
func RenderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code, body := FromError(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Warn("request rejected", slog.Int("status", code), sl.Err(err))
	}
	render.Status(r, code)
	render.JSON(w, r, body)
}

// RenderBadRequest пишет 400 с сообщением msg.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Error(msg))
}

// RenderOK пишет 200 с данными.
func RenderOK(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, StatusOKWithData(data))
}

// RenderCreated пишет 201 с данными.
func RenderCreated(w http.ResponseWriter, r *http.Request, data any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, StatusOKWithData(data))
}
