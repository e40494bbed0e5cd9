// Package request разбирает тела и параметры HTTP-запросов.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/meal-subscription/internal/http/response"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// DecodeValid декодирует JSON-тело в dst и проверяет его тегами validate.
// При ошибке пишет ответ 400 и возвращает false. Если значение поля имеет
// неверный JSON-тип, в ответе называется это поле.
func DecodeValid(w http.ResponseWriter, r *http.Request, log *slog.Logger, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			response.RenderBadRequest(w, r, fmt.Sprintf("field %s has invalid type", typeErr.Field))
			return false
		}
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			response.RenderBadRequest(w, r, ve.Error())
			return false
		}
		response.RenderBadRequest(w, r, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		log.Warn("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			response.RenderBadRequest(w, r, "invalid request body")
			return false
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return false
	}
	return true
}

// ID читает положительный числовой параметр маршрута {id}.
// При ошибке пишет ответ 400 и возвращает false.
func ID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid id", slog.String("id", raw))
		response.RenderBadRequest(w, r, "invalid id")
		return 0, false
	}
	return id, true
}
