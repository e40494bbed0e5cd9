package request

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type item struct {
	Name string `json:"name" validate:"required"`
}

type payload struct {
	Title string      `json:"menu_title" validate:"required"`
	Items []item      `json:"ingredient_list" validate:"dive"`
	Tier  models.Tier `json:"package"`
}

func TestDecodeValid(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid body",
			body:       `{"menu_title":"Adobo","ingredient_list":[{"name":"rice"}],"package":"Deluxe"}`,
			wantOK:     true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "array field sent as string",
			body:       `{"menu_title":"Adobo","ingredient_list":"rice"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"field ingredient_list has invalid type"}`,
		},
		{
			name:       "string field sent as number",
			body:       `{"menu_title":42}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"field menu_title has invalid type"}`,
		},
		{
			name:       "unknown tier",
			body:       `{"menu_title":"Adobo","package":"Gold"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"field tier: unknown tier \"Gold\""}`,
		},
		{
			name:       "malformed json",
			body:       `{"menu_title":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:       "nested required field",
			body:       `{"menu_title":"Adobo","ingredient_list":[{}]}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"field Name is a required field"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			ok := DecodeValid(w, r, newNoopLogger(), validator.New(), &dst)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		want   int64
		wantOK bool
	}{
		{name: "positive", id: "7", want: 7, wantOK: true},
		{name: "zero", id: "0"},
		{name: "not a number", id: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			id, ok := ID(w, r, newNoopLogger())

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
