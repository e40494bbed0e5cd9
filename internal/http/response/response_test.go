package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "tier transition",
			err:        fmt.Errorf("packages.AddPackage: %w", models.ErrInvalidTierTransition),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "field tier: tier must be higher than the highest held package",
		},
		{
			name:       "field validation",
			err:        models.NewValidationError("ingredient_list", "Some ingredients are invalid or do not exist"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "field ingredient_list: Some ingredients are invalid or do not exist",
		},
		{
			name:       "shipment status",
			err:        fmt.Errorf("shipping.UpdateStatus: %w", models.NewValidationError("status", "Invalid status value")),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "field status: Invalid status value",
		},
		{
			name:       "package start date",
			err:        models.NewValidationError("package_start_date", "date must be in format YYYY-MM-DD"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "field package_start_date: date must be in format YYYY-MM-DD",
		},
		{
			name:       "bare validation sentinel",
			err:        fmt.Errorf("op: %w", models.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "validation failed",
		},
		{
			name:       "unauthorized",
			err:        fmt.Errorf("auth.Login: %w", models.ErrUnauthorized),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "unauthorized",
		},
		{
			name:       "no active package",
			err:        fmt.Errorf("orders.AutoFill: %w", models.ErrNoActivePackage),
			wantStatus: http.StatusNotFound,
			wantMsg:    "active package not found",
		},
		{
			name:       "no menus for tier",
			err:        fmt.Errorf("orders.AutoFill: %w", models.ErrNoMenusForTier),
			wantStatus: http.StatusNotFound,
			wantMsg:    "menus for tier not found",
		},
		{
			name:       "generic not found",
			err:        fmt.Errorf("storage.GetMenu: %w", models.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "not found",
		},
		{
			name:       "unknown error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, body.Status)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string  `validate:"required,email"`
		Password string  `validate:"min=6"`
		Price    float64 `validate:"gte=0"`
		Title    string  `validate:"required"`
	}

	err := validator.New().Struct(request{Email: "nope", Password: "123", Price: -1})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Password must be at least 6 characters long")
	assert.Contains(t, resp.Error, "field Price is out of range")
	assert.Contains(t, resp.Error, "field Title is a required field")
}
