package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateIngredient(ctx context.Context, in models.Ingredient) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetIngredient(ctx context.Context, id int64) (*models.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ingredient), args.Error(1)
}

func (m *RepoMock) ListIngredients(ctx context.Context) ([]*models.Ingredient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ingredient), args.Error(1)
}

func (m *RepoMock) IngredientsByNames(ctx context.Context, names []string) ([]*models.Ingredient, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ingredient), args.Error(1)
}

func (m *RepoMock) UpdateIngredient(ctx context.Context, in models.Ingredient) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) DeleteIngredient(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CreateMenu(ctx context.Context, menu models.Menu) (int64, error) {
	args := m.Called(ctx, menu)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdateMenu(ctx context.Context, menu models.Menu) (int64, error) {
	args := m.Called(ctx, menu)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Menu), args.Error(1)
}

func (m *RepoMock) GetMenuByTitle(ctx context.Context, title string) (*models.Menu, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Menu), args.Error(1)
}

func (m *RepoMock) ListMenus(ctx context.Context, tier *models.Tier) ([]*models.Menu, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Menu), args.Error(1)
}

func (m *RepoMock) DeleteMenu(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	rice    = &models.Ingredient{ID: 1, Name: "rice", Unit: "g", PricePerUnit: 0.5}
	chicken = &models.Ingredient{ID: 2, Name: "chicken", Unit: "g", PricePerUnit: 2}
)

func TestCatalogService_CreateMenu(t *testing.T) {
	tests := []struct {
		name      string
		req       models.MenuRequest
		setup     func(r *RepoMock)
		wantErr   error
		wantItems []models.MenuIngredient
	}{
		{
			name: "ingredients resolved by name in request order",
			req: models.MenuRequest{
				Title: "Adobo", Description: "classic", Tier: "Deluxe",
				Ingredients: []models.MenuItemRequest{{Name: "chicken", Portion: 200}, {Name: " rice ", Portion: 150}},
			},
			setup: func(r *RepoMock) {
				r.On("IngredientsByNames", mock.Anything, []string{"chicken", "rice"}).
					Return([]*models.Ingredient{rice, chicken}, nil)
				r.On("CreateMenu", mock.Anything, mock.MatchedBy(func(m models.Menu) bool {
					return m.Title == "Adobo" && m.Tier == models.TierDeluxe && len(m.Ingredients) == 2
				})).Return(int64(7), nil)
			},
			wantItems: []models.MenuIngredient{
				{IngredientID: 2, Name: "chicken", Unit: "g", PricePerUnit: 2, Portion: 200},
				{IngredientID: 1, Name: "rice", Unit: "g", PricePerUnit: 0.5, Portion: 150},
			},
		},
		{
			name: "unknown ingredient",
			req: models.MenuRequest{
				Title: "Mystery", Description: "?", Tier: "Basic",
				Ingredients: []models.MenuItemRequest{{Name: "rice", Portion: 1}, {Name: "unobtainium", Portion: 1}},
			},
			setup: func(r *RepoMock) {
				r.On("IngredientsByNames", mock.Anything, []string{"rice", "unobtainium"}).
					Return([]*models.Ingredient{rice}, nil)
			},
			wantErr: ErrUnknownIngredients,
		},
		{
			name: "unknown tier",
			req: models.MenuRequest{
				Title: "Adobo", Description: "classic", Tier: "Gold",
				Ingredients: []models.MenuItemRequest{{Name: "rice", Portion: 1}},
			},
			setup:   func(_ *RepoMock) {},
			wantErr: models.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)

			got, err := NewCatalogService(repo, newNoopLogger()).CreateMenu(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, models.ErrValidation)
				repo.AssertNotCalled(t, "CreateMenu", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), got.ID)
			assert.Equal(t, tt.wantItems, got.Ingredients)
			repo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_UpdateMenuNotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("IngredientsByNames", mock.Anything, []string{"rice"}).Return([]*models.Ingredient{rice}, nil)
	repo.On("UpdateMenu", mock.Anything, mock.AnythingOfType("models.Menu")).Return(int64(0), nil)

	_, err := NewCatalogService(repo, newNoopLogger()).UpdateMenu(context.Background(), 99, models.MenuRequest{
		Title: "x", Description: "y", Tier: "Basic", Ingredients: []models.MenuItemRequest{{Name: "rice", Portion: 1}},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCatalogService_CreateIngredient(t *testing.T) {
	repo := new(RepoMock)
	dup := models.NewValidationError("name", "Ingredient already exists")
	repo.On("CreateIngredient", mock.Anything, models.Ingredient{Name: "rice", Unit: "g", PricePerUnit: 0.5}).
		Return(int64(1), nil).Once()
	repo.On("CreateIngredient", mock.Anything, models.Ingredient{Name: "rice", Unit: "kg", PricePerUnit: 1}).
		Return(int64(0), dup).Once()

	svc := NewCatalogService(repo, newNoopLogger())

	got, err := svc.CreateIngredient(context.Background(), models.IngredientRequest{Name: " rice", Unit: "g", PricePerUnit: 0.5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	_, err = svc.CreateIngredient(context.Background(), models.IngredientRequest{Name: "rice", Unit: "kg", PricePerUnit: 1})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCatalogService_ListMenus(t *testing.T) {
	deluxe := models.TierDeluxe
	tests := []struct {
		name    string
		tier    string
		filter  *models.Tier
		wantErr bool
	}{
		{name: "all tiers", tier: "", filter: nil},
		{name: "single tier", tier: "deluxe", filter: &deluxe},
		{name: "bad tier", tier: "gold", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			if !tt.wantErr {
				repo.On("ListMenus", mock.Anything, tt.filter).Return([]*models.Menu{{ID: 1}}, nil)
			}
			got, err := NewCatalogService(repo, newNoopLogger()).ListMenus(context.Background(), tt.tier)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestCatalogService_DeleteNotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("DeleteMenu", mock.Anything, int64(3)).Return(int64(0), nil)
	repo.On("DeleteIngredient", mock.Anything, int64(4)).Return(int64(0), errors.New("db down"))

	svc := NewCatalogService(repo, newNoopLogger())
	assert.ErrorIs(t, svc.DeleteMenu(context.Background(), 3), models.ErrNotFound)
	assert.ErrorContains(t, svc.DeleteIngredient(context.Background(), 4), "db down")
}
