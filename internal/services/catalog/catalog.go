// Package services содержит каталог ингредиентов и меню.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Repository определяет методы хранилища каталога.
type Repository interface {
	CreateIngredient(ctx context.Context, in models.Ingredient) (int64, error)
	GetIngredient(ctx context.Context, id int64) (*models.Ingredient, error)
	ListIngredients(ctx context.Context) ([]*models.Ingredient, error)
	IngredientsByNames(ctx context.Context, names []string) ([]*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, in models.Ingredient) (int64, error)
	DeleteIngredient(ctx context.Context, id int64) (int64, error)

	CreateMenu(ctx context.Context, m models.Menu) (int64, error)
	UpdateMenu(ctx context.Context, m models.Menu) (int64, error)
	GetMenu(ctx context.Context, id int64) (*models.Menu, error)
	GetMenuByTitle(ctx context.Context, title string) (*models.Menu, error)
	ListMenus(ctx context.Context, tier *models.Tier) ([]*models.Menu, error)
	DeleteMenu(ctx context.Context, id int64) (int64, error)
}

// ErrUnknownIngredients возвращается, если меню ссылается на несуществующие ингредиенты.
var ErrUnknownIngredients = models.NewValidationError("ingredient_list", "Some ingredients are invalid or do not exist")

// CatalogService управляет ингредиентами и меню.
type CatalogService struct {
	repo Repository
	log  *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo Repository, log *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

// CreateIngredient добавляет ингредиент. Имя должно быть уникальным.
func (s *CatalogService) CreateIngredient(ctx context.Context, req models.IngredientRequest) (*models.Ingredient, error) {
	const op = "catalog.CreateIngredient"

	in := models.Ingredient{
		Name:         strings.TrimSpace(req.Name),
		Unit:         req.Unit,
		PricePerUnit: req.PricePerUnit,
	}
	id, err := s.repo.CreateIngredient(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	in.ID = id
	s.log.Info("ingredient created", slog.Int64("id", id), slog.String("name", in.Name))
	return &in, nil
}

// GetIngredient возвращает ингредиент по ID.
func (s *CatalogService) GetIngredient(ctx context.Context, id int64) (*models.Ingredient, error) {
	const op = "catalog.GetIngredient"
	in, err := s.repo.GetIngredient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return in, nil
}

// ListIngredients возвращает все ингредиенты.
func (s *CatalogService) ListIngredients(ctx context.Context) ([]*models.Ingredient, error) {
	const op = "catalog.ListIngredients"
	res, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateIngredient перезаписывает ингредиент.
func (s *CatalogService) UpdateIngredient(ctx context.Context, id int64, req models.IngredientRequest) (*models.Ingredient, error) {
	const op = "catalog.UpdateIngredient"

	in := models.Ingredient{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Unit:         req.Unit,
		PricePerUnit: req.PricePerUnit,
	}
	n, err := s.repo.UpdateIngredient(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: ingredient %d: %w", op, id, models.ErrNotFound)
	}
	return &in, nil
}

// DeleteIngredient удаляет ингредиент.
func (s *CatalogService) DeleteIngredient(ctx context.Context, id int64) error {
	const op = "catalog.DeleteIngredient"
	n, err := s.repo.DeleteIngredient(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: ingredient %d: %w", op, id, models.ErrNotFound)
	}
	return nil
}

// CreateMenu добавляет меню. Ингредиенты указываются по именам и должны существовать.
func (s *CatalogService) CreateMenu(ctx context.Context, req models.MenuRequest) (*models.Menu, error) {
	const op = "catalog.CreateMenu"

	m, err := s.buildMenu(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.ID, err = s.repo.CreateMenu(ctx, *m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("menu created", slog.Int64("id", m.ID), slog.String("tier", m.Tier.String()))
	return m, nil
}

// UpdateMenu перезаписывает меню вместе с составом.
func (s *CatalogService) UpdateMenu(ctx context.Context, id int64, req models.MenuRequest) (*models.Menu, error) {
	const op = "catalog.UpdateMenu"

	m, err := s.buildMenu(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.ID = id
	n, err := s.repo.UpdateMenu(ctx, *m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: menu %d: %w", op, id, models.ErrNotFound)
	}
	return m, nil
}

func (s *CatalogService) buildMenu(ctx context.Context, req models.MenuRequest) (*models.Menu, error) {
	tier, err := models.ParseTier(req.Tier)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(req.Ingredients))
	seen := make(map[string]struct{}, len(req.Ingredients))
	for _, it := range req.Ingredients {
		name := strings.TrimSpace(it.Name)
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	found, err := s.repo.IngredientsByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*models.Ingredient, len(found))
	for _, in := range found {
		byName[in.Name] = in
	}
	if len(byName) != len(names) {
		return nil, ErrUnknownIngredients
	}

	items := make([]models.MenuIngredient, 0, len(req.Ingredients))
	for _, it := range req.Ingredients {
		in := byName[strings.TrimSpace(it.Name)]
		items = append(items, models.MenuIngredient{
			IngredientID: in.ID,
			Name:         in.Name,
			Unit:         in.Unit,
			PricePerUnit: in.PricePerUnit,
			Portion:      it.Portion,
		})
	}
	return &models.Menu{
		Title:       req.Title,
		Description: req.Description,
		Tier:        tier,
		Image:       req.Image,
		Ingredients: items,
	}, nil
}

// GetMenu возвращает меню по ID.
func (s *CatalogService) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	const op = "catalog.GetMenu"
	m, err := s.repo.GetMenu(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// GetMenuByName возвращает меню по названию.
func (s *CatalogService) GetMenuByName(ctx context.Context, name string) (*models.Menu, error) {
	const op = "catalog.GetMenuByName"
	m, err := s.repo.GetMenuByTitle(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ListMenus возвращает меню; пустой tier означает все уровни.
func (s *CatalogService) ListMenus(ctx context.Context, tier string) ([]*models.Menu, error) {
	const op = "catalog.ListMenus"

	var filter *models.Tier
	if tier != "" {
		t, err := models.ParseTier(tier)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		filter = &t
	}
	res, err := s.repo.ListMenus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// MenusForTier возвращает меню уровня tier, кандидатов для автозаполнения.
func (s *CatalogService) MenusForTier(ctx context.Context, tier models.Tier) ([]*models.Menu, error) {
	const op = "catalog.MenusForTier"
	res, err := s.repo.ListMenus(ctx, &tier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeleteMenu удаляет меню. Снимки в заказах остаются.
func (s *CatalogService) DeleteMenu(ctx context.Context, id int64) error {
	const op = "catalog.DeleteMenu"
	n, err := s.repo.DeleteMenu(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: menu %d: %w", op, id, models.ErrNotFound)
	}
	s.log.Info("menu deleted", slog.Int64("id", id))
	return nil
}
