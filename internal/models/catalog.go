package models

// Ingredient описывает ингредиент каталога. Имя уникально.
type Ingredient struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"PricePerUnit"`
}

// IngredientRequest содержит данные ингредиента из JSON-запроса.
type IngredientRequest struct {
	Name         string  `json:"name" validate:"required"`
	Unit         string  `json:"unit" validate:"required"`
	PricePerUnit float64 `json:"priceperunit" validate:"gte=0"`
}

// MenuIngredient — позиция меню: ссылка на ингредиент и порция.
type MenuIngredient struct {
	IngredientID int64   `json:"ingredientId"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"PricePerUnit"`
	Portion      float64 `json:"portion"`
}

// Menu — блюдо каталога, привязанное к уровню подписки.
type Menu struct {
	ID          int64            `json:"id"`
	Title       string           `json:"menu_title"`
	Description string           `json:"menu_description"`
	Tier        Tier             `json:"package"`
	Image       string           `json:"menu_image"`
	Ingredients []MenuIngredient `json:"ingredient_list"`
}

// Snapshot копирует поля меню в заказ. Копия не связана с меню и не меняется при его правке.
func (m *Menu) Snapshot() MenuSnapshot {
	items := make([]SnapshotIngredient, 0, len(m.Ingredients))
	for _, it := range m.Ingredients {
		items = append(items, SnapshotIngredient{
			Name:         it.Name,
			Unit:         it.Unit,
			PricePerUnit: it.PricePerUnit,
			Portion:      it.Portion,
		})
	}
	return MenuSnapshot{
		Title:       m.Title,
		Description: m.Description,
		Image:       m.Image,
		Ingredients: items,
	}
}

// MenuItemRequest — позиция меню в запросе: ингредиент по имени и порция.
type MenuItemRequest struct {
	Name    string  `json:"name" validate:"required"`
	Portion float64 `json:"portion" validate:"gt=0"`
}

// MenuRequest содержит данные меню из JSON-запроса.
type MenuRequest struct {
	Title       string            `json:"menu_title" validate:"required"`
	Description string            `json:"menu_description" validate:"required"`
	Tier        string            `json:"package" validate:"required"`
	Image       string            `json:"menu_image"`
	Ingredients []MenuItemRequest `json:"ingredient_list" validate:"required,dive"`
}
