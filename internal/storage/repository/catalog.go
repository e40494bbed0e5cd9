package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// CreateIngredient сохраняет ингредиент и возвращает его ID.
// Повторное имя возвращает ошибку валидации.
func (s *Storage) CreateIngredient(ctx context.Context, in models.Ingredient) (int64, error) {
	const op = "storage.CreateIngredient"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO ingredients (name, unit, price_per_unit) VALUES ($1, $2, $3) RETURNING id`,
		in.Name, in.Unit, in.PricePerUnit).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, models.NewValidationError("name", "Ingredient already exists"))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetIngredient возвращает ингредиент по ID.
func (s *Storage) GetIngredient(ctx context.Context, id int64) (*models.Ingredient, error) {
	const op = "storage.GetIngredient"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	in := &models.Ingredient{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, unit, price_per_unit FROM ingredients WHERE id = $1`, id).
		Scan(&in.ID, &in.Name, &in.Unit, &in.PricePerUnit)
	if err != nil {
		return nil, notFound(op, err)
	}
	return in, nil
}

// ListIngredients возвращает все ингредиенты.
func (s *Storage) ListIngredients(ctx context.Context) ([]*models.Ingredient, error) {
	const op = "storage.ListIngredients"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryIngredients(ctx, op, `SELECT id, name, unit, price_per_unit FROM ingredients ORDER BY id`)
}

// IngredientsByNames возвращает ингредиенты с указанными именами.
// Отсутствующие имена просто не попадают в результат.
func (s *Storage) IngredientsByNames(ctx context.Context, names []string) ([]*models.Ingredient, error) {
	const op = "storage.IngredientsByNames"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryIngredients(ctx, op,
		`SELECT id, name, unit, price_per_unit FROM ingredients WHERE name = ANY($1) ORDER BY id`, names)
}

func (s *Storage) queryIngredients(ctx context.Context, op, query string, args ...any) ([]*models.Ingredient, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	res := make([]*models.Ingredient, 0)
	for rows.Next() {
		in := &models.Ingredient{}
		if err := rows.Scan(&in.ID, &in.Name, &in.Unit, &in.PricePerUnit); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, in)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateIngredient обновляет ингредиент и возвращает количество изменённых строк.
func (s *Storage) UpdateIngredient(ctx context.Context, in models.Ingredient) (int64, error) {
	const op = "storage.UpdateIngredient"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE ingredients SET name = $1, unit = $2, price_per_unit = $3 WHERE id = $4`,
		in.Name, in.Unit, in.PricePerUnit, in.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, models.NewValidationError("name", "Ingredient already exists"))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected(op, result)
}

// DeleteIngredient удаляет ингредиент; позиции меню с ним удаляются каскадно.
func (s *Storage) DeleteIngredient(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteIngredient"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected(op, result)
}

// CreateMenu сохраняет меню вместе с позициями в одной транзакции.
func (s *Storage) CreateMenu(ctx context.Context, m models.Menu) (int64, error) {
	const op = "storage.CreateMenu"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO menus (title, description, tier, image) VALUES ($1, $2, $3, $4) RETURNING id`,
		m.Title, m.Description, int(m.Tier), m.Image).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = insertMenuItems(ctx, tx, id, m.Ingredients); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateMenu заменяет поля и позиции меню. Возвращает количество изменённых строк меню.
func (s *Storage) UpdateMenu(ctx context.Context, m models.Menu) (int64, error) {
	const op = "storage.UpdateMenu"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`UPDATE menus SET title = $1, description = $2, tier = $3, image = $4 WHERE id = $5`,
		m.Title, m.Description, int(m.Tier), m.Image, m.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := rowsAffected(op, result)
	if err != nil || n == 0 {
		return n, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM menu_ingredients WHERE menu_id = $1`, m.ID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = insertMenuItems(ctx, tx, m.ID, m.Ingredients); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func insertMenuItems(ctx context.Context, tx *sql.Tx, menuID int64, items []models.MenuIngredient) error {
	for i, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO menu_ingredients (menu_id, position, ingredient_id, portion) VALUES ($1, $2, $3, $4)`,
			menuID, i, it.IngredientID, it.Portion)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetMenu возвращает меню с позициями по ID.
func (s *Storage) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	const op = "storage.GetMenu"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.getMenu(ctx, op, `SELECT id, title, description, tier, image FROM menus WHERE id = $1`, id)
}

// GetMenuByTitle возвращает первое меню с заданным названием.
func (s *Storage) GetMenuByTitle(ctx context.Context, title string) (*models.Menu, error) {
	const op = "storage.GetMenuByTitle"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.getMenu(ctx, op,
		`SELECT id, title, description, tier, image FROM menus WHERE title = $1 ORDER BY id LIMIT 1`, title)
}

func (s *Storage) getMenu(ctx context.Context, op, query string, arg any) (*models.Menu, error) {
	m := &models.Menu{}
	var tier int
	if err := s.DB.QueryRowContext(ctx, query, arg).Scan(&m.ID, &m.Title, &m.Description, &tier, &m.Image); err != nil {
		return nil, notFound(op, err)
	}
	m.Tier = models.Tier(tier)

	items, err := s.menuItems(ctx, []int64{m.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.Ingredients = items[m.ID]
	if m.Ingredients == nil {
		m.Ingredients = []models.MenuIngredient{}
	}
	return m, nil
}

// ListMenus возвращает меню с позициями. Если tier не nil, только меню этого уровня.
func (s *Storage) ListMenus(ctx context.Context, tier *models.Tier) ([]*models.Menu, error) {
	const op = "storage.ListMenus"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, title, description, tier, image FROM menus ORDER BY id`
	var args []any
	if tier != nil {
		query = `SELECT id, title, description, tier, image FROM menus WHERE tier = $1 ORDER BY id`
		args = append(args, int(*tier))
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	menus := make([]*models.Menu, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		m := &models.Menu{}
		var t int
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &t, &m.Image); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m.Tier = models.Tier(t)
		menus = append(menus, m)
		ids = append(ids, m.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(menus) == 0 {
		return menus, nil
	}

	items, err := s.menuItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, m := range menus {
		m.Ingredients = items[m.ID]
		if m.Ingredients == nil {
			m.Ingredients = []models.MenuIngredient{}
		}
	}
	return menus, nil
}

func (s *Storage) menuItems(ctx context.Context, menuIDs []int64) (map[int64][]models.MenuIngredient, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT mi.menu_id, i.id, i.name, i.unit, i.price_per_unit, mi.portion
		FROM menu_ingredients mi
		JOIN ingredients i ON i.id = mi.ingredient_id
		WHERE mi.menu_id = ANY($1)
		ORDER BY mi.menu_id, mi.position`, menuIDs)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := make(map[int64][]models.MenuIngredient, len(menuIDs))
	for rows.Next() {
		var menuID int64
		var it models.MenuIngredient
		if err := rows.Scan(&menuID, &it.IngredientID, &it.Name, &it.Unit, &it.PricePerUnit, &it.Portion); err != nil {
			return nil, err
		}
		res[menuID] = append(res[menuID], it)
	}
	return res, rows.Err()
}

// DeleteMenu удаляет меню. Снимки в уже созданных заказах не меняются.
func (s *Storage) DeleteMenu(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteMenu"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected(op, result)
}

func rowsAffected(op string, result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
