package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/meal-subscription/internal/lib/calendar"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

const orderColumns = `id, user_uid, order_date, menu, status, tracking_number, created_at, updated_at`

func scanOrder(row rowScanner) (*models.DailyOrder, error) {
	o := &models.DailyOrder{}
	var menu []byte
	if err := row.Scan(&o.ID, &o.UserUID, &o.Date, &menu, &o.Status, &o.TrackingNumber,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(menu, &o.Menu); err != nil {
		return nil, fmt.Errorf("decode menu snapshot: %w", err)
	}
	o.Date = calendar.Day(o.Date)
	return o, nil
}

// CreateOrder сохраняет заказ со снимком меню и возвращает его ID.
// Второй заказ на тот же день пользователя отклоняется уникальным индексом.
func (s *Storage) CreateOrder(ctx context.Context, o models.DailyOrder) (int64, error) {
	const op = "storage.CreateOrder"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	menu, err := json.Marshal(o.Menu)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO daily_orders (user_uid, order_date, menu, status, tracking_number)
			  VALUES ($1, $2, $3::jsonb, $4, $5)
			  RETURNING id`
	var id int64
	err = s.DB.QueryRowContext(ctx, query,
		o.UserUID, calendar.Day(o.Date), string(menu), o.Status, o.TrackingNumber).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateOrder перезаписывает снимок меню и статус заказа.
func (s *Storage) UpdateOrder(ctx context.Context, id int64, menu models.MenuSnapshot, status int) (int64, error) {
	const op = "storage.UpdateOrder"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	data, err := json.Marshal(menu)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.DB.ExecContext(ctx,
		`UPDATE daily_orders SET menu = $1::jsonb, status = $2, updated_at = NOW() WHERE id = $3`,
		string(data), status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected(op, result)
}

// GetOrderByDate возвращает заказ пользователя на календарный день.
func (s *Storage) GetOrderByDate(ctx context.Context, userUID string, date time.Time) (*models.DailyOrder, error) {
	const op = "storage.GetOrderByDate"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	o, err := scanOrder(s.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM daily_orders WHERE user_uid = $1 AND order_date = $2::date`,
		userUID, calendar.Day(date)))
	if err != nil {
		return nil, notFound(op, err)
	}
	return o, nil
}

// GetOrderByTrackingNumber возвращает заказ по трек-номеру.
func (s *Storage) GetOrderByTrackingNumber(ctx context.Context, tracking string) (*models.DailyOrder, error) {
	const op = "storage.GetOrderByTrackingNumber"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	o, err := scanOrder(s.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM daily_orders WHERE tracking_number = $1`, tracking))
	if err != nil {
		return nil, notFound(op, err)
	}
	return o, nil
}

// ListOrdersByUser возвращает заказы пользователя по возрастанию даты.
func (s *Storage) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.DailyOrder, error) {
	const op = "storage.ListOrdersByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryOrders(ctx, op,
		`SELECT `+orderColumns+` FROM daily_orders WHERE user_uid = $1 ORDER BY order_date, id`, userUID)
}

// ListOrdersInRange возвращает заказы пользователя в закрытом интервале дат [from, to].
func (s *Storage) ListOrdersInRange(ctx context.Context, userUID string, from, to time.Time) ([]*models.DailyOrder, error) {
	const op = "storage.ListOrdersInRange"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryOrders(ctx, op,
		`SELECT `+orderColumns+` FROM daily_orders
		 WHERE user_uid = $1 AND order_date BETWEEN $2::date AND $3::date
		 ORDER BY order_date, id`,
		userUID, calendar.Day(from), calendar.Day(to))
}

func (s *Storage) queryOrders(ctx context.Context, op, query string, args ...any) ([]*models.DailyOrder, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	res := make([]*models.DailyOrder, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
