package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

const shipmentColumns = `id, tracking_number, order_id, customer_name, address, messenger_name,
	contact, status, created_at, updated_at`

func scanShipment(row rowScanner) (*models.Shipment, error) {
	sh := &models.Shipment{}
	err := row.Scan(&sh.ID, &sh.TrackingNumber, &sh.OrderID, &sh.CustomerName, &sh.Address,
		&sh.MessengerName, &sh.Contact, &sh.Status, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// CreateShipment сохраняет доставку и возвращает её ID.
func (s *Storage) CreateShipment(ctx context.Context, sh models.Shipment) (int64, error) {
	const op = "storage.CreateShipment"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO shipments (tracking_number, order_id, customer_name, address,
			      messenger_name, contact, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		sh.TrackingNumber, sh.OrderID, sh.CustomerName, sh.Address,
		sh.MessengerName, sh.Contact, sh.Status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetShipmentByTrackingNumber возвращает доставку по трек-номеру заказа.
func (s *Storage) GetShipmentByTrackingNumber(ctx context.Context, tracking string) (*models.Shipment, error) {
	const op = "storage.GetShipmentByTrackingNumber"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sh, err := scanShipment(s.DB.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE tracking_number = $1`, tracking))
	if err != nil {
		return nil, notFound(op, err)
	}
	return sh, nil
}

// GetShipment возвращает доставку по ID.
func (s *Storage) GetShipment(ctx context.Context, id int64) (*models.Shipment, error) {
	const op = "storage.GetShipment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sh, err := scanShipment(s.DB.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(op, err)
	}
	return sh, nil
}

// ListShipments возвращает все доставки.
func (s *Storage) ListShipments(ctx context.Context) ([]*models.Shipment, error) {
	const op = "storage.ListShipments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+shipmentColumns+` FROM shipments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	res := make([]*models.Shipment, 0)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, sh)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateShipmentStatus меняет статус доставки.
func (s *Storage) UpdateShipmentStatus(ctx context.Context, id int64, status string) (int64, error) {
	const op = "storage.UpdateShipmentStatus"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE shipments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected(op, result)
}

// DeleteShipment удаляет доставку.
func (s *Storage) DeleteShipment(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteShipment"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected(op, result)
}
