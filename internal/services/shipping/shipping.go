// Package services содержит доставки ежедневных заказов: создание по трек-номеру,
// смену статуса и обработку событий о новых заказах из RabbitMQ.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	"github.com/magabrotheeeer/meal-subscription/internal/metrics"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// ErrNoMessenger возвращается, если в системе нет ни одного курьера.
var ErrNoMessenger = fmt.Errorf("messenger %w", models.ErrNotFound)

const handleTimeout = 10 * time.Second

// Repository определяет методы хранилища доставок.
type Repository interface {
	GetOrderByTrackingNumber(ctx context.Context, tracking string) (*models.DailyOrder, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	FirstUserByRole(ctx context.Context, role string) (*models.User, error)

	CreateShipment(ctx context.Context, sh models.Shipment) (int64, error)
	GetShipmentByTrackingNumber(ctx context.Context, tracking string) (*models.Shipment, error)
	ListShipments(ctx context.Context) ([]*models.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id int64, status string) (int64, error)
	DeleteShipment(ctx context.Context, id int64) (int64, error)
}

// ShippingService управляет доставками.
type ShippingService struct {
	repo    Repository
	contact string
	log     *slog.Logger
}

// NewShippingService создает новый экземпляр ShippingService.
// contact содержит телефон курьерской службы, указываемый в каждой доставке.
func NewShippingService(repo Repository, contact string, log *slog.Logger) *ShippingService {
	return &ShippingService{
		repo:    repo,
		contact: contact,
		log:     log,
	}
}

// CreateForTracking создаёт доставку заказа с трек-номером tracking.
// Повторный вызов возвращает уже созданную доставку.
func (s *ShippingService) CreateForTracking(ctx context.Context, tracking string) (*models.Shipment, error) {
	const op = "shipping.CreateForTracking"

	existing, err := s.repo.GetShipmentByTrackingNumber(ctx, tracking)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.repo.GetOrderByTrackingNumber(ctx, tracking)
	if err != nil {
		return nil, fmt.Errorf("%s: order %q: %w", op, tracking, err)
	}
	customer, err := s.repo.GetUser(ctx, order.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: customer: %w", op, err)
	}
	messenger, err := s.repo.FirstUserByRole(ctx, models.RoleMessenger)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoMessenger)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sh := models.Shipment{
		TrackingNumber: tracking,
		OrderID:        order.ID,
		CustomerName:   customer.FullName(),
		Address:        Address(customer),
		MessengerName:  messenger.FullName(),
		Contact:        s.contact,
		Status:         models.ShipmentOngoing,
	}
	sh.ID, err = s.repo.CreateShipment(ctx, sh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.ShipmentsCreated.Inc()
	s.log.Info("shipment created",
		slog.Int64("id", sh.ID),
		slog.String("tracking_number", tracking))
	return &sh, nil
}

// Address собирает адрес доставки из полей профиля, пропуская пустые.
func Address(u *models.User) string {
	street := strings.TrimSpace(u.StreetNumber + " " + u.AddressName)
	parts := []string{u.AddressUnitNumber, street, u.City, u.Region, u.PostalCode}
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return strings.Join(res, ", ")
}

// UpdateStatus меняет статус доставки.
func (s *ShippingService) UpdateStatus(ctx context.Context, id int64, status string) error {
	const op = "shipping.UpdateStatus"

	if !models.ValidShipmentStatus(status) {
		return fmt.Errorf("%s: %w", op, models.NewValidationError("status", "Invalid status value"))
	}
	n, err := s.repo.UpdateShipmentStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: shipment %d: %w", op, id, models.ErrNotFound)
	}
	s.log.Info("shipment status updated", slog.Int64("id", id), slog.String("status", status))
	return nil
}

// List возвращает все доставки.
func (s *ShippingService) List(ctx context.Context) ([]*models.Shipment, error) {
	const op = "shipping.List"
	res, err := s.repo.ListShipments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Delete удаляет доставку.
func (s *ShippingService) Delete(ctx context.Context, id int64) error {
	const op = "shipping.Delete"
	n, err := s.repo.DeleteShipment(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: shipment %d: %w", op, id, models.ErrNotFound)
	}
	return nil
}

// HandleOrderScheduled обрабатывает сообщение из очереди orders.scheduled.
// Нераспознанные сообщения и заказы без курьера не возвращаются в очередь повторно.
func (s *ShippingService) HandleOrderScheduled(body []byte) error {
	var event models.OrderScheduledEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return nil
	}
	if event.TrackingNumber == "" {
		s.log.Warn("order event without tracking number")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	_, err := s.CreateForTracking(ctx, event.TrackingNumber)
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn("shipment skipped",
			slog.String("tracking_number", event.TrackingNumber), sl.Err(err))
		return nil
	}
	return err
}
