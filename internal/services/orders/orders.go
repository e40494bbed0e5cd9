// Package services содержит планировщик ежедневных заказов: запись заказа на дату
// и автозаполнение 30-дневного окна активного пакета меню его уровня.
package services

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/meal-subscription/internal/cache"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/calendar"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	"github.com/magabrotheeeer/meal-subscription/internal/metrics"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Repository определяет методы хранилища заказов.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateOrder(ctx context.Context, o models.DailyOrder) (int64, error)
	UpdateOrder(ctx context.Context, id int64, menu models.MenuSnapshot, status int) (int64, error)
	GetOrderByDate(ctx context.Context, userUID string, date time.Time) (*models.DailyOrder, error)
	GetOrderByTrackingNumber(ctx context.Context, tracking string) (*models.DailyOrder, error)
	ListOrdersByUser(ctx context.Context, userUID string) ([]*models.DailyOrder, error)
	ListOrdersInRange(ctx context.Context, userUID string, from, to time.Time) ([]*models.DailyOrder, error)
}

// Packages отдаёт активный пакет пользователя.
type Packages interface {
	ActiveForUser(ctx context.Context, userUID string, at time.Time) (*models.Package, error)
}

// Menus отдаёт меню каталога.
type Menus interface {
	GetMenu(ctx context.Context, id int64) (*models.Menu, error)
	MenusForTier(ctx context.Context, tier models.Tier) ([]*models.Menu, error)
}

// Publisher отправляет события о новых заказах.
type Publisher interface {
	PublishOrderScheduled(ctx context.Context, event models.OrderScheduledEvent) error
}

// Invalidator сбрасывает закэшированные календари.
type Invalidator interface {
	InvalidatePattern(ctx context.Context, pattern string) error
}

// OrderService планирует ежедневные заказы пользователя.
type OrderService struct {
	repo      Repository
	packages  Packages
	menus     Menus
	publisher Publisher
	cache     Invalidator
	log       *slog.Logger
	now       func() time.Time
}

// NewOrderService создает новый экземпляр OrderService. publisher и cache могут быть nil.
func NewOrderService(repo Repository, packages Packages, menus Menus, publisher Publisher, cache Invalidator, log *slog.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		packages:  packages,
		menus:     menus,
		publisher: publisher,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

// UpsertOrder записывает заказ на дату req.Date. Существующий заказ на этот день
// перезаписывается на месте, иначе создаётся новый с трек-номером уровня активного пакета.
func (s *OrderService) UpsertOrder(ctx context.Context, email string, req models.OrderRequest) (*models.DailyOrder, error) {
	const op = "orders.UpsertOrder"

	date, err := calendar.Parse(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("date", "date must be in format YYYY-MM-DD"))
	}
	user, pkg, err := s.active(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	snap, err := s.snapshot(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	status := models.OrderStatusSelected
	if req.Status != nil {
		status = *req.Status
	}

	existing, err := s.repo.GetOrderByDate(ctx, user.UUID, date)
	switch {
	case err == nil:
		n, err := s.repo.UpdateOrder(ctx, existing.ID, snap, status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%s: order %d: %w", op, existing.ID, models.ErrNotFound)
		}
		existing.Menu = snap
		existing.Status = status
		s.invalidate(ctx, user.UUID)
		s.log.Info("order overwritten",
			slog.Int64("id", existing.ID),
			slog.String("date", calendar.Key(date)))
		return existing, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	o, err := s.create(ctx, user.UUID, pkg.Tier, date, snap, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.OrdersScheduled.WithLabelValues(metrics.SourceManual).Inc()
	s.invalidate(ctx, user.UUID)
	return o, nil
}

// AutoFill заполняет незанятые дни окна активного пакета меню его уровня.
// Кандидаты перемешиваются один раз за вызов детерминированно по пользователю и пакету,
// день i получает меню i mod n, отличное по названию от меню предыдущего дня, если это возможно.
// Возвращает только созданные заказы.
func (s *OrderService) AutoFill(ctx context.Context, email string) ([]*models.DailyOrder, error) {
	const op = "orders.AutoFill"

	user, pkg, err := s.active(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	candidates, err := s.menus.MenusForTier(ctx, pkg.Tier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %s: %w", op, pkg.Tier, models.ErrNoMenusForTier)
	}
	shuffled := shuffle(candidates, user.UUID, pkg.ID)

	start := calendar.Day(pkg.StartDate)
	existing, err := s.repo.ListOrdersInRange(ctx, user.UUID, start, start.AddDate(0, 0, models.PackageDuration-1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	taken := make(map[string]*models.DailyOrder, len(existing))
	for _, o := range existing {
		taken[calendar.Key(o.Date)] = o
	}

	created := make([]*models.DailyOrder, 0, models.PackageDuration)
	prev := ""
	for i := range models.PackageDuration {
		date := start.AddDate(0, 0, i)
		if o, ok := taken[calendar.Key(date)]; ok {
			prev = o.Menu.Title
			continue
		}

		menu := pick(shuffled, i, prev)
		o, err := s.create(ctx, user.UUID, pkg.Tier, date, menu.Snapshot(), models.OrderStatusAutoFilled)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		created = append(created, o)
		prev = menu.Title
	}

	if len(created) > 0 {
		metrics.OrdersScheduled.WithLabelValues(metrics.SourceAutofill).Add(float64(len(created)))
		s.invalidate(ctx, user.UUID)
	}
	s.log.Info("autofill finished",
		slog.String("user_uid", user.UUID),
		slog.Int64("package_id", pkg.ID),
		slog.Int("created", len(created)))
	return created, nil
}

// pick выбирает меню для дня i. При n > 1 перебирает не более n-1 следующих кандидатов,
// пока название совпадает с предыдущим днём.
func pick(menus []*models.Menu, i int, prev string) *models.Menu {
	n := len(menus)
	m := menus[i%n]
	for k := 1; k < n && m.Title == prev; k++ {
		m = menus[(i+k)%n]
	}
	return m
}

func shuffle(menus []*models.Menu, userUID string, packageID int64) []*models.Menu {
	h := fnv.New64a()
	_, _ = h.Write([]byte(userUID))
	_, _ = h.Write(binary.BigEndian.AppendUint64(nil, uint64(packageID)))
	seed := h.Sum64()

	res := make([]*models.Menu, len(menus))
	copy(res, menus)
	r := rand.New(rand.NewPCG(seed, seed>>1))
	r.Shuffle(len(res), func(i, j int) { res[i], res[j] = res[j], res[i] })
	return res
}

func (s *OrderService) create(ctx context.Context, userUID string, tier models.Tier, date time.Time, snap models.MenuSnapshot, status int) (*models.DailyOrder, error) {
	o := models.DailyOrder{
		UserUID:        userUID,
		Date:           calendar.Day(date),
		Menu:           snap,
		Status:         status,
		TrackingNumber: TrackingNumber(tier),
	}
	id, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = id

	if s.publisher != nil {
		err = s.publisher.PublishOrderScheduled(ctx, models.OrderScheduledEvent{
			TrackingNumber: o.TrackingNumber,
			UserUID:        userUID,
			Date:           o.Date,
			Status:         status,
		})
		if err != nil {
			s.log.Warn("failed to publish order event",
				slog.String("tracking_number", o.TrackingNumber), sl.Err(err))
		}
	}
	return &o, nil
}

// TrackingNumber генерирует трек-номер вида <префикс уровня>-<uuid>.
func TrackingNumber(tier models.Tier) string {
	return tier.Prefix() + "-" + uuid.NewString()
}

func (s *OrderService) snapshot(ctx context.Context, req models.OrderRequest) (models.MenuSnapshot, error) {
	if req.MenuID > 0 {
		m, err := s.menus.GetMenu(ctx, req.MenuID)
		if err != nil {
			return models.MenuSnapshot{}, err
		}
		return m.Snapshot(), nil
	}
	if req.Title == "" {
		return models.MenuSnapshot{}, models.NewValidationError("menu_title", "menu_title or menu_id is required")
	}
	return models.MenuSnapshot{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Ingredients: req.Ingredients,
	}, nil
}

func (s *OrderService) active(ctx context.Context, email string) (*models.User, *models.Package, error) {
	user, err := s.user(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	pkg, err := s.packages.ActiveForUser(ctx, user.UUID, s.now())
	if err != nil {
		return nil, nil, err
	}
	return user, pkg, nil
}

func (s *OrderService) invalidate(ctx context.Context, userUID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePattern(ctx, cache.CalendarPattern(userUID)); err != nil {
		s.log.Warn("failed to invalidate calendar cache", slog.String("user_uid", userUID), sl.Err(err))
	}
}

// ListOrders возвращает заказы пользователя по возрастанию даты.
func (s *OrderService) ListOrders(ctx context.Context, email string) ([]*models.DailyOrder, error) {
	const op = "orders.ListOrders"

	user, err := s.user(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.repo.ListOrdersByUser(ctx, user.UUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetByTrackingNumber возвращает заказ по трек-номеру.
func (s *OrderService) GetByTrackingNumber(ctx context.Context, tracking string) (*models.DailyOrder, error) {
	const op = "orders.GetByTrackingNumber"
	o, err := s.repo.GetOrderByTrackingNumber(ctx, tracking)
	if err != nil {
		return nil, fmt.Errorf("%s: tracking %q: %w", op, tracking, err)
	}
	return o, nil
}

func (s *OrderService) user(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUserNotFound
	}
	return u, err
}
