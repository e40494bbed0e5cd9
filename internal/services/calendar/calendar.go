// Package services строит годовую проекцию заказов пользователя для календаря.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/meal-subscription/internal/cache"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/calendar"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// DefaultYear используется, если год не указан в запросе.
const DefaultYear = 2024

// Repository определяет методы хранилища, нужные для проекции.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListOrdersInRange(ctx context.Context, userUID string, from, to time.Time) ([]*models.DailyOrder, error)
}

// Cache хранит готовые проекции.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CalendarService строит календарь заказов.
type CalendarService struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCalendarService создает новый экземпляр CalendarService. cache может быть nil.
func NewCalendarService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *CalendarService {
	return &CalendarService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// ProjectYear возвращает 12 месяцев года year; для каждого дня снимок меню и статус заказа,
// либо пустой снимок и статус 0, если заказа нет.
func (s *CalendarService) ProjectYear(ctx context.Context, email string, year int) (*models.Calendar, error) {
	const op = "calendar.ProjectYear"

	if year == 0 {
		year = DefaultYear
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := cache.CalendarKey(user.UUID, year)
	if s.cache != nil {
		var cached models.Calendar
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("calendar cache read failed", slog.String("key", key), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	orders, err := s.repo.ListOrdersInRange(ctx, user.UUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res := Project(year, orders)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res, s.ttl); err != nil {
			s.log.Warn("calendar cache write failed", slog.String("key", key), sl.Err(err))
		}
	}
	return res, nil
}

// Project раскладывает заказы по сетке года. Учитываются заказы внутри года со статусом >= 0.
func Project(year int, orders []*models.DailyOrder) *models.Calendar {
	byDay := make(map[string]*models.DailyOrder, len(orders))
	for _, o := range orders {
		if o.Date.Year() != year || o.Status < 0 {
			continue
		}
		k := calendar.Key(o.Date)
		if _, ok := byDay[k]; !ok {
			byDay[k] = o
		}
	}

	res := &models.Calendar{Year: year, Months: make(map[int][]models.CalendarDay, 12)}
	for m := time.January; m <= time.December; m++ {
		n := calendar.DaysIn(year, m)
		days := make([]models.CalendarDay, 0, n)
		for d := 1; d <= n; d++ {
			cell := models.CalendarDay{Day: d}
			if o, ok := byDay[calendar.Key(time.Date(year, m, d, 0, 0, 0, 0, time.UTC))]; ok {
				cell.Detail = o.Menu
				cell.Status = o.Status
			}
			days = append(days, cell)
		}
		res.Months[int(m)-1] = days
	}
	return res
}
