// Package services содержит жизненный цикл пакетов подписки:
// 30-дневное окно действия и строго возрастающую иерархию уровней.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/meal-subscription/internal/lib/calendar"
	"github.com/magabrotheeeer/meal-subscription/internal/metrics"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// Repository определяет методы хранилища, нужные для работы с пакетами.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreatePackage(ctx context.Context, p models.Package) (int64, error)
	ListPackagesByUser(ctx context.Context, userUID string) ([]*models.Package, error)
	ListAllPackages(ctx context.Context) ([]*models.Package, error)
	DeletePackage(ctx context.Context, id int64, userUID string) (int64, error)
}

// PackageService реализует добавление, поиск активного и удаление пакетов.
type PackageService struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewPackageService создает новый экземпляр PackageService.
func NewPackageService(repo Repository, log *slog.Logger) *PackageService {
	return &PackageService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// ComputeEndDate возвращает дату окончания пакета: start + 30 календарных дней.
func ComputeEndDate(start time.Time) time.Time {
	p := models.Package{StartDate: start}
	return p.EndDate()
}

// AddPackage добавляет пользователю пакет уровня req.Tier.
//
// Если такой уровень уже есть, возвращается существующий пакет и признак alreadySubscribed.
// Новый уровень должен быть строго выше всех имеющихся. Первый пакет начинается
// с запрошенной даты (или сегодня), каждый следующий через 31 день после
// начала самого позднего из имеющихся.
func (s *PackageService) AddPackage(ctx context.Context, email string, req models.PackageRequest) (*models.Package, bool, error) {
	const op = "packages.AddPackage"

	tier, err := models.ParseTier(req.Tier)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.user(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	held, err := s.repo.ListPackagesByUser(ctx, user.UUID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range held {
		if p.Tier == tier {
			return p, true, nil
		}
	}

	var start time.Time
	if len(held) == 0 {
		start, err = s.requestedStart(req.StartDate)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		highest, latest := held[0].Tier.Rank(), held[0].StartDate
		for _, p := range held[1:] {
			highest = max(highest, p.Tier.Rank())
			if p.StartDate.After(latest) {
				latest = p.StartDate
			}
		}
		if tier.Rank() <= highest {
			return nil, false, fmt.Errorf("%s: %w", op, models.ErrInvalidTierTransition)
		}
		start = latest.AddDate(0, 0, models.PackageDuration+1)
	}

	p := models.Package{
		UserUID:   user.UUID,
		Tier:      tier,
		Price:     req.Price,
		Features:  req.Features,
		StartDate: calendar.Day(start),
	}
	p.ID, err = s.repo.CreatePackage(ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PackagesCreated.WithLabelValues(tier.String()).Inc()

	s.log.Info("package added",
		slog.Int64("id", p.ID),
		slog.String("tier", tier.String()),
		slog.String("start", calendar.Key(p.StartDate)))
	return &p, false, nil
}

func (s *PackageService) requestedStart(raw string) (time.Time, error) {
	if raw == "" {
		return calendar.Day(s.now()), nil
	}
	start, err := calendar.Parse(raw)
	if err != nil {
		return time.Time{}, models.NewValidationError("package_start_date", "date must be in format YYYY-MM-DD")
	}
	return start, nil
}

// GetActivePackage возвращает первый пакет, окно которого [start, start+30d] содержит день at.
func (s *PackageService) GetActivePackage(ctx context.Context, email string, at time.Time) (*models.Package, error) {
	const op = "packages.GetActivePackage"

	user, err := s.user(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := s.ActiveForUser(ctx, user.UUID, at)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ActiveForUser ищет активный пакет по UID пользователя.
func (s *PackageService) ActiveForUser(ctx context.Context, userUID string, at time.Time) (*models.Package, error) {
	held, err := s.repo.ListPackagesByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	for _, p := range held {
		if calendar.Within(at, p.StartDate, p.EndDate()) {
			return p, nil
		}
	}
	return nil, models.ErrNoActivePackage
}

// ListPackages возвращает пакеты пользователя в порядке добавления.
func (s *PackageService) ListPackages(ctx context.Context, email string) ([]*models.Package, error) {
	const op = "packages.ListPackages"

	user, err := s.user(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.repo.ListPackagesByUser(ctx, user.UUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListAll возвращает пакеты всех пользователей.
func (s *PackageService) ListAll(ctx context.Context) ([]*models.Package, error) {
	const op = "packages.ListAll"

	res, err := s.repo.ListAllPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeletePackage удаляет пакет пользователя. Заказы остаются нетронутыми.
func (s *PackageService) DeletePackage(ctx context.Context, email string, id int64) error {
	const op = "packages.DeletePackage"

	user, err := s.user(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := s.repo.DeletePackage(ctx, id, user.UUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: package %d: %w", op, id, models.ErrNotFound)
	}
	s.log.Info("package deleted", slog.Int64("id", id))
	return nil
}

func (s *PackageService) user(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUserNotFound
	}
	return u, err
}
