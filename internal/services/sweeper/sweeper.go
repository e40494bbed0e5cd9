// Package services содержит периодическую очистку пакетов с истёкшим окном действия.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
	"github.com/magabrotheeeer/meal-subscription/internal/metrics"
)

// PackageRepository удаляет пакеты, окно которых закончилось к моменту now.
type PackageRepository interface {
	DeleteExpiredPackages(ctx context.Context, now time.Time) (int64, error)
}

// SweeperService удаляет истёкшие пакеты.
type SweeperService struct {
	repo PackageRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewSweeperService создает новый экземпляр SweeperService.
func NewSweeperService(repo PackageRepository, log *slog.Logger) *SweeperService {
	return &SweeperService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// SweepExpired удаляет пакеты с start + 30 дней <= now и возвращает их количество.
// Заказы удалённых пакетов сохраняются.
func (s *SweeperService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "sweeper.SweepExpired"

	n, err := s.repo.DeleteExpiredPackages(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		s.log.Info("no expired packages found")
		return 0, nil
	}
	metrics.PackagesExpired.Add(float64(n))
	s.log.Info("expired packages deleted", slog.Int64("count", n))
	return n, nil
}

// Run выполняет очистку сразу и затем каждые interval до отмены ctx.
// Ошибки логируются, повтор происходит на следующем тике.
func (s *SweeperService) Run(ctx context.Context, interval time.Duration) {
	s.runSweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *SweeperService) runSweep(ctx context.Context) {
	s.log.Info("starting expired packages sweep")
	if _, err := s.SweepExpired(ctx, s.now()); err != nil {
		s.log.Error("failed to sweep expired packages", sl.Err(err))
	}
}
