package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/meal-subscription/internal/lib/calendar"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

const packageColumns = `id, user_uid, tier, price, features, start_date`

func scanPackage(row rowScanner) (*models.Package, error) {
	p := &models.Package{}
	var tier int
	if err := row.Scan(&p.ID, &p.UserUID, &tier, &p.Price, &p.Features, &p.StartDate); err != nil {
		return nil, err
	}
	p.Tier = models.Tier(tier)
	p.StartDate = calendar.Day(p.StartDate)
	return p, nil
}

// CreatePackage сохраняет пакет и возвращает его ID.
func (s *Storage) CreatePackage(ctx context.Context, p models.Package) (int64, error) {
	const op = "storage.CreatePackage"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO packages (user_uid, tier, price, features, start_date)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		p.UserUID, int(p.Tier), p.Price, p.Features, calendar.Day(p.StartDate)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListPackagesByUser возвращает пакеты пользователя в порядке добавления.
func (s *Storage) ListPackagesByUser(ctx context.Context, userUID string) ([]*models.Package, error) {
	const op = "storage.ListPackagesByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryPackages(ctx, op,
		`SELECT `+packageColumns+` FROM packages WHERE user_uid = $1 ORDER BY id`, userUID)
}

// ListAllPackages возвращает пакеты всех пользователей.
func (s *Storage) ListAllPackages(ctx context.Context) ([]*models.Package, error) {
	const op = "storage.ListAllPackages"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryPackages(ctx, op, `SELECT `+packageColumns+` FROM packages ORDER BY id`)
}

func (s *Storage) queryPackages(ctx context.Context, op, query string, args ...any) ([]*models.Package, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	res := make([]*models.Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeletePackage удаляет пакет пользователя и возвращает количество удалённых строк.
// Заказы пользователя при этом не затрагиваются.
func (s *Storage) DeletePackage(ctx context.Context, id int64, userUID string) (int64, error) {
	const op = "storage.DeletePackage"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM packages WHERE id = $1 AND user_uid = $2`, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// DeleteExpiredPackages удаляет пакеты, у которых start_date + 30 дней не позже now.
func (s *Storage) DeleteExpiredPackages(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.DeleteExpiredPackages"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM packages WHERE start_date + $1::int <= $2::date`,
		models.PackageDuration, calendar.Day(now))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
