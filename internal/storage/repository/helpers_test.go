package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/meal-subscription/internal/migrations"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB, mustAbs(t, "../../../migrations")))
	return storage
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}

// testDataFactory создаёт тестовые данные напрямую через Storage.
type testDataFactory struct {
	storage *Storage
}

func newTestDataFactory(storage *Storage) *testDataFactory {
	return &testDataFactory{storage: storage}
}

func (f *testDataFactory) createUser(t *testing.T, email, role string) string {
	t.Helper()
	uid, err := f.storage.CreateUser(context.Background(), models.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		Firstname:    "Juan",
		Lastname:     "Cruz",
		AddressName:  "Home",
		City:         "Manila",
	})
	require.NoError(t, err)
	return uid
}

func (f *testDataFactory) createIngredient(t *testing.T, name string, price float64) int64 {
	t.Helper()
	id, err := f.storage.CreateIngredient(context.Background(), models.Ingredient{Name: name, Unit: "g", PricePerUnit: price})
	require.NoError(t, err)
	return id
}

func (f *testDataFactory) createPackage(t *testing.T, userUID string, tier models.Tier, start time.Time) int64 {
	t.Helper()
	id, err := f.storage.CreatePackage(context.Background(), models.Package{
		UserUID: userUID, Tier: tier, Price: 100, Features: "daily meals", StartDate: start,
	})
	require.NoError(t, err)
	return id
}

func (f *testDataFactory) createOrder(t *testing.T, userUID string, date time.Time, title, tracking string) int64 {
	t.Helper()
	id, err := f.storage.CreateOrder(context.Background(), models.DailyOrder{
		UserUID: userUID, Date: date, Status: models.OrderStatusSelected, TrackingNumber: tracking,
		Menu: models.MenuSnapshot{Title: title},
	})
	require.NoError(t, err)
	return id
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
