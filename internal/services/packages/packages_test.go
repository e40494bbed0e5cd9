package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) CreatePackage(ctx context.Context, p models.Package) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ListPackagesByUser(ctx context.Context, userUID string) ([]*models.Package, error) {
	args := m.Called(ctx, userUID)
	if fn, ok := args.Get(0).(func(context.Context, string) []*models.Package); ok {
		return fn(ctx, userUID), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Package), args.Error(1)
}

func (m *RepoMock) ListAllPackages(ctx context.Context) ([]*models.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Package), args.Error(1)
}

func (m *RepoMock) DeletePackage(ctx context.Context, id int64, userUID string) (int64, error) {
	args := m.Called(ctx, id, userUID)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var testUser = &models.User{UUID: "user-1", Email: "user@example.com", Role: models.RoleCustomer}

func newService(repo *RepoMock) *PackageService {
	s := NewPackageService(repo, newNoopLogger())
	s.now = func() time.Time { return time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC) }
	return s
}

func TestComputeEndDate(t *testing.T) {
	tests := []struct {
		start time.Time
		want  time.Time
	}{
		{day(2024, 1, 1), day(2024, 1, 31)},
		{day(2024, 2, 1), day(2024, 3, 2)},
		{day(2023, 12, 15), day(2024, 1, 14)},
		{time.Date(2024, 2, 20, 13, 0, 0, 0, time.UTC), time.Date(2024, 3, 21, 13, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.start.Format(time.RFC3339), func(t *testing.T) {
			got := ComputeEndDate(tt.start)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 30*24*time.Hour, got.Sub(tt.start))
		})
	}
}

func TestPackageService_AddPackage(t *testing.T) {
	tests := []struct {
		name        string
		req         models.PackageRequest
		held        []*models.Package
		wantCreate  *models.Package
		wantAlready bool
		wantErr     error
	}{
		{
			name:       "first package starts at requested date",
			req:        models.PackageRequest{Tier: "Basic", Price: 100, Features: "lunch", StartDate: "2024-01-01"},
			held:       []*models.Package{},
			wantCreate: &models.Package{UserUID: "user-1", Tier: models.TierBasic, Price: 100, Features: "lunch", StartDate: day(2024, 1, 1)},
		},
		{
			name:       "first package without date starts today",
			req:        models.PackageRequest{Tier: "premium", Features: "all"},
			held:       []*models.Package{},
			wantCreate: &models.Package{UserUID: "user-1", Tier: models.TierPremium, Features: "all", StartDate: day(2024, 1, 1)},
		},
		{
			name: "sequential package starts 31 days after latest start",
			req:  models.PackageRequest{Tier: "Deluxe", Price: 200, Features: "dinner", StartDate: "2030-01-01"},
			held: []*models.Package{
				{ID: 1, UserUID: "user-1", Tier: models.TierBasic, StartDate: day(2024, 1, 1)},
			},
			wantCreate: &models.Package{UserUID: "user-1", Tier: models.TierDeluxe, Price: 200, Features: "dinner", StartDate: day(2024, 2, 1)},
		},
		{
			name: "already subscribed tier is a no-op",
			req:  models.PackageRequest{Tier: "Basic", Features: "lunch"},
			held: []*models.Package{
				{ID: 1, UserUID: "user-1", Tier: models.TierBasic, StartDate: day(2024, 1, 1)},
				{ID: 2, UserUID: "user-1", Tier: models.TierDeluxe, StartDate: day(2024, 2, 1)},
			},
			wantAlready: true,
		},
		{
			name: "lower tier than highest held is rejected",
			req:  models.PackageRequest{Tier: "Basic", Features: "lunch"},
			held: []*models.Package{
				{ID: 2, UserUID: "user-1", Tier: models.TierDeluxe, StartDate: day(2024, 2, 1)},
			},
			wantErr: models.ErrInvalidTierTransition,
		},
		{
			name: "middle tier below premium is rejected",
			req:  models.PackageRequest{Tier: "Deluxe", Features: "x"},
			held: []*models.Package{
				{ID: 1, UserUID: "user-1", Tier: models.TierBasic, StartDate: day(2024, 1, 1)},
				{ID: 3, UserUID: "user-1", Tier: models.TierPremium, StartDate: day(2024, 2, 1)},
			},
			wantErr: models.ErrInvalidTierTransition,
		},
		{
			name:    "unknown tier",
			req:     models.PackageRequest{Tier: "Gold", Features: "x"},
			wantErr: models.ErrValidation,
		},
		{
			name:    "malformed start date",
			req:     models.PackageRequest{Tier: "Basic", Features: "x", StartDate: "01-01-2024"},
			held:    []*models.Package{},
			wantErr: models.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := newService(repo)

			if tt.held != nil {
				repo.On("GetUserByEmail", mock.Anything, testUser.Email).Return(testUser, nil).Once()
				repo.On("ListPackagesByUser", mock.Anything, testUser.UUID).Return(tt.held, nil).Once()
			}
			if tt.wantCreate != nil {
				repo.On("CreatePackage", mock.Anything, *tt.wantCreate).Return(int64(10), nil).Once()
			}

			got, already, err := svc.AddPackage(context.Background(), testUser.Email, tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				repo.AssertNotCalled(t, "CreatePackage", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlready, already)
			if tt.wantAlready {
				assert.Equal(t, tt.req.Tier, got.Tier.String())
			} else {
				assert.Equal(t, int64(10), got.ID)
				assert.Equal(t, tt.wantCreate.StartDate, got.StartDate)
			}
			repo.AssertExpectations(t)
		})
	}
}

// Basic(2024-01-01) заканчивается 2024-01-31, Deluxe начинается 2024-02-01,
// а Basic после ухода из списка пакетов уже ниже Deluxe и отклоняется.
func TestPackageService_TierLifecycleScenario(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo)
	ctx := context.Background()

	var held []*models.Package
	repo.On("GetUserByEmail", mock.Anything, testUser.Email).Return(testUser, nil)
	repo.On("ListPackagesByUser", mock.Anything, testUser.UUID).Return(func(context.Context, string) []*models.Package {
		return held
	}, nil)
	repo.On("CreatePackage", mock.Anything, mock.AnythingOfType("models.Package")).Return(int64(1), nil).Run(func(args mock.Arguments) {
		p := args.Get(1).(models.Package)
		held = append(held, &p)
	})

	basic, _, err := svc.AddPackage(ctx, testUser.Email, models.PackageRequest{Tier: "Basic", Features: "f", StartDate: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 31), basic.EndDate())

	deluxe, _, err := svc.AddPackage(ctx, testUser.Email, models.PackageRequest{Tier: "Deluxe", Features: "f"})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 1), deluxe.StartDate)

	_, already, err := svc.AddPackage(ctx, testUser.Email, models.PackageRequest{Tier: "Basic", Features: "f"})
	require.NoError(t, err)
	assert.True(t, already, "Basic is still held, so the call is idempotent")

	held = held[1:]
	_, _, err = svc.AddPackage(ctx, testUser.Email, models.PackageRequest{Tier: "Basic", Features: "f"})
	assert.ErrorIs(t, err, models.ErrInvalidTierTransition)
}

func TestPackageService_GetActivePackage(t *testing.T) {
	held := []*models.Package{
		{ID: 1, UserUID: "user-1", Tier: models.TierBasic, StartDate: day(2024, 1, 1)},
		{ID: 2, UserUID: "user-1", Tier: models.TierDeluxe, StartDate: day(2024, 2, 1)},
	}
	tests := []struct {
		name   string
		at     time.Time
		wantID int64
	}{
		{name: "start day", at: day(2024, 1, 1), wantID: 1},
		{name: "end day is inclusive", at: time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC), wantID: 1},
		{name: "second package", at: day(2024, 2, 15), wantID: 2},
		{name: "before any package", at: day(2023, 12, 31)},
		{name: "after all packages", at: day(2024, 3, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetUserByEmail", mock.Anything, testUser.Email).Return(testUser, nil)
			repo.On("ListPackagesByUser", mock.Anything, testUser.UUID).Return(held, nil)

			got, err := newService(repo).GetActivePackage(context.Background(), testUser.Email, tt.at)
			if tt.wantID == 0 {
				assert.ErrorIs(t, err, models.ErrNoActivePackage)
				assert.ErrorIs(t, err, models.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestPackageService_ActiveForUser_EndDay(t *testing.T) {
	basic := &models.Package{ID: 1, UserUID: testUser.UUID, Tier: models.TierBasic, StartDate: day(2024, 1, 1)}

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{name: "start day", at: day(2024, 1, 1)},
		{name: "end day is still active", at: time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)},
		{name: "day after end", at: day(2024, 2, 1), wantErr: models.ErrNoActivePackage},
		{name: "before start", at: day(2023, 12, 31), wantErr: models.ErrNoActivePackage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("ListPackagesByUser", mock.Anything, testUser.UUID).Return([]*models.Package{basic}, nil)

			got, err := newService(repo).ActiveForUser(context.Background(), testUser.UUID, tt.at)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, basic.ID, got.ID)
		})
	}
}

func TestPackageService_UnknownUser(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, models.ErrNotFound)

	_, err := newService(repo).ListPackages(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestPackageService_DeletePackage(t *testing.T) {
	tests := []struct {
		name    string
		deleted int64
		repoErr error
		wantErr error
	}{
		{name: "deleted", deleted: 1},
		{name: "not owned or absent", deleted: 0, wantErr: models.ErrNotFound},
		{name: "storage error", repoErr: errors.New("db down"), wantErr: errors.New("db down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetUserByEmail", mock.Anything, testUser.Email).Return(testUser, nil)
			repo.On("DeletePackage", mock.Anything, int64(5), testUser.UUID).Return(tt.deleted, tt.repoErr)

			err := newService(repo).DeletePackage(context.Background(), testUser.Email, 5)
			switch {
			case tt.wantErr == nil:
				assert.NoError(t, err)
			case errors.Is(tt.wantErr, models.ErrNotFound):
				assert.ErrorIs(t, err, models.ErrNotFound)
			default:
				assert.ErrorContains(t, err, tt.wantErr.Error())
			}
		})
	}
}

func TestPackageService_ListAll(t *testing.T) {
	repo := new(RepoMock)
	all := []*models.Package{{ID: 1}, {ID: 2}}
	repo.On("ListAllPackages", mock.Anything).Return(all, nil)

	got, err := newService(repo).ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all, got)
}
