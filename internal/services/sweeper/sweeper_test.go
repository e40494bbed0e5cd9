package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/meal-subscription/internal/metrics"
)

type MockRepository struct {
	mock.Mock
	mu    sync.Mutex
	calls int
}

func (m *MockRepository) DeleteExpiredPackages(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeperService_SweepExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		deleted   int64
		repoErr   error
		want      int64
		wantErr   bool
		wantDelta float64
	}{
		{name: "packages removed", deleted: 3, want: 3, wantDelta: 3},
		{name: "nothing expired", deleted: 0, want: 0},
		{name: "storage error", repoErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("DeleteExpiredPackages", mock.Anything, now).Return(tt.deleted, tt.repoErr)

			before := testutil.ToFloat64(metrics.PackagesExpired)
			got, err := NewSweeperService(repo, newNoopLogger()).SweepExpired(context.Background(), now)
			if tt.wantErr {
				assert.ErrorContains(t, err, "db down")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDelta, testutil.ToFloat64(metrics.PackagesExpired)-before)
		})
	}
}

func TestSweeperService_RunStopsOnCancel(t *testing.T) {
	repo := new(MockRepository)
	repo.On("DeleteExpiredPackages", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	svc := NewSweeperService(repo, newNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return repo.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
