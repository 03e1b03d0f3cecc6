package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	repo "github.com/daniellescalera/user-management/internal/domain/repository"
	"github.com/daniellescalera/user-management/internal/infrastructure/memory"
	"github.com/daniellescalera/user-management/internal/mock"
)

// fakeRedis implements the Get/Set subset of redis.Cmdable used by the cache.
type fakeRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestRetentionRate(t *testing.T) {
	tests := []struct {
		total, returning int
		want             float64
	}{
		{0, 0, 0},
		{3, 1, 33.33},
		{3, 2, 66.67},
		{4, 4, 100},
		{7, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RetentionRate(tt.total, tt.returning), "%d/%d", tt.returning, tt.total)
	}
}

func TestRetention_FromRepository(t *testing.T) {
	r := memory.NewUserRepository()
	ctx := context.Background()
	svc := NewAnalyticsService(r, nil, 0, nil)

	got, err := svc.Retention(ctx)
	require.NoError(t, err)
	assert.Equal(t, Retention{}, got)

	f := newFixture(t)
	f.verified(t, "a@example.com", "AUTHENTICATED")
	_, err = f.svc.Register(ctx, RegisterInput{Email: "b@example.com", Password: "pw"})
	require.NoError(t, err)

	got, err = NewAnalyticsService(f.repo, nil, 0, nil).Retention(ctx)
	require.NoError(t, err)
	assert.Equal(t, Retention{TotalSignups: 2, ReturningUsers: 1, RetentionRate: 50}, got)
}

func TestRetention_UsesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	users.EXPECT().CountRetention(gomock.Any()).Return(repo.RetentionCounts{Total: 3, Returning: 1}, nil).Times(1)

	rdb := newFakeRedis()
	svc := NewAnalyticsService(users, rdb, time.Minute, nil)
	ctx := context.Background()

	first, err := svc.Retention(ctx)
	require.NoError(t, err)
	second, err := svc.Retention(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 33.33, second.RetentionRate, 0.001)
	assert.Equal(t, time.Minute, rdb.ttls[retentionCacheKey])
}

func TestRetention_ZeroTTLDisablesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	users.EXPECT().CountRetention(gomock.Any()).Return(repo.RetentionCounts{}, nil).Times(2)

	rdb := newFakeRedis()
	svc := NewAnalyticsService(users, rdb, 0, nil)
	_, _ = svc.Retention(context.Background())
	_, _ = svc.Retention(context.Background())
	assert.Empty(t, rdb.data)
}

func TestRetention_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	users.EXPECT().CountRetention(gomock.Any()).Return(repo.RetentionCounts{}, errors.New("db down"))

	_, err := NewAnalyticsService(users, nil, 0, nil).Retention(context.Background())
	assert.Error(t, err)
}
