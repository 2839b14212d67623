package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/cache"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/logger"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenCache — бэкенд кэша, у которого любая операция завершается ошибкой
type brokenCache struct{}

func (b *brokenCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("cache backend down")
}

func (b *brokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache backend down")
}

func (b *brokenCache) Delete(ctx context.Context, key string) error {
	return errors.New("cache backend down")
}

func (b *brokenCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	return 0, errors.New("cache backend down")
}

func (b *brokenCache) Ping(ctx context.Context) error {
	return errors.New("cache backend down")
}

func (b *brokenCache) Close() error { return nil }

func TestGetOrCompute_ComputesOnceWithinTTL(t *testing.T) {
	facade := NewCacheFacade(cache.NewMemoryCache(time.Minute), logger.NewNopLogger())
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]string{"name": "widget"}, nil
	}

	var first map[string]string
	require.NoError(t, facade.GetOrCompute(ctx, "products:1", time.Minute, &first, compute))
	assert.Equal(t, "widget", first["name"])

	var second map[string]string
	require.NoError(t, facade.GetOrCompute(ctx, "products:1", time.Minute, &second, compute))
	assert.Equal(t, "widget", second["name"])

	assert.Equal(t, 1, calls, "повторный вызов в пределах TTL должен обслуживаться из кэша")
}

func TestGetOrCompute_RecomputesAfterExpiry(t *testing.T) {
	facade := NewCacheFacade(cache.NewMemoryCache(10*time.Millisecond), logger.NewNopLogger())
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	var value int
	require.NoError(t, facade.GetOrCompute(ctx, "counter", 20*time.Millisecond, &value, compute))
	assert.Equal(t, 1, value)

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, facade.GetOrCompute(ctx, "counter", 20*time.Millisecond, &value, compute))
	assert.Equal(t, 2, value)
	assert.Equal(t, 2, calls)
}

func TestGetOrCompute_BrokenBackendDegradesToCompute(t *testing.T) {
	facade := NewCacheFacade(&brokenCache{}, logger.NewNopLogger())
	ctx := context.Background()

	calls := 0
	var value string
	err := facade.GetOrCompute(ctx, "key", time.Minute, &value, func(ctx context.Context) (interface{}, error) {
		calls++
		return "computed", nil
	})

	require.NoError(t, err, "недоступность кэша не должна приводить к ошибке")
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls)
}

func TestGetOrCompute_ComputeErrorIsReturned(t *testing.T) {
	facade := NewCacheFacade(cache.NewMemoryCache(time.Minute), logger.NewNopLogger())
	ctx := context.Background()

	wantErr := errors.New("upstream failed")
	var value string
	err := facade.GetOrCompute(ctx, "key", time.Minute, &value, func(ctx context.Context) (interface{}, error) {
		return nil, wantErr
	})

	assert.ErrorIs(t, err, wantErr)
}

func TestGetOrCompute_UnserializableValueDegradesToCompute(t *testing.T) {
	backend := cache.NewMemoryCache(time.Minute)
	facade := NewCacheFacade(backend, logger.NewNopLogger())
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]interface{}{"ch": make(chan int)}, nil
	}

	// Значение не сериализуется в JSON: вычисленный результат все равно
	// отдается вызывающему, в кэш ничего не пишется
	var value map[string]interface{}
	require.NoError(t, facade.GetOrCompute(ctx, "key", time.Minute, &value, compute))
	assert.NotNil(t, value["ch"])

	_, err := backend.Get(ctx, "key")
	assert.ErrorIs(t, err, pkgerrors.ErrCacheMiss)

	require.NoError(t, facade.GetOrCompute(ctx, "key", time.Minute, &value, compute))
	assert.Equal(t, 2, calls)
}

func TestGetOrCompute_CorruptEntryTreatedAsMiss(t *testing.T) {
	backend := cache.NewMemoryCache(time.Minute)
	facade := NewCacheFacade(backend, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "key", []byte("{not json"), time.Minute))

	calls := 0
	var value map[string]int
	err := facade.GetOrCompute(ctx, "key", time.Minute, &value, func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"n": 7}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "некорректная запись должна трактоваться как промах")
	assert.Equal(t, 7, value["n"])
}

func TestInvalidatePattern_ReturnsDeletedCount(t *testing.T) {
	backend := cache.NewMemoryCache(time.Minute)
	facade := NewCacheFacade(backend, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "integrations:v1", []byte("a"), time.Minute))
	require.NoError(t, backend.Set(ctx, "integrations:v2", []byte("b"), time.Minute))
	require.NoError(t, backend.Set(ctx, "products:1", []byte("c"), time.Minute))

	deleted := facade.InvalidatePattern(ctx, "integrations:*")
	assert.Equal(t, 2, deleted)

	_, err := backend.Get(ctx, "integrations:v1")
	assert.ErrorIs(t, err, pkgerrors.ErrCacheMiss)

	_, err = backend.Get(ctx, "products:1")
	assert.NoError(t, err)
}

func TestHealthCheck(t *testing.T) {
	healthy := NewCacheFacade(cache.NewMemoryCache(time.Minute), logger.NewNopLogger())
	assert.True(t, healthy.HealthCheck(context.Background()))

	broken := NewCacheFacade(&brokenCache{}, logger.NewNopLogger())
	assert.False(t, broken.HealthCheck(context.Background()))
}
