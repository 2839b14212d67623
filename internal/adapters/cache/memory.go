package cache

import (
	"context"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

// MemoryCache — in-memory реализация CachePort поверх go-cache.
// Используется в разработке и тестах, когда Redis недоступен;
// выбирается конфигурацией (cache.backend = "memory").
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache создает in-memory кэш с указанным интервалом очистки
// просроченных записей
func NewMemoryCache(cleanupInterval time.Duration) interfaces.CachePort {
	return &MemoryCache{
		store: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := m.store.Get(key)
	if !ok {
		return nil, errors.ErrCacheMiss
	}
	data, ok := val.([]byte)
	if !ok {
		// Запись неожиданного типа считается отсутствующей
		return nil, errors.ErrCacheMiss
	}
	return data, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	m.store.Set(key, value, expiration)
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// DeleteByPattern удаляет все ключи, соответствующие glob-шаблону
func (m *MemoryCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	for key := range m.store.Items() {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return deleted, err
		}
		if matched {
			m.store.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryCache) Close() error {
	m.store.Flush()
	return nil
}
