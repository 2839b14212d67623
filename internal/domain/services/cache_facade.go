package services

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

// CacheFacade — сквозной (read-through) кэш поверх CachePort.
// Кэш — разделяемый best-effort ускоритель: его недоступность никогда
// не меняет корректность, только задержку. Любая ошибка бэкенда кэша
// логируется и гасится, вызов вырождается в прямое вычисление.
type CacheFacade struct {
	cache  interfaces.CachePort
	logger interfaces.LoggerPort
}

// NewCacheFacade создает новый фасад кэша
func NewCacheFacade(cache interfaces.CachePort, logger interfaces.LoggerPort) *CacheFacade {
	return &CacheFacade{
		cache:  cache,
		logger: logger,
	}
}

// GetOrCompute проверяет кэш по ключу; при попадании десериализует значение
// в out. При промахе (включая ошибку десериализации — она считается промахом,
// а не ошибкой) вызывает compute и best-effort записывает результат с TTL.
// Гарантия: compute вызывается не более одного раза на вызов GetOrCompute,
// и его ошибка — единственная, которая может быть возвращена.
func (f *CacheFacade) GetOrCompute(ctx context.Context, key string, ttl time.Duration,
	out interface{}, compute func(ctx context.Context) (interface{}, error)) error {

	cached, err := f.cache.Get(ctx, key)
	if err == nil {
		if unmarshalErr := json.Unmarshal(cached, out); unmarshalErr == nil {
			return nil
		}
		// Некорректная запись трактуется как промах
		f.logger.WarnWithContext(ctx, "Некорректное значение в кэше, пересчитываем",
			interfaces.LogField{Key: "key", Value: key})
	} else if err != errors.ErrCacheMiss {
		f.logger.WarnWithContext(ctx, "Ошибка чтения из кэша",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}

	value, err := compute(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		// Несериализуемое значение — проблема кэша, не вычисления:
		// результат compute возвращается напрямую, запись пропускается
		f.logger.WarnWithContext(ctx, "Ошибка сериализации значения для кэша",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()})
		return assignValue(value, out)
	}

	if setErr := f.cache.Set(ctx, key, data, ttl); setErr != nil {
		f.logger.WarnWithContext(ctx, "Ошибка записи в кэш",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: setErr.Error()})
	}

	return json.Unmarshal(data, out)
}

// assignValue копирует вычисленное значение в out напрямую, минуя JSON
func assignValue(value, out interface{}) error {
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Ptr || dst.IsNil() {
		return fmt.Errorf("cache: out must be a non-nil pointer, got %T", out)
	}

	src := reflect.ValueOf(value)
	if !src.IsValid() {
		return fmt.Errorf("cache: cannot assign nil value to %T", out)
	}
	if src.Type().AssignableTo(dst.Elem().Type()) {
		dst.Elem().Set(src)
		return nil
	}
	if src.Kind() == reflect.Ptr && !src.IsNil() && src.Elem().Type().AssignableTo(dst.Elem().Type()) {
		dst.Elem().Set(src.Elem())
		return nil
	}
	return fmt.Errorf("cache: cannot assign %T to %T", value, out)
}

// Invalidate удаляет один ключ из кэша. Best-effort: ошибка бэкенда
// логируется и не возвращается вызывающему.
func (f *CacheFacade) Invalidate(ctx context.Context, key string) {
	if err := f.cache.Delete(ctx, key); err != nil {
		f.logger.WarnWithContext(ctx, "Ошибка инвалидации ключа кэша",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}

// InvalidatePattern удаляет все ключи по glob-шаблону и возвращает
// количество удаленных. Best-effort: при недоступности бэкенда возвращает
// количество, удаленное до ошибки.
func (f *CacheFacade) InvalidatePattern(ctx context.Context, pattern string) int {
	count, err := f.cache.DeleteByPattern(ctx, pattern)
	if err != nil {
		f.logger.WarnWithContext(ctx, "Ошибка инвалидации кэша по шаблону",
			interfaces.LogField{Key: "pattern", Value: pattern},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	return count
}

// HealthCheck проверяет доступность бэкенда кэша.
// Используется операционными эндпоинтами, никогда — горячим путем.
func (f *CacheFacade) HealthCheck(ctx context.Context) bool {
	return f.cache.Ping(ctx) == nil
}
