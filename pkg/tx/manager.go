package tx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txKey - ключ для хранения транзакции в контексте. Используем приватный тип, чтобы избежать коллизий.
type txKeyType struct{}

var txKey = txKeyType{}

// TxManager управляет жизненным циклом транзакций БД.
type TxManager interface {
	// Do выполняет переданную функцию `fn` внутри транзакции.
	// Если `fn` возвращает ошибку, транзакция откатывается (Rollback).
	// Если `fn` завершается успешно (возвращает nil), транзакция фиксируется (Commit).
	// Контекст, передаваемый в `fn`, будет содержать саму транзакцию.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// pgxTxManager - реализация TxManager для pgx.
type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager создает новый менеджер транзакций.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

// Do реализует метод интерфейса TxManager.
func (m *pgxTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("tx.Begin failed: %w", err)
	}

	// Создаем новый контекст с транзакцией внутри
	txCtx := context.WithValue(ctx, txKey, tx)

	// Гарантируем откат транзакции в случае паники внутри fn.
	// Rollback после успешного Commit вернет ErrTxClosed, который игнорируется.
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(txCtx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
			return fmt.Errorf("tx rollback failed: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit failed: %w", err)
	}

	return nil
}

// GetTxFromContext извлекает транзакцию из контекста.
// Используется репозиториями, чтобы выполнять запросы внутри транзакции,
// открытой через TxManager.Do.
func GetTxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}

// GetKey возвращает ключ контекста транзакции
func GetKey() interface{} {
	return txKey
}
