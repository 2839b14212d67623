package connectors

import (
	"context"

	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
)

// Connector — единый контракт модуля маркетплейса.
// Каждый поддерживаемый маркетплейс реализует этот интерфейс поверх
// собственного HTTP клиента; реестр вызывает модули единообразно,
// не зная деталей конкретного API.
type Connector interface {
	// Name возвращает имя модуля (в нижнем регистре, например "trendyol")
	Name() string

	// Marketplace возвращает идентификатор маркетплейса модуля
	Marketplace() models.Marketplace

	// Enabled сообщает, включен ли модуль в конфигурации
	Enabled() bool

	// SyncProducts постранично выгружает каталог маркетплейса до исчерпания
	// и идемпотентно сохраняет записи в каноническое хранилище по ключу
	// (external id, marketplace). Возвращает количество обработанных записей.
	// Ошибка на любой странице означает отказ всей синхронизации, но уже
	// сохраненные записи остаются (повтор идемпотентен).
	SyncProducts(ctx context.Context) (int, error)

	// GetProduct получает один продукт маркетплейса по внешнему идентификатору
	GetProduct(ctx context.Context, externalID string) (*models.Product, error)

	// UpdateProduct отправляет частичное обновление продукта на маркетплейс
	UpdateProduct(ctx context.Context, externalID string, patch models.ProductPatch) error

	// SyncOrders — то же, что SyncProducts, для заказов
	SyncOrders(ctx context.Context) (int, error)

	// GetOrder получает один заказ маркетплейса по внешнему идентификатору
	GetOrder(ctx context.Context, externalID string) (*models.Order, error)

	// UpdateOrderStatus переводит заказ на маркетплейсе в статус,
	// соответствующий каноническому
	UpdateOrderStatus(ctx context.Context, externalID string, status models.OrderStatus) error

	// UpdateStock обновляет остаток продукта на маркетплейсе
	UpdateStock(ctx context.Context, externalID string, quantity int) error

	// UpdatePrice обновляет цену продукта на маркетплейсе
	UpdatePrice(ctx context.Context, externalID string, price float64) error
}
