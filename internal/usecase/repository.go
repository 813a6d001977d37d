package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-backend/internal/domain"
)

// ProductRepository — контракт каталога товаров.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// GetForUpdate блокирует и возвращает товары по их идентификаторам.
	// Вызывается только внутри транзакции; блокировка строк сериализует
	// конкурирующие размещения заказов по пересекающимся товарам.
	GetForUpdate(ctx context.Context, ids []string) (map[string]domain.Product, error)

	// ApplyStockDeltas атомарно применяет изменения остатков.
	// Пакет отклоняется целиком, если хоть один товар неизвестен
	// или его остаток ушёл бы в минус.
	ApplyStockDeltas(ctx context.Context, deltas map[string]int64) error
}

// OrderRepository — контракт леджера заказов.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// GetByID ограничен владельцем: чужой заказ — NotFound, а не Forbidden,
	// чтобы не раскрывать факт существования.
	GetByID(ctx context.Context, id, userID string) (*domain.Order, error)
	// UpdateStatus заменяет только поле статуса, остальная запись неизменна.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// Requeue возвращает событие в pending после временного сбоя публикации.
	Requeue(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []string) (map[string]ProductInfo, error)
	SetProducts(ctx context.Context, products []ProductInfo) error
	DeleteProducts(ctx context.Context, ids []string) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}
