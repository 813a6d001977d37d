package converter

import (
	"time"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
)

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Price       int64      `db:"price"`
	Stock       int64      `db:"stock"`
	Category    string     `db:"category"`
	ImageURL    string     `db:"image_url"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// OrderItemModel — позиция заказа внутри JSONB-колонки items.
// Снимок названия и цены на момент покупки, после записи не меняется.
type OrderItemModel struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	Quantity        int64  `json:"quantity"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64                   `db:"id"`
	EventID     string                  `db:"event_id"`
	EventType   usecase.OutboxEventType `db:"event_type"`
	OrderID     string                  `db:"order_id"`
	Payload     []byte                  `db:"payload"`
	Status      usecase.OutboxStatus    `db:"status"`
	CreatedAt   time.Time               `db:"created_at"`
	ProcessedAt *time.Time              `db:"processed_at"`
}
