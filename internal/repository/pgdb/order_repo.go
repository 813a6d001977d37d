package pgdb

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OrderRepo реализует леджер заказов поверх PostgreSQL.
// Позиции заказа хранятся JSONB-снимком внутри записи: заказ после
// фиксации не ссылается на живые строки каталога.
type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create добавляет заказ в леджер. Вызывается внутри транзакции размещения.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	items, err := marshalItems(order.Items)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO orders (id, user_id, items, total_amount, status, order_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_date
	`

	created := *order
	err = tx.QueryRow(ctx, query,
		order.ID, order.UserID, items, order.TotalAmount, string(order.Status), order.OrderDate,
	).Scan(&created.OrderDate)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &created, nil
}

// ListByUser возвращает заказы пользователя, новые первыми.
func (o *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT id, user_id, items, total_amount, status, order_date
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC
	`

	rows, err := o.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}

		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return orders, nil
}

// GetByID возвращает заказ в рамках владельца: чужой заказ — NotFound.
func (o *OrderRepo) GetByID(ctx context.Context, id, userID string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, items, total_amount, status, order_date
		FROM orders
		WHERE id = $1 AND user_id = $2
	`

	order, err := scanOrder(o.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// UpdateStatus заменяет только поле статуса, остальная запись неизменна.
func (o *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = $2
		WHERE id = $1
		RETURNING id, user_id, items, total_amount, status, order_date
	`

	order, err := scanOrder(o.pool.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order  domain.Order
		items  []byte
		status string
	)

	err := row.Scan(&order.ID, &order.UserID, &items, &order.TotalAmount, &status, &order.OrderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	order.Status = domain.OrderStatus(status)
	order.Items, err = unmarshalItems(items)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &order, nil
}

func marshalItems(items []domain.OrderLineItem) ([]byte, error) {
	models := make([]converter.OrderItemModel, 0, len(items))
	for _, item := range items {
		models = append(models, converter.OrderItemModel{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}

	return json.Marshal(models)
}

func unmarshalItems(data []byte) ([]domain.OrderLineItem, error) {
	var models []converter.OrderItemModel
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, err
	}

	items := make([]domain.OrderLineItem, 0, len(models))
	for _, model := range models {
		items = append(items, domain.NewOrderLineItem(
			model.ProductID, model.ProductName, model.Quantity, model.PriceAtPurchase,
		))
	}

	return items, nil
}
