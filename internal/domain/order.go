package domain

import (
	"time"

	"github.com/DRSN-tech/shop-backend/pkg/e"
)

// OrderStatus — закрытый набор статусов жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus валидирует строковое представление статуса.
// Произвольные строки не допускаются.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), nil
	default:
		return "", e.ErrInvalidOrderStatus
	}
}

// OrderLineItem — одна позиция заказа. Название и цена фиксируются
// на момент покупки: последующие правки каталога не меняют историю заказов.
type OrderLineItem struct {
	ProductID       string
	ProductName     string
	Quantity        int64
	PriceAtPurchase int64 // копейки, снимок цены каталога
}

func NewOrderLineItem(productID, productName string, quantity, priceAtPurchase int64) OrderLineItem {
	return OrderLineItem{
		ProductID:       productID,
		ProductName:     productName,
		Quantity:        quantity,
		PriceAtPurchase: priceAtPurchase,
	}
}

// Order описывает размещённый заказ
type Order struct {
	ID          string // uuid
	UserID      string
	Items       []OrderLineItem // непустая последовательность в порядке запроса
	TotalAmount int64           // копейки, sum(quantity * priceAtPurchase)
	Status      OrderStatus
	OrderDate   time.Time
}

func NewOrder(id, userID string, items []OrderLineItem, totalAmount int64, orderDate time.Time) *Order {
	return &Order{
		ID:          id,
		UserID:      userID,
		Items:       items,
		TotalAmount: totalAmount,
		Status:      OrderStatusPending,
		OrderDate:   orderDate,
	}
}

// Total пересчитывает сумму заказа по позициям.
func (o *Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity * item.PriceAtPurchase
	}
	return total
}
