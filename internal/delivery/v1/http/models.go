package http

import (
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
)

// Денежные поля в ответах — числа с двумя знаками после запятой,
// внутри системы те же значения хранятся в копейках.

type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	CreatedAt   string  `json:"createdAt"`
}

type OrderItemResponse struct {
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	Quantity        int64   `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Items       []OrderItemResponse `json:"items"`
	TotalAmount float64             `json:"totalAmount"`
	Status      string              `json:"status"`
	OrderDate   string              `json:"orderDate"`
}

type PlaceOrderRequest struct {
	Items []PlaceOrderItemRequest `json:"items"`
}

type PlaceOrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       centsToPrice(p.Price),
		Stock:       p.Stock,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewArrProductResponse(products []domain.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, NewProductResponse(&products[i]))
	}
	return result
}

func NewOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceAtPurchase: centsToPrice(item.PriceAtPurchase),
		})
	}

	return OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Items:       items,
		TotalAmount: centsToPrice(o.TotalAmount),
		Status:      string(o.Status),
		OrderDate:   o.OrderDate.UTC().Format(time.RFC3339),
	}
}

func NewArrOrderResponse(orders []domain.Order) []OrderResponse {
	result := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, NewOrderResponse(&orders[i]))
	}
	return result
}
