package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-backend/internal/domain"
)

type OrderUC interface {
	PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
}

type CatalogUC interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error)
}
