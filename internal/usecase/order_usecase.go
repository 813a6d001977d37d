package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/google/uuid"
)

// OrderUseCase реализует размещение заказов и работу с их историей.
// Размещение — единственная операция с перекрёстным инвариантом:
// списание остатков и запись заказа фиксируются в одной транзакции.
type OrderUseCase struct {
	productRepo ProductRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	txManager   TxManager
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewOrderUC(
	productRepo ProductRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// PlaceOrder валидирует запрошенные позиции против каталога, фиксирует
// цены и названия на момент покупки, списывает остатки и записывает заказ.
// Валидация и списание выполняются над одним и тем же прочитанным
// состоянием под блокировкой строк: два конкурирующих размещения не могут
// оба получить последнюю единицу товара.
func (o *OrderUseCase) PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*domain.Order, error) {
	const op = "OrderUseCase.PlaceOrder"

	if len(req.Items) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyOrder)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, e.Wrap(op, e.ErrInvalidQuantity)
		}
	}

	var order *domain.Order
	err := o.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		products, err := o.productRepo.GetForUpdate(ctx, productIDs(req.Items))
		if err != nil {
			return err
		}

		// Валидация по порядку запроса; остатки считаются от одного
		// прочитанного снимка, повторы товара в заказе суммируются.
		remaining := make(map[string]int64, len(products))
		for id, p := range products {
			remaining[id] = p.Stock
		}

		items := make([]domain.OrderLineItem, 0, len(req.Items))
		deltas := make(map[string]int64, len(products))
		for _, item := range req.Items {
			product, ok := products[item.ProductID]
			if !ok {
				return e.NewProductNotFound(item.ProductID)
			}
			if remaining[item.ProductID] < item.Quantity {
				return e.NewInsufficientStock(item.ProductID, remaining[item.ProductID], item.Quantity)
			}

			remaining[item.ProductID] -= item.Quantity
			deltas[item.ProductID] -= item.Quantity
			items = append(items, domain.NewOrderLineItem(product.ID, product.Name, item.Quantity, product.Price))
		}

		newOrder := domain.NewOrder(uuid.NewString(), req.UserID, items, totalAmount(items), time.Now().UTC())

		if err := o.productRepo.ApplyStockDeltas(ctx, deltas); err != nil {
			return err
		}

		created, err := o.orderRepo.Create(ctx, newOrder)
		if err != nil {
			return err
		}

		if err := o.createOutboxEvent(ctx, created); err != nil {
			return err
		}

		order = created
		return nil
	})
	if err != nil {
		if isPlacementRejection(err) {
			return nil, e.Wrap(op, err)
		}

		// Детали инфраструктурного сбоя остаются в логах,
		// вызывающему уходит общий retryable-отказ.
		o.logger.Errorf(err, "order placement aborted, transaction rolled back. user_id: %s", req.UserID)
		return nil, e.Wrap(op, e.ErrStorageFailure)
	}

	// Остатки изменились — закэшированные товары больше не актуальны.
	if err := o.cacheRepo.DeleteProducts(ctx, orderProductIDs(order)); err != nil {
		o.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}

	return order, nil
}

// ListUserOrders возвращает заказы пользователя, новые первыми.
// Сортировка — контракт API, на порядок хранения в леджере не полагаемся.
func (o *OrderUseCase) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	const op = "OrderUseCase.ListUserOrders"

	orders, err := o.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})

	return orders, nil
}

// GetOrder возвращает заказ в рамках владельца.
func (o *OrderUseCase) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	const op = "OrderUseCase.GetOrder"

	order, err := o.orderRepo.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

// UpdateOrderStatus переводит заказ в новый статус из закрытого набора.
func (o *OrderUseCase) UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	const op = "OrderUseCase.UpdateOrderStatus"

	parsed, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	order, err := o.orderRepo.UpdateStatus(ctx, orderID, parsed)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

// createOutboxEvent пишет событие order.placed в одной транзакции с заказом.
func (o *OrderUseCase) createOutboxEvent(ctx context.Context, order *domain.Order) error {
	payload := OrderPlacedPayload{
		EventID:     uuid.NewString(),
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       make([]OrderPlacedItem, 0, len(order.Items)),
		OrderDate:   order.OrderDate,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, NewOutboxEvent(payload.EventID, OrderPlaced, order.ID, data))
	return err
}

// totalAmount — сумма заказа в копейках, точная по построению.
func totalAmount(items []domain.OrderLineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Quantity * item.PriceAtPurchase
	}
	return total
}

// productIDs возвращает уникальные идентификаторы запрошенных товаров.
func productIDs(items []OrderItemReq) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func orderProductIDs(order *domain.Order) []string {
	seen := make(map[string]struct{}, len(order.Items))
	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// isPlacementRejection отличает отказ валидации (возвращается вызывающему
// как есть, мутаций не было) от инфраструктурного сбоя.
func isPlacementRejection(err error) bool {
	var notFound *e.ProductNotFoundError
	var noStock *e.InsufficientStockError
	return errors.Is(err, e.ErrEmptyOrder) ||
		errors.Is(err, e.ErrInvalidQuantity) ||
		errors.As(err, &notFound) ||
		errors.As(err, &noStock)
}
