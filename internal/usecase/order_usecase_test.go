package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
)

type orderFixture struct {
	store       *memStore
	productRepo *memProductRepo
	orderRepo   *memOrderRepo
	outboxRepo  *memOutboxRepo
	cacheRepo   *memCacheRepo
	uc          *OrderUseCase
}

func newOrderFixture(products ...domain.Product) *orderFixture {
	store := newMemStore(products...)
	f := &orderFixture{
		store:       store,
		productRepo: &memProductRepo{store: store},
		orderRepo:   &memOrderRepo{store: store},
		outboxRepo:  &memOutboxRepo{store: store},
		cacheRepo:   newMemCacheRepo(),
	}
	f.uc = NewOrderUC(
		f.productRepo,
		f.orderRepo,
		f.outboxRepo,
		&memTxManager{store: store},
		f.cacheRepo,
		nopLogger{},
	)
	return f
}

func laptop() domain.Product {
	return domain.Product{ID: "prod-laptop", Name: "Laptop", Price: 2999, Stock: 5} // 29.99
}

func mouse() domain.Product {
	return domain.Product{ID: "prod-mouse", Name: "Mouse", Price: 500, Stock: 10} // 5.00
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture(laptop(), mouse())

	order, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
		{ProductID: "prod-laptop", Quantity: 2},
		{ProductID: "prod-mouse", Quantity: 1},
	}))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if order.ID == "" {
		t.Error("order id is empty")
	}
	if order.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", order.UserID)
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
	// 29.99 * 2 + 5.00 = 64.98
	if order.TotalAmount != 6498 {
		t.Errorf("total = %d, want 6498", order.TotalAmount)
	}

	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	first := order.Items[0]
	if first.ProductID != "prod-laptop" || first.ProductName != "Laptop" ||
		first.Quantity != 2 || first.PriceAtPurchase != 2999 {
		t.Errorf("unexpected first item: %+v", first)
	}

	if got := f.store.products["prod-laptop"].Stock; got != 3 {
		t.Errorf("laptop stock = %d, want 3", got)
	}
	if got := f.store.products["prod-mouse"].Stock; got != 9 {
		t.Errorf("mouse stock = %d, want 9", got)
	}

	if len(f.store.orders) != 1 {
		t.Errorf("ledger size = %d, want 1", len(f.store.orders))
	}
	if len(f.store.events) != 1 {
		t.Fatalf("outbox size = %d, want 1", len(f.store.events))
	}
	if f.store.events[0].EventType != OrderPlaced {
		t.Errorf("event type = %q, want %q", f.store.events[0].EventType, OrderPlaced)
	}
	if f.store.events[0].OrderID != order.ID {
		t.Errorf("event order id = %q, want %q", f.store.events[0].OrderID, order.ID)
	}

	if len(f.cacheRepo.deleted) != 2 {
		t.Errorf("cache invalidated for %d products, want 2", len(f.cacheRepo.deleted))
	}
}

func TestPlaceOrder_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		items   []OrderItemReq
		wantErr error
	}{
		{
			name:    "empty order",
			items:   nil,
			wantErr: e.ErrEmptyOrder,
		},
		{
			name: "zero quantity",
			items: []OrderItemReq{
				{ProductID: "prod-laptop", Quantity: 0},
			},
			wantErr: e.ErrInvalidQuantity,
		},
		{
			name: "negative quantity",
			items: []OrderItemReq{
				{ProductID: "prod-laptop", Quantity: -1},
			},
			wantErr: e.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(laptop())

			_, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", tt.items))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			if got := f.store.products["prod-laptop"].Stock; got != 5 {
				t.Errorf("stock changed to %d on rejected order", got)
			}
			if len(f.store.orders) != 0 {
				t.Error("rejected order reached the ledger")
			}
		})
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newOrderFixture(laptop())

	_, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
		{ProductID: "prod-laptop", Quantity: 1},
		{ProductID: "prod-ghost", Quantity: 1},
	}))

	var notFound *e.ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ProductNotFoundError", err)
	}
	if notFound.ProductID != "prod-ghost" {
		t.Errorf("err names product %q, want prod-ghost", notFound.ProductID)
	}

	// Валидная позиция из того же заказа не должна быть списана.
	if got := f.store.products["prod-laptop"].Stock; got != 5 {
		t.Errorf("laptop stock = %d, want 5", got)
	}
	if len(f.store.orders) != 0 || len(f.store.events) != 0 {
		t.Error("partial order state persisted after rejection")
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newOrderFixture(laptop())

	_, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
		{ProductID: "prod-laptop", Quantity: 6},
	}))

	var noStock *e.InsufficientStockError
	if !errors.As(err, &noStock) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if noStock.ProductID != "prod-laptop" || noStock.Available != 5 || noStock.Requested != 6 {
		t.Errorf("unexpected stock error details: %+v", noStock)
	}

	if got := f.store.products["prod-laptop"].Stock; got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
}

func TestPlaceOrder_DuplicateLinesShareStock(t *testing.T) {
	p := laptop()
	p.Stock = 3

	t.Run("accumulated demand fits", func(t *testing.T) {
		f := newOrderFixture(p)

		order, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
			{ProductID: "prod-laptop", Quantity: 1},
			{ProductID: "prod-laptop", Quantity: 2},
		}))
		if err != nil {
			t.Fatalf("PlaceOrder: %v", err)
		}
		if len(order.Items) != 2 {
			t.Errorf("items = %d, want 2 separate lines", len(order.Items))
		}
		if got := f.store.products["prod-laptop"].Stock; got != 0 {
			t.Errorf("stock = %d, want 0", got)
		}
	})

	t.Run("accumulated demand exceeds stock", func(t *testing.T) {
		f := newOrderFixture(p)

		_, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
			{ProductID: "prod-laptop", Quantity: 2},
			{ProductID: "prod-laptop", Quantity: 2},
		}))

		var noStock *e.InsufficientStockError
		if !errors.As(err, &noStock) {
			t.Fatalf("err = %v, want InsufficientStockError", err)
		}
		if noStock.Available != 1 || noStock.Requested != 2 {
			t.Errorf("unexpected stock error details: %+v", noStock)
		}
		if got := f.store.products["prod-laptop"].Stock; got != 3 {
			t.Errorf("stock = %d, want 3", got)
		}
	})
}

func TestPlaceOrder_StorageFailureRollsBack(t *testing.T) {
	f := newOrderFixture(laptop())
	f.orderRepo.createErr = errors.New("connection reset")

	_, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
		{ProductID: "prod-laptop", Quantity: 1},
	}))

	if !errors.Is(err, e.ErrStorageFailure) {
		t.Fatalf("err = %v, want ErrStorageFailure", err)
	}
	if got := f.store.products["prod-laptop"].Stock; got != 5 {
		t.Errorf("stock = %d after rollback, want 5", got)
	}
	if len(f.store.events) != 0 {
		t.Error("outbox event survived rollback")
	}
}

func TestPlaceOrder_OutboxFailureRollsBack(t *testing.T) {
	f := newOrderFixture(laptop())
	f.outboxRepo.createErr = errors.New("connection reset")

	_, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
		{ProductID: "prod-laptop", Quantity: 1},
	}))

	if !errors.Is(err, e.ErrStorageFailure) {
		t.Fatalf("err = %v, want ErrStorageFailure", err)
	}
	if got := f.store.products["prod-laptop"].Stock; got != 5 {
		t.Errorf("stock = %d after rollback, want 5", got)
	}
	if len(f.store.orders) != 0 {
		t.Error("order survived rollback")
	}
}

func TestPlaceOrder_SnapshotSurvivesCatalogChanges(t *testing.T) {
	f := newOrderFixture(laptop())

	order, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
		{ProductID: "prod-laptop", Quantity: 1},
	}))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	// Каталог меняется после размещения.
	p := f.store.products["prod-laptop"]
	p.Name = "Laptop Pro"
	p.Price = 9999
	f.store.products["prod-laptop"] = p

	got, err := f.uc.GetOrder(context.Background(), order.ID, "user-1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Items[0].ProductName != "Laptop" {
		t.Errorf("item name = %q, want snapshot name Laptop", got.Items[0].ProductName)
	}
	if got.Items[0].PriceAtPurchase != 2999 {
		t.Errorf("item price = %d, want snapshot price 2999", got.Items[0].PriceAtPurchase)
	}
	if got.TotalAmount != 2999 {
		t.Errorf("total = %d, want 2999", got.TotalAmount)
	}
}

func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	p := laptop()
	p.Stock = 1
	f := newOrderFixture(p)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
				{ProductID: "prod-laptop", Quantity: 1},
			}))
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			var noStock *e.InsufficientStockError
			if !errors.As(err, &noStock) {
				t.Fatalf("unexpected error: %v", err)
			}
			rejected++
		}
	}

	if succeeded != 1 || rejected != 1 {
		t.Fatalf("succeeded = %d, rejected = %d; want exactly one of each", succeeded, rejected)
	}
	if got := f.store.products["prod-laptop"].Stock; got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
	if len(f.store.orders) != 1 {
		t.Errorf("ledger size = %d, want 1", len(f.store.orders))
	}
}

func TestListUserOrders_SortedNewestFirst(t *testing.T) {
	f := newOrderFixture()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{time.Hour, 3 * time.Hour, 2 * time.Hour} {
		f.store.orders = append(f.store.orders, domain.Order{
			ID:        []string{"ord-a", "ord-b", "ord-c"}[i],
			UserID:    "user-1",
			Status:    domain.OrderStatusPending,
			OrderDate: base.Add(offset),
		})
	}
	f.store.orders = append(f.store.orders, domain.Order{
		ID: "ord-other", UserID: "user-2", OrderDate: base.Add(10 * time.Hour),
	})

	orders, err := f.uc.ListUserOrders(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListUserOrders: %v", err)
	}

	want := []string{"ord-b", "ord-c", "ord-a"}
	if len(orders) != len(want) {
		t.Fatalf("orders = %d, want %d", len(orders), len(want))
	}
	for i, id := range want {
		if orders[i].ID != id {
			t.Errorf("orders[%d] = %q, want %q", i, orders[i].ID, id)
		}
	}
}

func TestGetOrder_OwnerScoped(t *testing.T) {
	f := newOrderFixture(laptop())

	order, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
		{ProductID: "prod-laptop", Quantity: 1},
	}))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if _, err := f.uc.GetOrder(context.Background(), order.ID, "user-1"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}

	// Чужой заказ неотличим от несуществующего.
	if _, err := f.uc.GetOrder(context.Background(), order.ID, "user-2"); !errors.Is(err, e.ErrOrderNotFound) {
		t.Errorf("foreign lookup err = %v, want ErrOrderNotFound", err)
	}
	if _, err := f.uc.GetOrder(context.Background(), "ord-missing", "user-1"); !errors.Is(err, e.ErrOrderNotFound) {
		t.Errorf("missing lookup err = %v, want ErrOrderNotFound", err)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(laptop())

	order, err := f.uc.PlaceOrder(context.Background(), NewPlaceOrderReq("user-1", []OrderItemReq{
		{ProductID: "prod-laptop", Quantity: 2},
	}))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	updated, err := f.uc.UpdateOrderStatus(context.Background(), order.ID, "shipped")
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Errorf("status = %q, want shipped", updated.Status)
	}

	// Остальные поля заказа не затронуты.
	if updated.TotalAmount != order.TotalAmount || len(updated.Items) != len(order.Items) ||
		!updated.OrderDate.Equal(order.OrderDate) {
		t.Error("status update touched fields other than status")
	}

	if _, err := f.uc.UpdateOrderStatus(context.Background(), order.ID, "teleported"); !errors.Is(err, e.ErrInvalidOrderStatus) {
		t.Errorf("err = %v, want ErrInvalidOrderStatus", err)
	}

	if _, err := f.uc.UpdateOrderStatus(context.Background(), "ord-missing", "paid"); !errors.Is(err, e.ErrOrderNotFound) {
		t.Errorf("err = %v, want ErrOrderNotFound", err)
	}
}
