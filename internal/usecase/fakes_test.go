package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

// memStore держит всё состояние, которое транзакция может изменить.
// memTxManager снимает копию перед fn и восстанавливает её при ошибке,
// mutex сериализует конкурирующие транзакции как блокировки строк в БД.
type memStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	orders   []domain.Order
	events   []*OutboxEvent
}

func newMemStore(products ...domain.Product) *memStore {
	s := &memStore{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) snapshot() *memStore {
	cp := &memStore{products: make(map[string]domain.Product, len(s.products))}
	for id, p := range s.products {
		cp.products[id] = p
	}
	cp.orders = append([]domain.Order(nil), s.orders...)
	cp.events = append([]*OutboxEvent(nil), s.events...)
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.products = from.products
	s.orders = from.orders
	s.events = from.events
}

type memTxManager struct {
	store *memStore
}

func (m *memTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	saved := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(saved)
		return err
	}
	return nil
}

type memProductRepo struct {
	store *memStore

	createErr error
}

func (r *memProductRepo) GetAll(ctx context.Context) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		result = append(result, p)
	}
	return result, nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, e.NewProductNotFound(id)
	}
	return &p, nil
}

func (r *memProductRepo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return r.GetAll(ctx)
}

func (r *memProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	p := *product
	now := time.Now().UTC()
	p.CreatedAt = now
	r.store.products[p.ID] = p
	return &p, nil
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (r *memProductRepo) ApplyStockDeltas(ctx context.Context, deltas map[string]int64) error {
	for id, delta := range deltas {
		p, ok := r.store.products[id]
		if !ok {
			return e.NewProductNotFound(id)
		}
		if p.Stock+delta < 0 {
			return e.NewInsufficientStock(id, p.Stock, -delta)
		}
	}
	for id, delta := range deltas {
		p := r.store.products[id]
		p.Stock += delta
		r.store.products[id] = p
	}
	return nil
}

type memOrderRepo struct {
	store *memStore

	createErr error
}

func (r *memOrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	o := *order
	o.Items = append([]domain.OrderLineItem(nil), order.Items...)
	r.store.orders = append(r.store.orders, o)
	return &o, nil
}

func (r *memOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var result []domain.Order
	for _, o := range r.store.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id, userID string) (*domain.Order, error) {
	for _, o := range r.store.orders {
		if o.ID == id && o.UserID == userID {
			found := o
			return &found, nil
		}
	}
	return nil, e.ErrOrderNotFound
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	for i := range r.store.orders {
		if r.store.orders[i].ID == id {
			r.store.orders[i].Status = status
			found := r.store.orders[i]
			return &found, nil
		}
	}
	return nil, e.ErrOrderNotFound
}

type memOutboxRepo struct {
	store *memStore

	createErr error
}

func (r *memOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	ev := *event
	ev.ID = int64(len(r.store.events) + 1)
	r.store.events = append(r.store.events, &ev)
	return &ev, nil
}

func (r *memOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	var result []*OutboxEvent
	for _, ev := range r.store.events {
		if ev.Status == Pending && len(result) < limit {
			ev.Status = Processing
			result = append(result, ev)
		}
	}
	return result, nil
}

func (r *memOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	for _, ev := range r.store.events {
		if ev.ID == id {
			ev.Status = Processed
			return nil
		}
	}
	return e.ErrOrderNotFound
}

func (r *memOutboxRepo) Requeue(ctx context.Context, id int64) error {
	for _, ev := range r.store.events {
		if ev.ID == id {
			ev.Status = Pending
			return nil
		}
	}
	return e.ErrOrderNotFound
}

type memCacheRepo struct {
	mu       sync.Mutex
	entries  map[string]ProductInfo
	deleted  []string
	getErr   error
	setCalls int
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{entries: make(map[string]ProductInfo)}
}

func (c *memCacheRepo) GetProducts(ctx context.Context, ids []string) (map[string]ProductInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	result := make(map[string]ProductInfo)
	for _, id := range ids {
		if info, ok := c.entries[id]; ok {
			result[id] = info
		}
	}
	return result, nil
}

func (c *memCacheRepo) SetProducts(ctx context.Context, products []ProductInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, info := range products {
		c.entries[info.ID] = info
	}
	c.setCalls++
	return nil
}

func (c *memCacheRepo) DeleteProducts(ctx context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
	}
	c.deleted = append(c.deleted, ids...)
	return nil
}

type memImagesInfra struct {
	uploadErr    error
	uploadedKeys []string
	cleanedKeys  []string
}

func (m *memImagesInfra) UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	keys := make([]string, 0, len(req.Images))
	for i := range req.Images {
		keys = append(keys, fmt.Sprintf("%s-%d.jpg", req.Name, i))
	}
	m.uploadedKeys = keys
	return NewUploadImagesRes(keys), nil
}

func (m *memImagesInfra) CleanupImages(keys []string) {
	m.cleanedKeys = append(m.cleanedKeys, keys...)
}
