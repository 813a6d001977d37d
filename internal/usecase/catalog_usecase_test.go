package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
)

type catalogFixture struct {
	store       *memStore
	productRepo *memProductRepo
	cacheRepo   *memCacheRepo
	imagesInfra *memImagesInfra
	uc          *CatalogUseCase
}

func newCatalogFixture(products ...domain.Product) *catalogFixture {
	store := newMemStore(products...)
	f := &catalogFixture{
		store:       store,
		productRepo: &memProductRepo{store: store},
		cacheRepo:   newMemCacheRepo(),
		imagesInfra: &memImagesInfra{},
	}
	f.uc = NewCatalogUC(
		f.productRepo,
		&memTxManager{store: store},
		f.imagesInfra,
		f.cacheRepo,
		nopLogger{},
	)
	return f
}

func TestGetProduct_CacheHitSkipsCatalog(t *testing.T) {
	f := newCatalogFixture()
	f.cacheRepo.entries["prod-cached"] = ProductInfo{
		ID: "prod-cached", Name: "Cached", Price: 100, Stock: 1,
	}

	product, err := f.uc.GetProduct(context.Background(), "prod-cached")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.Name != "Cached" {
		t.Errorf("name = %q, want Cached", product.Name)
	}
}

func TestGetProduct_MissFallsThrough(t *testing.T) {
	f := newCatalogFixture(laptop())

	product, err := f.uc.GetProduct(context.Background(), "prod-laptop")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.Name != "Laptop" {
		t.Errorf("name = %q, want Laptop", product.Name)
	}

	_, err = f.uc.GetProduct(context.Background(), "prod-ghost")
	var notFound *e.ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ProductNotFoundError", err)
	}
	if notFound.ProductID != "prod-ghost" {
		t.Errorf("err names product %q, want prod-ghost", notFound.ProductID)
	}
}

func TestGetProduct_CacheHitMatchesCatalogRead(t *testing.T) {
	p := laptop()
	p.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := newCatalogFixture(p)

	first, err := f.uc.GetProduct(context.Background(), "prod-laptop")
	if err != nil {
		t.Fatalf("GetProduct (miss): %v", err)
	}

	// Дожидаемся фонового заполнения кэша после промаха.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		f.cacheRepo.mu.Lock()
		filled := f.cacheRepo.setCalls > 0
		f.cacheRepo.mu.Unlock()
		if filled {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	second, err := f.uc.GetProduct(context.Background(), "prod-laptop")
	if err != nil {
		t.Fatalf("GetProduct (hit): %v", err)
	}

	// Два чтения без записи между ними обязаны вернуть один и тот же товар.
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt differs between reads: first %v, second %v", first.CreatedAt, second.CreatedAt)
	}
	if second.ID != first.ID || second.Name != first.Name || second.Price != first.Price ||
		second.Stock != first.Stock || second.Category != first.Category ||
		second.ImageURL != first.ImageURL || second.Description != first.Description {
		t.Errorf("cache hit diverges from catalog read: first %+v, second %+v", first, second)
	}
}

func TestGetProduct_CacheErrorNotFatal(t *testing.T) {
	f := newCatalogFixture(laptop())
	f.cacheRepo.getErr = errors.New("redis down")

	product, err := f.uc.GetProduct(context.Background(), "prod-laptop")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.ID != "prod-laptop" {
		t.Errorf("id = %q, want prod-laptop", product.ID)
	}
}

func TestSearchProducts_EmptyQueryListsAll(t *testing.T) {
	f := newCatalogFixture(laptop(), mouse())

	products, err := f.uc.SearchProducts(context.Background(), "   ")
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("products = %d, want 2", len(products))
	}
}

func TestAddProduct_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     *AddProductReq
		wantErr error
	}{
		{
			name:    "blank name",
			req:     &AddProductReq{Name: "  ", Price: 100},
			wantErr: e.ErrProductNameRequired,
		},
		{
			name:    "zero price",
			req:     &AddProductReq{Name: "Widget", Price: 0},
			wantErr: e.ErrPriceMustBePositive,
		},
		{
			name:    "negative price",
			req:     &AddProductReq{Name: "Widget", Price: -100},
			wantErr: e.ErrPriceMustBePositive,
		},
		{
			name:    "negative stock",
			req:     &AddProductReq{Name: "Widget", Price: 100, Stock: -1},
			wantErr: e.ErrInvalidStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()

			_, err := f.uc.AddProduct(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(f.store.products) != 0 {
				t.Error("invalid product reached the catalog")
			}
		})
	}
}

func TestAddProduct_WithoutImages(t *testing.T) {
	f := newCatalogFixture()

	product, err := f.uc.AddProduct(context.Background(), NewAddProductReq(
		"Widget", "A widget", 100, 5, "gadgets", nil,
	))
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if product.ImageURL != "default.jpg" {
		t.Errorf("image url = %q, want default.jpg", product.ImageURL)
	}
	if product.Stock != 5 {
		t.Errorf("stock = %d, want 5", product.Stock)
	}
	if _, ok := f.store.products[product.ID]; !ok {
		t.Error("product missing from catalog")
	}
}

func TestAddProduct_WithImages(t *testing.T) {
	f := newCatalogFixture()

	product, err := f.uc.AddProduct(context.Background(), NewAddProductReq(
		"Widget", "", 100, 1, "", []ProductImage{{Data: []byte{1}, MimeType: "image/jpeg"}},
	))
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if product.ImageURL != f.imagesInfra.uploadedKeys[0] {
		t.Errorf("image url = %q, want first uploaded key %q", product.ImageURL, f.imagesInfra.uploadedKeys[0])
	}
}

func TestAddProduct_CleansUpImagesOnCatalogFailure(t *testing.T) {
	f := newCatalogFixture()
	f.productRepo.createErr = errors.New("unique violation")

	_, err := f.uc.AddProduct(context.Background(), NewAddProductReq(
		"Widget", "", 100, 1, "", []ProductImage{{Data: []byte{1}, MimeType: "image/jpeg"}},
	))
	if err == nil {
		t.Fatal("expected error")
	}

	if len(f.imagesInfra.cleanedKeys) != 1 {
		t.Errorf("cleaned keys = %d, want 1", len(f.imagesInfra.cleanedKeys))
	}
	if len(f.store.products) != 0 {
		t.Error("product persisted despite catalog failure")
	}
}
