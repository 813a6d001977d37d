package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/google/uuid"
)

// CatalogUseCase реализует просмотр каталога и управление товарами.
type CatalogUseCase struct {
	productRepo ProductRepository
	txManager   TxManager
	imagesInfra ImagesInfra
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	txManager TxManager,
	imagesInfra ImagesInfra,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo: productRepo,
		txManager:   txManager,
		imagesInfra: imagesInfra,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// ListProducts возвращает снимок каталога.
func (c *CatalogUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogUseCase.ListProducts"

	products, err := c.productRepo.GetAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// GetProduct возвращает товар по идентификатору, сначала проверяя кэш.
// Промах кэша дозаполняется в фоне, ошибка кэша не фатальна для чтения.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "CatalogUseCase.GetProduct"

	cached, err := c.cacheRepo.GetProducts(ctx, []string{id})
	if err == nil {
		if info, ok := cached[id]; ok {
			return infoToProduct(info), nil
		}
	}

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Фоновое добавление товара в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := c.cacheRepo.SetProducts(bgCtx, []ProductInfo{productToInfo(product)}); err != nil {
			c.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
		}
	}()

	return product, nil
}

// SearchProducts ищет товары по подстроке в имени, описании или категории
// без учёта регистра. Пустой запрос возвращает весь каталог.
func (c *CatalogUseCase) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	const op = "CatalogUseCase.SearchProducts"

	if strings.TrimSpace(query) == "" {
		return c.ListProducts(ctx)
	}

	products, err := c.productRepo.Search(ctx, query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// AddProduct добавляет новый товар в каталог: валидация, загрузка
// изображений в MinIO, запись в каталог. При откате транзакции
// уже загруженные изображения зачищаются в фоне.
func (c *CatalogUseCase) AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.AddProduct"

	if err := c.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	imageURL := "default.jpg"
	var uploadedKeys []string
	if len(req.Images) > 0 {
		imagesRes, err := c.imagesInfra.UploadImages(ctx, NewUploadImagesReq(req.Name, req.Images))
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		uploadedKeys = imagesRes.ImagesKeys
		imageURL = uploadedKeys[0]
	}

	product := domain.NewProduct(
		"prod-"+uuid.NewString(),
		req.Name,
		req.Description,
		req.Price,
		req.Stock,
		req.Category,
		imageURL,
	)

	var created *domain.Product
	err := c.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.productRepo.Create(ctx, product)
		return err
	})
	if err != nil {
		if len(uploadedKeys) > 0 {
			c.logger.Warnf(
				"Cleaning up orphaned images after catalog write failure. product_name: %s, error: %v",
				req.Name,
				e.Wrap(op, err),
			)
			c.imagesInfra.CleanupImages(uploadedKeys)
		}
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// validateProduct проверяет корректность входных данных запроса на добавление товара.
func (c *CatalogUseCase) validateProduct(req *AddProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.Stock < 0 {
		return e.ErrInvalidStock
	}

	return nil
}

func productToInfo(p *domain.Product) ProductInfo {
	return ProductInfo{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

func infoToProduct(info ProductInfo) *domain.Product {
	return &domain.Product{
		ID:          info.ID,
		Name:        info.Name,
		Description: info.Description,
		Price:       info.Price,
		Stock:       info.Stock,
		Category:    info.Category,
		ImageURL:    info.ImageURL,
		CreatedAt:   info.CreatedAt,
	}
}
