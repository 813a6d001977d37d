package pgdb

import (
	"context"
	"errors"
	"sort"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует каталог товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// GetAll возвращает снимок каталога.
func (p *ProductRepo) GetAll(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock, category, image_url, created_at, updated_at
		FROM products
		ORDER BY created_at
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanProducts(rows)
}

// GetByID возвращает товар по идентификатору.
func (p *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock, category, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&model.ID, &model.Name, &model.Description, &model.Price, &model.Stock,
		&model.Category, &model.ImageURL, &model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.NewProductNotFound(id)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// Search ищет товары по подстроке в имени, описании или категории без учёта регистра.
func (p *ProductRepo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	sqlQuery := `
		SELECT id, name, description, price, stock, category, image_url, created_at, updated_at
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		   OR description ILIKE '%' || $1 || '%'
		   OR category ILIKE '%' || $1 || '%'
		ORDER BY created_at
	`

	rows, err := p.pool.Query(ctx, sqlQuery, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanProducts(rows)
}

// Create добавляет новый товар. Вызывается внутри транзакции.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO products (id, name, description, price, stock, category, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, description, price, stock, category, image_url, created_at, updated_at
	`

	var model converter.ProductModel
	err = tx.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price,
		product.Stock, product.Category, product.ImageURL,
	).Scan(
		&model.ID, &model.Name, &model.Description, &model.Price, &model.Stock,
		&model.Category, &model.ImageURL, &model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// GetForUpdate блокирует строки запрошенных товаров и возвращает их по id.
// Блокировка в отсортированном порядке исключает взаимные блокировки
// между конкурирующими размещениями заказов.
func (p *ProductRepo) GetForUpdate(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	query := `
		SELECT id, name, description, price, stock, category, image_url, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	products, err := p.scanProducts(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[string]domain.Product, len(products))
	for _, product := range products {
		result[product.ID] = product
	}

	return result, nil
}

// ApplyStockDeltas атомарно применяет изменения остатков внутри транзакции.
// Условный UPDATE не пропускает остаток ниже нуля; неизвестный товар или
// нехватка остатка отклоняют весь пакет — транзакция откатывается целиком.
func (p *ProductRepo) ApplyStockDeltas(ctx context.Context, deltas map[string]int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
	`

	for _, id := range ids {
		tag, err := tx.Exec(ctx, query, id, deltas[id])
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		if tag.RowsAffected() == 0 {
			return p.stockConflict(ctx, tx, id, deltas[id])
		}
	}

	return nil
}

// stockConflict выясняет, почему условный UPDATE не затронул строку.
func (p *ProductRepo) stockConflict(ctx context.Context, tx pgx.Tx, id string, delta int64) error {
	var stock int64
	err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e.NewProductNotFound(id)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return e.NewInsufficientStock(id, stock, -delta)
}

func (p *ProductRepo) scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	models := make([]converter.ProductModel, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Description, &model.Price, &model.Stock,
			&model.Category, &model.ImageURL, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}
