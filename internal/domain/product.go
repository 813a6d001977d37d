package domain

import "time"

// Product описывает товар каталога
type Product struct {
	ID          string // префикс "prod-" + uuid
	Name        string
	Description string
	Price       int64 // Цена хранится в копейках
	Stock       int64 // Инвариант: stock >= 0 после любой зафиксированной мутации
	Category    string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(id, name, description string, price, stock int64, category, imageURL string) *Product {
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Category:    category,
		ImageURL:    imageURL,
	}
}
