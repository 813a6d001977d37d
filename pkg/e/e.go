package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки размещения заказа
	ErrEmptyOrder     = fmt.Errorf("order has no items")
	ErrStorageFailure = fmt.Errorf("storage failure")

	// Ошибки леджера заказов
	ErrOrderNotFound      = fmt.Errorf("order not found")
	ErrInvalidOrderStatus = fmt.Errorf("invalid order status")

	// 400 Bad Request
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrPriceMustBePositive  = fmt.Errorf("price must be positive")
	ErrInvalidStock         = fmt.Errorf("stock must be non-negative")
	ErrInvalidQuantity      = fmt.Errorf("quantity must be positive")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrTooManyImages        = fmt.Errorf("too many images")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrUnauthorized         = fmt.Errorf("unauthorized")
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")
)

// ProductNotFoundError возвращается, когда запрошенный продукт отсутствует в каталоге.
type ProductNotFoundError struct {
	ProductID string
}

func (p *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", p.ProductID)
}

func NewProductNotFound(productID string) *ProductNotFoundError {
	return &ProductNotFoundError{ProductID: productID}
}

// InsufficientStockError возвращается, когда запрошенное количество превышает остаток на складе.
// Заказ отклоняется целиком, частичное исполнение не допускается.
type InsufficientStockError struct {
	ProductID string
	Available int64
	Requested int64
}

func (i *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		i.ProductID, i.Available, i.Requested)
}

func NewInsufficientStock(productID string, available, requested int64) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		Available: available,
		Requested: requested,
	}
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
