package usecase

import "time"

// ORDER USECASE

// PlaceOrderReq — запрос на размещение заказа.
// UserID поступает от внешнего слоя аутентификации и считается проверенным.
type PlaceOrderReq struct {
	UserID string
	Items  []OrderItemReq
}

// OrderItemReq — одна запрошенная позиция: товар и количество.
type OrderItemReq struct {
	ProductID string
	Quantity  int64
}

// CATALOG USECASE

// AddProductReq — запрос на добавление нового товара в каталог.
type AddProductReq struct {
	Name        string
	Description string
	Price       int64 // копейки
	Stock       int64
	Category    string
	Images      []ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// ProductInfo — DTO товара для кэша и внешнего использования.
// Несёт все поля, которые отдаёт чтение каталога: попадание в кэш
// и промах должны быть неотличимы для вызывающего.
type ProductInfo struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Stock       int64
	Category    string
	ImageURL    string
	CreatedAt   time.Time
}

// INFRASTRUCTURE

// UploadImagesReq — запрос на загрузку изображений товара.
type UploadImagesReq struct {
	Name   string
	Images []ProductImage
}

// UploadImagesRes — результат загрузки изображений (ключи в MinIO).
type UploadImagesRes struct {
	ImagesKeys []string
}

type WriteRawMessageReq struct {
	OrderID string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const OrderPlaced OutboxEventType = "order.placed"

// OutboxEvent — запись транзакционного outbox: пишется в одной транзакции
// с заказом и списанием остатков, публикуется в Kafka фоновым воркером.
type OutboxEvent struct {
	ID          int64
	EventID     string // uuid
	EventType   OutboxEventType
	OrderID     string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderPlacedPayload — JSON-содержимое события order.placed.
type OrderPlacedPayload struct {
	EventID     string            `json:"event_id"`
	OrderID     string            `json:"order_id"`
	UserID      string            `json:"user_id"`
	TotalAmount int64             `json:"total_amount"`
	Items       []OrderPlacedItem `json:"items"`
	OrderDate   time.Time         `json:"order_date"`
}

type OrderPlacedItem struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	Quantity        int64  `json:"quantity"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
}

// MAPPERS

func NewPlaceOrderReq(userID string, items []OrderItemReq) *PlaceOrderReq {
	return &PlaceOrderReq{
		UserID: userID,
		Items:  items,
	}
}

func NewOrderItemReq(productID string, quantity int64) OrderItemReq {
	return OrderItemReq{
		ProductID: productID,
		Quantity:  quantity,
	}
}

func NewAddProductReq(name, description string, price, stock int64, category string, images []ProductImage) *AddProductReq {
	return &AddProductReq{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Category:    category,
		Images:      images,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadImagesReq(name string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Name:   name,
		Images: images,
	}
}

func NewUploadImagesRes(imagesKeys []string) *UploadImagesRes {
	return &UploadImagesRes{
		ImagesKeys: imagesKeys,
	}
}

func NewWriteRawMessageReq(orderID string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		OrderID: orderID,
		Payload: payload,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, orderID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		OrderID:   orderID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}
