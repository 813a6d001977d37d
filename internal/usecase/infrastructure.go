package usecase

import "context"

// TxManager выполняет fn внутри транзакции: либо все записи, сделанные
// внутри fn, становятся долговечными вместе, либо ни одна из них.
// Реализация обязана сериализовать конкурирующие размещения заказов
// по пересекающимся товарам (см. ProductRepository.GetForUpdate).
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
