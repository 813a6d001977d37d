package tr

import (
	"context"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/jackc/pgx/v5"
)

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста.
// Любая запись в каталог или леджер выполняется только внутри транзакции,
// поэтому отсутствие tx в контексте — ошибка вызывающего кода.
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	txAny := ctx.Value("tx")
	tx, ok := txAny.(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}
