package pgdb

import (
	"context"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// TxManager оборачивает бизнес-операцию в pgx-транзакцию и пробрасывает
// её репозиториям через контекст. Размещение заказа пишет каталог, леджер
// и outbox под одной транзакцией: либо фиксируются все три записи, либо ни одна.
type TxManager struct {
	dbPool transaction.Transactional
}

func NewTxManager(dbPool transaction.Transactional) *TxManager {
	return &TxManager{dbPool: dbPool}
}

func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, m.dbPool)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	// Если fn или Commit вернули ошибку, транзакция откатывается целиком
	defer func() {
		if tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
