package repositories

import (
	"context"
	"errors"
	"fmt"
)

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Users         UserRepository
	Organizations OrganizationRepository
}

// TxManager runs a unit of work atomically.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type txManager struct {
	db TxBeginner
}

func NewTxManager(db TxBeginner) TxManager {
	return &txManager{db: db}
}

func (m *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	repos := Repositories{
		Users:         NewUserRepo(tx),
		Organizations: NewOrganizationRepo(tx),
	}

	if err := fn(ctx, repos); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(err)
	}
	return nil
}
