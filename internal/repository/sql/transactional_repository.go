package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stockkeep/inventory-service/internal/model"
)

// TransactionalRepository runs a product mutation and its outbox event in a
// single database transaction, so no reader can observe a mutation without
// its event or an event without its mutation.
type TransactionalRepository struct {
	db *sql.DB
}

// NewTransactionalRepository creates a new TransactionalRepository.
func NewTransactionalRepository(db *sql.DB) *TransactionalRepository {
	return &TransactionalRepository{db: db}
}

// CreateProductWithEvent creates a product and an event in a single
// transaction. The event is built by makeEvent from the created product, so
// its payload can carry the ID the database assigned on insert.
func (tr *TransactionalRepository) CreateProductWithEvent(ctx context.Context, product *model.Product, makeEvent func(*model.Product) *model.Event) (*model.Product, error) {
	var created *model.Product
	err := tr.withTx(ctx, func(productRepo *ProductRepository, eventRepo *EventRepository) error {
		var err error
		created, err = productRepo.Create(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		if _, err = eventRepo.Create(ctx, makeEvent(created)); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateProductWithEvent updates a product and records an event in a single transaction.
func (tr *TransactionalRepository) UpdateProductWithEvent(ctx context.Context, product *model.Product, event *model.Event) (*model.Product, error) {
	var updated *model.Product
	err := tr.withTx(ctx, func(productRepo *ProductRepository, eventRepo *EventRepository) error {
		var err error
		updated, err = productRepo.Update(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if _, err = eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProductWithEvent deletes a product and records an event in a single transaction.
func (tr *TransactionalRepository) DeleteProductWithEvent(ctx context.Context, id int64, event *model.Event) error {
	return tr.withTx(ctx, func(productRepo *ProductRepository, eventRepo *EventRepository) error {
		if err := productRepo.DeleteByID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		if _, err := eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		return nil
	})
}

func (tr *TransactionalRepository) withTx(ctx context.Context, fn func(*ProductRepository, *EventRepository) error) error {
	tx, err := tr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	productRepo := &ProductRepository{db: tr.db, txn: tx}
	eventRepo := &EventRepository{db: tr.db, txn: tx}

	if err := fn(productRepo, eventRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
