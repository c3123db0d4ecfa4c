package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockkeep/inventory-service/internal/model"
)

var (
	// ErrNotFound is returned when no live record matches the requested ID.
	ErrNotFound = errors.New("record not found")
)

// UniqueConstraintError represents a database unique constraint violation,
// in practice always the SKU uniqueness guarantee.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}

// ProductRepository defines the durable store of product records. Identity
// and creation timestamps are assigned on Create and never altered.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, query Query) ([]*model.Product, error)
	Update(ctx context.Context, product *model.Product) (*model.Product, error)
	DeleteByID(ctx context.Context, id int64) error
}

// EventRepository manages inventory events for the outbox pattern.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListPending(ctx context.Context, limit int) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
}
