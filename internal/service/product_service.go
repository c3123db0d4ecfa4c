// Package service orchestrates validation, storage, restock advice and
// event publication. It owns the business rules; the repositories own
// persistence and the controllers own HTTP.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/stockkeep/inventory-service/internal/assist"
	"github.com/stockkeep/inventory-service/internal/metrics"
	"github.com/stockkeep/inventory-service/internal/model"
	"github.com/stockkeep/inventory-service/internal/repository"
	"github.com/stockkeep/inventory-service/internal/restock"
	"github.com/stockkeep/inventory-service/internal/sqs"
	"github.com/stockkeep/inventory-service/internal/validate"
)

// TransactionalStore commits a product mutation and its outbox event
// atomically.
type TransactionalStore interface {
	CreateProductWithEvent(ctx context.Context, product *model.Product, makeEvent func(*model.Product) *model.Event) (*model.Product, error)
	UpdateProductWithEvent(ctx context.Context, product *model.Product, event *model.Event) (*model.Product, error)
	DeleteProductWithEvent(ctx context.Context, id int64, event *model.Event) error
}

// AssistClient is the external language-generation service. It may be nil
// when no service is configured.
type AssistClient interface {
	Suggest(ctx context.Context, description string) (*assist.Suggestion, error)
	Chat(ctx context.Context, question, inventorySummary string) (string, error)
}

// ProductService implements the inventory operations.
type ProductService struct {
	repo   repository.ProductRepository
	store  TransactionalStore
	assist AssistClient
}

// NewProductService creates a new ProductService. assist may be nil.
func NewProductService(repo repository.ProductRepository, store TransactionalStore, assist AssistClient) *ProductService {
	return &ProductService{
		repo:   repo,
		store:  store,
		assist: assist,
	}
}

// CreateProduct validates the candidate and stores it. The store assigns the
// record ID and creation timestamp; a product.created event is committed in
// the same transaction.
func (ps *ProductService) CreateProduct(ctx context.Context, candidate *validate.Candidate) (*model.Product, error) {
	product, err := validate.Product(candidate)
	if err != nil {
		return nil, err
	}
	product.InitMeta()

	created, err := ps.store.CreateProductWithEvent(ctx, product, func(p *model.Product) *model.Event {
		return newInventoryEvent(model.EventTypeProductCreated, "created", p)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	slog.Info("Product created", slog.Int64("product_id", created.ID), slog.String("sku", created.SKU))

	return created, nil
}

// GetProduct retrieves a product by its record ID.
func (ps *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return ps.repo.FindByID(ctx, id)
}

// ListProducts lists live products in insertion order.
func (ps *ProductService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	return ps.repo.List(ctx, query)
}

// UpdateProduct merges the patch over the stored record, re-validates the
// merged result and stores it. Identity fields never change; a patch that
// would make the record invalid leaves the store untouched.
func (ps *ProductService) UpdateProduct(ctx context.Context, id int64, patch *validate.Candidate) (*model.Product, error) {
	if patch == nil {
		return nil, &validate.Error{Message: "product data cannot be null"}
	}

	existing, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := candidateFrom(existing)
	applyPatch(merged, patch)

	product, err := validate.Product(merged)
	if err != nil {
		return nil, err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt

	updated, err := ps.store.UpdateProductWithEvent(ctx, product, newInventoryEvent(model.EventTypeProductUpdated, "updated", product))
	if err != nil {
		return nil, err
	}

	metrics.ProductsUpdated.Inc()
	slog.Info("Product updated", slog.Int64("product_id", updated.ID), slog.String("sku", updated.SKU))

	return updated, nil
}

// DeleteProduct removes a product permanently. Its SKU becomes available for
// reuse; its record ID is never reissued.
func (ps *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	existing, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := ps.store.DeleteProductWithEvent(ctx, id, newInventoryEvent(model.EventTypeProductDeleted, "deleted", existing)); err != nil {
		return err
	}

	metrics.ProductsDeleted.Inc()
	slog.Info("Product deleted", slog.Int64("product_id", id), slog.String("sku", existing.SKU))

	return nil
}

// RestockSuggestion computes a restock recommendation for a stored product.
func (ps *ProductService) RestockSuggestion(ctx context.Context, id int64) (restock.Recommendation, error) {
	product, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return restock.Recommendation{}, err
	}

	recommendation := restock.Advise(product)

	outcome := "no_action"
	if recommendation.Restock {
		outcome = "restock"
	}
	metrics.RestockSuggestions.WithLabelValues(outcome).Inc()

	return recommendation, nil
}

// AutofillProduct asks the assist service to guess product fields from a
// free-form description. The suggestion is untrusted and is validated before
// it is returned; storing it still requires a full CreateProduct call.
func (ps *ProductService) AutofillProduct(ctx context.Context, description string) (*assist.Suggestion, error) {
	if ps.assist == nil {
		return nil, assist.ErrUnavailable
	}

	suggestion, err := ps.assist.Suggest(ctx, description)
	if err != nil {
		return nil, err
	}

	price := json.Number(strconv.FormatInt(suggestion.Price, 10))
	candidate := &validate.Candidate{
		Name:     &suggestion.Name,
		Category: &suggestion.Category,
		Price:    &price,
	}
	if err := validate.Fields(candidate); err != nil {
		return nil, fmt.Errorf("assist service returned an invalid suggestion: %w", err)
	}

	return suggestion, nil
}

// ChatAnswer answers a free-form question about the current inventory using
// the assist service.
func (ps *ProductService) ChatAnswer(ctx context.Context, question string) (string, error) {
	if ps.assist == nil {
		return "", assist.ErrUnavailable
	}

	query := repository.NewQuery()
	query.Limit = 100
	products, err := ps.repo.List(ctx, *query)
	if err != nil {
		return "", err
	}

	return ps.assist.Chat(ctx, question, inventorySummary(products))
}

func inventorySummary(products []*model.Product) string {
	if len(products) == 0 {
		return "The inventory is empty."
	}

	var sb strings.Builder
	for _, p := range products {
		dollars, err := model.FormatPrice(p.Price)
		if err != nil {
			continue
		}
		category := p.Category
		if category == "" {
			category = "uncategorized"
		}
		fmt.Fprintf(&sb, "%s %s (%s): %d units at $%.2f\n", p.SKU, p.Name, category, p.Stock, dollars)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// candidateFrom converts a stored product back into a candidate so a patch
// can be merged over it and the result re-validated as a whole.
func candidateFrom(p *model.Product) *validate.Candidate {
	candidate := &validate.Candidate{
		SKU:      &p.SKU,
		Name:     &p.Name,
		Price:    numberPtr(p.Price),
		Stock:    numberPtr(p.Stock),
		IsActive: &p.IsActive,
	}
	if p.Description != "" {
		candidate.Description = &p.Description
	}
	if p.Category != "" {
		candidate.Category = &p.Category
	}
	if p.Barcode != "" {
		candidate.Barcode = &p.Barcode
	}
	if p.SupplierID != nil {
		candidate.SupplierID = p.SupplierID
	}
	if p.ReorderPoint != nil {
		candidate.ReorderPoint = numberPtr(*p.ReorderPoint)
	}
	if p.ReorderQuantity != nil {
		candidate.ReorderQuantity = numberPtr(*p.ReorderQuantity)
	}
	if p.LeadTimeDays != nil {
		candidate.LeadTimeDays = numberPtr(*p.LeadTimeDays)
	}
	return candidate
}

func applyPatch(merged, patch *validate.Candidate) {
	if patch.SKU != nil {
		merged.SKU = patch.SKU
	}
	if patch.Name != nil {
		merged.Name = patch.Name
	}
	if patch.Description != nil {
		merged.Description = patch.Description
	}
	if patch.Category != nil {
		merged.Category = patch.Category
	}
	if patch.Price != nil {
		merged.Price = patch.Price
	}
	if patch.Stock != nil {
		merged.Stock = patch.Stock
	}
	if patch.Barcode != nil {
		merged.Barcode = patch.Barcode
	}
	if patch.SupplierID != nil {
		merged.SupplierID = patch.SupplierID
	}
	if patch.ReorderPoint != nil {
		merged.ReorderPoint = patch.ReorderPoint
	}
	if patch.ReorderQuantity != nil {
		merged.ReorderQuantity = patch.ReorderQuantity
	}
	if patch.LeadTimeDays != nil {
		merged.LeadTimeDays = patch.LeadTimeDays
	}
	if patch.IsActive != nil {
		merged.IsActive = patch.IsActive
	}
}

func numberPtr(v int64) *json.Number {
	n := json.Number(strconv.FormatInt(v, 10))
	return &n
}

func newInventoryEvent(eventType, action string, p *model.Product) *model.Event {
	data, _ := json.Marshal(sqs.InventoryEventMessage{
		Action:          action,
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Stock:           p.Stock,
		ReorderPoint:    p.ReorderPoint,
		ReorderQuantity: p.ReorderQuantity,
		LeadTimeDays:    p.LeadTimeDays,
	})

	event := &model.Event{
		EventType: eventType,
		EventData: data,
	}
	event.InitMeta()
	return event
}
