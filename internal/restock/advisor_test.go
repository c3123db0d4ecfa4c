package restock_test

import (
	"strings"
	"testing"

	"github.com/stockkeep/inventory-service/internal/model"
	"github.com/stockkeep/inventory-service/internal/restock"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int64) *int64 { return &v }

func TestAdvise_BelowReorderPoint(t *testing.T) {
	p := &model.Product{Name: "Widget", Stock: 5, ReorderPoint: intPtr(10)}

	rec := restock.Advise(p)

	assert.True(t, rec.Restock)
	assert.Equal(t, int64(10), rec.ReorderPoint)
	assert.Contains(t, rec.Suggestion, "Restock recommended")
}

func TestAdvise_AboveReorderPoint(t *testing.T) {
	p := &model.Product{Name: "Widget", Stock: 50, ReorderPoint: intPtr(10)}

	rec := restock.Advise(p)

	assert.False(t, rec.Restock)
	assert.Zero(t, rec.OrderQuantity)
	assert.Contains(t, rec.Suggestion, "No restock needed")
}

func TestAdvise_StockAtReorderPointIsNoAction(t *testing.T) {
	p := &model.Product{Name: "Widget", Stock: 10, ReorderPoint: intPtr(10)}

	rec := restock.Advise(p)

	assert.False(t, rec.Restock)
}

func TestAdvise_DefaultThreshold(t *testing.T) {
	t.Run("low stock without reorder point", func(t *testing.T) {
		p := &model.Product{Name: "Widget", Stock: 5}

		rec := restock.Advise(p)

		assert.True(t, rec.Restock)
		assert.Equal(t, int64(restock.DefaultReorderPoint), rec.ReorderPoint)
	})

	t.Run("healthy stock without reorder point", func(t *testing.T) {
		p := &model.Product{Name: "Widget", Stock: 50}

		rec := restock.Advise(p)

		assert.False(t, rec.Restock)
	})
}

func TestAdvise_OrderQuantity(t *testing.T) {
	t.Run("configured reorder quantity wins", func(t *testing.T) {
		p := &model.Product{Name: "Widget", Stock: 2, ReorderPoint: intPtr(10), ReorderQuantity: intPtr(25)}

		rec := restock.Advise(p)

		assert.Equal(t, int64(25), rec.OrderQuantity)
	})

	t.Run("shortfall heuristic", func(t *testing.T) {
		p := &model.Product{Name: "Widget", Stock: 5, ReorderPoint: intPtr(40)}

		rec := restock.Advise(p)

		assert.Equal(t, int64(35), rec.OrderQuantity)
	})

	t.Run("shortfall floored at minimum order size", func(t *testing.T) {
		p := &model.Product{Name: "Widget", Stock: 9, ReorderPoint: intPtr(10)}

		rec := restock.Advise(p)

		assert.Equal(t, int64(restock.MinimumOrderQuantity), rec.OrderQuantity)
	})
}

func TestAdvise_LeadTimeMentioned(t *testing.T) {
	p := &model.Product{Name: "Widget", Stock: 1, ReorderPoint: intPtr(10), LeadTimeDays: intPtr(3)}

	rec := restock.Advise(p)

	assert.True(t, strings.Contains(rec.Suggestion, "3 days"))
}

func TestAdvise_Deterministic(t *testing.T) {
	p := &model.Product{Name: "Widget", Stock: 5, ReorderPoint: intPtr(10), ReorderQuantity: intPtr(20)}

	first := restock.Advise(p)
	second := restock.Advise(p)

	assert.Equal(t, first, second)
}
