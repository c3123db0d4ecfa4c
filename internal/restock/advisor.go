// Package restock derives replenishment recommendations from stored stock
// levels. It is stateless and never performs lookups itself.
package restock

import (
	"fmt"

	"github.com/stockkeep/inventory-service/internal/model"
)

const (
	// DefaultReorderPoint is the low-stock threshold applied when a product
	// has no configured reorder point.
	DefaultReorderPoint = 10

	// MinimumOrderQuantity floors the heuristic order size when no reorder
	// quantity is configured.
	MinimumOrderQuantity = 10
)

// Recommendation is the advisor's answer for a single product.
type Recommendation struct {
	Restock       bool
	OrderQuantity int64
	ReorderPoint  int64
	Suggestion    string
}

// Advise computes a restock recommendation from the product's stock level and
// reorder parameters. Stock at or above the reorder point means no action.
func Advise(p *model.Product) Recommendation {
	point := int64(DefaultReorderPoint)
	if p.ReorderPoint != nil {
		point = *p.ReorderPoint
	}

	if p.Stock >= point {
		return Recommendation{
			ReorderPoint: point,
			Suggestion: fmt.Sprintf("No restock needed for %s: stock level %d meets the reorder point of %d.",
				p.Name, p.Stock, point),
		}
	}

	quantity := point - p.Stock
	if quantity < MinimumOrderQuantity {
		quantity = MinimumOrderQuantity
	}
	if p.ReorderQuantity != nil && *p.ReorderQuantity > 0 {
		quantity = *p.ReorderQuantity
	}

	suggestion := fmt.Sprintf("Restock recommended for %s: order %d units (stock level %d is below the reorder point of %d).",
		p.Name, quantity, p.Stock, point)
	if p.LeadTimeDays != nil && *p.LeadTimeDays > 0 {
		suggestion += fmt.Sprintf(" Supplier lead time is %d days.", *p.LeadTimeDays)
	}

	return Recommendation{
		Restock:       true,
		OrderQuantity: quantity,
		ReorderPoint:  point,
		Suggestion:    suggestion,
	}
}
