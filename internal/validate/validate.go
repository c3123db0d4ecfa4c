// Package validate decides whether a candidate product record is acceptable
// before it reaches storage. It is pure: no I/O, no state, identical results
// for identical input.
package validate

import (
	"encoding/json"
	"strings"

	"github.com/stockkeep/inventory-service/internal/model"
)

// Categories is the fixed set of allowed product categories. Matching is
// case sensitive: "ELECTRONICS" is rejected.
var Categories = []string{"electronics", "books", "clothing", "food", "other"}

// Error reports the first rule a candidate product violated.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Candidate is an untrusted product payload. Pointer fields distinguish an
// absent field from a zero value. Numeric fields stay json.Number so that a
// fractional payload fails the integer check rather than the value check.
type Candidate struct {
	SKU         *string      `json:"sku"`
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	Price       *json.Number `json:"price"`
	Stock       *json.Number `json:"stock"`

	Barcode         *string      `json:"barcode"`
	SupplierID      *int64       `json:"supplier_id"`
	ReorderPoint    *json.Number `json:"reorder_point"`
	ReorderQuantity *json.Number `json:"reorder_quantity"`
	LeadTimeDays    *json.Number `json:"lead_time_days"`
	IsActive        *bool        `json:"is_active"`
}

// Product validates a candidate record and returns the normalized product on
// success. Rules are checked in a fixed order and the first violation wins:
// presence of the candidate, presence of required fields, non-empty strings
// after trimming, price type then value, stock type then value, category
// membership. Identity fields (ID, CreatedAt) are left zero for the store to
// assign.
func Product(c *Candidate) (*model.Product, error) {
	if c == nil {
		return nil, &Error{Message: "product data cannot be null"}
	}

	if c.SKU == nil {
		return nil, missing("sku")
	}
	if c.Name == nil {
		return nil, missing("name")
	}
	if c.Price == nil {
		return nil, missing("price")
	}
	if c.Stock == nil {
		return nil, missing("stock")
	}

	sku := strings.TrimSpace(*c.SKU)
	if sku == "" {
		return nil, empty("sku")
	}
	name := strings.TrimSpace(*c.Name)
	if name == "" {
		return nil, empty("name")
	}

	price, err := c.Price.Int64()
	if err != nil {
		return nil, &Error{Field: "price", Message: "price must be an integer"}
	}
	if price <= 0 {
		return nil, &Error{Field: "price", Message: "price must be positive"}
	}

	stock, err := c.Stock.Int64()
	if err != nil {
		return nil, &Error{Field: "stock", Message: "stock must be an integer"}
	}
	if stock < 0 {
		return nil, &Error{Field: "stock", Message: "stock must be non-negative"}
	}

	category := ""
	if c.Category != nil {
		category = strings.TrimSpace(*c.Category)
		if category == "" {
			return nil, empty("category")
		}
		if !validCategory(category) {
			return nil, &Error{Field: "category", Message: "invalid category"}
		}
	}

	product := &model.Product{
		SKU:      sku,
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	if c.Description != nil {
		product.Description = strings.TrimSpace(*c.Description)
	}
	if c.Barcode != nil {
		product.Barcode = strings.TrimSpace(*c.Barcode)
	}
	if c.SupplierID != nil {
		id := *c.SupplierID
		product.SupplierID = &id
	}
	if c.IsActive != nil {
		product.IsActive = *c.IsActive
	}

	if product.ReorderPoint, err = optionalCount(c.ReorderPoint, "reorder_point"); err != nil {
		return nil, err
	}
	if product.ReorderQuantity, err = optionalCount(c.ReorderQuantity, "reorder_quantity"); err != nil {
		return nil, err
	}
	if product.LeadTimeDays, err = optionalCount(c.LeadTimeDays, "lead_time_days"); err != nil {
		return nil, err
	}

	return product, nil
}

// Fields validates only the fields present on the candidate, skipping the
// presence checks. It is used for untrusted partial records, such as field
// suggestions coming back from the assist service, before they are shown to
// a caller. A record offered to the store still goes through Product.
func Fields(c *Candidate) error {
	if c == nil {
		return &Error{Message: "product data cannot be null"}
	}

	if c.SKU != nil && strings.TrimSpace(*c.SKU) == "" {
		return empty("sku")
	}
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return empty("name")
	}

	if c.Price != nil {
		price, err := c.Price.Int64()
		if err != nil {
			return &Error{Field: "price", Message: "price must be an integer"}
		}
		if price <= 0 {
			return &Error{Field: "price", Message: "price must be positive"}
		}
	}

	if c.Stock != nil {
		stock, err := c.Stock.Int64()
		if err != nil {
			return &Error{Field: "stock", Message: "stock must be an integer"}
		}
		if stock < 0 {
			return &Error{Field: "stock", Message: "stock must be non-negative"}
		}
	}

	if c.Category != nil {
		category := strings.TrimSpace(*c.Category)
		if category == "" {
			return empty("category")
		}
		if !validCategory(category) {
			return &Error{Field: "category", Message: "invalid category"}
		}
	}

	return nil
}

func validCategory(category string) bool {
	for _, known := range Categories {
		if category == known {
			return true
		}
	}
	return false
}

func optionalCount(n *json.Number, field string) (*int64, error) {
	if n == nil {
		return nil, nil
	}
	v, err := n.Int64()
	if err != nil {
		return nil, &Error{Field: field, Message: field + " must be an integer"}
	}
	if v < 0 {
		return nil, &Error{Field: field, Message: field + " must be non-negative"}
	}
	return &v, nil
}

func missing(field string) *Error {
	return &Error{Field: field, Message: "missing required field: " + field}
}

func empty(field string) *Error {
	return &Error{Field: field, Message: field + " cannot be empty"}
}
