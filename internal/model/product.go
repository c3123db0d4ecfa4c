package model

import (
	"errors"
	"time"
)

// ErrNegativePrice is returned by FormatPrice for a negative amount.
var ErrNegativePrice = errors.New("price cannot be negative")

// Product represents a stored inventory record. ID and CreatedAt are
// assigned by the store on creation and never change afterwards.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	Category    string
	Price       int64 // smallest currency unit (cents)
	Stock       int64

	// Optional reorder parameters consumed by the restock advisor.
	Barcode         string
	SupplierID      *int64
	ReorderPoint    *int64
	ReorderQuantity *int64
	LeadTimeDays    *int64
	IsActive        bool

	CreatedAt time.Time
}

// InitMeta assigns the creation timestamp. The record ID comes from the
// database sequence on insert.
func (p *Product) InitMeta() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

// FormatPrice converts a price in cents to a dollar amount.
func FormatPrice(cents int64) (float64, error) {
	if cents < 0 {
		return 0, ErrNegativePrice
	}
	return float64(cents) / 100, nil
}
