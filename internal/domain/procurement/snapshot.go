package procurement

import (
	"strings"

	"github.com/google/uuid"
)

// SupplierSnapshot is the supplier identity copied onto an order.
// It is never re-derived from the live supplier record after it is taken.
type SupplierSnapshot struct {
	SupplierID *uuid.UUID
	Name       string
	Email      string
	Phone      string
}

// Validate requires a supplier name
func (s SupplierSnapshot) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return newValidationError("supplier_name", "supplier name is required")
	}
	if len(s.Name) > 200 {
		return newValidationError("supplier_name", "supplier name cannot exceed 200 characters")
	}
	return nil
}

// SameSupplier reports whether both snapshots point at the same supplier record
func (s SupplierSnapshot) SameSupplier(other SupplierSnapshot) bool {
	if s.SupplierID == nil || other.SupplierID == nil {
		return s.SupplierID == nil && other.SupplierID == nil
	}
	return *s.SupplierID == *other.SupplierID
}

// ProductSnapshot is the product identity copied onto an order line
type ProductSnapshot struct {
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	Name        string
	SKU         string
	VariantName string
	SupplierSKU string
}

// Validate requires a product reference and name
func (p ProductSnapshot) Validate() error {
	if p.ProductID == uuid.Nil {
		return newValidationError("product_id", "product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return newValidationError("product_name", "product name is required")
	}
	return nil
}
