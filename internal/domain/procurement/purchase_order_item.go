package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineInput describes a line to add to an order
type LineInput struct {
	Product            ProductSnapshot
	QuantityOrdered    decimal.Decimal
	UnitPrice          decimal.Decimal
	TaxRate            decimal.Decimal
	DiscountPercent    decimal.Decimal
	ExpectedLocationID *uuid.UUID
	Notes              string
}

// LinePatch holds the optional changes of an UpdateLine call
type LinePatch struct {
	QuantityOrdered    *decimal.Decimal
	UnitPrice          *decimal.Decimal
	TaxRate            *decimal.Decimal
	DiscountPercent    *decimal.Decimal
	ExpectedLocationID *uuid.UUID
	Notes              *string
}

// PurchaseOrderItem is a line of a purchase order
type PurchaseOrderItem struct {
	ID                 uuid.UUID
	OrderID            uuid.UUID
	Product            ProductSnapshot
	QuantityOrdered    decimal.Decimal
	QuantityReceived   decimal.Decimal
	UnitPrice          decimal.Decimal
	TaxRate            decimal.Decimal
	DiscountPercent    decimal.Decimal
	ExpectedLocationID *uuid.UUID
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// NewPurchaseOrderItem validates input and creates a line with nothing received
func NewPurchaseOrderItem(orderID uuid.UUID, in LineInput) (*PurchaseOrderItem, error) {
	if err := in.Product.Validate(); err != nil {
		return nil, err
	}
	if !in.QuantityOrdered.IsPositive() {
		return nil, newValidationError("quantity_ordered", "ordered quantity must be positive")
	}
	if err := checkStorable("quantity_ordered", in.QuantityOrdered, QuantityScale); err != nil {
		return nil, err
	}
	if err := validatePricing(in.UnitPrice, in.TaxRate, in.DiscountPercent); err != nil {
		return nil, err
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:                 uuid.New(),
		OrderID:            orderID,
		Product:            in.Product,
		QuantityOrdered:    in.QuantityOrdered,
		QuantityReceived:   decimal.Zero,
		UnitPrice:          in.UnitPrice,
		TaxRate:            in.TaxRate,
		DiscountPercent:    in.DiscountPercent,
		ExpectedLocationID: in.ExpectedLocationID,
		Notes:              in.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func validatePricing(unitPrice, taxRate, discount decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return newValidationError("unit_price", "unit price cannot be negative")
	}
	if err := checkStorable("unit_price", unitPrice, 4); err != nil {
		return err
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return newValidationError("tax_rate", "tax rate must be between 0 and 100")
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return newValidationError("discount_percent", "discount percent must be between 0 and 100")
	}
	if err := checkStorable("tax_rate", taxRate, 2); err != nil {
		return err
	}
	return checkStorable("discount_percent", discount, 2)
}

// QuantityPending is the quantity still expected
func (i *PurchaseOrderItem) QuantityPending() decimal.Decimal {
	return i.QuantityOrdered.Sub(i.QuantityReceived)
}

// IsFullyReceived reports whether nothing is pending on the line
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return !i.QuantityPending().IsPositive()
}

// IsDeleted reports whether the line was soft-deleted
func (i *PurchaseOrderItem) IsDeleted() bool {
	return i.DeletedAt != nil
}

// CompletionPercent returns the received share of the line
func (i *PurchaseOrderItem) CompletionPercent() int {
	return CompletionPercent(i.QuantityOrdered, i.QuantityReceived)
}

// LineTotal is quantity * unit price less the line discount. Tax is informational.
func (i *PurchaseOrderItem) LineTotal() decimal.Decimal {
	gross := i.QuantityOrdered.Mul(i.UnitPrice)
	discount := gross.Mul(i.DiscountPercent).Div(hundred)
	return gross.Sub(discount).Round(2)
}

func (i *PurchaseOrderItem) applyPatch(p LinePatch) error {
	ordered := i.QuantityOrdered
	if p.QuantityOrdered != nil {
		ordered = *p.QuantityOrdered
	}
	if !ordered.IsPositive() {
		return newValidationError("quantity_ordered", "ordered quantity must be positive")
	}
	if err := checkStorable("quantity_ordered", ordered, QuantityScale); err != nil {
		return err
	}
	if ordered.LessThan(i.QuantityReceived) {
		return newValidationError("quantity_ordered", "ordered quantity cannot be less than the quantity already received")
	}

	unitPrice, taxRate, discount := i.UnitPrice, i.TaxRate, i.DiscountPercent
	if p.UnitPrice != nil {
		unitPrice = *p.UnitPrice
	}
	if p.TaxRate != nil {
		taxRate = *p.TaxRate
	}
	if p.DiscountPercent != nil {
		discount = *p.DiscountPercent
	}
	if err := validatePricing(unitPrice, taxRate, discount); err != nil {
		return err
	}

	i.QuantityOrdered = ordered
	i.UnitPrice = unitPrice
	i.TaxRate = taxRate
	i.DiscountPercent = discount
	if p.ExpectedLocationID != nil {
		loc := *p.ExpectedLocationID
		i.ExpectedLocationID = &loc
	}
	if p.Notes != nil {
		i.Notes = *p.Notes
	}
	i.UpdatedAt = time.Now()
	return nil
}
