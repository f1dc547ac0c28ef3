package procurement

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places a stored quantity keeps
const QuantityScale = 4

var (
	hundred = decimal.NewFromInt(100)
	// DECIMAL(18,4) leaves 14 integer digits
	maxStoredValue = decimal.New(1, 14)
)

// LineReceipt is the outcome of applying a receipt to one line
type LineReceipt struct {
	LineID            uuid.UUID
	Quantity          decimal.Decimal
	QuantityReceived  decimal.Decimal
	CompletionPercent int
}

// ApplyReceipt computes the effect of receiving quantity on item without mutating it.
// It fails with OverReceiptError when the line would exceed its ordered quantity.
func ApplyReceipt(item *PurchaseOrderItem, quantity decimal.Decimal) (LineReceipt, error) {
	return applyReceipt(item.ID, item.QuantityOrdered, item.QuantityReceived, quantity)
}

func applyReceipt(lineID uuid.UUID, ordered, received, quantity decimal.Decimal) (LineReceipt, error) {
	if !quantity.IsPositive() {
		return LineReceipt{}, newValidationError("quantity", "quantity to receive must be positive")
	}
	if err := checkStorable("quantity", quantity, QuantityScale); err != nil {
		return LineReceipt{}, err
	}

	newReceived := received.Add(quantity)
	if newReceived.GreaterThan(ordered) {
		return LineReceipt{}, &OverReceiptError{
			LineID:    lineID,
			Ordered:   ordered,
			Received:  received,
			Requested: quantity,
		}
	}

	return LineReceipt{
		LineID:            lineID,
		Quantity:          quantity,
		QuantityReceived:  newReceived,
		CompletionPercent: CompletionPercent(ordered, newReceived),
	}, nil
}

// CompletionPercent returns round(received / ordered * 100), or 0 when nothing was ordered
func CompletionPercent(ordered, received decimal.Decimal) int {
	if !ordered.IsPositive() {
		return 0
	}
	return int(received.Mul(hundred).Div(ordered).Round(0).IntPart())
}

// checkStorable rejects values the store would round or overflow, so the
// ledger never reasons about a quantity other than the one persisted
func checkStorable(field string, v decimal.Decimal, places int32) error {
	if !v.Equal(v.Truncate(places)) {
		return newValidationError(field, fmt.Sprintf("at most %d decimal places are allowed", places))
	}
	if v.Abs().GreaterThanOrEqual(maxStoredValue) {
		return newValidationError(field, "value is too large")
	}
	return nil
}
