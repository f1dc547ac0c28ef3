package procurement

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/shared"
)

// InvalidTransitionError is returned when an action is not allowed from the current status
type InvalidTransitionError struct {
	Action  Action
	Current Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s purchase order in status %s", e.Action, e.Current)
}

func (e *InvalidTransitionError) Unwrap() error {
	return shared.NewDomainError(shared.CodeInvalidState, e.Error())
}

// OverReceiptError is returned when a receipt would push a line past its ordered quantity
type OverReceiptError struct {
	LineID    uuid.UUID
	Ordered   decimal.Decimal
	Received  decimal.Decimal
	Requested decimal.Decimal
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf("receiving %s on line %s exceeds ordered quantity %s (already received %s)",
		e.Requested.String(), e.LineID, e.Ordered.String(), e.Received.String())
}

func (e *OverReceiptError) Unwrap() error {
	return shared.NewDomainError(shared.CodeQuantityExceeded, e.Error())
}

// Pending is the largest quantity that could still be received on the line
func (e *OverReceiptError) Pending() decimal.Decimal {
	return e.Ordered.Sub(e.Received)
}

// LineNotFoundError is returned for unknown or soft-deleted lines
type LineNotFoundError struct {
	LineID uuid.UUID
}

func (e *LineNotFoundError) Error() string {
	return fmt.Sprintf("purchase order line %s not found", e.LineID)
}

func (e *LineNotFoundError) Unwrap() error {
	return shared.NewDomainError(shared.CodeNotFound, e.Error())
}

// OrderNotFoundError is returned for unknown or soft-deleted orders
type OrderNotFoundError struct {
	OrderID uuid.UUID
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("purchase order %s not found", e.OrderID)
}

func (e *OrderNotFoundError) Unwrap() error {
	return shared.NewDomainError(shared.CodeNotFound, e.Error())
}

// OrderNumberTakenError is returned when another order of the tenant already
// holds the number
type OrderNumberTakenError struct {
	OrderNumber string
}

func (e *OrderNumberTakenError) Error() string {
	return fmt.Sprintf("order number %s is already taken", e.OrderNumber)
}

func (e *OrderNumberTakenError) Unwrap() error {
	return shared.NewDomainError(shared.CodeConcurrencyConflict, e.Error())
}

// ValidationError is returned when a required field is missing or malformed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return shared.NewDomainError(shared.CodeValidation, e.Error())
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError is returned when a conditional write lost against a concurrent change
type ConflictError struct {
	OrderID         uuid.UUID
	ExpectedVersion int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("purchase order %s was modified concurrently (expected version %d)", e.OrderID, e.ExpectedVersion)
}

func (e *ConflictError) Unwrap() error {
	return shared.NewDomainError(shared.CodeConcurrencyConflict, e.Error())
}
