package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/shared"
)

// ListFilter narrows a purchase order listing
type ListFilter struct {
	shared.Filter
	Statuses   []Status
	SupplierID *uuid.UUID
	FromDate   *time.Time
	ToDate     *time.Time
}

// WriteGuard is the compare-and-swap condition of a write.
// The write succeeds only if the stored row still has ExpectedStatus and ExpectedVersion.
type WriteGuard struct {
	Action          Action
	ExpectedStatus  Status
	ExpectedVersion int
}

// GuardFor captures the current status and version of order before it is mutated
func GuardFor(order *PurchaseOrder, action Action) WriteGuard {
	return WriteGuard{
		Action:          action,
		ExpectedStatus:  order.Status,
		ExpectedVersion: order.Version,
	}
}

// PurchaseOrderRepository is the transactional store for purchase orders.
// Every method is scoped by tenant. Soft-deleted orders behave as missing.
type PurchaseOrderRepository interface {
	// FindByID loads an order with all of its lines, deleted lines included.
	// Returns OrderNotFoundError when missing or soft-deleted.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByLineID loads the order owning the line.
	// Returns LineNotFoundError when the line is missing or soft-deleted.
	FindByLineID(ctx context.Context, tenantID, lineID uuid.UUID) (*PurchaseOrder, error)

	// FindAll lists orders with their lines and the total matching count
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]PurchaseOrder, int64, error)

	// FindForStatistics returns every non-deleted order header of the tenant in one read
	FindForStatistics(ctx context.Context, tenantID uuid.UUID) ([]PurchaseOrder, error)

	// Create inserts a new order and its lines
	Create(ctx context.Context, order *PurchaseOrder) error

	// Save writes the header and all lines in one transaction, conditioned on guard.
	// When the condition fails it returns InvalidTransitionError carrying the stored status
	// if the status moved, else ConflictError. On success order.Version is advanced.
	Save(ctx context.Context, order *PurchaseOrder, guard WriteGuard) error

	// NextOrderNumber generates the next PO-YYYY-NNNNN number for the tenant
	NextOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
