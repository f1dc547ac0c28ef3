package procurement

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/procurement"
)

// SupplierLookup resolves the current supplier record into a snapshot
type SupplierLookup interface {
	SupplierSnapshot(ctx context.Context, tenantID, supplierID uuid.UUID) (procurement.SupplierSnapshot, error)
}

// ProductLookup resolves the current product (and optional variant) into a snapshot
type ProductLookup interface {
	ProductSnapshot(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (procurement.ProductSnapshot, error)
}
