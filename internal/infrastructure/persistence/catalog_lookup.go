package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroom/backend/internal/domain/procurement"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
)

// GormCatalogLookup snapshots suppliers and products from the catalog tables
type GormCatalogLookup struct {
	db *gorm.DB
}

// NewGormCatalogLookup creates a new GormCatalogLookup
func NewGormCatalogLookup(db *gorm.DB) *GormCatalogLookup {
	return &GormCatalogLookup{db: db}
}

// SupplierSnapshot copies the supplier's current name and contact details
func (l *GormCatalogLookup) SupplierSnapshot(ctx context.Context, tenantID, supplierID uuid.UUID) (procurement.SupplierSnapshot, error) {
	var supplier models.SupplierModel
	err := l.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, supplierID).
		First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return procurement.SupplierSnapshot{}, &procurement.ValidationError{
				Field:   "supplier_id",
				Message: fmt.Sprintf("supplier %s not found", supplierID),
			}
		}
		return procurement.SupplierSnapshot{}, fmt.Errorf("supplier %s: find: %w", supplierID, err)
	}

	id := supplier.ID
	return procurement.SupplierSnapshot{
		SupplierID: &id,
		Name:       supplier.Name,
		Email:      supplier.Email,
		Phone:      supplier.Phone,
	}, nil
}

// ProductSnapshot copies the product's name and SKU, or the variant's when variantID is set
func (l *GormCatalogLookup) ProductSnapshot(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (procurement.ProductSnapshot, error) {
	var product models.ProductModel
	err := l.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return procurement.ProductSnapshot{}, &procurement.ValidationError{
				Field:   "product_id",
				Message: fmt.Sprintf("product %s not found", productID),
			}
		}
		return procurement.ProductSnapshot{}, fmt.Errorf("product %s: find: %w", productID, err)
	}

	snapshot := procurement.ProductSnapshot{
		ProductID: product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
	}
	if variantID == nil {
		return snapshot, nil
	}

	var variant models.ProductVariantModel
	err = l.db.WithContext(ctx).
		Where("product_id = ? AND id = ? AND deleted_at IS NULL", productID, *variantID).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return procurement.ProductSnapshot{}, &procurement.ValidationError{
				Field:   "variant_id",
				Message: fmt.Sprintf("variant %s not found for product %s", *variantID, productID),
			}
		}
		return procurement.ProductSnapshot{}, fmt.Errorf("product variant %s: find: %w", *variantID, err)
	}

	vid := variant.ID
	snapshot.VariantID = &vid
	snapshot.VariantName = variant.Name
	if variant.SKU != "" {
		snapshot.SKU = variant.SKU
	}
	return snapshot, nil
}
