package models

import (
	"time"

	"github.com/google/uuid"
)

// SupplierModel is the read side of the suppliers table
type SupplierModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(200)"`
	Phone     string    `gorm:"type:varchar(50)"`
	DeletedAt *time.Time
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ProductModel is the read side of the products table
type ProductModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	SKU       string    `gorm:"column:sku;type:varchar(100)"`
	DeletedAt *time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ProductVariantModel is the read side of the product_variants table
type ProductVariantModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	SKU       string    `gorm:"column:sku;type:varchar(100)"`
	DeletedAt *time.Time
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}
