package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/procurement"
	"github.com/stockroom/backend/internal/domain/shared"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber          string                   `gorm:"type:varchar(50);not null;index"`
	Status               string                   `gorm:"type:varchar(30);not null;index"`
	PaymentStatus        string                   `gorm:"type:varchar(20);not null"`
	SupplierID           *uuid.UUID               `gorm:"type:uuid;index"`
	SupplierName         string                   `gorm:"type:varchar(200);not null"`
	SupplierEmail        string                   `gorm:"type:varchar(200)"`
	SupplierPhone        string                   `gorm:"type:varchar(50)"`
	PODate               time.Time                `gorm:"column:po_date;not null"`
	ExpectedDeliveryDate *time.Time               `gorm:"index"`
	Subtotal             decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	DiscountAmount       decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	TaxAmount            decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	ShippingCost         decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	TotalAmount          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	AmountPaid           decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Notes                string                   `gorm:"type:text"`
	InternalNotes        string                   `gorm:"type:text"`
	ApprovedBy           *uuid.UUID               `gorm:"type:uuid"`
	ApprovedAt           *time.Time
	CancelledBy          *uuid.UUID               `gorm:"type:uuid"`
	CancelledAt          *time.Time
	CancellationReason   string                   `gorm:"type:varchar(500)"`
	ClosedAt             *time.Time
	DeletedAt            *time.Time               `gorm:"index"`
	Items                []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	order := &procurement.PurchaseOrder{
		Amounts: procurement.Amounts{
			Subtotal:       m.Subtotal,
			DiscountAmount: m.DiscountAmount,
			TaxAmount:      m.TaxAmount,
			ShippingCost:   m.ShippingCost,
			TotalAmount:    m.TotalAmount,
			AmountPaid:     m.AmountPaid,
		},
		OrderNumber:   m.OrderNumber,
		Status:        procurement.Status(m.Status),
		PaymentStatus: procurement.PaymentStatus(m.PaymentStatus),
		Supplier: procurement.SupplierSnapshot{
			SupplierID: m.SupplierID,
			Name:       m.SupplierName,
			Email:      m.SupplierEmail,
			Phone:      m.SupplierPhone,
		},
		PODate:               m.PODate,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		Notes:                m.Notes,
		InternalNotes:        m.InternalNotes,
		ApprovedBy:           m.ApprovedBy,
		ApprovedAt:           m.ApprovedAt,
		CancelledBy:          m.CancelledBy,
		CancelledAt:          m.CancelledAt,
		CancellationReason:   m.CancellationReason,
		ClosedAt:             m.ClosedAt,
		DeletedAt:            m.DeletedAt,
		Items:                make([]procurement.PurchaseOrderItem, len(m.Items)),
	}
	order.TenantAggregateRoot = m.Root()
	for i := range m.Items {
		order.Items[i] = *m.Items[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder.
func (m *PurchaseOrderModel) FromDomain(o *procurement.PurchaseOrder) {
	m.SetRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.Status = string(o.Status)
	m.PaymentStatus = string(o.PaymentStatus)
	m.SupplierID = o.Supplier.SupplierID
	m.SupplierName = o.Supplier.Name
	m.SupplierEmail = o.Supplier.Email
	m.SupplierPhone = o.Supplier.Phone
	m.PODate = o.PODate
	m.ExpectedDeliveryDate = o.ExpectedDeliveryDate
	m.Subtotal = o.Subtotal
	m.DiscountAmount = o.DiscountAmount
	m.TaxAmount = o.TaxAmount
	m.ShippingCost = o.ShippingCost
	m.TotalAmount = o.TotalAmount
	m.AmountPaid = o.AmountPaid
	m.Notes = o.Notes
	m.InternalNotes = o.InternalNotes
	m.ApprovedBy = o.ApprovedBy
	m.ApprovedAt = o.ApprovedAt
	m.CancelledBy = o.CancelledBy
	m.CancelledAt = o.CancelledAt
	m.CancellationReason = o.CancellationReason
	m.ClosedAt = o.ClosedAt
	m.DeletedAt = o.DeletedAt
	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i], o.TenantID)
	}
}

// HeaderColumns returns the mutable header columns for a conditional update.
// Identity columns and version are left to the caller.
func (m *PurchaseOrderModel) HeaderColumns() map[string]interface{} {
	return map[string]interface{}{
		"status":                 m.Status,
		"payment_status":         m.PaymentStatus,
		"supplier_id":            m.SupplierID,
		"supplier_name":          m.SupplierName,
		"supplier_email":         m.SupplierEmail,
		"supplier_phone":         m.SupplierPhone,
		"po_date":                m.PODate,
		"expected_delivery_date": m.ExpectedDeliveryDate,
		"subtotal":               m.Subtotal,
		"discount_amount":        m.DiscountAmount,
		"tax_amount":             m.TaxAmount,
		"shipping_cost":          m.ShippingCost,
		"total_amount":           m.TotalAmount,
		"amount_paid":            m.AmountPaid,
		"notes":                  m.Notes,
		"internal_notes":         m.InternalNotes,
		"approved_by":            m.ApprovedBy,
		"approved_at":            m.ApprovedAt,
		"cancelled_by":           m.CancelledBy,
		"cancelled_at":           m.CancelledAt,
		"cancellation_reason":    m.CancellationReason,
		"closed_at":              m.ClosedAt,
		"deleted_at":             m.DeletedAt,
		"updated_at":             m.UpdatedAt,
	}
}

// PurchaseOrderItemModel is the persistence model for a purchase order line.
// TenantID is denormalized so a line can be looked up by id within a tenant.
type PurchaseOrderItemModel struct {
	BaseModel
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID          *uuid.UUID      `gorm:"type:uuid"`
	ProductName        string          `gorm:"type:varchar(200);not null"`
	SKU                string          `gorm:"column:sku;type:varchar(100)"`
	VariantName        string          `gorm:"type:varchar(200)"`
	SupplierSKU        string          `gorm:"column:supplier_sku;type:varchar(100)"`
	QuantityOrdered    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate            decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	DiscountPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	ExpectedLocationID *uuid.UUID      `gorm:"type:uuid"`
	Notes              string          `gorm:"type:text"`
	DeletedAt          *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem.
func (m *PurchaseOrderItemModel) ToDomain() *procurement.PurchaseOrderItem {
	return &procurement.PurchaseOrderItem{
		ID:      m.ID,
		OrderID: m.OrderID,
		Product: procurement.ProductSnapshot{
			ProductID:   m.ProductID,
			VariantID:   m.VariantID,
			Name:        m.ProductName,
			SKU:         m.SKU,
			VariantName: m.VariantName,
			SupplierSKU: m.SupplierSKU,
		},
		QuantityOrdered:    m.QuantityOrdered,
		QuantityReceived:   m.QuantityReceived,
		UnitPrice:          m.UnitPrice,
		TaxRate:            m.TaxRate,
		DiscountPercent:    m.DiscountPercent,
		ExpectedLocationID: m.ExpectedLocationID,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		DeletedAt:          m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrderItem.
func (m *PurchaseOrderItemModel) FromDomain(i *procurement.PurchaseOrderItem, tenantID uuid.UUID) {
	m.setEntity(shared.BaseEntity{ID: i.ID, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt})
	m.OrderID = i.OrderID
	m.TenantID = tenantID
	m.ProductID = i.Product.ProductID
	m.VariantID = i.Product.VariantID
	m.ProductName = i.Product.Name
	m.SKU = i.Product.SKU
	m.VariantName = i.Product.VariantName
	m.SupplierSKU = i.Product.SupplierSKU
	m.QuantityOrdered = i.QuantityOrdered
	m.QuantityReceived = i.QuantityReceived
	m.UnitPrice = i.UnitPrice
	m.TaxRate = i.TaxRate
	m.DiscountPercent = i.DiscountPercent
	m.ExpectedLocationID = i.ExpectedLocationID
	m.Notes = i.Notes
	m.DeletedAt = i.DeletedAt
}
