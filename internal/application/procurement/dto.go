package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/procurement"
	"github.com/stockroom/backend/internal/domain/shared"
)

// ==================== Requests ====================

// LineRequest describes a line in create and add-lines requests.
// Product identity fields are snapshotted from the product catalog.
type LineRequest struct {
	ProductID          uuid.UUID       `json:"product_id" binding:"required"`
	VariantID          *uuid.UUID      `json:"variant_id"`
	SupplierSKU        string          `json:"supplier_sku" binding:"max=100"`
	QuantityOrdered    decimal.Decimal `json:"quantity_ordered" binding:"gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price" binding:"gte=0"`
	TaxRate            decimal.Decimal `json:"tax_rate" binding:"gte=0,lte=100"`
	DiscountPercent    decimal.Decimal `json:"discount_percent" binding:"gte=0,lte=100"`
	ExpectedLocationID *uuid.UUID      `json:"expected_location_id"`
	Notes              string          `json:"notes" binding:"max=1000"`
}

// AmountsInput carries the externally computed monetary fields
type AmountsInput struct {
	Subtotal       decimal.Decimal `json:"subtotal" binding:"gte=0"`
	DiscountAmount decimal.Decimal `json:"discount_amount" binding:"gte=0"`
	TaxAmount      decimal.Decimal `json:"tax_amount" binding:"gte=0"`
	ShippingCost   decimal.Decimal `json:"shipping_cost" binding:"gte=0"`
	TotalAmount    decimal.Decimal `json:"total_amount" binding:"gte=0"`
	AmountPaid     decimal.Decimal `json:"amount_paid" binding:"gte=0"`
}

func (a AmountsInput) toDomain() procurement.Amounts {
	return procurement.Amounts{
		Subtotal:       a.Subtotal,
		DiscountAmount: a.DiscountAmount,
		TaxAmount:      a.TaxAmount,
		ShippingCost:   a.ShippingCost,
		TotalAmount:    a.TotalAmount,
		AmountPaid:     a.AmountPaid,
	}
}

// CreatePurchaseOrderRequest creates a draft order. When SupplierID is set the
// supplier fields are snapshotted from the supplier record, otherwise the
// supplied name/email/phone are used as is.
type CreatePurchaseOrderRequest struct {
	SupplierID           *uuid.UUID    `json:"supplier_id"`
	SupplierName         string        `json:"supplier_name" binding:"max=200"`
	SupplierEmail        string        `json:"supplier_email" binding:"omitempty,email"`
	SupplierPhone        string        `json:"supplier_phone" binding:"max=50"`
	PODate               *time.Time    `json:"po_date"`
	ExpectedDeliveryDate *time.Time    `json:"expected_delivery_date"`
	Amounts              AmountsInput  `json:"amounts"`
	PaymentStatus        string        `json:"payment_status" binding:"omitempty,oneof=unpaid partially_paid paid"`
	Notes                string        `json:"notes" binding:"max=2000"`
	Lines                []LineRequest `json:"lines" binding:"dive"`
}

// AddLinesRequest adds lines to a draft or pending order
type AddLinesRequest struct {
	Lines []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateLineRequest patches a line; nil fields are left unchanged
type UpdateLineRequest struct {
	QuantityOrdered    *decimal.Decimal `json:"quantity_ordered" binding:"omitempty,gt=0"`
	UnitPrice          *decimal.Decimal `json:"unit_price" binding:"omitempty,gte=0"`
	TaxRate            *decimal.Decimal `json:"tax_rate" binding:"omitempty,gte=0,lte=100"`
	DiscountPercent    *decimal.Decimal `json:"discount_percent" binding:"omitempty,gte=0,lte=100"`
	ExpectedLocationID *uuid.UUID       `json:"expected_location_id"`
	Notes              *string          `json:"notes" binding:"omitempty,max=1000"`
}

func (r UpdateLineRequest) toPatch() procurement.LinePatch {
	return procurement.LinePatch{
		QuantityOrdered:    r.QuantityOrdered,
		UnitPrice:          r.UnitPrice,
		TaxRate:            r.TaxRate,
		DiscountPercent:    r.DiscountPercent,
		ExpectedLocationID: r.ExpectedLocationID,
		Notes:              r.Notes,
	}
}

// UpdateHeaderRequest patches header fields; nil fields are left unchanged.
// A SupplierID different from the current one re-snapshots the supplier.
type UpdateHeaderRequest struct {
	SupplierID                *uuid.UUID    `json:"supplier_id"`
	PODate                    *time.Time    `json:"po_date"`
	ExpectedDeliveryDate      *time.Time    `json:"expected_delivery_date"`
	ClearExpectedDeliveryDate bool          `json:"clear_expected_delivery_date"`
	Amounts                   *AmountsInput `json:"amounts"`
	PaymentStatus             *string       `json:"payment_status" binding:"omitempty,oneof=unpaid partially_paid paid"`
	Notes                     *string       `json:"notes" binding:"omitempty,max=2000"`
}

func (r UpdateHeaderRequest) toPatch() procurement.HeaderPatch {
	patch := procurement.HeaderPatch{
		PODate:                    r.PODate,
		ExpectedDeliveryDate:      r.ExpectedDeliveryDate,
		ClearExpectedDeliveryDate: r.ClearExpectedDeliveryDate,
		Notes:                     r.Notes,
	}
	if r.Amounts != nil {
		amounts := r.Amounts.toDomain()
		patch.Amounts = &amounts
	}
	if r.PaymentStatus != nil {
		ps := procurement.PaymentStatus(*r.PaymentStatus)
		patch.PaymentStatus = &ps
	}
	return patch
}

// RejectRequest sends a pending order back to draft
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// CancelRequest cancels an order
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReceiveLineRequest is one line of a receipt
type ReceiveLineRequest struct {
	LineID   uuid.UUID       `json:"line_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"gt=0"`
}

// ReceiveRequest receives goods against an approved order
type ReceiveRequest struct {
	Items []ReceiveLineRequest `json:"items" binding:"required,min=1,dive"`
}

func (r ReceiveRequest) toBatch() []procurement.ReceiptLine {
	batch := make([]procurement.ReceiptLine, len(r.Items))
	for i, item := range r.Items {
		batch[i] = procurement.ReceiptLine{LineID: item.LineID, Quantity: item.Quantity}
	}
	return batch
}

// ListFilter represents filter options for the purchase order list
type ListFilter struct {
	Search     string     `form:"search"`
	Statuses   []string   `form:"status"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ListFilter) toDomain() procurement.ListFilter {
	filter := procurement.ListFilter{
		Filter:     shared.DefaultFilter(),
		SupplierID: f.SupplierID,
		FromDate:   f.FromDate,
		ToDate:     f.ToDate,
	}
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	for _, s := range f.Statuses {
		filter.Statuses = append(filter.Statuses, procurement.Status(s))
	}
	return filter
}

// ==================== Responses ====================

// SupplierResponse is the supplier snapshot on an order
type SupplierResponse struct {
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
}

// PurchaseOrderItemResponse is a line in API responses
type PurchaseOrderItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"product_id"`
	VariantID          *uuid.UUID      `json:"variant_id,omitempty"`
	ProductName        string          `json:"product_name"`
	SKU                string          `json:"sku"`
	VariantName        string          `json:"variant_name,omitempty"`
	SupplierSKU        string          `json:"supplier_sku,omitempty"`
	QuantityOrdered    decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived   decimal.Decimal `json:"quantity_received"`
	QuantityPending    decimal.Decimal `json:"quantity_pending"`
	CompletionPercent  int             `json:"completion_percent"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"`
	LineTotal          decimal.Decimal `json:"line_total"`
	ExpectedLocationID *uuid.UUID      `json:"expected_location_id,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// PurchaseOrderResponse is a purchase order in API responses.
// Soft-deleted lines are omitted.
type PurchaseOrderResponse struct {
	ID                   uuid.UUID                   `json:"id"`
	TenantID             uuid.UUID                   `json:"tenant_id"`
	OrderNumber          string                      `json:"order_number"`
	Status               string                      `json:"status"`
	PaymentStatus        string                      `json:"payment_status"`
	Supplier             SupplierResponse            `json:"supplier"`
	PODate               time.Time                   `json:"po_date"`
	ExpectedDeliveryDate *time.Time                  `json:"expected_delivery_date,omitempty"`
	Subtotal             decimal.Decimal             `json:"subtotal"`
	DiscountAmount       decimal.Decimal             `json:"discount_amount"`
	TaxAmount            decimal.Decimal             `json:"tax_amount"`
	ShippingCost         decimal.Decimal             `json:"shipping_cost"`
	TotalAmount          decimal.Decimal             `json:"total_amount"`
	AmountPaid           decimal.Decimal             `json:"amount_paid"`
	Notes                string                      `json:"notes,omitempty"`
	InternalNotes        string                      `json:"internal_notes,omitempty"`
	Items                []PurchaseOrderItemResponse `json:"items"`
	ItemCount            int                         `json:"item_count"`
	CompletionPercent    int                         `json:"completion_percent"`
	CanAddLines          bool                        `json:"can_add_lines"`
	CreatedBy            *uuid.UUID                  `json:"created_by,omitempty"`
	ApprovedBy           *uuid.UUID                  `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time                  `json:"approved_at,omitempty"`
	CancelledBy          *uuid.UUID                  `json:"cancelled_by,omitempty"`
	CancelledAt          *time.Time                  `json:"cancelled_at,omitempty"`
	CancellationReason   string                      `json:"cancellation_reason,omitempty"`
	ClosedAt             *time.Time                  `json:"closed_at,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	Version              int                         `json:"version"`
}

// ReceivedLineResponse is the effect of a receipt on one line
type ReceivedLineResponse struct {
	LineID            uuid.UUID       `json:"line_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	CompletionPercent int             `json:"completion_percent"`
}

// ReceiveResultResponse is the result of a receive call
type ReceiveResultResponse struct {
	Order           PurchaseOrderResponse  `json:"order"`
	ReceivedLines   []ReceivedLineResponse `json:"received_lines"`
	PreviousStatus  string                 `json:"previous_status"`
	IsFullyReceived bool                   `json:"is_fully_received"`
}

// ToPurchaseOrderResponse converts the aggregate to its response DTO
func ToPurchaseOrderResponse(order *procurement.PurchaseOrder) PurchaseOrderResponse {
	active := order.ActiveItems()
	items := make([]PurchaseOrderItemResponse, len(active))
	for i, item := range active {
		items[i] = ToPurchaseOrderItemResponse(item)
	}

	return PurchaseOrderResponse{
		ID:            order.ID,
		TenantID:      order.TenantID,
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Supplier: SupplierResponse{
			SupplierID: order.Supplier.SupplierID,
			Name:       order.Supplier.Name,
			Email:      order.Supplier.Email,
			Phone:      order.Supplier.Phone,
		},
		PODate:               order.PODate,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		Subtotal:             order.Subtotal,
		DiscountAmount:       order.DiscountAmount,
		TaxAmount:            order.TaxAmount,
		ShippingCost:         order.ShippingCost,
		TotalAmount:          order.TotalAmount,
		AmountPaid:           order.AmountPaid,
		Notes:                order.Notes,
		InternalNotes:        order.InternalNotes,
		Items:                items,
		ItemCount:            len(items),
		CompletionPercent:    order.CompletionPercent(),
		CanAddLines:          order.CanAddLines(),
		CreatedBy:            order.CreatedBy,
		ApprovedBy:           order.ApprovedBy,
		ApprovedAt:           order.ApprovedAt,
		CancelledBy:          order.CancelledBy,
		CancelledAt:          order.CancelledAt,
		CancellationReason:   order.CancellationReason,
		ClosedAt:             order.ClosedAt,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		Version:              order.Version,
	}
}

// ToPurchaseOrderItemResponse converts a line to its response DTO
func ToPurchaseOrderItemResponse(item *procurement.PurchaseOrderItem) PurchaseOrderItemResponse {
	return PurchaseOrderItemResponse{
		ID:                 item.ID,
		ProductID:          item.Product.ProductID,
		VariantID:          item.Product.VariantID,
		ProductName:        item.Product.Name,
		SKU:                item.Product.SKU,
		VariantName:        item.Product.VariantName,
		SupplierSKU:        item.Product.SupplierSKU,
		QuantityOrdered:    item.QuantityOrdered,
		QuantityReceived:   item.QuantityReceived,
		QuantityPending:    item.QuantityPending(),
		CompletionPercent:  item.CompletionPercent(),
		UnitPrice:          item.UnitPrice,
		TaxRate:            item.TaxRate,
		DiscountPercent:    item.DiscountPercent,
		LineTotal:          item.LineTotal(),
		ExpectedLocationID: item.ExpectedLocationID,
		Notes:              item.Notes,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
}

// ToPurchaseOrderResponses converts a slice of orders
func ToPurchaseOrderResponses(orders []procurement.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses
}
