package procurement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/shared"
)

// Event type constants for purchase orders
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderSubmitted     = "PurchaseOrderSubmitted"
	EventTypePurchaseOrderApproved      = "PurchaseOrderApproved"
	EventTypePurchaseOrderRejected      = "PurchaseOrderRejected"
	EventTypePurchaseOrderCancelled     = "PurchaseOrderCancelled"
	EventTypePurchaseOrderClosed        = "PurchaseOrderClosed"
	EventTypePurchaseOrderGoodsReceived = "PurchaseOrderGoodsReceived"
	EventTypePurchaseOrderFullyReceived = "PurchaseOrderFullyReceived"
)

// TransitionEventTypes lists the events raised by status changes
var TransitionEventTypes = []string{
	EventTypePurchaseOrderSubmitted,
	EventTypePurchaseOrderApproved,
	EventTypePurchaseOrderRejected,
	EventTypePurchaseOrderCancelled,
	EventTypePurchaseOrderClosed,
	EventTypePurchaseOrderGoodsReceived,
	EventTypePurchaseOrderFullyReceived,
}

var actionEventTypes = map[Action]string{
	ActionSubmit:  EventTypePurchaseOrderSubmitted,
	ActionApprove: EventTypePurchaseOrderApproved,
	ActionReject:  EventTypePurchaseOrderRejected,
	ActionCancel:  EventTypePurchaseOrderCancelled,
	ActionClose:   EventTypePurchaseOrderClosed,
}

// PurchaseOrderCreatedEvent is raised when a draft order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber  string          `json:"order_number"`
	SupplierName string          `json:"supplier_name"`
	LineCount    int             `json:"line_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
}

// NewPurchaseOrderCreatedEvent creates the event for a new order
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		SupplierName:    order.Supplier.Name,
		LineCount:       len(order.Items),
		TotalAmount:     order.TotalAmount,
		CreatedBy:       order.CreatedBy,
	}
}

// PurchaseOrderStatusChangedEvent is raised by submit, approve, reject, cancel and close
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string     `json:"order_number"`
	Action      Action     `json:"action"`
	FromStatus  Status     `json:"from_status"`
	ToStatus    Status     `json:"to_status"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// NewPurchaseOrderStatusChangedEvent creates the event for a status transition
func NewPurchaseOrderStatusChangedEvent(order *PurchaseOrder, action Action, from, to Status, actorID uuid.UUID, reason string) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(actionEventTypes[action], AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		Action:          action,
		FromStatus:      from,
		ToStatus:        to,
		ActorID:         actorPtr(actorID),
		Reason:          reason,
	}
}

// ReceivedLine is a line of a goods received event
type ReceivedLine struct {
	LineID            uuid.UUID       `json:"line_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	CompletionPercent int             `json:"completion_percent"`
}

// PurchaseOrderGoodsReceivedEvent is raised for every applied receipt batch
type PurchaseOrderGoodsReceivedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string         `json:"order_number"`
	FromStatus  Status         `json:"from_status"`
	ToStatus    Status         `json:"to_status"`
	ActorID     *uuid.UUID     `json:"actor_id,omitempty"`
	Lines       []ReceivedLine `json:"lines"`
}

// NewPurchaseOrderGoodsReceivedEvent creates the event for a receipt batch
func NewPurchaseOrderGoodsReceivedEvent(order *PurchaseOrder, actorID uuid.UUID, from Status, receipts []LineReceipt) *PurchaseOrderGoodsReceivedEvent {
	lines := make([]ReceivedLine, 0, len(receipts))
	for _, r := range receipts {
		line := ReceivedLine{
			LineID:            r.LineID,
			Quantity:          r.Quantity,
			QuantityReceived:  r.QuantityReceived,
			CompletionPercent: r.CompletionPercent,
		}
		if item, err := order.FindActiveItem(r.LineID); err == nil {
			line.ProductID = item.Product.ProductID
			line.ProductName = item.Product.Name
		}
		lines = append(lines, line)
	}
	return &PurchaseOrderGoodsReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderGoodsReceived, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		FromStatus:      from,
		ToStatus:        order.Status,
		ActorID:         actorPtr(actorID),
		Lines:           lines,
	}
}

// PurchaseOrderFullyReceivedEvent is raised when the last pending quantity arrives
type PurchaseOrderFullyReceivedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string     `json:"order_number"`
	FromStatus  Status     `json:"from_status"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
}

// NewPurchaseOrderFullyReceivedEvent creates the event for a fully received order
func NewPurchaseOrderFullyReceivedEvent(order *PurchaseOrder, actorID uuid.UUID, from Status) *PurchaseOrderFullyReceivedEvent {
	return &PurchaseOrderFullyReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderFullyReceived, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		FromStatus:      from,
		ActorID:         actorPtr(actorID),
	}
}

func actorPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
