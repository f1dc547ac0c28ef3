package procurement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/shared"
)

// AggregateTypePurchaseOrder is the aggregate type name used in events
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Amounts are the monetary header fields. They are computed outside this package;
// TotalAmount is expected to equal Subtotal - DiscountAmount + TaxAmount + ShippingCost.
type Amounts struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingCost   decimal.Decimal
	TotalAmount    decimal.Decimal
	AmountPaid     decimal.Decimal
}

// Validate rejects negative amounts and amounts the store cannot hold exactly
func (a Amounts) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", a.Subtotal},
		{"discount_amount", a.DiscountAmount},
		{"tax_amount", a.TaxAmount},
		{"shipping_cost", a.ShippingCost},
		{"total_amount", a.TotalAmount},
		{"amount_paid", a.AmountPaid},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return newValidationError(f.name, "amount cannot be negative")
		}
		if err := checkStorable(f.name, f.value, 4); err != nil {
			return err
		}
	}
	return nil
}

// Outstanding is the unpaid part of the total
func (a Amounts) Outstanding() decimal.Decimal {
	return a.TotalAmount.Sub(a.AmountPaid)
}

// Header is the input for creating an order
type Header struct {
	Supplier             SupplierSnapshot
	PODate               time.Time
	ExpectedDeliveryDate *time.Time
	Amounts              Amounts
	PaymentStatus        PaymentStatus
	Notes                string
}

// HeaderPatch holds the optional changes of an UpdateHeader call
type HeaderPatch struct {
	PODate                    *time.Time
	ExpectedDeliveryDate      *time.Time
	ClearExpectedDeliveryDate bool
	Amounts                   *Amounts
	PaymentStatus             *PaymentStatus
	Notes                     *string
}

// ReceiptLine is one (line, quantity) pair of a receipt batch
type ReceiptLine struct {
	LineID   uuid.UUID
	Quantity decimal.Decimal
}

// ReceiptResult describes an applied receipt batch
type ReceiptResult struct {
	Lines      []LineReceipt
	FromStatus Status
	ToStatus   Status
}

// PurchaseOrder is the aggregate root for purchasing from a supplier
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	Amounts
	OrderNumber          string
	Status               Status
	PaymentStatus        PaymentStatus
	Supplier             SupplierSnapshot
	PODate               time.Time
	ExpectedDeliveryDate *time.Time
	Notes                string
	InternalNotes        string
	ApprovedBy           *uuid.UUID
	ApprovedAt           *time.Time
	CancelledBy          *uuid.UUID
	CancelledAt          *time.Time
	CancellationReason   string
	ClosedAt             *time.Time
	DeletedAt            *time.Time
	Items                []PurchaseOrderItem
}

// NewPurchaseOrder creates a draft order. Lines are optional and may be added later.
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, header Header, lines []LineInput, actorID uuid.UUID) (*PurchaseOrder, error) {
	if tenantID == uuid.Nil {
		return nil, newValidationError("tenant_id", "tenant id is required")
	}
	if strings.TrimSpace(orderNumber) == "" {
		return nil, newValidationError("order_number", "order number is required")
	}
	if err := header.Supplier.Validate(); err != nil {
		return nil, err
	}
	if err := header.Amounts.Validate(); err != nil {
		return nil, err
	}
	paymentStatus := header.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentStatusUnpaid
	}
	if !paymentStatus.IsValid() {
		return nil, newValidationError("payment_status", "unknown payment status")
	}
	poDate := header.PODate
	if poDate.IsZero() {
		poDate = time.Now()
	}

	order := &PurchaseOrder{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(tenantID),
		Amounts:              header.Amounts,
		OrderNumber:          orderNumber,
		Status:               StatusDraft,
		PaymentStatus:        paymentStatus,
		Supplier:             header.Supplier,
		PODate:               poDate,
		ExpectedDeliveryDate: header.ExpectedDeliveryDate,
		Notes:                header.Notes,
		Items:                make([]PurchaseOrderItem, 0, len(lines)),
	}
	order.SetCreatedBy(actorID)

	for _, in := range lines {
		item, err := NewPurchaseOrderItem(order.ID, in)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// ActiveItems returns pointers to the lines that are not soft-deleted
func (o *PurchaseOrder) ActiveItems() []*PurchaseOrderItem {
	items := make([]*PurchaseOrderItem, 0, len(o.Items))
	for i := range o.Items {
		if !o.Items[i].IsDeleted() {
			items = append(items, &o.Items[i])
		}
	}
	return items
}

// FindActiveItem returns the non-deleted line with the given id
func (o *PurchaseOrder) FindActiveItem(lineID uuid.UUID) (*PurchaseOrderItem, error) {
	for i := range o.Items {
		if o.Items[i].ID == lineID && !o.Items[i].IsDeleted() {
			return &o.Items[i], nil
		}
	}
	return nil, &LineNotFoundError{LineID: lineID}
}

// IsDeleted reports whether the order was soft-deleted
func (o *PurchaseOrder) IsDeleted() bool {
	return o.DeletedAt != nil
}

// CanAddLines reports whether lines may currently be added.
// Callers use it to short-circuit before submitting line edits.
func (o *PurchaseOrder) CanAddLines() bool {
	return DefaultPolicy().Permits(ActionAddLines, o.Status)
}

// AddLines appends new lines with nothing received
func (o *PurchaseOrder) AddLines(lines []LineInput) ([]*PurchaseOrderItem, error) {
	if err := DefaultPolicy().Guard(ActionAddLines, o.Status); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, newValidationError("lines", "at least one line is required")
	}

	created := make([]PurchaseOrderItem, 0, len(lines))
	for _, in := range lines {
		item, err := NewPurchaseOrderItem(o.ID, in)
		if err != nil {
			return nil, err
		}
		created = append(created, *item)
	}

	start := len(o.Items)
	o.Items = append(o.Items, created...)
	o.Touch()

	added := make([]*PurchaseOrderItem, 0, len(created))
	for i := start; i < len(o.Items); i++ {
		added = append(added, &o.Items[i])
	}
	return added, nil
}

// UpdateLine changes quantities, pricing or notes of an active line
func (o *PurchaseOrder) UpdateLine(lineID uuid.UUID, patch LinePatch) (*PurchaseOrderItem, error) {
	if err := DefaultPolicy().Guard(ActionUpdateLine, o.Status); err != nil {
		return nil, err
	}
	item, err := o.FindActiveItem(lineID)
	if err != nil {
		return nil, err
	}
	if err := item.applyPatch(patch); err != nil {
		return nil, err
	}
	o.Touch()
	return item, nil
}

// DeleteLine soft-deletes a line. The line stays on the order for audit.
func (o *PurchaseOrder) DeleteLine(lineID uuid.UUID) error {
	if err := DefaultPolicy().Guard(ActionDeleteLine, o.Status); err != nil {
		return err
	}
	item, err := o.FindActiveItem(lineID)
	if err != nil {
		return err
	}
	now := time.Now()
	item.DeletedAt = &now
	item.UpdatedAt = now
	o.Touch()
	return nil
}

// UpdateHeader applies header changes. A non-nil supplier replaces the supplier snapshot;
// existing lines are not touched.
func (o *PurchaseOrder) UpdateHeader(patch HeaderPatch, supplier *SupplierSnapshot) error {
	policy := DefaultPolicy()
	if err := policy.Guard(ActionUpdateHeader, o.Status); err != nil {
		return err
	}
	if supplier != nil {
		if err := policy.Guard(ActionChangeSupplier, o.Status); err != nil {
			return err
		}
		if err := supplier.Validate(); err != nil {
			return err
		}
	}
	if patch.Amounts != nil {
		if err := patch.Amounts.Validate(); err != nil {
			return err
		}
	}
	if patch.PaymentStatus != nil && !patch.PaymentStatus.IsValid() {
		return newValidationError("payment_status", "unknown payment status")
	}

	if supplier != nil {
		o.Supplier = *supplier
	}
	if patch.PODate != nil {
		o.PODate = *patch.PODate
	}
	if patch.ClearExpectedDeliveryDate {
		o.ExpectedDeliveryDate = nil
	} else if patch.ExpectedDeliveryDate != nil {
		d := *patch.ExpectedDeliveryDate
		o.ExpectedDeliveryDate = &d
	}
	if patch.Amounts != nil {
		o.Amounts = *patch.Amounts
	}
	if patch.PaymentStatus != nil {
		o.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Notes != nil {
		o.Notes = *patch.Notes
	}
	o.Touch()
	return nil
}

// Submit moves a draft to pending approval
func (o *PurchaseOrder) Submit(actorID uuid.UUID) error {
	return o.transition(ActionSubmit, DefaultPolicy(), actorID, "")
}

// Approve moves a pending order to approved and records the approver
func (o *PurchaseOrder) Approve(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return newValidationError("approved_by", "approver is required")
	}
	if err := DefaultPolicy().Guard(ActionApprove, o.Status); err != nil {
		return err
	}
	now := time.Now()
	o.ApprovedBy = &actorID
	o.ApprovedAt = &now
	return o.transition(ActionApprove, DefaultPolicy(), actorID, "")
}

// Reject sends a pending order back to draft, noting the reason internally
func (o *PurchaseOrder) Reject(actorID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return newValidationError("reason", "rejection reason is required")
	}
	if err := DefaultPolicy().Guard(ActionReject, o.Status); err != nil {
		return err
	}
	note := "Rejected: " + reason
	if o.InternalNotes == "" {
		o.InternalNotes = note
	} else {
		o.InternalNotes = o.InternalNotes + "\n" + note
	}
	return o.transition(ActionReject, DefaultPolicy(), actorID, reason)
}

// Cancel moves the order to cancelled. A reason is required.
func (o *PurchaseOrder) Cancel(actorID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return newValidationError("cancellation_reason", "cancellation reason is required")
	}
	if err := DefaultPolicy().Guard(ActionCancel, o.Status); err != nil {
		return err
	}
	now := time.Now()
	if actorID != uuid.Nil {
		o.CancelledBy = &actorID
	}
	o.CancelledAt = &now
	o.CancellationReason = reason
	return o.transition(ActionCancel, DefaultPolicy(), actorID, reason)
}

// Close finalizes a received order. Whether a partially received order
// may be closed is decided by the policy.
func (o *PurchaseOrder) Close(actorID uuid.UUID, policy Policy) error {
	if err := policy.Guard(ActionClose, o.Status); err != nil {
		return err
	}
	now := time.Now()
	o.ClosedAt = &now
	return o.transition(ActionClose, policy, actorID, "")
}

// SoftDelete marks the order deleted. Only orders that have not been approved may be deleted.
func (o *PurchaseOrder) SoftDelete() error {
	if err := DefaultPolicy().Guard(ActionDelete, o.Status); err != nil {
		return err
	}
	now := time.Now()
	o.DeletedAt = &now
	o.Touch()
	return nil
}

// Receive applies a batch of receipts. The batch is checked against the ledger in
// full before any line is changed; on error the order is left untouched. Ledger
// failures are reported before the status guard, so receiving more on a fully
// received order is an over-receipt. On success the status becomes received when
// no active line has a pending quantity, else partially_received.
func (o *PurchaseOrder) Receive(actorID uuid.UUID, batch []ReceiptLine) (*ReceiptResult, error) {
	if len(batch) == 0 {
		return nil, newValidationError("items", "receipt batch must contain at least one line")
	}

	// running totals so repeated lines in one batch accumulate
	running := make(map[uuid.UUID]decimal.Decimal, len(batch))
	receipts := make([]LineReceipt, 0, len(batch))
	for _, r := range batch {
		item, err := o.FindActiveItem(r.LineID)
		if err != nil {
			return nil, err
		}
		received, seen := running[item.ID]
		if !seen {
			received = item.QuantityReceived
		}
		receipt, err := applyReceipt(item.ID, item.QuantityOrdered, received, r.Quantity)
		if err != nil {
			return nil, err
		}
		running[item.ID] = receipt.QuantityReceived
		receipts = append(receipts, receipt)
	}

	if err := DefaultPolicy().Guard(ActionReceive, o.Status); err != nil {
		return nil, err
	}

	now := time.Now()
	for lineID, received := range running {
		item, _ := o.FindActiveItem(lineID)
		item.QuantityReceived = received
		item.UpdatedAt = now
	}

	from := o.Status
	to := o.derivedReceiveStatus()
	o.Status = to
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderGoodsReceivedEvent(o, actorID, from, receipts))
	if to == StatusReceived {
		o.AddDomainEvent(NewPurchaseOrderFullyReceivedEvent(o, actorID, from))
	}

	return &ReceiptResult{Lines: receipts, FromStatus: from, ToStatus: to}, nil
}

func (o *PurchaseOrder) derivedReceiveStatus() Status {
	for _, item := range o.ActiveItems() {
		if item.QuantityPending().IsPositive() {
			return StatusPartiallyReceived
		}
	}
	return StatusReceived
}

// transition moves the status along the table and records the event.
// Callers set the audit fields before calling it.
func (o *PurchaseOrder) transition(action Action, policy Policy, actorID uuid.UUID, reason string) error {
	if err := policy.Guard(action, o.Status); err != nil {
		return err
	}
	to, ok := Target(action)
	if !ok {
		return &InvalidTransitionError{Action: action, Current: o.Status}
	}
	from := o.Status
	o.Status = to
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, action, from, to, actorID, reason))
	return nil
}

// TotalOrdered sums the ordered quantity of active lines
func (o *PurchaseOrder) TotalOrdered() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.ActiveItems() {
		total = total.Add(item.QuantityOrdered)
	}
	return total
}

// TotalReceived sums the received quantity of active lines
func (o *PurchaseOrder) TotalReceived() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.ActiveItems() {
		total = total.Add(item.QuantityReceived)
	}
	return total
}

// CompletionPercent is the received share across active lines
func (o *PurchaseOrder) CompletionPercent() int {
	return CompletionPercent(o.TotalOrdered(), o.TotalReceived())
}
