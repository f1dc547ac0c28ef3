package procurement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/procurement"
	"github.com/stockroom/backend/internal/domain/shared"
)

// maxOrderNumberAttempts bounds retries when concurrent creates race for a number
const maxOrderNumberAttempts = 3

// PurchaseOrderService runs the purchase order workflow against the store.
// Every mutation is load, domain guard, conditional write, then publish.
type PurchaseOrderService struct {
	orderRepo      procurement.PurchaseOrderRepository
	suppliers      SupplierLookup
	products       ProductLookup
	policy         procurement.Policy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo procurement.PurchaseOrderRepository,
	suppliers SupplierLookup,
	products ProductLookup,
	log *zap.Logger,
) *PurchaseOrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		suppliers: suppliers,
		products:  products,
		policy:    procurement.DefaultPolicy(),
		logger:    log,
		now:       time.Now,
	}
}

// SetEventPublisher sets the audit/notification sink
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPolicy replaces the lifecycle policy
func (s *PurchaseOrderService) SetPolicy(policy procurement.Policy) {
	s.policy = policy
}

// SetClock overrides the clock used for statistics
func (s *PurchaseOrderService) SetClock(now func() time.Time) {
	s.now = now
}

// Create creates a draft purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	supplier := procurement.SupplierSnapshot{
		SupplierID: req.SupplierID,
		Name:       req.SupplierName,
		Email:      req.SupplierEmail,
		Phone:      req.SupplierPhone,
	}
	if req.SupplierID != nil {
		snapshot, err := s.suppliers.SupplierSnapshot(ctx, tenantID, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		supplier = snapshot
	}

	lines, err := s.resolveLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}

	header := procurement.Header{
		Supplier:             supplier,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Amounts:              req.Amounts.toDomain(),
		PaymentStatus:        procurement.PaymentStatus(req.PaymentStatus),
		Notes:                req.Notes,
	}
	if req.PODate != nil {
		header.PODate = *req.PODate
	}

	order, err := s.createNumbered(ctx, tenantID, actorID, header, lines)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// createNumbered allocates an order number and inserts the order, taking a
// fresh number when a concurrent create claimed the same one.
func (s *PurchaseOrderService) createNumbered(ctx context.Context, tenantID, actorID uuid.UUID, header procurement.Header, lines []procurement.LineInput) (*procurement.PurchaseOrder, error) {
	var taken *procurement.OrderNumberTakenError
	for attempt := 1; ; attempt++ {
		orderNumber, err := s.orderRepo.NextOrderNumber(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		order, err := procurement.NewPurchaseOrder(tenantID, orderNumber, header, lines, actorID)
		if err != nil {
			return nil, err
		}

		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.As(err, &taken) || attempt == maxOrderNumberAttempts {
			return nil, err
		}
		s.logger.Debug("order number taken, retrying",
			zap.String("order_number", orderNumber),
			zap.Int("attempt", attempt),
		)
	}
}

// GetByID retrieves a purchase order
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves a page of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*shared.Paginated[PurchaseOrderResponse], error) {
	domainFilter := filter.toDomain()
	for _, status := range domainFilter.Statuses {
		if !status.IsValid() {
			return nil, &procurement.ValidationError{Field: "status", Message: "unknown status " + string(status)}
		}
	}

	orders, total, err := s.orderRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToPurchaseOrderResponses(orders), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// AddLines adds lines to a draft or pending order
func (s *PurchaseOrderService) AddLines(ctx context.Context, tenantID, orderID uuid.UUID, req AddLinesRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	// fail before touching the product catalog
	if !order.CanAddLines() {
		return nil, &procurement.InvalidTransitionError{Action: procurement.ActionAddLines, Current: order.Status}
	}

	lines, err := s.resolveLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, order, procurement.ActionAddLines, func(o *procurement.PurchaseOrder) error {
		_, err := o.AddLines(lines)
		return err
	})
}

// UpdateLine patches a line, locating its order by line id
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, tenantID, lineID uuid.UUID, req UpdateLineRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByLineID(ctx, tenantID, lineID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, order, procurement.ActionUpdateLine, func(o *procurement.PurchaseOrder) error {
		_, err := o.UpdateLine(lineID, req.toPatch())
		return err
	})
}

// DeleteLine soft-deletes a line, locating its order by line id
func (s *PurchaseOrderService) DeleteLine(ctx context.Context, tenantID, lineID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByLineID(ctx, tenantID, lineID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, order, procurement.ActionDeleteLine, func(o *procurement.PurchaseOrder) error {
		return o.DeleteLine(lineID)
	})
}

// UpdateHeader patches header fields. A changed supplier is re-snapshotted from the supplier record.
func (s *PurchaseOrderService) UpdateHeader(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateHeaderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	var supplier *procurement.SupplierSnapshot
	if req.SupplierID != nil && (order.Supplier.SupplierID == nil || *order.Supplier.SupplierID != *req.SupplierID) {
		snapshot, err := s.suppliers.SupplierSnapshot(ctx, tenantID, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		supplier = &snapshot
	}

	return s.save(ctx, order, procurement.ActionUpdateHeader, func(o *procurement.PurchaseOrder) error {
		return o.UpdateHeader(req.toPatch(), supplier)
	})
}

// Submit moves a draft to pending approval
func (s *PurchaseOrderService) Submit(ctx context.Context, tenantID, orderID, actorID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, procurement.ActionSubmit, func(o *procurement.PurchaseOrder) error {
		return o.Submit(actorID)
	})
}

// Approve approves a pending order
func (s *PurchaseOrderService) Approve(ctx context.Context, tenantID, orderID, actorID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, procurement.ActionApprove, func(o *procurement.PurchaseOrder) error {
		return o.Approve(actorID)
	})
}

// Reject sends a pending order back to draft
func (s *PurchaseOrderService) Reject(ctx context.Context, tenantID, orderID, actorID uuid.UUID, req RejectRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, procurement.ActionReject, func(o *procurement.PurchaseOrder) error {
		return o.Reject(actorID, req.Reason)
	})
}

// Cancel cancels an order that has not been fully received
func (s *PurchaseOrderService) Cancel(ctx context.Context, tenantID, orderID, actorID uuid.UUID, req CancelRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, procurement.ActionCancel, func(o *procurement.PurchaseOrder) error {
		return o.Cancel(actorID, req.Reason)
	})
}

// Close finalizes a received order, or a partially received one when the policy allows it
func (s *PurchaseOrderService) Close(ctx context.Context, tenantID, orderID, actorID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, procurement.ActionClose, func(o *procurement.PurchaseOrder) error {
		return o.Close(actorID, s.policy)
	})
}

// Receive applies a receipt batch. Lines and the derived status are written in one transaction.
func (s *PurchaseOrderService) Receive(ctx context.Context, tenantID, orderID, actorID uuid.UUID, req ReceiveRequest) (*ReceiveResultResponse, error) {
	var result *procurement.ReceiptResult
	response, err := s.mutate(ctx, tenantID, orderID, procurement.ActionReceive, func(o *procurement.PurchaseOrder) error {
		r, err := o.Receive(actorID, req.toBatch())
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	lines := make([]ReceivedLineResponse, len(result.Lines))
	for i, l := range result.Lines {
		lines[i] = ReceivedLineResponse{
			LineID:            l.LineID,
			Quantity:          l.Quantity,
			QuantityReceived:  l.QuantityReceived,
			CompletionPercent: l.CompletionPercent,
		}
	}

	s.logger.Info("purchase order goods received",
		zap.String("order_id", orderID.String()),
		zap.Int("lines", len(lines)),
		zap.String("from_status", string(result.FromStatus)),
		zap.String("to_status", string(result.ToStatus)),
	)

	return &ReceiveResultResponse{
		Order:           *response,
		ReceivedLines:   lines,
		PreviousStatus:  string(result.FromStatus),
		IsFullyReceived: result.ToStatus == procurement.StatusReceived,
	}, nil
}

// Delete soft-deletes an order that has not been approved
func (s *PurchaseOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	_, err := s.mutate(ctx, tenantID, orderID, procurement.ActionDelete, func(o *procurement.PurchaseOrder) error {
		return o.SoftDelete()
	})
	return err
}

// GetStatistics computes the statistics of all non-deleted orders of the tenant
func (s *PurchaseOrderService) GetStatistics(ctx context.Context, tenantID uuid.UUID) (*procurement.Statistics, error) {
	orders, err := s.orderRepo.FindForStatistics(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats := procurement.ComputeStatistics(orders, s.now())
	return &stats, nil
}

// mutate loads an order and runs fn under a conditional write
func (s *PurchaseOrderService) mutate(
	ctx context.Context,
	tenantID, orderID uuid.UUID,
	action procurement.Action,
	fn func(*procurement.PurchaseOrder) error,
) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, order, action, fn)
}

// save captures the write guard before fn changes the order, so the write only
// lands if nobody else moved the order in between
func (s *PurchaseOrderService) save(
	ctx context.Context,
	order *procurement.PurchaseOrder,
	action procurement.Action,
	fn func(*procurement.PurchaseOrder) error,
) (*PurchaseOrderResponse, error) {
	guard := procurement.GuardFor(order, action)
	if err := fn(order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order, guard); err != nil {
		return nil, err
	}

	s.publish(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// publish hands pending events to the sink. Failures are logged and never undo the write.
func (s *PurchaseOrderService) publish(ctx context.Context, order *procurement.PurchaseOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish purchase order events",
			zap.String("order_id", order.ID.String()),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}

func (s *PurchaseOrderService) resolveLines(ctx context.Context, tenantID uuid.UUID, reqs []LineRequest) ([]procurement.LineInput, error) {
	lines := make([]procurement.LineInput, 0, len(reqs))
	for _, r := range reqs {
		product, err := s.products.ProductSnapshot(ctx, tenantID, r.ProductID, r.VariantID)
		if err != nil {
			return nil, err
		}
		product.SupplierSKU = r.SupplierSKU
		lines = append(lines, procurement.LineInput{
			Product:            product,
			QuantityOrdered:    r.QuantityOrdered,
			UnitPrice:          r.UnitPrice,
			TaxRate:            r.TaxRate,
			DiscountPercent:    r.DiscountPercent,
			ExpectedLocationID: r.ExpectedLocationID,
			Notes:              r.Notes,
		})
	}
	return lines, nil
}
