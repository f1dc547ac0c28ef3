package procurement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/domain/procurement"
	"github.com/stockroom/backend/internal/domain/shared"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByLineID(ctx context.Context, tenantID, lineID uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter procurement.ListFilter) ([]procurement.PurchaseOrder, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseOrderRepository) FindForStatistics(ctx context.Context, tenantID uuid.UUID) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder, guard procurement.WriteGuard) error {
	args := m.Called(ctx, order, guard)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) NextOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockSupplierLookup is a mock implementation of SupplierLookup
type MockSupplierLookup struct {
	mock.Mock
}

func (m *MockSupplierLookup) SupplierSnapshot(ctx context.Context, tenantID, supplierID uuid.UUID) (procurement.SupplierSnapshot, error) {
	args := m.Called(ctx, tenantID, supplierID)
	return args.Get(0).(procurement.SupplierSnapshot), args.Error(1)
}

// MockProductLookup is a mock implementation of ProductLookup
type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) ProductSnapshot(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (procurement.ProductSnapshot, error) {
	args := m.Called(ctx, tenantID, productID, variantID)
	return args.Get(0).(procurement.ProductSnapshot), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type serviceFixture struct {
	service   *PurchaseOrderService
	repo      *MockPurchaseOrderRepository
	suppliers *MockSupplierLookup
	products  *MockProductLookup
	publisher *MockEventPublisher
	tenantID  uuid.UUID
	actorID   uuid.UUID
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:      new(MockPurchaseOrderRepository),
		suppliers: new(MockSupplierLookup),
		products:  new(MockProductLookup),
		publisher: new(MockEventPublisher),
		tenantID:  uuid.New(),
		actorID:   uuid.New(),
	}
	f.service = NewPurchaseOrderService(f.repo, f.suppliers, f.products, nil)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func (f *serviceFixture) newOrder(t *testing.T, quantities ...int64) *procurement.PurchaseOrder {
	t.Helper()
	lines := make([]procurement.LineInput, len(quantities))
	for i, q := range quantities {
		lines[i] = procurement.LineInput{
			Product:         procurement.ProductSnapshot{ProductID: uuid.New(), Name: "Widget", SKU: "W-1"},
			QuantityOrdered: decimal.NewFromInt(q),
			UnitPrice:       decimal.NewFromInt(10),
		}
	}
	header := procurement.Header{Supplier: procurement.SupplierSnapshot{Name: "Acme Supply"}}
	order, err := procurement.NewPurchaseOrder(f.tenantID, "PO-2026-00001", header, lines, f.actorID)
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func (f *serviceFixture) approvedOrder(t *testing.T, quantities ...int64) *procurement.PurchaseOrder {
	t.Helper()
	order := f.newOrder(t, quantities...)
	require.NoError(t, order.Submit(f.actorID))
	require.NoError(t, order.Approve(f.actorID))
	order.ClearDomainEvents()
	return order
}

func eventTypes(events []shared.DomainEvent) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

func TestPurchaseOrderService_Create(t *testing.T) {
	t.Run("snapshots supplier and products", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		supplierID := uuid.New()
		productID := uuid.New()

		f.suppliers.On("SupplierSnapshot", ctx, f.tenantID, supplierID).
			Return(procurement.SupplierSnapshot{SupplierID: &supplierID, Name: "Acme Supply", Email: "sales@acme.test"}, nil)
		f.products.On("ProductSnapshot", ctx, f.tenantID, productID, (*uuid.UUID)(nil)).
			Return(procurement.ProductSnapshot{ProductID: productID, Name: "Bolt", SKU: "B-10"}, nil)
		f.repo.On("NextOrderNumber", ctx, f.tenantID).Return("PO-2026-00042", nil)
		f.repo.On("Create", ctx, mock.AnythingOfType("*procurement.PurchaseOrder")).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, f.tenantID, f.actorID, CreatePurchaseOrderRequest{
			SupplierID:   &supplierID,
			SupplierName: "ignored when supplier id is set",
			Lines: []LineRequest{{
				ProductID:       productID,
				SupplierSKU:     "ACME-B10",
				QuantityOrdered: decimal.NewFromInt(5),
				UnitPrice:       decimal.NewFromFloat(2.5),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "PO-2026-00042", resp.OrderNumber)
		assert.Equal(t, string(procurement.StatusDraft), resp.Status)
		assert.Equal(t, "Acme Supply", resp.Supplier.Name)
		assert.Equal(t, &supplierID, resp.Supplier.SupplierID)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Bolt", resp.Items[0].ProductName)
		assert.Equal(t, "ACME-B10", resp.Items[0].SupplierSKU)
		assert.Equal(t, &f.actorID, resp.CreatedBy)

		published := f.publisher.Calls[0].Arguments.Get(1).([]shared.DomainEvent)
		assert.Equal(t, []string{procurement.EventTypePurchaseOrderCreated}, eventTypes(published))
		f.repo.AssertExpectations(t)
	})

	t.Run("takes a fresh number when a concurrent create claimed it", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		productID := uuid.New()
		numbered := func(number string) any {
			return mock.MatchedBy(func(o *procurement.PurchaseOrder) bool { return o.OrderNumber == number })
		}

		f.products.On("ProductSnapshot", ctx, f.tenantID, productID, (*uuid.UUID)(nil)).
			Return(procurement.ProductSnapshot{ProductID: productID, Name: "Bolt", SKU: "B-10"}, nil)
		f.repo.On("NextOrderNumber", ctx, f.tenantID).Return("PO-2026-00007", nil).Once()
		f.repo.On("NextOrderNumber", ctx, f.tenantID).Return("PO-2026-00008", nil).Once()
		f.repo.On("Create", ctx, numbered("PO-2026-00007")).
			Return(&procurement.OrderNumberTakenError{OrderNumber: "PO-2026-00007"})
		f.repo.On("Create", ctx, numbered("PO-2026-00008")).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, f.tenantID, f.actorID, CreatePurchaseOrderRequest{
			SupplierName: "Acme Supply",
			Lines: []LineRequest{{
				ProductID:       productID,
				QuantityOrdered: decimal.NewFromInt(5),
				UnitPrice:       decimal.NewFromInt(2),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "PO-2026-00008", resp.OrderNumber)
		f.repo.AssertExpectations(t)
		f.publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("gives up after repeated number clashes", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		productID := uuid.New()

		f.products.On("ProductSnapshot", ctx, f.tenantID, productID, (*uuid.UUID)(nil)).
			Return(procurement.ProductSnapshot{ProductID: productID, Name: "Bolt", SKU: "B-10"}, nil)
		f.repo.On("NextOrderNumber", ctx, f.tenantID).Return("PO-2026-00007", nil)
		f.repo.On("Create", ctx, mock.AnythingOfType("*procurement.PurchaseOrder")).
			Return(&procurement.OrderNumberTakenError{OrderNumber: "PO-2026-00007"})

		_, err := f.service.Create(ctx, f.tenantID, f.actorID, CreatePurchaseOrderRequest{
			SupplierName: "Acme Supply",
			Lines: []LineRequest{{
				ProductID:       productID,
				QuantityOrdered: decimal.NewFromInt(5),
				UnitPrice:       decimal.NewFromInt(2),
			}},
		})

		var taken *procurement.OrderNumberTakenError
		require.ErrorAs(t, err, &taken)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.repo.AssertNumberOfCalls(t, "Create", maxOrderNumberAttempts)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing supplier name", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		f.repo.On("NextOrderNumber", ctx, f.tenantID).Return("PO-2026-00001", nil)

		_, err := f.service.Create(ctx, f.tenantID, f.actorID, CreatePurchaseOrderRequest{})

		var validationErr *procurement.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "supplier_name", validationErr.Field)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_Submit(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.newOrder(t, 3)

	f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)
	f.repo.On("Save", ctx, order, procurement.WriteGuard{
		Action:          procurement.ActionSubmit,
		ExpectedStatus:  procurement.StatusDraft,
		ExpectedVersion: order.Version,
	}).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := f.service.Submit(ctx, f.tenantID, order.ID, f.actorID)

	require.NoError(t, err)
	assert.Equal(t, string(procurement.StatusPending), resp.Status)
	f.repo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestPurchaseOrderService_GuardRejectsBeforeWrite(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.newOrder(t, 3)
	f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)

	_, err := f.service.Approve(ctx, f.tenantID, order.ID, f.actorID)

	var transitionErr *procurement.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, procurement.StatusDraft, transitionErr.Current)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_ConflictNotPublished(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.newOrder(t, 3)
	conflict := &procurement.ConflictError{OrderID: order.ID, ExpectedVersion: order.Version}

	f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)
	f.repo.On("Save", ctx, order, mock.Anything).Return(conflict)

	_, err := f.service.Submit(ctx, f.tenantID, order.ID, f.actorID)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_PublishFailureIgnored(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.newOrder(t, 3)

	f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)
	f.repo.On("Save", ctx, order, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("sink down"))

	resp, err := f.service.Submit(ctx, f.tenantID, order.ID, f.actorID)

	require.NoError(t, err)
	assert.Equal(t, string(procurement.StatusPending), resp.Status)
	assert.Empty(t, order.GetDomainEvents())
}

func TestPurchaseOrderService_Receive(t *testing.T) {
	t.Run("partial then full", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		order := f.approvedOrder(t, 10)
		lineID := order.Items[0].ID

		f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)
		f.repo.On("Save", ctx, order, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		first, err := f.service.Receive(ctx, f.tenantID, order.ID, f.actorID, ReceiveRequest{
			Items: []ReceiveLineRequest{{LineID: lineID, Quantity: decimal.NewFromInt(6)}},
		})
		require.NoError(t, err)
		assert.Equal(t, string(procurement.StatusApproved), first.PreviousStatus)
		assert.Equal(t, string(procurement.StatusPartiallyReceived), first.Order.Status)
		assert.False(t, first.IsFullyReceived)
		require.Len(t, first.ReceivedLines, 1)
		assert.Equal(t, 60, first.ReceivedLines[0].CompletionPercent)

		second, err := f.service.Receive(ctx, f.tenantID, order.ID, f.actorID, ReceiveRequest{
			Items: []ReceiveLineRequest{{LineID: lineID, Quantity: decimal.NewFromInt(4)}},
		})
		require.NoError(t, err)
		assert.Equal(t, string(procurement.StatusPartiallyReceived), second.PreviousStatus)
		assert.Equal(t, string(procurement.StatusReceived), second.Order.Status)
		assert.True(t, second.IsFullyReceived)

		guard := f.repo.Calls[len(f.repo.Calls)-1].Arguments.Get(2).(procurement.WriteGuard)
		assert.Equal(t, procurement.StatusPartiallyReceived, guard.ExpectedStatus)

		published := f.publisher.Calls[1].Arguments.Get(1).([]shared.DomainEvent)
		assert.Equal(t, []string{
			procurement.EventTypePurchaseOrderGoodsReceived,
			procurement.EventTypePurchaseOrderFullyReceived,
		}, eventTypes(published))
	})

	t.Run("over-receipt writes nothing", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		order := f.approvedOrder(t, 10)

		f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)

		_, err := f.service.Receive(ctx, f.tenantID, order.ID, f.actorID, ReceiveRequest{
			Items: []ReceiveLineRequest{{LineID: order.Items[0].ID, Quantity: decimal.NewFromInt(11)}},
		})

		var overErr *procurement.OverReceiptError
		require.ErrorAs(t, err, &overErr)
		assert.True(t, decimal.NewFromInt(10).Equal(overErr.Pending()))
		assert.True(t, order.Items[0].QuantityReceived.IsZero())
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_AddLines(t *testing.T) {
	t.Run("rejected after approval without catalog lookups", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		order := f.approvedOrder(t, 1)
		f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)

		_, err := f.service.AddLines(ctx, f.tenantID, order.ID, AddLinesRequest{
			Lines: []LineRequest{{ProductID: uuid.New(), QuantityOrdered: decimal.NewFromInt(1)}},
		})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.products.AssertNotCalled(t, "ProductSnapshot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("adds to pending order", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		order := f.newOrder(t, 1)
		require.NoError(t, order.Submit(f.actorID))
		order.ClearDomainEvents()
		productID := uuid.New()

		f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)
		f.products.On("ProductSnapshot", ctx, f.tenantID, productID, (*uuid.UUID)(nil)).
			Return(procurement.ProductSnapshot{ProductID: productID, Name: "Nut"}, nil)
		f.repo.On("Save", ctx, order, mock.Anything).Return(nil)

		resp, err := f.service.AddLines(ctx, f.tenantID, order.ID, AddLinesRequest{
			Lines: []LineRequest{{ProductID: productID, QuantityOrdered: decimal.NewFromInt(2)}},
		})

		require.NoError(t, err)
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, string(procurement.StatusPending), resp.Status)
	})
}

func TestPurchaseOrderService_UpdateLineByLineID(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.newOrder(t, 4)
	lineID := order.Items[0].ID
	qty := decimal.NewFromInt(8)

	f.repo.On("FindByLineID", ctx, f.tenantID, lineID).Return(order, nil)
	f.repo.On("Save", ctx, order, mock.MatchedBy(func(g procurement.WriteGuard) bool {
		return g.Action == procurement.ActionUpdateLine
	})).Return(nil)

	resp, err := f.service.UpdateLine(ctx, f.tenantID, lineID, UpdateLineRequest{QuantityOrdered: &qty})

	require.NoError(t, err)
	assert.True(t, qty.Equal(resp.Items[0].QuantityOrdered))
	f.repo.AssertExpectations(t)
}

func TestPurchaseOrderService_DeleteLine(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.newOrder(t, 4, 5)
	lineID := order.Items[0].ID

	f.repo.On("FindByLineID", ctx, f.tenantID, lineID).Return(order, nil)
	f.repo.On("Save", ctx, order, mock.Anything).Return(nil)

	resp, err := f.service.DeleteLine(ctx, f.tenantID, lineID)

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.NotEqual(t, lineID, resp.Items[0].ID)
}

func TestPurchaseOrderService_UpdateHeaderChangesSupplier(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.newOrder(t, 1)
	newSupplier := uuid.New()

	f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)
	f.suppliers.On("SupplierSnapshot", ctx, f.tenantID, newSupplier).
		Return(procurement.SupplierSnapshot{SupplierID: &newSupplier, Name: "Globex"}, nil)
	f.repo.On("Save", ctx, order, mock.Anything).Return(nil)

	resp, err := f.service.UpdateHeader(ctx, f.tenantID, order.ID, UpdateHeaderRequest{SupplierID: &newSupplier})

	require.NoError(t, err)
	assert.Equal(t, "Globex", resp.Supplier.Name)
	f.suppliers.AssertExpectations(t)
}

func TestPurchaseOrderService_Close(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.approvedOrder(t, 10)
	_, err := order.Receive(f.actorID, []procurement.ReceiptLine{{LineID: order.Items[0].ID, Quantity: decimal.NewFromInt(4)}})
	require.NoError(t, err)
	order.ClearDomainEvents()

	f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)
	f.repo.On("Save", ctx, order, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	_, err = f.service.Close(ctx, f.tenantID, order.ID, f.actorID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	f.service.SetPolicy(procurement.Policy{AllowCloseFromPartiallyReceived: true})
	resp, err := f.service.Close(ctx, f.tenantID, order.ID, f.actorID)
	require.NoError(t, err)
	assert.Equal(t, string(procurement.StatusClosed), resp.Status)
}

func TestPurchaseOrderService_Delete(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	order := f.approvedOrder(t, 1)
	f.repo.On("FindByID", ctx, f.tenantID, order.ID).Return(order, nil)

	err := f.service.Delete(ctx, f.tenantID, order.ID)

	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.False(t, order.IsDeleted())
}

func TestPurchaseOrderService_List(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		f := newServiceFixture()
		ctx := context.Background()
		order := f.newOrder(t, 1)

		f.repo.On("FindAll", ctx, f.tenantID, mock.MatchedBy(func(filter procurement.ListFilter) bool {
			return filter.Page == 1 && filter.PageSize == 20 && filter.OrderBy == "created_at"
		})).Return([]procurement.PurchaseOrder{*order}, int64(41), nil)

		page, err := f.service.List(ctx, f.tenantID, ListFilter{})

		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(41), page.Total)
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.List(context.Background(), f.tenantID, ListFilter{Statuses: []string{"shipped"}})

		var validationErr *procurement.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "status", validationErr.Field)
		f.repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_GetStatistics(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	today := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f.service.SetClock(func() time.Time { return today })

	overdue := f.approvedOrder(t, 1)
	yesterday := today.AddDate(0, 0, -1)
	overdue.ExpectedDeliveryDate = &yesterday
	overdue.TotalAmount = decimal.NewFromInt(100)

	upcoming := f.newOrder(t, 1)
	inThreeDays := today.AddDate(0, 0, 3)
	upcoming.ExpectedDeliveryDate = &inThreeDays
	upcoming.TotalAmount = decimal.NewFromInt(50)

	f.repo.On("FindForStatistics", ctx, f.tenantID).
		Return([]procurement.PurchaseOrder{*overdue, *upcoming}, nil)

	stats, err := f.service.GetStatistics(ctx, f.tenantID)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPOs)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.Equal(t, 1, stats.ExpectedThisWeek)
	assert.True(t, decimal.NewFromInt(150).Equal(stats.TotalValue))
}
