package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockroom/backend/internal/domain/procurement"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

// GormPurchaseOrderRepository implements procurement.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db, now: time.Now}
}

func wrapErr(orderID uuid.UUID, op string, err error) error {
	return fmt.Errorf("purchase order %s: %s: %w", orderID, op, err)
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID loads an order with all of its lines, deleted lines included
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &procurement.OrderNotFoundError{OrderID: id}
		}
		return nil, wrapErr(id, "find", err)
	}
	return model.ToDomain(), nil
}

// FindByLineID loads the order owning an active line
func (r *GormPurchaseOrderRepository) FindByLineID(ctx context.Context, tenantID, lineID uuid.UUID) (*procurement.PurchaseOrder, error) {
	var item models.PurchaseOrderItemModel
	err := r.db.WithContext(ctx).
		Select("id", "order_id").
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, lineID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &procurement.LineNotFoundError{LineID: lineID}
		}
		return nil, fmt.Errorf("purchase order line %s: find: %w", lineID, err)
	}

	order, err := r.FindByID(ctx, tenantID, item.OrderID)
	if err != nil {
		var notFound *procurement.OrderNotFoundError
		if errors.As(err, &notFound) {
			return nil, &procurement.LineNotFoundError{LineID: lineID}
		}
		return nil, err
	}
	return order, nil
}

// FindAll lists orders matching filter with their lines, and the total match count
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter procurement.ListFilter) ([]procurement.PurchaseOrder, int64, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
			Where("tenant_id = ? AND deleted_at IS NULL", tenantID),
		filter,
	)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("purchase orders: count: %w", err)
	}

	sortField := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	var orderModels []models.PurchaseOrderModel
	err := query.Session(&gorm.Session{}).
		Order(fmt.Sprintf("%s %s", sortField, sortOrder)).
		Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Preload("Items", preloadItems).
		Find(&orderModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("purchase orders: list: %w", err)
	}

	orders := make([]procurement.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, total, nil
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter procurement.ListFilter) *gorm.DB {
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.FromDate != nil {
		query = query.Where("po_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		// inclusive of the whole end day
		query = query.Where("po_date < ?", filter.ToDate.AddDate(0, 0, 1))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	return query
}

// FindForStatistics returns every non-deleted order header of the tenant in one read
func (r *GormPurchaseOrderRepository) FindForStatistics(ctx context.Context, tenantID uuid.UUID) ([]procurement.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel
	err := r.db.WithContext(ctx).
		Select("id", "tenant_id", "status", "payment_status", "expected_delivery_date", "total_amount", "amount_paid", "deleted_at").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Find(&orderModels).Error
	if err != nil {
		return nil, fmt.Errorf("purchase orders: statistics: %w", err)
	}

	orders := make([]procurement.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Create inserts a new order and its lines in one transaction. A number
// already used by the tenant yields OrderNumberTakenError.
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *procurement.PurchaseOrder) error {
	model := &models.PurchaseOrderModel{}
	model.FromDomain(order)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			return tx.Create(&items).Error
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// ids are fresh uuids, so the tenant/number key is the one that clashed
		return &procurement.OrderNumberTakenError{OrderNumber: order.OrderNumber}
	}
	if err != nil {
		return wrapErr(order.ID, "create", err)
	}
	return nil
}

// casRow is the stored state read back after a failed conditional update
type casRow struct {
	Status    string
	Version   int
	DeletedAt *time.Time
}

// Save writes the header and all lines in one transaction, conditioned on the
// stored status and version still matching guard.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder, guard procurement.WriteGuard) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order_repository", "save",
		attribute.String("order_id", order.ID.String()),
		attribute.String("action", string(guard.Action)),
	)
	defer span.End()

	model := &models.PurchaseOrderModel{}
	model.FromDomain(order)
	nextVersion := guard.ExpectedVersion + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := model.HeaderColumns()
		columns["version"] = nextVersion

		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND tenant_id = ? AND status = ? AND version = ? AND deleted_at IS NULL",
				order.ID, order.TenantID, string(guard.ExpectedStatus), guard.ExpectedVersion).
			Updates(columns)
		if result.Error != nil {
			return wrapErr(order.ID, "update", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.conditionFailed(tx, order, guard)
		}

		if len(model.Items) == 0 {
			return nil
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&model.Items).Error
		if err != nil {
			return wrapErr(order.ID, "save lines", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	order.Version = nextVersion
	return nil
}

// conditionFailed explains a conditional update that matched no row
func (r *GormPurchaseOrderRepository) conditionFailed(tx *gorm.DB, order *procurement.PurchaseOrder, guard procurement.WriteGuard) error {
	var current casRow
	err := tx.Model(&models.PurchaseOrderModel{}).
		Select("status", "version", "deleted_at").
		Where("id = ? AND tenant_id = ?", order.ID, order.TenantID).
		Take(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &procurement.OrderNotFoundError{OrderID: order.ID}
		}
		return wrapErr(order.ID, "reload", err)
	}
	if current.DeletedAt != nil {
		return &procurement.OrderNotFoundError{OrderID: order.ID}
	}
	if stored := procurement.Status(current.Status); stored != guard.ExpectedStatus {
		return &procurement.InvalidTransitionError{Action: guard.Action, Current: stored}
	}
	return &procurement.ConflictError{OrderID: order.ID, ExpectedVersion: guard.ExpectedVersion}
}

// NextOrderNumber generates the next order number for the tenant.
// Format: PO-YYYY-NNNNN (e.g., PO-2026-00001); the sequence widens past 99999.
// Concurrent callers can get the same number; Create reports the loser.
func (r *GormPurchaseOrderRepository) NextOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("PO-%d-", r.now().Year())

	// soft-deleted orders keep their numbers
	var last models.PurchaseOrderModel
	err := r.db.WithContext(ctx).
		Select("order_number").
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, prefix+"%").
		Order("LENGTH(order_number) DESC, order_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("purchase orders: next number: %w", err)
	}

	next := 1
	if err == nil {
		var n int
		if _, scanErr := fmt.Sscanf(strings.TrimPrefix(last.OrderNumber, prefix), "%d", &n); scanErr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

// Ensure GormPurchaseOrderRepository implements the interface
var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
