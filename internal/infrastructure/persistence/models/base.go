package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/shared"
)

// BaseModel holds the id and timestamps every row carries
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// TenantAggregateModel is the row shape of a tenant-scoped aggregate root.
// Version is the compare-and-swap token of conditional updates.
type TenantAggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null;default:1"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// SetRoot copies the aggregate root fields into the row
func (m *TenantAggregateModel) SetRoot(root shared.TenantAggregateRoot) {
	m.setEntity(root.BaseEntity)
	m.Version = root.Version
	m.TenantID = root.TenantID
	m.CreatedBy = root.CreatedBy
}

// Root rebuilds the aggregate root from the row, with no pending events
func (m *TenantAggregateModel) Root() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.entity(),
			Version:    m.Version,
		},
		TenantID:  m.TenantID,
		CreatedBy: m.CreatedBy,
	}
}
