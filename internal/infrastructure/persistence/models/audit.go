package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for an audit entry. Rows are only
// ever inserted.
type AuditLogModel struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key"`
	UserID       string       `gorm:"type:varchar(100);index"`
	Username     string       `gorm:"type:varchar(200)"`
	Action       audit.Action `gorm:"type:varchar(40);not null;index"`
	Details      string       `gorm:"type:text"`
	ResourceType string       `gorm:"type:varchar(40);index:idx_audit_resource,priority:1"`
	ResourceID   string       `gorm:"type:varchar(100);index:idx_audit_resource,priority:2"`
	Timestamp    time.Time    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditLogModel) ToDomain() audit.Entry {
	return audit.Entry{
		ID:           m.ID,
		UserID:       m.UserID,
		Username:     m.Username,
		Action:       m.Action,
		Details:      m.Details,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		Timestamp:    m.Timestamp,
	}
}

// AuditLogModelFromDomain creates a new persistence model from a domain audit Entry.
func AuditLogModelFromDomain(e *audit.Entry) *AuditLogModel {
	return &AuditLogModel{
		ID:           e.ID,
		UserID:       e.UserID,
		Username:     e.Username,
		Action:       e.Action,
		Details:      e.Details,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Timestamp:    e.Timestamp,
	}
}

// All returns every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CustomerModel{},
		&PartModel{},
		&PurchaseOrderModel{},
		&InventoryItemModel{},
		&ItemHistoryModel{},
		&AuditLogModel{},
	}
}
