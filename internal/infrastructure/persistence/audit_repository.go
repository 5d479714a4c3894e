package persistence

import (
	"context"

	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts audit entries in one statement
func (r *GormAuditRepository) Append(ctx context.Context, entries ...*audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.AuditLogModel, len(entries))
	for i, e := range entries {
		rows[i] = models.AuditLogModelFromDomain(e)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return shared.WrapStorage("append audit log", err)
	}
	return nil
}

// FindAll finds audit entries matching the filter, newest first by default
func (r *GormAuditRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.Entry, error) {
	var rows []models.AuditLogModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.AuditLogModel{}), filter)
	query = applyPagination(query, filter, AuditLogSortFields, "timestamp")

	if err := query.Find(&rows).Error; err != nil {
		return nil, shared.WrapStorage("list audit log", err)
	}

	entries := make([]audit.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Count counts audit entries matching the filter
func (r *GormAuditRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.AuditLogModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.WrapStorage("count audit log", err)
	}
	return count, nil
}

func (r *GormAuditRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for _, column := range []string{"action", "resource_type", "resource_id", "user_id"} {
		if v, ok := stringFilter(filter, column); ok {
			query = query.Where(column+" = ?", v)
		}
	}
	return query
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)
