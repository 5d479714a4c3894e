package models

import (
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/catalog"
)

// PartModel is the persistence model for the Part domain entity.
type PartModel struct {
	AggregateModel
	CustomerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_part_customer_no,priority:1"`
	InternalPartNo string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_part_customer_no,priority:2"`
	Name           string    `gorm:"type:varchar(200);not null"`
	SupplierInfo   string    `gorm:"type:text"`
	Specifications string    `gorm:"type:text"`
	PONumber       *string   `gorm:"column:po_number;type:varchar(64)"`
}

// TableName returns the table name for GORM
func (PartModel) TableName() string {
	return "parts"
}

// ToDomain converts the persistence model to a domain Part entity.
func (m *PartModel) ToDomain() *catalog.Part {
	return &catalog.Part{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		InternalPartNo:    m.InternalPartNo,
		Name:              m.Name,
		SupplierInfo:      m.SupplierInfo,
		Specifications:    m.Specifications,
		PONumber:          m.PONumber,
	}
}

// FromDomain populates the persistence model from a domain Part entity.
func (m *PartModel) FromDomain(p *catalog.Part) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CustomerID = p.CustomerID
	m.InternalPartNo = p.InternalPartNo
	m.Name = p.Name
	m.SupplierInfo = p.SupplierInfo
	m.Specifications = p.Specifications
	m.PONumber = p.PONumber
}

// PartModelFromDomain creates a new persistence model from a domain Part entity.
func PartModelFromDomain(p *catalog.Part) *PartModel {
	m := &PartModel{}
	m.FromDomain(p)
	return m
}
