package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/trade"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate.
// delivered_quantity and status are only moved by the conditional UPDATE in
// the repository's ApplyDelivery.
type PurchaseOrderModel struct {
	AggregateModel
	PONumber          string                    `gorm:"column:po_number;type:varchar(64);not null;uniqueIndex"`
	PartID            uuid.UUID                 `gorm:"type:uuid;not null;index"`
	CustomerID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	TotalQuantity     int                       `gorm:"not null"`
	DeliveredQuantity int                       `gorm:"not null;default:0"`
	Status            trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	Remark            string                    `gorm:"type:text"`
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	return &trade.PurchaseOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PONumber:          m.PONumber,
		PartID:            m.PartID,
		CustomerID:        m.CustomerID,
		TotalQuantity:     m.TotalQuantity,
		DeliveredQuantity: m.DeliveredQuantity,
		Status:            m.Status,
		Remark:            m.Remark,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrder.
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.PONumber = o.PONumber
	m.PartID = o.PartID
	m.CustomerID = o.CustomerID
	m.TotalQuantity = o.TotalQuantity
	m.DeliveredQuantity = o.DeliveredQuantity
	m.Status = o.Status
	m.Remark = o.Remark
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}
