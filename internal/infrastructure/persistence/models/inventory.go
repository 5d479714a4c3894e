package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/inventory"
)

// InventoryItemModel is the persistence model for the InventoryItem aggregate.
// The pending delete request is stored inline; the columns are NULL when no
// request is pending.
type InventoryItemModel struct {
	AggregateModel
	UniqueID             string               `gorm:"type:varchar(64);not null;uniqueIndex"`
	PartID               uuid.UUID            `gorm:"type:uuid;not null;index"`
	POID                 uuid.UUID            `gorm:"column:po_id;type:uuid;not null;index"`
	CustomerID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	Quantity             int                  `gorm:"not null"`
	Status               inventory.ItemStatus `gorm:"type:varchar(20);not null;default:'IN';index"`
	LotID                string               `gorm:"type:varchar(100);index"`
	GateID               string               `gorm:"type:varchar(100)"`
	Location             string               `gorm:"type:varchar(200)"`
	QRCodeData           string               `gorm:"column:qr_code_data;type:text"`
	Barcode              string               `gorm:"type:varchar(64)"`
	CreatedBy            string               `gorm:"type:varchar(100)"`
	DeleteRequestedBy    *string              `gorm:"type:varchar(100)"`
	DeleteRequestedName  *string              `gorm:"type:varchar(200)"`
	DeleteReason         *string              `gorm:"type:text"`
	DeleteRequestedAt    *time.Time
	DeletePreviousStatus *inventory.ItemStatus `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem (without history).
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	item := &inventory.InventoryItem{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UniqueID:          m.UniqueID,
		PartID:            m.PartID,
		POID:              m.POID,
		CustomerID:        m.CustomerID,
		Quantity:          m.Quantity,
		Status:            m.Status,
		LotID:             m.LotID,
		GateID:            m.GateID,
		Location:          m.Location,
		QRCodeData:        m.QRCodeData,
		Barcode:           m.Barcode,
		CreatedBy:         m.CreatedBy,
	}
	if m.DeleteRequestedAt != nil {
		req := &inventory.DeleteRequest{RequestedAt: *m.DeleteRequestedAt}
		if m.DeleteRequestedBy != nil {
			req.UserID = *m.DeleteRequestedBy
		}
		if m.DeleteRequestedName != nil {
			req.Username = *m.DeleteRequestedName
		}
		if m.DeleteReason != nil {
			req.Reason = *m.DeleteReason
		}
		if m.DeletePreviousStatus != nil {
			req.PreviousStatus = *m.DeletePreviousStatus
		}
		item.DeleteRequest = req
	}
	return item
}

// FromDomain populates the persistence model from a domain InventoryItem.
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.UniqueID = i.UniqueID
	m.PartID = i.PartID
	m.POID = i.POID
	m.CustomerID = i.CustomerID
	m.Quantity = i.Quantity
	m.Status = i.Status
	m.LotID = i.LotID
	m.GateID = i.GateID
	m.Location = i.Location
	m.QRCodeData = i.QRCodeData
	m.Barcode = i.Barcode
	m.CreatedBy = i.CreatedBy
	m.SetDeleteRequest(i.DeleteRequest)
}

// SetDeleteRequest writes (or clears, when nil) the inline delete request columns
func (m *InventoryItemModel) SetDeleteRequest(req *inventory.DeleteRequest) {
	if req == nil {
		m.DeleteRequestedBy = nil
		m.DeleteRequestedName = nil
		m.DeleteReason = nil
		m.DeleteRequestedAt = nil
		m.DeletePreviousStatus = nil
		return
	}
	at := req.RequestedAt
	prev := req.PreviousStatus
	m.DeleteRequestedBy = &req.UserID
	m.DeleteRequestedName = &req.Username
	m.DeleteReason = &req.Reason
	m.DeleteRequestedAt = &at
	m.DeletePreviousStatus = &prev
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// ItemHistoryModel is one append-only row of an item's status history
type ItemHistoryModel struct {
	ID        uuid.UUID               `gorm:"type:uuid;primary_key"`
	ItemID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	Status    inventory.ItemStatus    `gorm:"type:varchar(20);not null"`
	Action    inventory.HistoryAction `gorm:"type:varchar(30);not null;index:idx_item_history_action_ts,priority:1"`
	Quantity  int                     `gorm:"not null"`
	UserID    string                  `gorm:"type:varchar(100)"`
	Username  string                  `gorm:"type:varchar(200)"`
	Notes     string                  `gorm:"type:text"`
	Timestamp time.Time               `gorm:"not null;index:idx_item_history_action_ts,priority:2"`
}

// TableName returns the table name for GORM
func (ItemHistoryModel) TableName() string {
	return "item_history"
}

// ToDomain converts the persistence model to a domain HistoryEntry.
func (m *ItemHistoryModel) ToDomain() inventory.HistoryEntry {
	return inventory.HistoryEntry{
		ID:        m.ID,
		ItemID:    m.ItemID,
		Status:    m.Status,
		Action:    m.Action,
		Quantity:  m.Quantity,
		UserID:    m.UserID,
		Username:  m.Username,
		Notes:     m.Notes,
		Timestamp: m.Timestamp,
	}
}

// ItemHistoryModelFromDomain creates a new persistence model from a domain HistoryEntry.
func ItemHistoryModelFromDomain(e inventory.HistoryEntry) *ItemHistoryModel {
	return &ItemHistoryModel{
		ID:        e.ID,
		ItemID:    e.ItemID,
		Status:    e.Status,
		Action:    e.Action,
		Quantity:  e.Quantity,
		UserID:    e.UserID,
		Username:  e.Username,
		Notes:     e.Notes,
		Timestamp: e.Timestamp,
	}
}
