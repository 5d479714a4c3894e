package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/testutil"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

var testActor = shared.Actor{UserID: "u-7", Username: "alice"}

// newSQLiteDB opens a private in-memory database with the full schema
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t)
}

type seeded struct {
	customer *partner.Customer
	part     *catalog.Part
	order    *trade.PurchaseOrder
}

// seedOrder stores a customer, one of its parts and a purchase order for it
func seedOrder(t *testing.T, db *gorm.DB, poNumber string, total int) seeded {
	t.Helper()
	ctx := context.Background()

	customer, err := partner.NewCustomer("Acme Logistics "+poNumber, "1 Dock Road", "ops@acme.test", testNow)
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(ctx, customer))

	part, err := catalog.NewPart(customer.ID, "P-"+poNumber, "Bracket", testNow)
	require.NoError(t, err)
	require.NoError(t, NewGormPartRepository(db).Save(ctx, part))

	order, err := trade.NewPurchaseOrder(poNumber, customer.ID, part.ID, total, testNow)
	require.NoError(t, err)
	require.NoError(t, NewGormPurchaseOrderRepository(db).Save(ctx, order))

	return seeded{customer: customer, part: part, order: order}
}

// seedItem stores an IN item against the seeded order
func seedItem(t *testing.T, db *gorm.DB, s seeded, uniqueID string, qty int) *inventory.InventoryItem {
	t.Helper()

	item, err := inventory.NewInventoryItem(inventory.NewItemParams{
		PartID:     s.part.ID,
		POID:       s.order.ID,
		CustomerID: s.customer.ID,
		Quantity:   qty,
		Location:   "A-01",
	}, inventory.Codes{UniqueID: uniqueID, QRPayload: `{"v":1}`, Barcode: uniqueID}, testActor, testNow)
	require.NoError(t, err)
	require.NoError(t, NewGormInventoryItemRepository(db).Create(context.Background(), item))
	return item
}
