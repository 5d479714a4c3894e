package report

import (
	"time"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/trade"
)

// TodaySummary is the dashboard read model
type TodaySummary struct {
	Date            string `json:"date"`
	Timezone        string `json:"timezone"`
	ScannedIn       int64  `json:"scanned_in_today"`
	ScannedInQty    int64  `json:"scanned_in_quantity_today"`
	ScannedOut      int64  `json:"scanned_out_today"`
	ScannedOutQty   int64  `json:"scanned_out_quantity_today"`
	InStockItems    int64  `json:"in_stock_items"`
	InStockQuantity int64  `json:"in_stock_quantity"`
	OutItems        int64  `json:"out_items"`
	PendingDelete   int64  `json:"pending_delete"`
	Damaged         int64  `json:"damaged"`
	POOpen          int64  `json:"po_open"`
	POPartial       int64  `json:"po_partial"`
	POCompleted     int64  `json:"po_completed"`
	POCancelled     int64  `json:"po_cancelled"`
}

// BuildTodaySummary combines today's scan totals with current stock and PO counts
func BuildTodaySummary(
	dayStart time.Time,
	today ActivityTotals,
	stock inventory.StockTotals,
	poCounts map[trade.PurchaseOrderStatus]int64,
) TodaySummary {
	return TodaySummary{
		Date:            dayStart.Format("2006-01-02"),
		Timezone:        dayStart.Location().String(),
		ScannedIn:       today.InCount,
		ScannedInQty:    today.InQuantity,
		ScannedOut:      today.OutCount,
		ScannedOutQty:   today.OutQuantity,
		InStockItems:    stock.InStockItems,
		InStockQuantity: stock.InStockQuantity,
		OutItems:        stock.OutItems,
		PendingDelete:   stock.PendingDelete,
		Damaged:         stock.Damaged,
		POOpen:          poCounts[trade.PurchaseOrderStatusOpen],
		POPartial:       poCounts[trade.PurchaseOrderStatusPartial],
		POCompleted:     poCounts[trade.PurchaseOrderStatusCompleted],
		POCancelled:     poCounts[trade.PurchaseOrderStatusCancelled],
	}
}
