package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/wms/backend/internal/domain/inventory"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StockProvider supplies current stock totals for the periodic gauges.
// The inventory item repository satisfies it.
type StockProvider interface {
	StockTotals(ctx context.Context) (inventory.StockTotals, error)
}

// ScanMetricsConfig holds configuration for scan metrics.
type ScanMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	StockProvider   StockProvider
}

// ScanMetrics counts warehouse scans and publishes stock gauges.
type ScanMetrics struct {
	logger   *zap.Logger
	interval time.Duration
	stock    StockProvider

	scanInTotal     *Counter
	scanInQuantity  *Counter
	scanOutTotal    *Counter
	scanOutQuantity *Counter
	rejectedTotal   *Counter
	overDelivered   *Counter

	stockItems    *Gauge
	stockQuantity *Gauge

	stopChan chan struct{}
	stopOnce sync.Once
	runOnce  sync.Once
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewScanMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// NewScanMetrics creates the scan instruments.
func NewScanMetrics(cfg ScanMetricsConfig) (*ScanMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = time.Minute
	}

	sm := &ScanMetrics{
		logger:   logger,
		interval: interval,
		stock:    cfg.StockProvider,
		stopChan: make(chan struct{}),
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&sm.scanInTotal, "wms_scan_in_total", "Items scanned in", "{items}"},
		{&sm.scanInQuantity, "wms_scan_in_quantity_total", "Units scanned in", "{units}"},
		{&sm.scanOutTotal, "wms_scan_out_total", "Items scanned out", "{items}"},
		{&sm.scanOutQuantity, "wms_scan_out_quantity_total", "Units scanned out", "{units}"},
		{&sm.rejectedTotal, "wms_scan_rejected_total", "Scan operations rejected by a precondition", "{operations}"},
		{&sm.overDelivered, "wms_po_over_delivered_quantity_total", "Units delivered beyond a purchase order total", "{units}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	if sm.stockItems, err = NewGauge(cfg.Meter, "wms_stock_items", "Items currently held, by status", "{items}"); err != nil {
		return nil, err
	}
	if sm.stockQuantity, err = NewGauge(cfg.Meter, "wms_stock_in_quantity", "Units currently in stock", "{units}"); err != nil {
		return nil, err
	}
	return sm, nil
}

// RecordScanIn records one scanned-in item and its quantity.
func (sm *ScanMetrics) RecordScanIn(ctx context.Context, quantity int) {
	sm.scanInTotal.Inc(ctx)
	sm.scanInQuantity.Add(ctx, int64(quantity))
}

// RecordScanOut records one scanned-out item and its quantity.
func (sm *ScanMetrics) RecordScanOut(ctx context.Context, quantity int) {
	sm.scanOutTotal.Inc(ctx)
	sm.scanOutQuantity.Add(ctx, int64(quantity))
}

// RecordRejected records a failed scan labelled by operation and error code.
func (sm *ScanMetrics) RecordRejected(ctx context.Context, operation, code string) {
	sm.rejectedTotal.Inc(ctx, AttrOperation.String(operation), AttrErrorCode.String(code))
}

// RecordOverDelivery records units delivered past a PO total.
func (sm *ScanMetrics) RecordOverDelivery(ctx context.Context, quantity int) {
	if quantity > 0 {
		sm.overDelivered.Add(ctx, int64(quantity))
	}
}

// RecordStock publishes the stock gauges.
func (sm *ScanMetrics) RecordStock(ctx context.Context, totals inventory.StockTotals) {
	sm.stockItems.Record(ctx, totals.InStockItems, AttrItemStatus.String(string(inventory.ItemStatusIn)))
	sm.stockItems.Record(ctx, totals.OutItems, AttrItemStatus.String(string(inventory.ItemStatusOut)))
	sm.stockItems.Record(ctx, totals.PendingDelete, AttrItemStatus.String(string(inventory.ItemStatusPendingDelete)))
	sm.stockItems.Record(ctx, totals.Damaged, AttrItemStatus.String(string(inventory.ItemStatusDamaged)))
	sm.stockQuantity.Record(ctx, totals.InStockQuantity)
}

// StartPeriodicCollection polls the stock provider until Stop is called or
// ctx is done. Calling it more than once has no effect.
func (sm *ScanMetrics) StartPeriodicCollection(ctx context.Context) {
	if sm.stock == nil {
		return
	}
	sm.runOnce.Do(func() {
		go sm.run(ctx)
	})
}

func (sm *ScanMetrics) run(ctx context.Context) {
	ticker := time.NewTicker(sm.interval)
	defer ticker.Stop()

	sm.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sm.stopChan:
			return
		case <-ticker.C:
			sm.collect(ctx)
		}
	}
}

func (sm *ScanMetrics) collect(ctx context.Context) {
	collectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	totals, err := sm.stock.StockTotals(collectCtx)
	if err != nil {
		sm.logger.Warn("Failed to collect stock totals", zap.Error(err))
		return
	}
	sm.RecordStock(collectCtx, totals)
}

// Stop stops the periodic collection.
func (sm *ScanMetrics) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stopChan)
	})
}
