package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type stubStockProvider struct {
	calls  atomic.Int32
	totals inventory.StockTotals
	err    error
}

func (p *stubStockProvider) StockTotals(context.Context) (inventory.StockTotals, error) {
	p.calls.Add(1)
	return p.totals, p.err
}

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestNewScanMetrics_NilMeter(t *testing.T) {
	sm, err := telemetry.NewScanMetrics(telemetry.ScanMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, sm)
	assert.Equal(t, "NewScanMetrics: meter cannot be nil", err.Error())
}

func TestScanMetrics_Counters(t *testing.T) {
	reader, provider := newManualMeter(t)
	sm, err := telemetry.NewScanMetrics(telemetry.ScanMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	ctx := context.Background()
	sm.RecordScanIn(ctx, 40)
	sm.RecordScanIn(ctx, 60)
	sm.RecordScanOut(ctx, 40)
	sm.RecordRejected(ctx, "scan_out", "INVALID_SCAN_OUT_STATE")
	sm.RecordOverDelivery(ctx, 0)
	sm.RecordOverDelivery(ctx, 5)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.Equal(t, int64(2), sumOf(t, rm, "wms_scan_in_total"))
	assert.Equal(t, int64(100), sumOf(t, rm, "wms_scan_in_quantity_total"))
	assert.Equal(t, int64(1), sumOf(t, rm, "wms_scan_out_total"))
	assert.Equal(t, int64(1), sumOf(t, rm, "wms_scan_rejected_total"))
	assert.Equal(t, int64(5), sumOf(t, rm, "wms_po_over_delivered_quantity_total"))
}

func TestScanMetrics_PeriodicCollection(t *testing.T) {
	_, provider := newManualMeter(t)
	stock := &stubStockProvider{totals: inventory.StockTotals{InStockItems: 3, InStockQuantity: 120}}
	sm, err := telemetry.NewScanMetrics(telemetry.ScanMetricsConfig{
		Meter:           provider.Meter("test"),
		Logger:          zap.NewNop(),
		CollectInterval: 10 * time.Millisecond,
		StockProvider:   stock,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sm.StartPeriodicCollection(ctx)
	sm.StartPeriodicCollection(ctx)

	assert.Eventually(t, func() bool { return stock.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	sm.Stop()
	sm.Stop()
}

func TestScanMetrics_CollectionErrorIsLogged(t *testing.T) {
	_, provider := newManualMeter(t)
	stock := &stubStockProvider{err: errors.New("db down")}
	sm, err := telemetry.NewScanMetrics(telemetry.ScanMetricsConfig{
		Meter:           provider.Meter("test"),
		CollectInterval: time.Hour,
		StockProvider:   stock,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	sm.StartPeriodicCollection(ctx)
	assert.Eventually(t, func() bool { return stock.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
}
