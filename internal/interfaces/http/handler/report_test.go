package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_Today(t *testing.T) {
	api := newTestAPI(t)
	_, partID, poID := api.seedLedger(t, "PO-RPT-1", 100)
	first := api.scanIn(t, partID, poID, 40)["item"].(map[string]any)
	api.scanIn(t, partID, poID, 25)
	api.mustData(t, http.MethodPost, "/api/v1/scan/out", map[string]any{"scan_code": first["unique_id"]}, http.StatusOK)

	today := api.mustData(t, http.MethodGet, "/api/v1/reports/today", nil, http.StatusOK)

	assert.Equal(t, "2026-10-15", today["date"])
	assert.Equal(t, float64(2), today["scanned_in_today"])
	assert.Equal(t, float64(65), today["scanned_in_quantity_today"])
	assert.Equal(t, float64(1), today["scanned_out_today"])
	assert.Equal(t, float64(40), today["scanned_out_quantity_today"])
	assert.Equal(t, float64(1), today["in_stock_items"])
	assert.Equal(t, float64(25), today["in_stock_quantity"])
	assert.Equal(t, float64(1), today["po_partial"])
}

func TestReportHandler_Activity(t *testing.T) {
	api := newTestAPI(t)
	_, partID, poID := api.seedLedger(t, "PO-RPT-2", 100)
	api.scanIn(t, partID, poID, 30)

	t.Run("default day window", func(t *testing.T) {
		data := api.mustData(t, http.MethodGet, "/api/v1/reports/activity", nil, http.StatusOK)
		assert.Equal(t, "day", data["granularity"])
		buckets := data["buckets"].([]any)
		require.Len(t, buckets, 7)
		last := buckets[len(buckets)-1].(map[string]any)
		assert.Equal(t, float64(1), last["in_count"])
		assert.Equal(t, float64(30), last["in_quantity"])
		totals := data["totals"].(map[string]any)
		assert.Equal(t, float64(30), totals["in_quantity"])
	})

	t.Run("hourly", func(t *testing.T) {
		data := api.mustData(t, http.MethodGet, "/api/v1/reports/activity?granularity=hour", nil, http.StatusOK)
		assert.Len(t, data["buckets"], 24)
	})

	t.Run("unknown granularity", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/reports/activity?granularity=week", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("inverted range", func(t *testing.T) {
		w := api.do(t, http.MethodGet,
			"/api/v1/reports/activity?from=2026-10-15T00:00:00Z&to=2026-10-01T00:00:00Z", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
