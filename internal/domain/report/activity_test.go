package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
)

var jakarta = time.FixedZone("WIB", 7*3600)

func entry(action inventory.HistoryAction, qty int, ts time.Time) inventory.HistoryEntry {
	status := inventory.ItemStatusIn
	if action == inventory.ActionScanOut {
		status = inventory.ItemStatusOut
	}
	return inventory.HistoryEntry{Action: action, Status: status, Quantity: qty, Timestamp: ts}
}

func TestDayWindow(t *testing.T) {
	// 2026-10-15 20:00 UTC is already the 16th in UTC+7
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

	start, end := DayWindow(now, jakarta)

	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, jakarta), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestSumActivity(t *testing.T) {
	from := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	entries := []inventory.HistoryEntry{
		entry(inventory.ActionScanIn, 40, from),
		entry(inventory.ActionScanIn, 60, from.Add(5*time.Hour)),
		entry(inventory.ActionScanOut, 40, from.Add(6*time.Hour)),
		entry(inventory.ActionDeleteReject, 10, from.Add(7*time.Hour)),
		entry(inventory.ActionScanIn, 5, to),
		entry(inventory.ActionScanIn, 5, from.Add(-time.Second)),
	}

	totals := SumActivity(entries, from, to)

	assert.Equal(t, ActivityTotals{InCount: 2, InQuantity: 100, OutCount: 1, OutQuantity: 40}, totals)
}

func TestBucketActivity(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	t.Run("daily buckets are zero filled", func(t *testing.T) {
		to := from.AddDate(0, 0, 3)
		entries := []inventory.HistoryEntry{
			entry(inventory.ActionScanIn, 10, from.Add(2*time.Hour)),
			entry(inventory.ActionScanOut, 4, from.AddDate(0, 0, 2).Add(time.Hour)),
		}

		buckets, err := BucketActivity(entries, GranularityDay, from, to, time.UTC)

		require.NoError(t, err)
		require.Len(t, buckets, 3)
		assert.Equal(t, int64(10), buckets[0].InQuantity)
		assert.Equal(t, ActivityTotals{}, buckets[1].ActivityTotals)
		assert.Equal(t, int64(1), buckets[2].OutCount)
		assert.Equal(t, from.AddDate(0, 0, 1), buckets[0].End)
	})

	t.Run("hourly buckets", func(t *testing.T) {
		buckets, err := BucketActivity(nil, GranularityHour, from, from.Add(24*time.Hour), time.UTC)
		require.NoError(t, err)
		assert.Len(t, buckets, 24)
	})

	t.Run("monthly buckets honour location", func(t *testing.T) {
		// 2026-10-31 20:00 UTC is November in UTC+7
		late := time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC)
		entries := []inventory.HistoryEntry{entry(inventory.ActionScanIn, 3, late)}

		buckets, err := BucketActivity(entries, GranularityMonth,
			time.Date(2026, 10, 1, 0, 0, 0, 0, jakarta), time.Date(2026, 12, 1, 0, 0, 0, 0, jakarta), jakarta)

		require.NoError(t, err)
		require.Len(t, buckets, 2)
		assert.Zero(t, buckets[0].InCount)
		assert.Equal(t, int64(1), buckets[1].InCount)
	})

	t.Run("result does not depend on entry order", func(t *testing.T) {
		to := from.AddDate(0, 0, 7)
		var entries []inventory.HistoryEntry
		for i := 0; i < 50; i++ {
			action := inventory.ActionScanIn
			if i%3 == 0 {
				action = inventory.ActionScanOut
			}
			entries = append(entries, entry(action, i+1, from.Add(time.Duration(i)*3*time.Hour)))
		}

		expected, err := BucketActivity(entries, GranularityDay, from, to, time.UTC)
		require.NoError(t, err)

		shuffled := append([]inventory.HistoryEntry(nil), entries...)
		rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		actual, err := BucketActivity(shuffled, GranularityDay, from, to, time.UTC)
		require.NoError(t, err)

		assert.Equal(t, expected, actual)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := BucketActivity(nil, Granularity("week"), from, from.Add(time.Hour), time.UTC)
		assert.True(t, shared.IsCode(err, shared.CodeInvalidInput))

		_, err = BucketActivity(nil, GranularityDay, from, from, time.UTC)
		assert.True(t, shared.IsCode(err, shared.CodeInvalidInput))

		_, err = BucketActivity(nil, GranularityHour, from, from.AddDate(1, 0, 0), time.UTC)
		assert.True(t, shared.IsCode(err, shared.CodeInvalidInput))
	})
}

func TestBuildTodaySummary(t *testing.T) {
	start, _ := DayWindow(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), time.UTC)

	summary := BuildTodaySummary(start,
		ActivityTotals{InCount: 2, InQuantity: 100, OutCount: 1, OutQuantity: 40},
		inventory.StockTotals{InStockItems: 1, InStockQuantity: 60, PendingDelete: 2},
		map[trade.PurchaseOrderStatus]int64{trade.PurchaseOrderStatusPartial: 3},
	)

	assert.Equal(t, "2026-10-15", summary.Date)
	assert.Equal(t, "UTC", summary.Timezone)
	assert.Equal(t, int64(100), summary.ScannedInQty)
	assert.Equal(t, int64(60), summary.InStockQuantity)
	assert.Equal(t, int64(3), summary.POPartial)
	assert.Zero(t, summary.POOpen)
}
