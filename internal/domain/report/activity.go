package report

import (
	"fmt"
	"time"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

// MaxBuckets bounds the number of buckets a single activity query may produce
const MaxBuckets = 1000

// Granularity is the bucket width of an activity report
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// IsValid checks if the granularity is supported
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityHour, GranularityDay, GranularityMonth:
		return true
	}
	return false
}

// Truncate returns the start of the bucket containing t, in t's location
func (g Granularity) Truncate(t time.Time) time.Time {
	switch g {
	case GranularityHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// Next returns the start of the bucket after the one starting at t
func (g Granularity) Next(t time.Time) time.Time {
	switch g {
	case GranularityHour:
		return t.Add(time.Hour)
	case GranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// ActivityTotals counts scan-in and scan-out history entries
type ActivityTotals struct {
	InCount     int64 `json:"in_count"`
	InQuantity  int64 `json:"in_quantity"`
	OutCount    int64 `json:"out_count"`
	OutQuantity int64 `json:"out_quantity"`
}

// ActivityBucket is one point on the activity chart
type ActivityBucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	ActivityTotals
}

func (a *ActivityTotals) add(entry inventory.HistoryEntry) {
	switch entry.Action {
	case inventory.ActionScanIn:
		a.InCount++
		a.InQuantity += int64(entry.Quantity)
	case inventory.ActionScanOut:
		a.OutCount++
		a.OutQuantity += int64(entry.Quantity)
	}
}

// ScanActions are the history actions counted as activity
var ScanActions = []inventory.HistoryAction{inventory.ActionScanIn, inventory.ActionScanOut}

// DayWindow returns [start, end) of the calendar day containing now in loc
func DayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// SumActivity totals scan entries with from <= timestamp < to
func SumActivity(entries []inventory.HistoryEntry, from, to time.Time) ActivityTotals {
	var totals ActivityTotals
	for _, e := range entries {
		if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
			continue
		}
		totals.add(e)
	}
	return totals
}

// BucketActivity groups scan entries into consecutive buckets covering
// [from, to) in loc. Every bucket in the range is returned, empty ones with
// zero totals, so the result does not depend on entry order.
func BucketActivity(entries []inventory.HistoryEntry, g Granularity, from, to time.Time, loc *time.Location) ([]ActivityBucket, error) {
	if !g.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Unsupported granularity %q, expected hour, day or month", g))
	}
	if !from.Before(to) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Report range start must be before its end")
	}
	if loc == nil {
		loc = time.Local
	}

	var buckets []ActivityBucket
	index := make(map[int64]int)
	for start := g.Truncate(from.In(loc)); start.Before(to); start = g.Next(start) {
		if len(buckets) >= MaxBuckets {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Report range produces more than %d %s buckets", MaxBuckets, g))
		}
		index[start.Unix()] = len(buckets)
		buckets = append(buckets, ActivityBucket{Start: start, End: g.Next(start)})
	}

	for _, e := range entries {
		if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
			continue
		}
		if i, ok := index[g.Truncate(e.Timestamp.In(loc)).Unix()]; ok {
			buckets[i].add(e)
		}
	}
	return buckets, nil
}
