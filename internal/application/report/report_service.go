package report

import (
	"context"
	"time"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/report"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
)

// ReportService provides the dashboard counters and activity charts. All
// figures are derived from item history and current item/PO state.
type ReportService struct {
	itemRepo inventory.InventoryItemRepository
	poRepo   trade.PurchaseOrderRepository
	clock    shared.Clock
	location *time.Location
}

// NewReportService creates a new ReportService reporting calendar days in loc
func NewReportService(
	itemRepo inventory.InventoryItemRepository,
	poRepo trade.PurchaseOrderRepository,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		itemRepo: itemRepo,
		poRepo:   poRepo,
		clock:    shared.SystemClock{},
		location: loc,
	}
}

// SetClock replaces the wall clock
func (s *ReportService) SetClock(clock shared.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// ActivityQuery selects the activity chart range. Zero times fall back to a
// default window ending now.
type ActivityQuery struct {
	Granularity string    `form:"granularity" binding:"omitempty,oneof=hour day month"`
	From        time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To          time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ActivityReport is the activity chart payload
type ActivityReport struct {
	Granularity report.Granularity      `json:"granularity"`
	From        time.Time               `json:"from"`
	To          time.Time               `json:"to"`
	Timezone    string                  `json:"timezone"`
	Totals      report.ActivityTotals   `json:"totals"`
	Buckets     []report.ActivityBucket `json:"buckets"`
}

// Today returns today's scan counters with current stock and PO totals
func (s *ReportService) Today(ctx context.Context) (*report.TodaySummary, error) {
	start, end := report.DayWindow(s.clock.Now(), s.location)

	entries, err := s.itemRepo.FindHistoryBetween(ctx, start, end, report.ScanActions)
	if err != nil {
		return nil, err
	}
	stock, err := s.itemRepo.StockTotals(ctx)
	if err != nil {
		return nil, err
	}
	poCounts, err := s.poRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := report.BuildTodaySummary(start, report.SumActivity(entries, start, end), stock, poCounts)
	return &summary, nil
}

// Activity returns zero-filled scan activity buckets over [From, To)
func (s *ReportService) Activity(ctx context.Context, q ActivityQuery) (*ActivityReport, error) {
	g := report.Granularity(q.Granularity)
	if g == "" {
		g = report.GranularityDay
	}
	from, to := s.defaultRange(g, q.From, q.To)

	if !g.IsValid() || !from.Before(to) {
		// BucketActivity produces the specific error
		if _, err := report.BucketActivity(nil, g, from, to, s.location); err != nil {
			return nil, err
		}
	}

	entries, err := s.itemRepo.FindHistoryBetween(ctx, from, to, report.ScanActions)
	if err != nil {
		return nil, err
	}
	buckets, err := report.BucketActivity(entries, g, from, to, s.location)
	if err != nil {
		return nil, err
	}

	return &ActivityReport{
		Granularity: g,
		From:        from,
		To:          to,
		Timezone:    s.location.String(),
		Totals:      report.SumActivity(entries, from, to),
		Buckets:     buckets,
	}, nil
}

// defaultRange fills a missing end with the end of the current bucket and a
// missing start with a granularity-dependent lookback
func (s *ReportService) defaultRange(g report.Granularity, from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = g.Next(g.Truncate(s.clock.Now().In(s.location)))
	}
	if from.IsZero() {
		switch g {
		case report.GranularityHour:
			from = to.Add(-24 * time.Hour)
		case report.GranularityMonth:
			from = to.AddDate(-1, 0, 0)
		default:
			from = to.AddDate(0, 0, -7)
		}
	}
	return from, to
}
