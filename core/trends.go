package core

import (
	"sort"
	"strings"
	"time"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
)

// recordDateLayouts are tried in order when parsing record_date.
var recordDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"2006-01",
}

// ParseRecordDate parses a raw record_date cell.
// Offsets are kept so the month matches the recorded wall clock.
func ParseRecordDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type monthAccumulator struct {
	confidence float64
	cost       float64
	score      float64
	count      int
}

// AggregateMonthly groups scored records by calendar month.
// Records with an unparseable date are listed in Skipped and left out of every bucket.
// Buckets are returned in ascending month order.
func AggregateMonthly(records []schema.ScoredRecord) schema.MonthlyTrends {
	months := make(map[string]*monthAccumulator)
	var skipped []schema.SkippedDate

	for _, r := range records {
		t, ok := ParseRecordDate(r.RecordDate)
		if !ok {
			skipped = append(skipped, schema.SkippedDate{Row: r.Row, UnitID: r.UnitID, RecordDate: r.RecordDate})
			continue
		}
		key := t.Format(schema.YearMonthLayout)
		acc, exists := months[key]
		if !exists {
			acc = &monthAccumulator{}
			months[key] = acc
		}
		acc.confidence += r.RiskConfidence
		acc.cost += r.EstimatedRepairCost
		acc.score += r.WeeklyScore
		acc.count++
	}

	buckets := make([]schema.MonthlyBucket, 0, len(months))
	for key, acc := range months {
		n := float64(acc.count)
		buckets = append(buckets, schema.MonthlyBucket{
			YearMonth:             key,
			AvgFailureProbability: acc.confidence / n * 100,
			TotalEstimatedCost:    acc.cost,
			AvgWeeklyScore:        acc.score / n,
			RecordCount:           acc.count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].YearMonth < buckets[j].YearMonth
	})

	return schema.MonthlyTrends{Buckets: buckets, Skipped: skipped}
}

// DateWarnings converts skipped records into typed warnings.
func DateWarnings(trends schema.MonthlyTrends) []contract.DateParseWarning {
	if len(trends.Skipped) == 0 {
		return nil
	}
	warnings := make([]contract.DateParseWarning, len(trends.Skipped))
	for i, s := range trends.Skipped {
		warnings[i] = contract.DateParseWarning{Row: s.Row, UnitID: s.UnitID, RecordDate: s.RecordDate}
	}
	return warnings
}
