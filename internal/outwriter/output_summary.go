package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric name prefix for the prom exposition of the fleet summary.
const metricPrefix = "maintinsight_fleet_"

// PrintSummary outputs the fleet summary, dispatching based on the output format configured.
func PrintSummary(summary schema.FleetSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON summary")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, summary)
		}, "Wrote CSV summary")
	case schema.PromOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteSummaryMetrics(w, summary)
		}, "Wrote metrics")
	case schema.ParquetOut:
		return errors.New("parquet output is not available for the fleet summary")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeSummaryCards(w, summary, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote summary")
	}
}

// summaryMetric is one row of the summary in every flat format.
type summaryMetric struct {
	name  string
	help  string
	value float64
}

func summaryMetrics(s schema.FleetSummary) []summaryMetric {
	return []summaryMetric{
		{"total_units", "Distinct units in the batch.", float64(s.TotalUnits)},
		{"high_risk_units", "Distinct units with at least one high risk record.", float64(s.HighRiskUnits)},
		{"high_risk_share_percent", "Share of units at high risk, as a percentage.", s.HighRiskShare},
		{"avg_compliance", "Mean weekly compliance score over all records.", s.AvgCompliance},
		{"total_estimated_cost", "Sum of the estimated repair cost over all records.", s.TotalCost},
		{"records", "Records scored in the batch.", float64(s.TotalRecords)},
	}
}

// writeSummaryCSV writes the summary as metric,value rows.
func writeSummaryCSV(w io.Writer, s schema.FleetSummary) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		for _, m := range summaryMetrics(s) {
			if err := cw.Write([]string{m.name, schema.FormatNumber(m.value)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSummaryMetrics writes the summary as Prometheus text exposition gauges.
func WriteSummaryMetrics(w io.Writer, s schema.FleetSummary) error {
	for _, m := range summaryMetrics(s) {
		mf := &dto.MetricFamily{
			Name: ptr(metricPrefix + m.name),
			Help: ptr(m.help),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{
				{Gauge: &dto.Gauge{Value: ptr(m.value)}},
			},
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", m.name, err)
		}
	}
	return nil
}

// writeSummaryCards prints the headline fleet numbers.
func writeSummaryCards(w io.Writer, s schema.FleetSummary, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	lines := []string{
		fmt.Sprintf("%sFleet summary", icon(cfg, "🏭")),
		fmt.Sprintf("  Units:            "+intFmt, s.TotalUnits),
		fmt.Sprintf("  High risk units:  "+intFmt+" (%s%%)", s.HighRiskUnits, fmtFloat(s.HighRiskShare)),
		fmt.Sprintf("  Avg compliance:   %s (target %s)", fmtFloat(s.AvgCompliance), schema.FormatNumber(cfg.ComplianceThreshold)),
		fmt.Sprintf("  Est. repair cost: %s", fmtFloat(s.TotalCost)),
		fmt.Sprintf("  Records:          "+intFmt, s.TotalRecords),
	}
	if s.TotalRecords > 0 && s.AvgCompliance < cfg.ComplianceThreshold {
		lines = append(lines, "  "+contract.ComplianceNote(s.AvgCompliance, cfg.ComplianceThreshold, cfg.UseColors))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
