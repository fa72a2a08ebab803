// Package export produces the tabular history export: CSV generation, the
// gzip-compressed S3 archive, and the SQS producer that hands async export
// jobs to the archive worker.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"maizecast/internal/types"
)

// csvHeader is the fixed export column order. Consumers (agronomy analysts,
// the district dashboard importer) depend on these names; never reorder.
var csvHeader = []string{
	"id",
	"date",
	"district",
	"year",
	"predicted_yield",
	"confidence",
	"rainfall_mm",
	"temperature_c",
	"humidity_pct",
	"sunlight_hours",
	"soil_moisture",
	"pest_risk_pct",
	"pfj_policy",
}

// WriteCSV writes one header row plus one row per record. encoding/csv
// handles quoting, so districts or free text containing commas stay intact.
func WriteCSV(w io.Writer, records []types.HistoryRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export: failed to write csv header: %w", err)
	}

	for i := range records {
		if err := cw.Write(csvRow(&records[i])); err != nil {
			return fmt.Errorf("export: failed to write csv row for %s: %w", records[i].ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: failed to flush csv: %w", err)
	}
	return nil
}

// csvRow formats one record in csvHeader order: yields to two decimals,
// confidence as an integer percent, policy enrollment as Yes/No.
func csvRow(rec *types.HistoryRecord) []string {
	policy := "No"
	if rec.Inputs.PFJPolicy {
		policy = "Yes"
	}

	return []string{
		rec.ID,
		rec.CreatedAt.UTC().Format("2006-01-02"),
		rec.Inputs.District,
		strconv.Itoa(rec.Inputs.Year),
		fmt.Sprintf("%.2f", rec.Estimate.PointValue),
		fmt.Sprintf("%d%%", rec.Interpretation.ConfidencePercent),
		formatFloat(rec.Inputs.RainfallMM),
		formatFloat(rec.Inputs.TemperatureC),
		formatFloat(rec.Inputs.HumidityPct),
		formatFloat(rec.Inputs.SunlightHrs),
		formatFloat(rec.Inputs.SoilMoisture),
		formatFloat(rec.Inputs.PestRiskPct),
		policy,
	}
}

// formatFloat renders measurement values without artificial padding: whole
// numbers stay whole, fractional values keep their precision.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
