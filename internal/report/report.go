// Package report renders simulation evaluations and accuracy reports as
// text tables, JSON or CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/Alias1177/PredictionMetrics/internal/simulation"
	"github.com/Alias1177/PredictionMetrics/models"
)

// Output formats.
const (
	TextOut = "text"
	JSONOut = "json"
	CSVOut  = "csv"
)

// Formats lists the accepted output formats.
var Formats = []string{TextOut, JSONOut, CSVOut}

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	return slices.Contains(Formats, f)
}

// Options controls rendering.
type Options struct {
	Format    string
	Precision int
	NoColor   bool
}

func (o Options) fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', o.Precision, 64)
}

// Write renders a simulation evaluation in the configured format.
func Write(w io.Writer, ev *simulation.Evaluation, opts Options) error {
	switch opts.Format {
	case JSONOut:
		return writeJSON(w, ev)
	case CSVOut:
		return writeEvaluationCSV(w, ev, opts)
	case TextOut, "":
		return writeEvaluationText(w, ev, opts)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// WriteReports renders accuracy reports in the configured format.
func WriteReports(w io.Writer, reports []models.AccuracyReport, opts Options) error {
	switch opts.Format {
	case JSONOut:
		return writeJSON(w, reports)
	case CSVOut:
		return writeReportsCSV(w, reports, opts)
	case TextOut, "":
		return writeReportsText(w, reports, opts)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// WriteFile opens path (stdout when empty or "-") and hands it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes a header then the rows, flushing at the end.
func writeCSVWithHeader(w io.Writer, header []string, rows [][]string) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := csvWriter.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func writeEvaluationCSV(w io.Writer, ev *simulation.Evaluation, opts Options) error {
	header := []string{"symbol", "name", "predictions", "mae", "rmse", "mape", "accuracy", "direction_accuracy", "total_change_pct"}

	rows := make([][]string, 0, len(ev.Stocks)+1)
	for _, s := range ev.Stocks {
		rows = append(rows, []string{
			s.Symbol,
			s.Name,
			strconv.Itoa(s.Predictions),
			opts.fmtFloat(s.Metrics.MAE),
			opts.fmtFloat(s.Metrics.RMSE),
			opts.fmtFloat(s.Metrics.MAPE),
			opts.fmtFloat(s.Accuracy),
			opts.fmtFloat(s.Metrics.DirectionAccuracy),
			opts.fmtFloat(s.TotalChange),
		})
	}

	sum := ev.Summary
	rows = append(rows, []string{
		"OVERALL",
		"",
		strconv.Itoa(sum.TotalPredictions),
		opts.fmtFloat(sum.AverageMAE),
		"",
		opts.fmtFloat(sum.AverageMAPE),
		opts.fmtFloat(sum.OverallAccuracy),
		opts.fmtFloat(sum.AverageDirection),
		"",
	})

	return writeCSVWithHeader(w, header, rows)
}

func writeReportsCSV(w io.Writer, reports []models.AccuracyReport, opts Options) error {
	header := []string{"id", "symbol", "method", "interval", "samples", "mae", "rmse", "mape", "direction_accuracy", "created_at"}

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Symbol,
			r.Method,
			r.Interval,
			strconv.Itoa(r.Samples),
			opts.fmtFloat(r.MAE),
			opts.fmtFloat(r.RMSE),
			opts.fmtFloat(r.MAPE),
			opts.fmtFloat(r.DirectionAccuracy),
			r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	return writeCSVWithHeader(w, header, rows)
}
