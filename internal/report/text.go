package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/Alias1177/PredictionMetrics/internal/simulation"
	"github.com/Alias1177/PredictionMetrics/models"
)

type palette struct {
	ok, warn, title func(...any) string
}

func newPalette(noColor bool) palette {
	if noColor {
		return palette{ok: fmt.Sprint, warn: fmt.Sprint, title: fmt.Sprint}
	}
	return palette{
		ok:    color.New(color.FgGreen).SprintFunc(),
		warn:  color.New(color.FgYellow, color.Bold).SprintFunc(),
		title: color.New(color.FgCyan, color.Bold).SprintFunc(),
	}
}

// formatPrice renders a price with thousands separators and no decimals when
// it is whole, e.g. 10,325.
func formatPrice(v float64, precision int) string {
	if v == math.Trunc(v) {
		precision = 0
	}
	s := fmt.Sprintf("%.*f", precision, math.Abs(v))
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func writeEvaluationText(w io.Writer, ev *simulation.Evaluation, opts Options) error {
	p := newPalette(opts.NoColor)
	rule := strings.Repeat("=", 80)

	if _, err := fmt.Fprintf(w, "%s\n%s\n", rule, p.title("PREDICTION SIMULATION - SUMMARY REPORT")); err != nil {
		return err
	}
	if ev.Period != "" {
		if _, err := fmt.Fprintf(w, "Period: %s\n", ev.Period); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s\n", rule); err != nil {
		return err
	}

	for _, s := range ev.Stocks {
		if err := writeStockText(w, s, ev.Threshold, opts, p); err != nil {
			return err
		}
	}

	return writeSummaryText(w, ev, opts, p)
}

func writeStockText(w io.Writer, s simulation.StockReport, threshold float64, opts Options, p palette) error {
	cur := s.Currency
	if cur != "" {
		cur += " "
	}

	if _, err := fmt.Fprintf(w, "\n%s - %s\n", p.title(s.Symbol), s.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Start: %s%s | End: %s%s | Change: %+.2f%%\n",
		cur, formatPrice(s.StartPrice, opts.Precision),
		cur, formatPrice(s.EndPrice, opts.Precision),
		s.TotalChange); err != nil {
		return err
	}

	metricsTable := tablewriter.NewWriter(w)
	metricsTable.Header([]string{"MAE", "RMSE", "MAPE", "Accuracy", "Direction"})
	metricsTable.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := metricsTable.Append([]string{
		cur + opts.fmtFloat(s.Metrics.MAE),
		cur + opts.fmtFloat(s.Metrics.RMSE),
		opts.fmtFloat(s.Metrics.MAPE) + "%",
		opts.fmtFloat(s.Accuracy) + "%",
		fmt.Sprintf("%.0f%%", s.Metrics.DirectionAccuracy),
	}); err != nil {
		return err
	}
	if err := metricsTable.Render(); err != nil {
		return err
	}

	daily := tablewriter.NewWriter(w)
	daily.Header([]string{"Date", "Predicted", "Actual", "Error", "Error %", "Status"})
	daily.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, d := range s.Daily {
		status := p.ok("OK")
		if !d.OK {
			status = p.warn(fmt.Sprintf("> %.2f%%", threshold))
		}
		data = append(data, []string{
			d.Date.Format("2006-01-02"),
			cur + formatPrice(d.Predicted, opts.Precision),
			cur + formatPrice(d.Actual, opts.Precision),
			fmt.Sprintf("%+.*f", opts.Precision, d.Error),
			fmt.Sprintf("%+.*f", opts.Precision, d.ErrorPercent),
			status,
		})
	}
	if err := daily.Bulk(data); err != nil {
		return err
	}
	return daily.Render()
}

func writeSummaryText(w io.Writer, ev *simulation.Evaluation, opts Options, p palette) error {
	sum := ev.Summary
	lines := []string{
		"",
		strings.Repeat("=", 80),
		p.title("OVERALL PERFORMANCE"),
		strings.Repeat("=", 80),
		fmt.Sprintf("Stocks analyzed:     %d", sum.Stocks),
		fmt.Sprintf("Total predictions:   %d", sum.TotalPredictions),
		fmt.Sprintf("Average MAE:         %s", opts.fmtFloat(sum.AverageMAE)),
		fmt.Sprintf("Average MAPE:        %s%%", opts.fmtFloat(sum.AverageMAPE)),
		fmt.Sprintf("Overall accuracy:    %s%%", opts.fmtFloat(sum.OverallAccuracy)),
		fmt.Sprintf("Direction accuracy:  %.1f%%", sum.AverageDirection),
		fmt.Sprintf("Lowest error:        %s", sum.LowestErrorSymbol),
		fmt.Sprintf("Best direction:      %s", sum.BestDirection),
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func writeReportsText(w io.Writer, reports []models.AccuracyReport, opts Options) error {
	if len(reports) == 0 {
		_, err := io.WriteString(w, "No accuracy reports.\n")
		return err
	}

	p := newPalette(opts.NoColor)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Symbol", "Method", "Interval", "Samples", "MAE", "RMSE", "MAPE", "Direction", "Created"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range reports {
		direction := fmt.Sprintf("%.0f%%", r.DirectionAccuracy)
		if r.DirectionAccuracy < 50 {
			direction = p.warn(direction)
		} else {
			direction = p.ok(direction)
		}
		data = append(data, []string{
			fmt.Sprintf("%d", r.ID),
			r.Symbol,
			r.Method,
			r.Interval,
			fmt.Sprintf("%d", r.Samples),
			opts.fmtFloat(r.MAE),
			opts.fmtFloat(r.RMSE),
			opts.fmtFloat(r.MAPE) + "%",
			direction,
			r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
