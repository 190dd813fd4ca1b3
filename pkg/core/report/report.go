// Package report renders a calculation result as Markdown tables and HTML.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"company_historicals/pkg/core/historical"
)

// NotAvailable is printed for undefined values.
const NotAvailable = "N/A"

const (
	amountPlaces = 2
	ratioPlaces  = 4
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// FormatAmount rounds a statement amount half away from zero to two places.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(amountPlaces)
}

// FormatValue renders a metric value, or N/A when it is undefined.
func FormatValue(v historical.Value) string {
	f, ok := v.Get()
	if !ok {
		return NotAvailable
	}
	return decimal.NewFromFloat(f).StringFixed(ratioPlaces)
}

// Markdown renders the statements, metrics, projections, annotations, the
// dashboard and the linkage summary. Metrics follow desc.SupportedMetrics order.
func Markdown(desc historical.CompanyTypeDescriptor, res historical.CalculationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Historical Statements: %s\n\n", desc.Label)
	if desc.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", desc.Description)
	}
	fmt.Fprintf(&b, "Company type `%s`, %d periods.\n\n", res.Metadata.CompanyType, res.Metadata.PeriodsProcessed)

	for _, s := range []historical.Statement{
		res.Statements.IncomeStatement,
		res.Statements.BalanceSheet,
		res.Statements.CashFlow,
	} {
		writeStatement(&b, s)
	}

	writeMetrics(&b, desc.SupportedMetrics, res)
	writeProjections(&b, res.Projections)
	writeAnnotations(&b, res.Annotations)
	writeDashboard(&b, res.Dashboard)
	writeLinkage(&b, res)

	return b.String()
}

// HTML converts Markdown to HTML with GitHub-flavoured tables.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// Render is Markdown followed by HTML.
func Render(desc historical.CompanyTypeDescriptor, res historical.CalculationResult) (string, error) {
	return HTML(Markdown(desc, res))
}

func tableHeader(b *strings.Builder, first string, columns []string) {
	b.WriteString("| " + first + " |")
	for _, c := range columns {
		b.WriteString(" " + c + " |")
	}
	b.WriteString("\n|---|")
	for range columns {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
}

func tableRow(b *strings.Builder, label string, cells []string) {
	b.WriteString("| " + escape(label) + " |")
	for _, c := range cells {
		b.WriteString(" " + c + " |")
	}
	b.WriteString("\n")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeStatement(b *strings.Builder, s historical.Statement) {
	fmt.Fprintf(b, "## %s\n\n", s.Title)
	tableHeader(b, "Line item", s.Periods)

	for _, l := range s.Lines {
		switch l.Kind {
		case historical.KindSpacer:
			continue
		case historical.KindHeader:
			tableRow(b, "**"+l.Label+"**", make([]string, len(s.Periods)))
		case historical.KindTotal:
			cells := make([]string, len(l.Values))
			for i, v := range l.Values {
				cells[i] = "**" + FormatAmount(v) + "**"
			}
			tableRow(b, "**"+l.Label+"**", cells)
		default:
			cells := make([]string, len(l.Values))
			for i, v := range l.Values {
				cells[i] = FormatAmount(v)
			}
			tableRow(b, l.Label, cells)
		}
	}
	b.WriteString("\n")
}

func writeMetrics(b *strings.Builder, order []string, res historical.CalculationResult) {
	var series, scalars []string
	for _, name := range order {
		m, ok := res.Metrics[name]
		if !ok {
			continue
		}
		if m.IsScalar {
			scalars = append(scalars, name)
		} else {
			series = append(series, name)
		}
	}

	if len(series) > 0 {
		b.WriteString("## Metrics\n\n")
		tableHeader(b, "Metric", res.Metadata.PeriodLabels)
		for _, name := range series {
			vals := res.Metrics[name].Series
			cells := make([]string, len(vals))
			for i, v := range vals {
				cells[i] = FormatValue(v)
			}
			tableRow(b, name, cells)
		}
		b.WriteString("\n")
	}

	if len(scalars) > 0 {
		b.WriteString("## Summary Metrics\n\n")
		tableHeader(b, "Metric", []string{"Value"})
		for _, name := range scalars {
			tableRow(b, name, []string{FormatValue(res.Metrics[name].Scalar)})
		}
		b.WriteString("\n")
	}
}

func writeProjections(b *strings.Builder, projections map[string]historical.Projection) {
	if len(projections) == 0 {
		return
	}
	keys := make([]string, 0, len(projections))
	for k := range projections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("## Projections\n\n")
	periods := projections[keys[0]].Periods
	tableHeader(b, "Series", append([]string{"Strategy"}, periods...))
	for _, k := range keys {
		p := projections[k]
		cells := []string{p.Strategy}
		for _, v := range p.Values {
			cells = append(cells, FormatAmount(v))
		}
		tableRow(b, k, cells)
	}
	b.WriteString("\n")
}

func writeAnnotations(b *strings.Builder, annotations map[string]historical.Value) {
	if len(annotations) == 0 {
		return
	}
	keys := make([]string, 0, len(annotations))
	for k := range annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("## Assumption Gaps\n\n")
	tableHeader(b, "Annotation", []string{"Value"})
	for _, k := range keys {
		tableRow(b, k, []string{FormatValue(annotations[k])})
	}
	b.WriteString("\n")
}

func writeDashboard(b *strings.Builder, d historical.Dashboard) {
	if len(d.KPIs) > 0 {
		keys := make([]string, 0, len(d.KPIs))
		for k := range d.KPIs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("## Key Indicators\n\n")
		tableHeader(b, "Indicator", []string{"Latest"})
		for _, k := range keys {
			tableRow(b, k, []string{FormatValue(d.KPIs[k])})
		}
		b.WriteString("\n")
	}

	if len(d.Trends) > 0 {
		keys := make([]string, 0, len(d.Trends))
		for k := range d.Trends {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("## Trends\n\n")
		tableHeader(b, "Series", []string{"Direction", "Growth", "Volatility", "Consistency"})
		for _, k := range keys {
			tr := d.Trends[k]
			tableRow(b, k, []string{tr.Direction, FormatValue(tr.Growth), FormatValue(tr.Volatility), FormatValue(tr.Consistency)})
		}
		b.WriteString("\n")
	}

	if len(d.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, s := range d.Insights {
			fmt.Fprintf(b, "- %s\n", s)
		}
		b.WriteString("\n")
	}
}

func writeLinkage(b *strings.Builder, res historical.CalculationResult) {
	b.WriteString("## Statement Linkage\n\n")
	link := res.Metadata.Linkage
	if link.AllPassed {
		b.WriteString("All linkage checks passed.\n")
		return
	}
	for _, f := range link.FailedChecks {
		fmt.Fprintf(b, "- %s\n", f)
	}
}
