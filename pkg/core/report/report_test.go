package report

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"company_historicals/pkg/core/companies/service"
	"company_historicals/pkg/core/historical"
)

func serviceResult(t *testing.T) (historical.CompanyTypeDescriptor, historical.CalculationResult) {
	t.Helper()
	calc := service.New(nil)
	data := historical.HistoricalDataSet{
		"revenue":                {1000000, 1200000},
		"operating_expenses":     {200000, 250000},
		"employee_count":         {10, 12},
		"billable_hours":         {16640, 19968},
		"service_delivery_costs": {600000, 700000},
		"client_count":           {20, 24},
		"average_project_value":  {50000, 50000},
	}
	res := calc.Calculate(data, historical.AssumptionSet{
		"base_year":               2023,
		"revenue_growth_rate":     0.1,
		"utilization_rate_target": 0.85,
	})
	return calc.Descriptor(), res
}

// rowCells returns the text of every cell in the first row whose label matches.
func rowCells(doc *goquery.Document, label string) []string {
	var cells []string
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if strings.TrimSpace(tr.Find("td").First().Text()) != label {
			return true
		}
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		return false
	})
	return cells
}

func TestFormat(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatAmount(1234.565), "1234.57"},
		{FormatAmount(-0.004), "0.00"},
		{FormatAmount(1000000), "1000000.00"},
		{FormatValue(historical.Of(0.123456)), "0.1235"},
		{FormatValue(historical.Undefined), "N/A"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestMarkdown_Sections(t *testing.T) {
	desc, res := serviceResult(t)
	out := Markdown(desc, res)

	for _, want := range []string{
		"# Historical Statements: Service Company",
		"## Income Statement",
		"## Balance Sheet",
		"## Cash Flow Statement",
		"## Metrics",
		"## Summary Metrics",
		"## Projections",
		"## Assumption Gaps",
		"## Key Indicators",
		"## Trends",
		"## Insights",
		"- Strong revenue growth trend",
		"All linkage checks passed.",
		"| Line item | 2023 | 2024 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRender_HTMLTables(t *testing.T) {
	desc, res := serviceResult(t)
	html, err := Render(desc, res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	if n := doc.Find("table").Length(); n != 9 {
		t.Errorf("got %d tables, want 9", n)
	}

	if cells := rowCells(doc, "Service Revenue"); len(cells) != 3 || cells[1] != "1000000.00" || cells[2] != "1200000.00" {
		t.Errorf("service revenue row = %v", cells)
	}

	growth := rowCells(doc, "revenue_growth_rate")
	if len(growth) != 3 || growth[1] != NotAvailable || growth[2] != "0.2000" {
		t.Errorf("revenue_growth_rate row = %v", growth)
	}

	total := doc.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return strings.TrimSpace(tr.Find("td").First().Text()) == "NET INCOME"
	}).First()
	if total.Find("strong").Length() == 0 {
		t.Error("net income total is not emphasised")
	}

	if proj := rowCells(doc, "revenue"); len(proj) != 5 || proj[1] != "GrowthRate" || proj[2] != "1320000.00" {
		t.Errorf("revenue projection row = %v", proj)
	}

	trend := doc.Find("h2").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return h.Text() == "Trends"
	}).NextAll().Filter("table").First()
	cells := trend.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return strings.TrimSpace(tr.Find("td").First().Text()) == "revenue"
	}).Find("td")
	if cells.Length() != 5 || strings.TrimSpace(cells.Eq(1).Text()) != "strong_growth" || strings.TrimSpace(cells.Eq(2).Text()) != "0.2000" {
		t.Errorf("revenue trend row = %q", cells.Text())
	}
}
