package render

import (
	"strings"
	"testing"
	"time"

	"autoparts/export"
)

func TestReportHTML(t *testing.T) {
	table := export.Table{
		Headers: []string{"Article", "Name", "Qty"},
		Rows:    [][]string{{"A-1", "<script>alert(1)</script>", "12"}},
		Footer:  [][]string{{"Total", "", "12"}},
	}
	empty := export.Table{Title: "Slow moving", Headers: []string{"Article", "Qty"}}

	html, err := ReportHTML("Stock report", time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC), table, empty)
	if err != nil {
		t.Fatalf("ReportHTML failed: %v", err)
	}
	out := string(html)

	for _, want := range []string{
		"<title>Stock report</title>",
		"Generated 2024-05-01 09:05",
		`<td class="num">12</td>`,
		"&lt;script&gt;",
		"<tfoot>",
		"<h2>Slow moving</h2>",
		`<td colspan="2">No data.</td>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q", want)
		}
	}
	if strings.Contains(out, "<script>alert") {
		t.Error("cell content must be escaped")
	}
}

func TestIsNumber(t *testing.T) {
	tests := map[string]bool{
		"12":      true,
		"-3.50":   true,
		"1,5":     true,
		"":        false,
		"-":       false,
		"A-1":     false,
		"5-2":     false,
		"2024-05": false,
	}
	for in, want := range tests {
		if got := isNumber(in); got != want {
			t.Errorf("isNumber(%q) = %v, want %v", in, got, want)
		}
	}
}
