package reports

import (
	"net/http"
	"strconv"

	"autoparts/automation"
	"autoparts/database"
	"autoparts/export"
	"autoparts/render"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
)

func wantsJSON(r *http.Request) bool {
	f := r.URL.Query().Get("format")
	return f == "" || f == FormatJSON
}

// SalesReportHandler serves the sales summary for ?start=&end= (YYYY-MM-DD, inclusive).
func SalesReportHandler(db *sqlx.DB, p *automation.Printer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		report, err := database.GetSalesReport(db, q.Get("start"), q.Get("end"))
		if err != nil {
			respond.Error(w, err, "Failed to build sales report")
			return
		}
		if wantsJSON(r) {
			respond.OK(w, report)
			return
		}
		top, err := database.GetTopSellingParts(db, q.Get("start"), q.Get("end"), 10)
		if err != nil {
			respond.Error(w, err, "Failed to get top selling parts")
			return
		}
		Deliver(w, r, p, Document{
			Title:    periodTitle("Sales report", report.StartDate, report.EndDate),
			BaseName: "sales_report",
			Tables:   []export.Table{render.SalesTable(report), render.TopSellersTable(top)},
		})
	}
}

// TopSellersHandler returns the best selling parts for ?start=&end=&limit=.
func TopSellersHandler(db *sqlx.DB, p *automation.Printer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := 10
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respond.BadRequest(w, "limit must be a positive integer")
				return
			}
			limit = n
		}
		top, err := database.GetTopSellingParts(db, q.Get("start"), q.Get("end"), limit)
		if err != nil {
			respond.Error(w, err, "Failed to get top selling parts")
			return
		}
		if wantsJSON(r) {
			respond.OK(w, top)
			return
		}
		Deliver(w, r, p, Document{
			Title:    periodTitle("Top selling parts", q.Get("start"), q.Get("end")),
			BaseName: "top_selling",
			Tables:   []export.Table{render.TopSellersTable(top)},
		})
	}
}

// ReceiptsReportHandler serves the deliveries summary for ?start=&end=.
func ReceiptsReportHandler(db *sqlx.DB, p *automation.Printer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		report, err := database.GetReceiptsReport(db, q.Get("start"), q.Get("end"))
		if err != nil {
			respond.Error(w, err, "Failed to build receipts report")
			return
		}
		if wantsJSON(r) {
			respond.OK(w, report)
			return
		}
		Deliver(w, r, p, Document{
			Title:    periodTitle("Receipts report", report.StartDate, report.EndDate),
			BaseName: "receipts_report",
			Tables:   []export.Table{render.ReceiptsTable(report)},
		})
	}
}

func periodTitle(title, start, end string) string {
	switch {
	case start == "" && end == "":
		return title + ", all time"
	case start == "":
		return title + " up to " + end
	case end == "":
		return title + " from " + start
	default:
		return title + ", " + start + " to " + end
	}
}
