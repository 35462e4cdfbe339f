package valuation

import (
	"net/http"

	"autoparts/automation"
	"autoparts/database"
	"autoparts/export"
	"autoparts/reports"
	"autoparts/render"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
)

// GetValuationHandler returns every part with its stock value and the totals.
func GetValuationHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := database.GetStockReport(db)
		if err != nil {
			respond.Error(w, err, "Failed to get stock valuation")
			return
		}
		respond.OK(w, report)
	}
}

// GetCategoryValuationHandler returns stock value grouped by category.
func GetCategoryValuationHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vals, err := database.GetValuationByCategory(db)
		if err != nil {
			respond.Error(w, err, "Failed to get category valuation")
			return
		}
		respond.OK(w, vals)
	}
}

// ExportValuationHandler exports the stock report with a per-category sheet.
func ExportValuationHandler(db *sqlx.DB, p *automation.Printer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := database.GetStockReport(db)
		if err != nil {
			respond.Error(w, err, "Failed to get stock valuation for export")
			return
		}
		vals, err := database.GetValuationByCategory(db)
		if err != nil {
			respond.Error(w, err, "Failed to get category valuation for export")
			return
		}
		reports.Deliver(w, r, p, reports.Document{
			Title:     "Stock report",
			BaseName:  "stock_report",
			Tables:    []export.Table{render.StockTable(report), render.ValuationTable(vals)},
			Landscape: true,
		})
	}
}
