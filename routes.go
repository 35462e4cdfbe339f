package main

import (
	"net/http"

	"autoparts/automation"
	"autoparts/backup"
	"autoparts/catalog"
	"autoparts/config"
	"autoparts/deadstock"
	"autoparts/inventoryadjustment"
	"autoparts/parts"
	"autoparts/receipts"
	"autoparts/reports"
	"autoparts/respond"
	"autoparts/sales"
	"autoparts/valuation"

	"github.com/jmoiron/sqlx"
)

// App bundles what the handlers need besides the database. Printer and
// Scheduler may be nil.
type App struct {
	DB        *sqlx.DB
	Printer   *automation.Printer
	Backups   *backup.Service
	Scheduler *backup.Scheduler
}

func SetupRoutes(mux *http.ServeMux, app App) {
	db := app.DB

	mux.HandleFunc("/api/parts", parts.PartsHandler(db))
	mux.HandleFunc("/api/parts/", parts.PartHandler(db))
	mux.HandleFunc("/api/parts/by_article/", parts.GetPartByArticleHandler(db))
	mux.HandleFunc("/api/parts/in_stock", parts.InStockHandler(db))
	mux.HandleFunc("/api/parts/low_stock", parts.LowStockHandler(db))
	mux.HandleFunc("/api/parts/check_article", parts.CheckArticleHandler(db))
	mux.HandleFunc("/api/categories", parts.CategoriesHandler(db))
	mux.HandleFunc("/api/brands", parts.BrandsHandler(db))
	mux.HandleFunc("/api/pricing/sell_price", parts.SellPriceHandler())
	mux.HandleFunc("/api/pricing/markup", parts.MarkupHandler())

	mux.HandleFunc("/api/sales", sales.SalesHandler(db))
	mux.HandleFunc("/api/sales/", sales.SaleHandler(db))
	mux.HandleFunc("/api/sales/validate", sales.ValidateSaleHandler(db))
	mux.HandleFunc("/api/sales/change", sales.ChangeHandler())

	mux.HandleFunc("/api/receipts", receipts.ReceiptsHandler(db))
	mux.HandleFunc("/api/receipts/", receipts.ReceiptHandler(db))
	mux.HandleFunc("/api/suppliers", receipts.SuppliersHandler(db))

	mux.HandleFunc("/api/inventory/adjust/data", inventoryadjustment.GetInventoryDataHandler(db))
	mux.HandleFunc("/api/inventory/adjust/save", inventoryadjustment.SaveInventoryDataHandler(db))
	mux.HandleFunc("/api/inventory/adjustments", inventoryadjustment.ListAdjustmentsHandler(db))

	mux.HandleFunc("/api/valuation", valuation.GetValuationHandler(db))
	mux.HandleFunc("/api/valuation/by_category", valuation.GetCategoryValuationHandler(db))
	mux.HandleFunc("/api/valuation/export", valuation.ExportValuationHandler(db, app.Printer))
	mux.HandleFunc("/api/deadstock/list", deadstock.ListDeadStockHandler(db))
	mux.HandleFunc("/api/deadstock/export", deadstock.ExportDeadStockHandler(db, app.Printer))
	mux.HandleFunc("/api/reports/sales", reports.SalesReportHandler(db, app.Printer))
	mux.HandleFunc("/api/reports/top_sellers", reports.TopSellersHandler(db, app.Printer))
	mux.HandleFunc("/api/reports/receipts", reports.ReceiptsReportHandler(db, app.Printer))

	mux.HandleFunc("/api/print/html", automation.PrintHTMLHandler(app.Printer))
	mux.HandleFunc("/api/print/sale/", automation.PrintSaleHandler(db, app.Printer))

	mux.HandleFunc("/api/catalog/export", catalog.ExportAllPartsHandler(db))
	mux.HandleFunc("/api/catalog/import", catalog.ImportAllPartsHandler(db))

	if app.Backups != nil {
		mux.HandleFunc("/api/backups", backup.BackupsHandler(app.Backups))
		mux.HandleFunc("/api/backups/", backup.BackupHandler(app.Backups))
		mux.HandleFunc("/api/backups/restore", backup.RestoreHandler(app.Backups))
		mux.HandleFunc("/api/backups/cleanup", backup.CleanupHandler(app.Backups, func() int {
			return config.GetConfig().MaxBackupFiles
		}))
	}

	mux.HandleFunc("/api/config", ConfigHandler(app.Scheduler))
	mux.HandleFunc("/api/config/reset", ResetConfigHandler(app.Scheduler))
	mux.HandleFunc("/api/config/window", WindowGeometryHandler())

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
}
