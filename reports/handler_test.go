package reports

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autoparts/automation"
	"autoparts/config"
	"autoparts/database"
	"autoparts/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func setup(t *testing.T) *sqlx.DB {
	t.Helper()
	dir := t.TempDir()
	if err := config.Init(dir); err != nil {
		t.Fatal(err)
	}
	db, err := database.Open(filepath.Join(dir, "reports.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.InitDatabase(db); err != nil {
		t.Fatal(err)
	}

	part, err := database.CreatePart(db, model.PartInput{
		Article: "KL-1", Name: "Колодки", Brand: "TRW", CarModel: "Granta", Category: "Brakes",
		Quantity: 10, BuyPrice: decimal.NewFromInt(30), SellPrice: decimal.NewFromInt(45),
	})
	if err != nil {
		t.Fatal(err)
	}

	prev := database.Now
	database.Now = func() time.Time { return time.Date(2024, 7, 15, 12, 0, 0, 0, time.Local) }
	t.Cleanup(func() { database.Now = prev })

	if _, err := database.CreateSale(db, []model.SaleItemInput{{PartID: part.ID, Quantity: 2}}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := database.CreateReceipt(db, model.ReceiptInput{Supplier: "TRW Dist",
		Items: []model.ReceiptItemInput{{PartID: part.ID, Quantity: 5, BuyPrice: decimal.NewFromInt(30)}}}); err != nil {
		t.Fatal(err)
	}
	return db
}

func get(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSalesReportJSON(t *testing.T) {
	db := setup(t)
	rec := get(SalesReportHandler(db, nil), "/api/reports/sales?start=2024-07-01&end=2024-07-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var report model.SalesReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.SalesCount != 1 || !report.Revenue.Equal(decimal.NewFromInt(90)) || !report.GrossProfit.Equal(decimal.NewFromInt(30)) {
		t.Errorf("report = %+v", report)
	}

	rec = get(SalesReportHandler(db, nil), "/api/reports/sales?start=07/01/2024")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d", rec.Code)
	}
}

func TestSalesReportFormats(t *testing.T) {
	db := setup(t)
	h := SalesReportHandler(db, nil)

	rec := get(h, "/api/reports/sales?format=csv")
	if !strings.HasPrefix(rec.Body.String(), "\xEF\xBB\xBFNo.,Date,Lines,Total,Paid") {
		t.Errorf("csv = %q", rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "sales_report_") {
		t.Errorf("disposition = %s", rec.Header().Get("Content-Disposition"))
	}

	rec = get(h, "/api/reports/sales?format=xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("xlsx unreadable: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[1] != "Top selling" {
		t.Errorf("sheets = %v", sheets)
	}

	rec = get(h, "/api/reports/sales?format=html")
	if !strings.Contains(rec.Body.String(), "Sales report, all time") || !strings.Contains(rec.Body.String(), "Колодки") {
		t.Errorf("html = %s", rec.Body)
	}

	rec = get(h, "/api/reports/sales?format=pdf")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("pdf without printer status = %d", rec.Code)
	}

	rec = get(h, "/api/reports/sales?format=docx")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d", rec.Code)
	}
}

func TestDeliverSave(t *testing.T) {
	db := setup(t)
	rec := get(ReceiptsReportHandler(db, (*automation.Printer)(nil)), "/api/reports/receipts?format=csv&encoding=windows-1251&save=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(resp["path"]) != config.GetConfig().ExportDir {
		t.Errorf("saved to %s, want export dir %s", resp["path"], config.GetConfig().ExportDir)
	}
	if _, err := os.Stat(resp["path"]); err != nil {
		t.Errorf("export file missing: %v", err)
	}
	if recent := config.GetConfig().RecentFiles; len(recent) == 0 || recent[0] != resp["path"] {
		t.Errorf("recent files = %v", recent)
	}
}

func TestTopSellers(t *testing.T) {
	db := setup(t)
	rec := get(TopSellersHandler(db, nil), "/api/reports/top_selling?limit=1")
	var top []model.TopSeller
	if err := json.Unmarshal(rec.Body.Bytes(), &top); err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Quantity != 2 {
		t.Errorf("top = %+v", top)
	}
	rec = get(TopSellersHandler(db, nil), "/api/reports/top_selling?limit=zero")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
}

func TestPeriodTitle(t *testing.T) {
	tests := []struct{ start, end, want string }{
		{"", "", "R, all time"},
		{"2024-01-01", "", "R from 2024-01-01"},
		{"", "2024-01-31", "R up to 2024-01-31"},
		{"2024-01-01", "2024-01-31", "R, 2024-01-01 to 2024-01-31"},
	}
	for _, tt := range tests {
		if got := periodTitle("R", tt.start, tt.end); got != tt.want {
			t.Errorf("periodTitle(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}
