package catalog

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"autoparts/database"
	"autoparts/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.InitDatabase(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/catalog/import?encoding=utf-8", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportKeepsStockWithoutQuantityColumn(t *testing.T) {
	db := setupDB(t)
	existing, err := database.CreatePart(db, model.PartInput{Article: "A-1", Name: "Old name", Brand: "Bosch",
		CarModel: "Vesta", Category: "Filters", Quantity: 7, BuyPrice: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatal(err)
	}

	csv := "article,name,brand,car_model,category,buy_price,sell_price\n" +
		"A-1,Oil filter,Bosch,Vesta,Filters,\"1,50\",3\n" +
		"B-2,Brake pad,ATE,Granta,Brakes,10,15\n" +
		"C-3,Broken,ATE,Granta,Brakes,abc,15\n"

	rec := httptest.NewRecorder()
	ImportAllPartsHandler(db)(rec, uploadRequest(t, "parts.csv", []byte(csv)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var result ImportResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Created != 1 || result.Updated != 1 || len(result.Errors) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.Errors[0].Line != 4 {
		t.Errorf("error line = %d, want 4", result.Errors[0].Line)
	}

	p, err := database.GetPartByID(db, existing.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Oil filter" || p.Quantity != 7 || !p.BuyPrice.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("updated part = %+v", p)
	}
	created, err := database.GetPartByArticle(db, "B-2")
	if err != nil {
		t.Fatal(err)
	}
	if created.Quantity != 0 {
		t.Errorf("new part quantity = %d, want 0", created.Quantity)
	}
}

func TestImportXLSXWithQuantity(t *testing.T) {
	db := setupDB(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"article", "name", "brand", "car_model", "category", "quantity", "buy_price", "sell_price"},
		{"X-1", "Spark plug", "NGK", "Vesta", "Ignition", 12, 2, 4},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	ImportAllPartsHandler(db)(rec, uploadRequest(t, "parts.xlsx", buf.Bytes()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	p, err := database.GetPartByArticle(db, "X-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Quantity != 12 {
		t.Errorf("quantity = %d, want 12", p.Quantity)
	}
}

func TestImportRejectsUnknownFileType(t *testing.T) {
	db := setupDB(t)
	rec := httptest.NewRecorder()
	ImportAllPartsHandler(db)(rec, uploadRequest(t, "parts.pdf", []byte("x")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportAllParts(t *testing.T) {
	db := setupDB(t)
	if _, err := database.CreatePart(db, model.PartInput{Article: "A-1", Name: "Oil filter", Brand: "Bosch",
		CarModel: "Vesta", Category: "Filters", Quantity: 3, BuyPrice: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(2)}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	ExportAllPartsHandler(db)(rec, httptest.NewRequest(http.MethodGet, "/api/catalog/export?format=csv&encoding=utf-8", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "A-1") || !strings.Contains(rec.Header().Get("Content-Disposition"), ".csv") {
		t.Errorf("unexpected export: %q", rec.Body.String())
	}

	// An exported catalogue must import back without changes.
	rec2 := httptest.NewRecorder()
	ImportAllPartsHandler(db)(rec2, uploadRequest(t, "parts.csv", rec.Body.Bytes()))
	var result ImportResult
	if err := json.Unmarshal(rec2.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 || result.Updated != 1 || len(result.Errors) != 0 {
		t.Errorf("re-import result = %+v", result)
	}
}
