package receipts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"autoparts/database"
	"autoparts/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T) (*sqlx.DB, *http.ServeMux, *model.Part) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "receipts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.InitDatabase(db); err != nil {
		t.Fatal(err)
	}
	part, err := database.CreatePart(db, model.PartInput{
		Article: "BLT-7", Name: "Timing belt", Brand: "Gates", CarModel: "Niva", Category: "Belts",
		BuyPrice: decimal.RequireFromString("15"), SellPrice: decimal.RequireFromString("25"),
	})
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/receipts", ReceiptsHandler(db))
	mux.HandleFunc("/api/receipts/", ReceiptHandler(db))
	mux.HandleFunc("/api/receipts/suppliers", SuppliersHandler(db))
	return db, mux, part
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestReceiptLifecycle(t *testing.T) {
	db, mux, part := setup(t)

	body := fmt.Sprintf(`{"supplier":"Belts Co","items":[{"partId":%d,"quantity":10,"buyPrice":"14.20"}],"updateBuyPrice":true}`, part.ID)
	rec := do(mux, http.MethodPost, "/api/receipts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var receipt model.Receipt
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatal(err)
	}
	if !receipt.Total.Equal(decimal.RequireFromString("142")) || len(receipt.Items) != 1 {
		t.Errorf("receipt = %+v", receipt)
	}

	p, _ := database.GetPartByID(db, part.ID)
	if p.Quantity != 10 || !p.BuyPrice.Equal(decimal.RequireFromString("14.2")) {
		t.Errorf("part after receipt = %+v", p)
	}

	rec = do(mux, http.MethodGet, "/api/receipts/suppliers", "")
	if strings.TrimSpace(rec.Body.String()) != `["Belts Co"]` {
		t.Errorf("suppliers = %s", rec.Body)
	}

	rec = do(mux, http.MethodDelete, fmt.Sprintf("/api/receipts/%d", receipt.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("void status = %d, body = %s", rec.Code, rec.Body)
	}
	rec = do(mux, http.MethodGet, fmt.Sprintf("/api/receipts/%d", receipt.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("voided receipt status = %d, want 404", rec.Code)
	}
}

func TestReceiptErrors(t *testing.T) {
	_, mux, part := setup(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"no supplier", fmt.Sprintf(`{"items":[{"partId":%d,"quantity":1,"buyPrice":"1"}]}`, part.ID), http.StatusBadRequest},
		{"no items", `{"supplier":"S","items":[]}`, http.StatusBadRequest},
		{"unknown part", `{"supplier":"S","items":[{"partId":999,"quantity":1,"buyPrice":"1"}]}`, http.StatusNotFound},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(mux, http.MethodPost, "/api/receipts", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}
