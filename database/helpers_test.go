package database

import (
	"path/filepath"
	"testing"
	"time"

	"autoparts/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := InitDatabase(db); err != nil {
		t.Fatalf("InitDatabase failed: %v", err)
	}
	return db
}

// freezeClock makes every timestamp written during the test equal to at.
func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return at }
	t.Cleanup(func() { Now = prev })
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func partInput(article string, qty int, buy, sell string) model.PartInput {
	return model.PartInput{
		Article:   article,
		Name:      "Part " + article,
		Brand:     "Bosch",
		CarModel:  "Lada Vesta",
		Category:  "Filters",
		Quantity:  qty,
		BuyPrice:  dec(buy),
		SellPrice: dec(sell),
	}
}

func mustCreatePart(t *testing.T, db *sqlx.DB, in model.PartInput) *model.Part {
	t.Helper()
	p, err := CreatePart(db, in)
	if err != nil {
		t.Fatalf("CreatePart(%s) failed: %v", in.Article, err)
	}
	return p
}

func quantityOf(t *testing.T, db *sqlx.DB, id int64) int {
	t.Helper()
	p, err := GetPartByID(db, id)
	if err != nil {
		t.Fatalf("GetPartByID(%d) failed: %v", id, err)
	}
	return p.Quantity
}
