package database

import (
	"errors"
	"testing"

	"autoparts/model"
)

func TestCreateAndGetPart(t *testing.T) {
	db := openTestDB(t)

	in := partInput("  OF-100 ", 4, "10.50", "15.75")
	in.Description = "oil filter"
	p := mustCreatePart(t, db, in)

	if p.ID == 0 {
		t.Fatal("expected a generated id")
	}
	if p.Article != "OF-100" {
		t.Errorf("article not trimmed: %q", p.Article)
	}
	if !p.BuyPrice.Equal(dec("10.5")) || !p.SellPrice.Equal(dec("15.75")) {
		t.Errorf("prices = %s/%s", p.BuyPrice, p.SellPrice)
	}
	if p.CreatedAt == "" || p.CreatedAt != p.UpdatedAt {
		t.Errorf("timestamps = %q/%q", p.CreatedAt, p.UpdatedAt)
	}

	byArticle, err := GetPartByArticle(db, "OF-100")
	if err != nil {
		t.Fatalf("GetPartByArticle failed: %v", err)
	}
	if byArticle.ID != p.ID || byArticle.Description != "oil filter" {
		t.Errorf("GetPartByArticle returned %+v", byArticle)
	}
}

func TestCreatePartValidation(t *testing.T) {
	db := openTestDB(t)

	tests := []struct {
		name string
		in   model.PartInput
	}{
		{"missing article", partInput("", 1, "1", "2")},
		{"negative quantity", partInput("A", -1, "1", "2")},
		{"negative price", partInput("A", 1, "-1", "2")},
		{"quantity over maximum", partInput("A", model.MaxQuantity+1, "1", "2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreatePart(db, tt.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestDuplicateArticle(t *testing.T) {
	db := openTestDB(t)
	mustCreatePart(t, db, partInput("A-1", 1, "1", "2"))
	other := mustCreatePart(t, db, partInput("A-2", 1, "1", "2"))

	if _, err := CreatePart(db, partInput("A-1", 1, "1", "2")); !errors.Is(err, ErrDuplicateArticle) {
		t.Errorf("CreatePart: expected ErrDuplicateArticle, got %v", err)
	}
	if _, err := UpdatePart(db, other.ID, partInput("A-1", 1, "1", "2")); !errors.Is(err, ErrDuplicateArticle) {
		t.Errorf("UpdatePart: expected ErrDuplicateArticle, got %v", err)
	}

	free, err := IsArticleAvailable(db, "A-1", 0)
	if err != nil || free {
		t.Errorf("IsArticleAvailable(A-1) = %v, %v", free, err)
	}
	own, err := IsArticleAvailable(db, "A-2", other.ID)
	if err != nil || !own {
		t.Errorf("IsArticleAvailable(A-2, own id) = %v, %v", own, err)
	}
}

func TestUpdatePart(t *testing.T) {
	db := openTestDB(t)
	p := mustCreatePart(t, db, partInput("U-1", 1, "1", "2"))

	in := partInput("U-1", 7, "3", "4.5")
	in.Name = "Brake pad"
	updated, err := UpdatePart(db, p.ID, in)
	if err != nil {
		t.Fatalf("UpdatePart failed: %v", err)
	}
	if updated.Name != "Brake pad" || updated.Quantity != 7 || !updated.SellPrice.Equal(dec("4.5")) {
		t.Errorf("unexpected part after update: %+v", updated)
	}

	if _, err := UpdatePart(db, 9999, in); !errors.Is(err, ErrPartNotFound) {
		t.Errorf("expected ErrPartNotFound, got %v", err)
	}
}

func TestSearchPartsCaseInsensitive(t *testing.T) {
	db := openTestDB(t)

	a := partInput("FLT-1", 1, "1", "2")
	a.Name = "Масляный фильтр"
	mustCreatePart(t, db, a)

	b := partInput("PAD-9", 1, "1", "2")
	b.Name = "Brake pad"
	b.Brand = "Brembo"
	b.CarModel = "Kia Rio"
	b.Category = "Brakes"
	mustCreatePart(t, db, b)

	c := partInput("X_100%", 1, "1", "2")
	c.Name = "Wildcard"
	mustCreatePart(t, db, c)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"FLT-1", "PAD-9", "X_100%"}},
		{"МАСЛЯНЫЙ", []string{"FLT-1"}},
		{"brembo", []string{"PAD-9"}},
		{"rio", []string{"PAD-9"}},
		{"brakes", []string{"PAD-9"}},
		{"flt", []string{"FLT-1"}},
		{"_1", []string{"X_100%"}},
		{"100%", []string{"X_100%"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			parts, err := SearchParts(db, tt.query)
			if err != nil {
				t.Fatalf("SearchParts failed: %v", err)
			}
			var got []string
			for _, p := range parts {
				got = append(got, p.Article)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SearchParts(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("SearchParts(%q) = %v, want %v", tt.query, got, tt.want)
				}
			}
		})
	}
}

func TestLowStockCategoriesBrands(t *testing.T) {
	db := openTestDB(t)

	for _, in := range []model.PartInput{
		partInput("L-0", 0, "1", "2"),
		partInput("L-3", 3, "1", "2"),
		partInput("L-1", 1, "1", "2"),
		partInput("L-9", 9, "1", "2"),
	} {
		mustCreatePart(t, db, in)
	}
	spark := partInput("S-1", 2, "1", "2")
	spark.Category = "Ignition"
	spark.Brand = "NGK"
	mustCreatePart(t, db, spark)

	low, err := GetLowStockParts(db, 3)
	if err != nil {
		t.Fatalf("GetLowStockParts failed: %v", err)
	}
	want := []string{"L-1", "S-1", "L-3"}
	if len(low) != len(want) {
		t.Fatalf("got %d low stock parts, want %d", len(low), len(want))
	}
	for i, p := range low {
		if p.Article != want[i] {
			t.Errorf("low[%d] = %s, want %s", i, p.Article, want[i])
		}
	}

	inStock, err := GetPartsInStock(db)
	if err != nil || len(inStock) != 4 {
		t.Errorf("GetPartsInStock = %d parts, %v", len(inStock), err)
	}

	cats, err := GetCategories(db)
	if err != nil || len(cats) != 2 || cats[0] != "Filters" || cats[1] != "Ignition" {
		t.Errorf("GetCategories = %v, %v", cats, err)
	}
	brands, err := GetBrands(db)
	if err != nil || len(brands) != 2 || brands[0] != "Bosch" || brands[1] != "NGK" {
		t.Errorf("GetBrands = %v, %v", brands, err)
	}
}

func TestDeletePart(t *testing.T) {
	db := openTestDB(t)
	free := mustCreatePart(t, db, partInput("D-1", 5, "1", "2"))
	sold := mustCreatePart(t, db, partInput("D-2", 5, "1", "2"))

	if _, err := AdjustStock(db, free.ID, 4, "recount"); err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}
	if err := DeletePart(db, free.ID); err != nil {
		t.Fatalf("DeletePart failed: %v", err)
	}
	if _, err := GetPartByID(db, free.ID); !errors.Is(err, ErrPartNotFound) {
		t.Errorf("expected deleted part to be gone, got %v", err)
	}

	if _, err := CreateSale(db, []model.SaleItemInput{{PartID: sold.ID, Quantity: 1}}, nil); err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}
	if err := DeletePart(db, sold.ID); !errors.Is(err, ErrPartInUse) {
		t.Errorf("expected ErrPartInUse, got %v", err)
	}
	if err := DeletePart(db, 9999); !errors.Is(err, ErrPartNotFound) {
		t.Errorf("expected ErrPartNotFound, got %v", err)
	}
}

func TestUpsertPartInTx(t *testing.T) {
	db := openTestDB(t)
	mustCreatePart(t, db, partInput("UP-1", 1, "1", "2"))

	tx, err := db.Beginx()
	if err != nil {
		t.Fatal(err)
	}
	created, err := UpsertPartInTx(tx, partInput("UP-1", 8, "1", "2"))
	if err != nil || created {
		t.Fatalf("upsert existing = %v, %v", created, err)
	}
	created, err = UpsertPartInTx(tx, partInput("UP-2", 3, "1", "2"))
	if err != nil || !created {
		t.Fatalf("upsert new = %v, %v", created, err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	p, err := GetPartByArticle(db, "UP-1")
	if err != nil || p.Quantity != 8 {
		t.Errorf("UP-1 after upsert = %+v, %v", p, err)
	}
	if _, err := GetPartByArticle(db, "UP-2"); err != nil {
		t.Errorf("UP-2 not created: %v", err)
	}
}
