package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxQuantity bounds any single quantity entered for a part or a document line.
const MaxQuantity = 1_000_000

// Part is one catalogue position together with its current stock.
type Part struct {
	ID          int64           `db:"id" json:"id"`
	Article     string          `db:"article" json:"article"`
	Name        string          `db:"name" json:"name"`
	Brand       string          `db:"brand" json:"brand"`
	CarModel    string          `db:"car_model" json:"carModel"`
	Category    string          `db:"category" json:"category"`
	Quantity    int             `db:"quantity" json:"quantity"`
	BuyPrice    decimal.Decimal `db:"buy_price" json:"buyPrice"`
	SellPrice   decimal.Decimal `db:"sell_price" json:"sellPrice"`
	Description string          `db:"description" json:"description"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
	UpdatedAt   string          `db:"updated_at" json:"updatedAt"`
}

// MarkupPercent is (sell-buy)/buy*100, or zero for a free part.
func (p Part) MarkupPercent() decimal.Decimal {
	return MarkupPercent(p.BuyPrice, p.SellPrice)
}

// MarkupPercent computes the markup of sell over buy in percent, rounded to 2 places.
func MarkupPercent(buy, sell decimal.Decimal) decimal.Decimal {
	if !buy.IsPositive() {
		return decimal.Zero
	}
	return sell.Sub(buy).Div(buy).Mul(hundred).Round(2)
}

// SellPriceForMarkup applies a markup percentage to a buy price.
func SellPriceForMarkup(buy, markupPercent decimal.Decimal) decimal.Decimal {
	return buy.Mul(decimal.NewFromInt(1).Add(markupPercent.Div(hundred))).Round(2)
}

// PartView is what the parts screen displays.
type PartView struct {
	Part
	MarkupPercent  decimal.Decimal `json:"markupPercent"`
	StockBuyValue  decimal.Decimal `json:"stockBuyValue"`
	StockSellValue decimal.Decimal `json:"stockSellValue"`
}

// ToPartView adds the derived columns.
func ToPartView(p Part) PartView {
	qty := decimal.NewFromInt(int64(p.Quantity))
	return PartView{
		Part:           p,
		MarkupPercent:  p.MarkupPercent(),
		StockBuyValue:  p.BuyPrice.Mul(qty).Round(2),
		StockSellValue: p.SellPrice.Mul(qty).Round(2),
	}
}

// PartInput is the editable part of a Part.
type PartInput struct {
	Article     string          `json:"article"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	CarModel    string          `json:"carModel"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	BuyPrice    decimal.Decimal `json:"buyPrice"`
	SellPrice   decimal.Decimal `json:"sellPrice"`
	Description string          `json:"description"`
}

// Normalize trims the text fields in place.
func (in *PartInput) Normalize() {
	in.Article = strings.TrimSpace(in.Article)
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.CarModel = strings.TrimSpace(in.CarModel)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
}

// Validate reports every missing or out-of-range field at once.
func (in PartInput) Validate() error {
	var errs []error
	required := []struct{ name, value string }{
		{"article", in.Article},
		{"name", in.Name},
		{"brand", in.Brand},
		{"carModel", in.CarModel},
		{"category", in.Category},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, errors.New(f.name+" is required"))
		}
	}
	if in.Quantity < 0 {
		errs = append(errs, errors.New("quantity must not be negative"))
	}
	if in.Quantity > MaxQuantity {
		errs = append(errs, fmt.Errorf("quantity must not exceed %d", MaxQuantity))
	}
	if in.BuyPrice.IsNegative() {
		errs = append(errs, errors.New("buyPrice must not be negative"))
	}
	if in.SellPrice.IsNegative() {
		errs = append(errs, errors.New("sellPrice must not be negative"))
	}
	return errors.Join(errs...)
}
