package model

import (
	"github.com/shopspring/decimal"
)

// DateTimeLayout is the timestamp format stored in every date column.
const DateTimeLayout = "2006-01-02T15:04:05"

// DateLayout is used for date filters.
const DateLayout = "2006-01-02"

type Sale struct {
	ID         int64               `db:"id" json:"id"`
	Date       string              `db:"date" json:"date"`
	Total      decimal.Decimal     `db:"total" json:"total"`
	Paid       decimal.NullDecimal `db:"paid" json:"paid"`
	ItemsCount int                 `db:"items_count" json:"itemsCount"`
	Items      []SaleItem          `db:"-" json:"items,omitempty"`
}

type SaleItem struct {
	ID       int64           `db:"id" json:"id"`
	SaleID   int64           `db:"sale_id" json:"saleId"`
	PartID   int64           `db:"part_id" json:"partId"`
	Quantity int             `db:"quantity" json:"quantity"`
	Price    decimal.Decimal `db:"price" json:"price"`
	Article  string          `db:"article" json:"article"`
	Name     string          `db:"name" json:"name"`
}

// LineTotal is quantity × unit price.
func (it SaleItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// SaleItemInput is one cart line. A nil Price sells at the part's current sell price.
type SaleItemInput struct {
	PartID   int64            `json:"partId"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type Receipt struct {
	ID         int64           `db:"id" json:"id"`
	Date       string          `db:"date" json:"date"`
	Supplier   string          `db:"supplier" json:"supplier"`
	Total      decimal.Decimal `db:"total" json:"total"`
	Notes      string          `db:"notes" json:"notes"`
	ItemsCount int             `db:"items_count" json:"itemsCount"`
	Items      []ReceiptItem   `db:"-" json:"items,omitempty"`
}

type ReceiptItem struct {
	ID        int64           `db:"id" json:"id"`
	ReceiptID int64           `db:"receipt_id" json:"receiptId"`
	PartID    int64           `db:"part_id" json:"partId"`
	Quantity  int             `db:"quantity" json:"quantity"`
	BuyPrice  decimal.Decimal `db:"buy_price" json:"buyPrice"`
	Article   string          `db:"article" json:"article"`
	Name      string          `db:"name" json:"name"`
}

// LineTotal is quantity × buy price.
func (it ReceiptItem) LineTotal() decimal.Decimal {
	return it.BuyPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type ReceiptItemInput struct {
	PartID   int64           `json:"partId"`
	Quantity int             `json:"quantity"`
	BuyPrice decimal.Decimal `json:"buyPrice"`
}

// ReceiptInput is the whole supplier delivery as entered.
type ReceiptInput struct {
	Supplier       string             `json:"supplier"`
	Notes          string             `json:"notes"`
	Items          []ReceiptItemInput `json:"items"`
	UpdateBuyPrice bool               `json:"updateBuyPrice"`
}

// StockAdjustment records a manual stock count correction.
type StockAdjustment struct {
	ID          int64  `db:"id" json:"id"`
	Date        string `db:"date" json:"date"`
	PartID      int64  `db:"part_id" json:"partId"`
	Article     string `db:"article" json:"article"`
	OldQuantity int    `db:"old_quantity" json:"oldQuantity"`
	NewQuantity int    `db:"new_quantity" json:"newQuantity"`
	Delta       int    `db:"delta" json:"delta"`
	Reason      string `db:"reason" json:"reason"`
}

// StockCount is one counted line of a stock-taking session.
type StockCount struct {
	PartID          int64  `json:"partId"`
	CountedQuantity int    `json:"countedQuantity"`
	Reason          string `json:"reason"`
}
