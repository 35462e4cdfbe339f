package model

import "github.com/shopspring/decimal"

// StockReport lists every part with its stock value.
type StockReport struct {
	Rows           []PartView      `json:"rows"`
	TotalUnits     int             `json:"totalUnits"`
	TotalBuyValue  decimal.Decimal `json:"totalBuyValue"`
	TotalSellValue decimal.Decimal `json:"totalSellValue"`
}

type CategoryValuation struct {
	Category   string          `db:"category" json:"category"`
	PartsCount int             `db:"parts_count" json:"partsCount"`
	Units      int             `db:"units" json:"units"`
	BuyValue   decimal.Decimal `db:"buy_value" json:"buyValue"`
	SellValue  decimal.Decimal `db:"sell_value" json:"sellValue"`
}

// SalesReport summarises a date range. Cost uses the parts' current buy prices.
type SalesReport struct {
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Sales       []Sale          `json:"sales"`
	SalesCount  int             `json:"salesCount"`
	ItemsSold   int             `json:"itemsSold"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	GrossProfit decimal.Decimal `json:"grossProfit"`
}

type TopSeller struct {
	PartID   int64           `db:"part_id" json:"partId"`
	Article  string          `db:"article" json:"article"`
	Name     string          `db:"name" json:"name"`
	Quantity int             `db:"quantity" json:"quantity"`
	Revenue  decimal.Decimal `db:"revenue" json:"revenue"`
}

type SlowMovingPart struct {
	Part
	LastSaleDate string `db:"last_sale_date" json:"lastSaleDate"`
}

type ReceiptsReport struct {
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	Receipts      []Receipt       `json:"receipts"`
	ReceiptsCount int             `json:"receiptsCount"`
	UnitsReceived int             `json:"unitsReceived"`
	Total         decimal.Decimal `json:"total"`
}
