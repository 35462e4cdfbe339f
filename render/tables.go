package render

import (
	"strconv"

	"autoparts/export"
	"autoparts/model"
	"autoparts/parsers"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// PartsTable is the catalogue layout used for import and export.
func PartsTable(parts []model.Part) export.Table {
	t := export.Table{
		Title:   "Parts",
		Headers: append([]string(nil), parsers.PartColumns...),
	}
	for _, p := range parts {
		t.Rows = append(t.Rows, []string{
			p.Article, p.Name, p.Brand, p.CarModel, p.Category,
			strconv.Itoa(p.Quantity), money(p.BuyPrice), money(p.SellPrice), p.Description,
		})
	}
	return t
}

func StockTable(r *model.StockReport) export.Table {
	t := export.Table{
		Title: "Stock",
		Headers: []string{"Article", "Name", "Brand", "Car model", "Category", "Qty",
			"Buy price", "Sell price", "Markup %", "Buy value", "Sell value"},
	}
	for _, p := range r.Rows {
		t.Rows = append(t.Rows, []string{
			p.Article, p.Name, p.Brand, p.CarModel, p.Category, strconv.Itoa(p.Quantity),
			money(p.BuyPrice), money(p.SellPrice), money(p.MarkupPercent),
			money(p.StockBuyValue), money(p.StockSellValue),
		})
	}
	t.Footer = [][]string{{"Total", "", "", "", "", strconv.Itoa(r.TotalUnits), "", "", "",
		money(r.TotalBuyValue), money(r.TotalSellValue)}}
	return t
}

func ValuationTable(vals []model.CategoryValuation) export.Table {
	t := export.Table{
		Title:   "By category",
		Headers: []string{"Category", "Parts", "Units", "Buy value", "Sell value"},
	}
	units := 0
	buy, sell := decimal.Zero, decimal.Zero
	for _, v := range vals {
		t.Rows = append(t.Rows, []string{v.Category, strconv.Itoa(v.PartsCount), strconv.Itoa(v.Units),
			money(v.BuyValue), money(v.SellValue)})
		units += v.Units
		buy = buy.Add(v.BuyValue)
		sell = sell.Add(v.SellValue)
	}
	t.Footer = [][]string{{"Total", "", strconv.Itoa(units), money(buy), money(sell)}}
	return t
}

func SalesTable(r *model.SalesReport) export.Table {
	t := export.Table{
		Title:   "Sales",
		Headers: []string{"No.", "Date", "Lines", "Total", "Paid"},
	}
	for _, s := range r.Sales {
		paid := ""
		if s.Paid.Valid {
			paid = money(s.Paid.Decimal)
		}
		t.Rows = append(t.Rows, []string{strconv.FormatInt(s.ID, 10), s.Date, strconv.Itoa(s.ItemsCount), money(s.Total), paid})
	}
	t.Footer = [][]string{
		{"Sales", strconv.Itoa(r.SalesCount), strconv.Itoa(r.ItemsSold), money(r.Revenue), ""},
		{"Cost", "", "", money(r.Cost), ""},
		{"Gross profit", "", "", money(r.GrossProfit), ""},
	}
	return t
}

func TopSellersTable(top []model.TopSeller) export.Table {
	t := export.Table{
		Title:   "Top selling",
		Headers: []string{"Article", "Name", "Qty", "Revenue"},
	}
	for _, s := range top {
		t.Rows = append(t.Rows, []string{s.Article, s.Name, strconv.Itoa(s.Quantity), money(s.Revenue)})
	}
	return t
}

func SlowMovingTable(parts []model.SlowMovingPart) export.Table {
	t := export.Table{
		Title:   "Slow moving",
		Headers: []string{"Article", "Name", "Qty", "Last sale", "Buy value"},
	}
	for _, p := range parts {
		last := p.LastSaleDate
		if last == "" {
			last = "never"
		}
		value := p.BuyPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
		t.Rows = append(t.Rows, []string{p.Article, p.Name, strconv.Itoa(p.Quantity), last, money(value)})
	}
	return t
}

func ReceiptsTable(r *model.ReceiptsReport) export.Table {
	t := export.Table{
		Title:   "Receipts",
		Headers: []string{"No.", "Date", "Supplier", "Lines", "Total", "Notes"},
	}
	for _, rc := range r.Receipts {
		t.Rows = append(t.Rows, []string{strconv.FormatInt(rc.ID, 10), rc.Date, rc.Supplier,
			strconv.Itoa(rc.ItemsCount), money(rc.Total), rc.Notes})
	}
	t.Footer = [][]string{{"Total", strconv.Itoa(r.ReceiptsCount), "", strconv.Itoa(r.UnitsReceived), money(r.Total), ""}}
	return t
}

// SaleTable is the customer copy of a single sale.
func SaleTable(s *model.Sale) export.Table {
	t := export.Table{Headers: []string{"Article", "Name", "Qty", "Price", "Amount"}}
	for _, it := range s.Items {
		t.Rows = append(t.Rows, []string{it.Article, it.Name, strconv.Itoa(it.Quantity), money(it.Price), money(it.LineTotal())})
	}
	t.Footer = [][]string{{"Total", "", "", "", money(s.Total)}}
	if s.Paid.Valid {
		t.Footer = append(t.Footer,
			[]string{"Paid", "", "", "", money(s.Paid.Decimal)},
			[]string{"Change", "", "", "", money(s.Paid.Decimal.Sub(s.Total))})
	}
	return t
}
