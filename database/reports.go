package database

import (
	"fmt"
	"sort"

	"autoparts/model"

	"github.com/shopspring/decimal"
)

func GetStockReport(db DBTX) (*model.StockReport, error) {
	parts, err := GetAllParts(db)
	if err != nil {
		return nil, err
	}

	report := &model.StockReport{
		Rows:           make([]model.PartView, 0, len(parts)),
		TotalBuyValue:  decimal.Zero,
		TotalSellValue: decimal.Zero,
	}
	for _, p := range parts {
		view := model.ToPartView(p)
		report.Rows = append(report.Rows, view)
		report.TotalUnits += p.Quantity
		report.TotalBuyValue = report.TotalBuyValue.Add(view.StockBuyValue)
		report.TotalSellValue = report.TotalSellValue.Add(view.StockSellValue)
	}
	return report, nil
}

// GetValuationByCategory groups stock value by category, computed in decimal
// from the individual parts.
func GetValuationByCategory(db DBTX) ([]model.CategoryValuation, error) {
	parts, err := GetAllParts(db)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*model.CategoryValuation)
	for _, p := range parts {
		g, ok := groups[p.Category]
		if !ok {
			g = &model.CategoryValuation{Category: p.Category, BuyValue: decimal.Zero, SellValue: decimal.Zero}
			groups[p.Category] = g
		}
		qty := decimal.NewFromInt(int64(p.Quantity))
		g.PartsCount++
		g.Units += p.Quantity
		g.BuyValue = g.BuyValue.Add(p.BuyPrice.Mul(qty))
		g.SellValue = g.SellValue.Add(p.SellPrice.Mul(qty))
	}

	result := make([]model.CategoryValuation, 0, len(groups))
	for _, g := range groups {
		g.BuyValue = g.BuyValue.Round(2)
		g.SellValue = g.SellValue.Round(2)
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

func GetSalesReport(db DBTX, start, end string) (*model.SalesReport, error) {
	sales, err := GetSalesByDate(db, start, end)
	if err != nil {
		return nil, err
	}
	from, to, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}

	report := &model.SalesReport{
		StartDate:  start,
		EndDate:    end,
		Sales:      sales,
		SalesCount: len(sales),
		Revenue:    decimal.Zero,
	}
	for _, s := range sales {
		report.Revenue = report.Revenue.Add(s.Total)
	}

	var totals struct {
		ItemsSold int             `db:"items_sold"`
		Cost      decimal.Decimal `db:"cost"`
	}
	const q = `
		SELECT COALESCE(SUM(si.quantity), 0) AS items_sold,
		       COALESCE(SUM(si.quantity * p.buy_price), 0) AS cost
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN parts p ON p.id = si.part_id
		WHERE s.date >= ? AND s.date < ?`
	if err := db.Get(&totals, q, from, to); err != nil {
		return nil, fmt.Errorf("failed to total sale items: %w", err)
	}

	report.ItemsSold = totals.ItemsSold
	report.Revenue = report.Revenue.Round(2)
	report.Cost = totals.Cost.Round(2)
	report.GrossProfit = report.Revenue.Sub(report.Cost)
	return report, nil
}

func GetTopSellingParts(db DBTX, start, end string, limit int) ([]model.TopSeller, error) {
	from, to, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	top := []model.TopSeller{}
	const q = `
		SELECT si.part_id, p.article, p.name,
		       SUM(si.quantity) AS quantity,
		       SUM(si.quantity * si.price) AS revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN parts p ON p.id = si.part_id
		WHERE s.date >= ? AND s.date < ?
		GROUP BY si.part_id, p.article, p.name
		ORDER BY quantity DESC, revenue DESC, p.article
		LIMIT ?`
	if err := db.Select(&top, q, from, to, limit); err != nil {
		return nil, fmt.Errorf("failed to get top selling parts: %w", err)
	}
	for i := range top {
		top[i].Revenue = top[i].Revenue.Round(2)
	}
	return top, nil
}

// GetSlowMovingParts returns parts still in stock that have not sold since
// the given date (YYYY-MM-DD), including parts that never sold.
func GetSlowMovingParts(db DBTX, since string) ([]model.SlowMovingPart, error) {
	from, _, err := DateRange(since, "")
	if err != nil {
		return nil, err
	}

	parts := []model.SlowMovingPart{}
	const q = `
		SELECT p.id, p.article, p.name, p.brand, p.car_model, p.category, p.quantity,
		       p.buy_price, p.sell_price, COALESCE(p.description, '') AS description,
		       p.created_at, p.updated_at,
		       COALESCE(MAX(s.date), '') AS last_sale_date
		FROM parts p
		LEFT JOIN sale_items si ON si.part_id = p.id
		LEFT JOIN sales s ON s.id = si.sale_id
		WHERE p.quantity > 0
		GROUP BY p.id
		HAVING COALESCE(MAX(s.date), '') < ?
		ORDER BY last_sale_date, p.article`
	if err := db.Select(&parts, q, from); err != nil {
		return nil, fmt.Errorf("failed to get slow moving parts: %w", err)
	}
	return parts, nil
}

func GetReceiptsReport(db DBTX, start, end string) (*model.ReceiptsReport, error) {
	receipts, err := GetReceiptsByDate(db, start, end)
	if err != nil {
		return nil, err
	}
	from, to, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}

	report := &model.ReceiptsReport{
		StartDate:     start,
		EndDate:       end,
		Receipts:      receipts,
		ReceiptsCount: len(receipts),
		Total:         decimal.Zero,
	}
	for _, r := range receipts {
		report.Total = report.Total.Add(r.Total)
	}
	report.Total = report.Total.Round(2)

	const q = `
		SELECT COALESCE(SUM(ri.quantity), 0)
		FROM receipt_items ri
		JOIN receipts r ON r.id = ri.receipt_id
		WHERE r.date >= ? AND r.date < ?`
	if err := db.Get(&report.UnitsReceived, q, from, to); err != nil {
		return nil, fmt.Errorf("failed to total received units: %w", err)
	}
	return report, nil
}
