package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"autoparts/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const saleSummaryQuery = `
	SELECT s.id, s.date, s.total, s.paid, COUNT(si.id) AS items_count
	FROM sales s
	LEFT JOIN sale_items si ON s.id = si.sale_id`

// saleLine is a cart line resolved against the parts table.
type saleLine struct {
	part     *model.Part
	quantity int
	price    decimal.Decimal
}

// ValidateSaleItems checks a cart without writing anything and returns one
// message per problem. An empty result means CreateSale would accept it.
func ValidateSaleItems(db DBTX, items []model.SaleItemInput) ([]string, error) {
	if len(items) == 0 {
		return []string{"no parts selected for sale"}, nil
	}

	var problems []string
	demand := make(map[int64]int)
	parts := make(map[int64]*model.Part)
	var order []int64

	for i, it := range items {
		if it.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("line %d: quantity must be greater than 0", i+1))
		}
		if it.Quantity > model.MaxQuantity {
			problems = append(problems, fmt.Sprintf("line %d: quantity must not exceed %d", i+1, model.MaxQuantity))
		}
		if it.Price != nil && it.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("line %d: price must not be negative", i+1))
		}

		p, ok := parts[it.PartID]
		if !ok {
			var err error
			p, err = GetPartByID(db, it.PartID)
			if errors.Is(err, ErrPartNotFound) {
				problems = append(problems, fmt.Sprintf("line %d: part %d not found", i+1, it.PartID))
				continue
			}
			if err != nil {
				return nil, err
			}
			parts[it.PartID] = p
			order = append(order, it.PartID)
		}
		if it.Quantity > 0 && it.Quantity <= model.MaxQuantity {
			demand[it.PartID] += it.Quantity
		}
	}

	for _, id := range order {
		p := parts[id]
		if p.Quantity < demand[id] {
			problems = append(problems, fmt.Sprintf("%s: not enough stock (available: %d, requested: %d)",
				p.Article, p.Quantity, demand[id]))
		}
	}
	return problems, nil
}

// CreateSale records a sale and takes its quantities out of stock in one
// transaction. Lines without a price sell at the part's current sell price.
// When paid is given it must cover the total.
func CreateSale(db *sqlx.DB, items []model.SaleItemInput, paid *decimal.Decimal) (*model.Sale, error) {
	if len(items) == 0 {
		return nil, ErrEmptyDocument
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, invalid("line %d: quantity must be greater than 0", i+1)
		}
		if it.Quantity > model.MaxQuantity {
			return nil, invalid("line %d: quantity must not exceed %d", i+1, model.MaxQuantity)
		}
		if it.Price != nil && it.Price.IsNegative() {
			return nil, invalid("line %d: price must not be negative", i+1)
		}
	}
	if paid != nil && paid.IsNegative() {
		return nil, invalid("paid amount must not be negative")
	}

	var sale *model.Sale
	err := withTx(db, func(tx *sqlx.Tx) error {
		lines, err := resolveSaleLines(tx, items)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.price.Mul(decimal.NewFromInt(int64(l.quantity))))
		}
		total = total.Round(2)

		paidValue := decimal.NullDecimal{}
		if paid != nil {
			if paid.LessThan(total) {
				return invalid("paid amount %s is less than total %s", paid.StringFixed(2), total.StringFixed(2))
			}
			paidValue = decimal.NewNullDecimal(paid.Round(2))
		}

		now := timestamp()
		res, err := tx.Exec(`INSERT INTO sales (date, total, paid) VALUES (?, ?, ?)`, now, total, paidValue)
		if err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}
		saleID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read sale id: %w", err)
		}

		for _, l := range lines {
			_, err := tx.Exec(`INSERT INTO sale_items (sale_id, part_id, quantity, price) VALUES (?, ?, ?, ?)`,
				saleID, l.part.ID, l.quantity, l.price)
			if err != nil {
				return fmt.Errorf("failed to insert sale item (PartID: %d): %w", l.part.ID, err)
			}
			if err := takeFromStock(tx, l.part, l.quantity, now); err != nil {
				return err
			}
		}

		sale, err = getSale(tx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func resolveSaleLines(tx *sqlx.Tx, items []model.SaleItemInput) ([]saleLine, error) {
	parts := make(map[int64]*model.Part)
	demand := make(map[int64]int)
	var order []int64
	lines := make([]saleLine, 0, len(items))

	for i, it := range items {
		p, ok := parts[it.PartID]
		if !ok {
			var err error
			p, err = GetPartByID(tx, it.PartID)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			parts[it.PartID] = p
			order = append(order, it.PartID)
		}

		price := p.SellPrice
		if it.Price != nil {
			price = *it.Price
		}
		lines = append(lines, saleLine{part: p, quantity: it.Quantity, price: price.Round(2)})
		demand[it.PartID] += it.Quantity
	}

	for _, id := range order {
		p := parts[id]
		if p.Quantity < demand[id] {
			return nil, &InsufficientStockError{PartID: id, Article: p.Article, Available: p.Quantity, Requested: demand[id]}
		}
	}
	return lines, nil
}

// takeFromStock is the guarded decrement. It never lets quantity go below zero,
// whatever was checked before.
func takeFromStock(tx *sqlx.Tx, p *model.Part, quantity int, now string) error {
	res, err := tx.Exec(`UPDATE parts SET quantity = quantity - ?, updated_at = ? WHERE id = ? AND quantity >= ?`,
		quantity, now, p.ID, quantity)
	if err != nil {
		return fmt.Errorf("failed to take part %d from stock: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var available int
		if err := tx.Get(&available, `SELECT quantity FROM parts WHERE id = ?`, p.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w (ID: %d)", ErrPartNotFound, p.ID)
			}
			return fmt.Errorf("failed to read stock of part %d: %w", p.ID, err)
		}
		return &InsufficientStockError{PartID: p.ID, Article: p.Article, Available: available, Requested: quantity}
	}
	return nil
}

// returnToStock is the guarded increment. SQLite turns an overflowing integer
// sum into a REAL, so the update is refused before it can happen.
func returnToStock(tx *sqlx.Tx, partID int64, quantity int, now string) error {
	res, err := tx.Exec(`UPDATE parts SET quantity = quantity + ?, updated_at = ?
		WHERE id = ? AND quantity <= 9223372036854775807 - ?`, quantity, now, partID, quantity)
	if err != nil {
		return fmt.Errorf("failed to return part %d to stock: %w", partID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.Get(&exists, `SELECT COUNT(*) FROM parts WHERE id = ?`, partID); err != nil {
			return fmt.Errorf("failed to read part %d: %w", partID, err)
		}
		if exists == 0 {
			return fmt.Errorf("%w (ID: %d)", ErrPartNotFound, partID)
		}
		return invalid("stock of part %d would overflow", partID)
	}
	return nil
}

// CalculateChange is paid-total, or zero when paid does not cover total.
func CalculateChange(total, paid decimal.Decimal) decimal.Decimal {
	if paid.GreaterThanOrEqual(total) {
		return paid.Sub(total)
	}
	return decimal.Zero
}

func GetAllSales(db DBTX) ([]model.Sale, error) {
	sales := []model.Sale{}
	q := saleSummaryQuery + ` GROUP BY s.id ORDER BY s.date DESC, s.id DESC`
	if err := db.Select(&sales, q); err != nil {
		return nil, fmt.Errorf("failed to get all sales: %w", err)
	}
	return sales, nil
}

// GetSalesByDate returns the sales dated within [start, end], both YYYY-MM-DD and inclusive.
func GetSalesByDate(db DBTX, start, end string) ([]model.Sale, error) {
	from, to, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}
	sales := []model.Sale{}
	q := saleSummaryQuery + ` WHERE s.date >= ? AND s.date < ? GROUP BY s.id ORDER BY s.date DESC, s.id DESC`
	if err := db.Select(&sales, q, from, to); err != nil {
		return nil, fmt.Errorf("failed to get sales from %s to %s: %w", start, end, err)
	}
	return sales, nil
}

// GetSaleByID returns the sale with its items.
func GetSaleByID(db DBTX, id int64) (*model.Sale, error) {
	return getSale(db, id)
}

func getSale(db DBTX, id int64) (*model.Sale, error) {
	var s model.Sale
	err := db.Get(&s, saleSummaryQuery+` WHERE s.id = ? GROUP BY s.id`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w (ID: %d)", ErrSaleNotFound, id)
		}
		return nil, fmt.Errorf("failed to get sale %d: %w", id, err)
	}
	items, err := GetSaleItems(db, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

func GetSaleItems(db DBTX, saleID int64) ([]model.SaleItem, error) {
	items := []model.SaleItem{}
	const q = `
		SELECT si.id, si.sale_id, si.part_id, si.quantity, si.price, p.article, p.name
		FROM sale_items si
		JOIN parts p ON si.part_id = p.id
		WHERE si.sale_id = ?
		ORDER BY si.id`
	if err := db.Select(&items, q, saleID); err != nil {
		return nil, fmt.Errorf("failed to get items of sale %d: %w", saleID, err)
	}
	return items, nil
}

// VoidSale cancels a sale, putting its quantities back into stock.
func VoidSale(db *sqlx.DB, id int64) error {
	return withTx(db, func(tx *sqlx.Tx) error {
		if _, err := getSale(tx, id); err != nil {
			return err
		}
		items, err := GetSaleItems(tx, id)
		if err != nil {
			return err
		}
		now := timestamp()
		for _, it := range items {
			if err := returnToStock(tx, it.PartID, it.Quantity, now); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(`DELETE FROM sale_items WHERE sale_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete items of sale %d: %w", id, err)
		}
		if _, err := tx.Exec(`DELETE FROM sales WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete sale %d: %w", id, err)
		}
		return nil
	})
}

// DateRange turns inclusive YYYY-MM-DD bounds into a half-open range over
// stored timestamps. Empty bounds are open.
func DateRange(start, end string) (string, string, error) {
	from := "0000-00-00"
	to := "9999-99-99"
	if start != "" {
		t, err := time.Parse(model.DateLayout, start)
		if err != nil {
			return "", "", invalid("start date %q must be YYYY-MM-DD", start)
		}
		from = t.Format(model.DateLayout)
	}
	if end != "" {
		t, err := time.Parse(model.DateLayout, end)
		if err != nil {
			return "", "", invalid("end date %q must be YYYY-MM-DD", end)
		}
		to = t.AddDate(0, 0, 1).Format(model.DateLayout)
	}
	if start != "" && end != "" && from >= to {
		return "", "", invalid("start date %s is after end date %s", start, end)
	}
	return from, to, nil
}
