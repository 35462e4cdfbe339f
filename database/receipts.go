package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"autoparts/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const receiptSummaryQuery = `
	SELECT r.id, r.date, r.supplier, r.total, COALESCE(r.notes, '') AS notes,
	       COUNT(ri.id) AS items_count
	FROM receipts r
	LEFT JOIN receipt_items ri ON r.id = ri.receipt_id`

// CreateReceipt records a supplier delivery and adds its quantities to stock
// in one transaction.
func CreateReceipt(db *sqlx.DB, in model.ReceiptInput) (*model.Receipt, error) {
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		return nil, invalid("supplier is required")
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyDocument
	}
	for i, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, invalid("line %d: quantity must be greater than 0", i+1)
		}
		if it.Quantity > model.MaxQuantity {
			return nil, invalid("line %d: quantity must not exceed %d", i+1, model.MaxQuantity)
		}
		if it.BuyPrice.IsNegative() {
			return nil, invalid("line %d: buy price must not be negative", i+1)
		}
	}

	total := decimal.Zero
	for _, it := range in.Items {
		total = total.Add(it.BuyPrice.Round(2).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	total = total.Round(2)

	var receipt *model.Receipt
	err := withTx(db, func(tx *sqlx.Tx) error {
		now := timestamp()
		res, err := tx.Exec(`INSERT INTO receipts (date, supplier, total, notes) VALUES (?, ?, ?, ?)`,
			now, supplier, total, strings.TrimSpace(in.Notes))
		if err != nil {
			return fmt.Errorf("failed to insert receipt: %w", err)
		}
		receiptID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read receipt id: %w", err)
		}

		for i, it := range in.Items {
			price := it.BuyPrice.Round(2)
			if err := returnToStock(tx, it.PartID, it.Quantity, now); err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			_, err := tx.Exec(`INSERT INTO receipt_items (receipt_id, part_id, quantity, buy_price) VALUES (?, ?, ?, ?)`,
				receiptID, it.PartID, it.Quantity, price)
			if err != nil {
				return fmt.Errorf("failed to insert receipt item (PartID: %d): %w", it.PartID, err)
			}
			if in.UpdateBuyPrice {
				if _, err := tx.Exec(`UPDATE parts SET buy_price = ? WHERE id = ?`, price, it.PartID); err != nil {
					return fmt.Errorf("failed to update buy price of part %d: %w", it.PartID, err)
				}
			}
		}

		receipt, err = getReceipt(tx, receiptID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func GetAllReceipts(db DBTX) ([]model.Receipt, error) {
	receipts := []model.Receipt{}
	q := receiptSummaryQuery + ` GROUP BY r.id ORDER BY r.date DESC, r.id DESC`
	if err := db.Select(&receipts, q); err != nil {
		return nil, fmt.Errorf("failed to get all receipts: %w", err)
	}
	return receipts, nil
}

// GetReceiptsByDate returns the receipts dated within [start, end] inclusive.
func GetReceiptsByDate(db DBTX, start, end string) ([]model.Receipt, error) {
	from, to, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}
	receipts := []model.Receipt{}
	q := receiptSummaryQuery + ` WHERE r.date >= ? AND r.date < ? GROUP BY r.id ORDER BY r.date DESC, r.id DESC`
	if err := db.Select(&receipts, q, from, to); err != nil {
		return nil, fmt.Errorf("failed to get receipts from %s to %s: %w", start, end, err)
	}
	return receipts, nil
}

func GetReceiptByID(db DBTX, id int64) (*model.Receipt, error) {
	return getReceipt(db, id)
}

func getReceipt(db DBTX, id int64) (*model.Receipt, error) {
	var r model.Receipt
	err := db.Get(&r, receiptSummaryQuery+` WHERE r.id = ? GROUP BY r.id`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w (ID: %d)", ErrReceiptNotFound, id)
		}
		return nil, fmt.Errorf("failed to get receipt %d: %w", id, err)
	}
	items, err := GetReceiptItems(db, id)
	if err != nil {
		return nil, err
	}
	r.Items = items
	return &r, nil
}

func GetReceiptItems(db DBTX, receiptID int64) ([]model.ReceiptItem, error) {
	items := []model.ReceiptItem{}
	const q = `
		SELECT ri.id, ri.receipt_id, ri.part_id, ri.quantity, ri.buy_price, p.article, p.name
		FROM receipt_items ri
		JOIN parts p ON ri.part_id = p.id
		WHERE ri.receipt_id = ?
		ORDER BY ri.id`
	if err := db.Select(&items, q, receiptID); err != nil {
		return nil, fmt.Errorf("failed to get items of receipt %d: %w", receiptID, err)
	}
	return items, nil
}

// GetSuppliers lists every supplier name used on a receipt.
func GetSuppliers(db DBTX) ([]string, error) {
	suppliers := []string{}
	if err := db.Select(&suppliers, `SELECT DISTINCT supplier FROM receipts ORDER BY supplier`); err != nil {
		return nil, fmt.Errorf("failed to get suppliers: %w", err)
	}
	return suppliers, nil
}

// VoidReceipt cancels a receipt. It is refused when part of the delivered
// stock has already been sold.
func VoidReceipt(db *sqlx.DB, id int64) error {
	return withTx(db, func(tx *sqlx.Tx) error {
		receipt, err := getReceipt(tx, id)
		if err != nil {
			return err
		}
		now := timestamp()
		for _, it := range receipt.Items {
			p := &model.Part{ID: it.PartID, Article: it.Article}
			if err := takeFromStock(tx, p, it.Quantity, now); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(`DELETE FROM receipt_items WHERE receipt_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete items of receipt %d: %w", id, err)
		}
		if _, err := tx.Exec(`DELETE FROM receipts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete receipt %d: %w", id, err)
		}
		return nil
	})
}
