package database

import (
	"fmt"
	"strings"

	"autoparts/model"

	"github.com/jmoiron/sqlx"
)

// AdjustStock sets a part's quantity to a counted value and keeps the difference on record.
func AdjustStock(db *sqlx.DB, partID int64, newQuantity int, reason string) (*model.StockAdjustment, error) {
	adjustments, err := AdjustStockBatch(db, []model.StockCount{{PartID: partID, CountedQuantity: newQuantity, Reason: reason}})
	if err != nil {
		return nil, err
	}
	return &adjustments[0], nil
}

// AdjustStockBatch applies a whole stock count in one transaction. Parts whose
// counted quantity equals the stored one are left untouched and not recorded.
func AdjustStockBatch(db *sqlx.DB, counts []model.StockCount) ([]model.StockAdjustment, error) {
	if len(counts) == 0 {
		return nil, ErrEmptyDocument
	}
	for i, c := range counts {
		if c.CountedQuantity < 0 {
			return nil, invalid("line %d: counted quantity must not be negative", i+1)
		}
		if c.CountedQuantity > model.MaxQuantity {
			return nil, invalid("line %d: counted quantity must not exceed %d", i+1, model.MaxQuantity)
		}
	}

	adjustments := []model.StockAdjustment{}
	err := withTx(db, func(tx *sqlx.Tx) error {
		now := timestamp()
		for _, c := range counts {
			a, err := adjustInTx(tx, c, now, len(counts) == 1)
			if err != nil {
				return err
			}
			if a != nil {
				adjustments = append(adjustments, *a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

// adjustInTx records the change for one count. With always set an unchanged
// quantity is still recorded, so a single recount leaves a trace.
func adjustInTx(tx *sqlx.Tx, c model.StockCount, now string, always bool) (*model.StockAdjustment, error) {
	p, err := GetPartByID(tx, c.PartID)
	if err != nil {
		return nil, err
	}
	if p.Quantity == c.CountedQuantity && !always {
		return nil, nil
	}

	if _, err := tx.Exec(`UPDATE parts SET quantity = ?, updated_at = ? WHERE id = ?`, c.CountedQuantity, now, c.PartID); err != nil {
		return nil, fmt.Errorf("failed to set quantity of part %d: %w", c.PartID, err)
	}

	a := model.StockAdjustment{
		Date:        now,
		PartID:      c.PartID,
		Article:     p.Article,
		OldQuantity: p.Quantity,
		NewQuantity: c.CountedQuantity,
		Delta:       c.CountedQuantity - p.Quantity,
		Reason:      strings.TrimSpace(c.Reason),
	}
	res, err := tx.Exec(`
		INSERT INTO stock_adjustments (date, part_id, old_quantity, new_quantity, delta, reason)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.Date, a.PartID, a.OldQuantity, a.NewQuantity, a.Delta, a.Reason)
	if err != nil {
		return nil, fmt.Errorf("failed to record adjustment of part %d: %w", c.PartID, err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAdjustments returns the adjustment history of one part, or of all parts when partID is 0.
func GetAdjustments(db DBTX, partID int64) ([]model.StockAdjustment, error) {
	adjustments := []model.StockAdjustment{}
	q := `
		SELECT a.id, a.date, a.part_id, p.article, a.old_quantity, a.new_quantity, a.delta, a.reason
		FROM stock_adjustments a
		JOIN parts p ON p.id = a.part_id`
	args := []interface{}{}
	if partID != 0 {
		q += ` WHERE a.part_id = ?`
		args = append(args, partID)
	}
	q += ` ORDER BY a.date DESC, a.id DESC`

	if err := db.Select(&adjustments, q, args...); err != nil {
		return nil, fmt.Errorf("failed to get stock adjustments: %w", err)
	}
	return adjustments, nil
}
