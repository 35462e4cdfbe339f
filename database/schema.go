package database

import (
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// Indexes reference car_model, so they are created after legacy tables are migrated.
const indexSQL = `
CREATE INDEX IF NOT EXISTS idx_parts_category ON parts (category);
CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date);
CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items (sale_id);
CREATE INDEX IF NOT EXISTS idx_sale_items_part ON sale_items (part_id);
CREATE INDEX IF NOT EXISTS idx_receipts_date ON receipts (date);
CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt ON receipt_items (receipt_id);
CREATE INDEX IF NOT EXISTS idx_receipt_items_part ON receipt_items (part_id);
CREATE INDEX IF NOT EXISTS idx_stock_adjustments_part ON stock_adjustments (part_id);
`

// Tables lists the application tables in foreign-key order.
var Tables = []string{"parts", "sales", "sale_items", "receipts", "receipt_items", "stock_adjustments"}

// InitDatabase applies the schema and brings databases written by older versions up to date.
func InitDatabase(db *sqlx.DB) error {
	log := zap.L().Named("db")

	log.Info("applying database schema")
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if _, err := db.Exec(indexSQL); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	log.Info("schema applied")
	return nil
}

func migrate(db *sqlx.DB) error {
	return withTx(db, func(tx *sqlx.Tx) error {
		log := zap.L().Named("db")

		hasCarModel, err := columnExists(tx, "parts", "car_model")
		if err != nil {
			return err
		}
		hasModel, err := columnExists(tx, "parts", "model")
		if err != nil {
			return err
		}
		if !hasCarModel && hasModel {
			log.Info("migrating parts.model to parts.car_model")
			if _, err := tx.Exec(`ALTER TABLE parts RENAME COLUMN model TO car_model`); err != nil {
				return fmt.Errorf("rename parts.model: %w", err)
			}
		}

		hasPaid, err := columnExists(tx, "sales", "paid")
		if err != nil {
			return err
		}
		if !hasPaid {
			log.Info("adding sales.paid column")
			if _, err := tx.Exec(`ALTER TABLE sales ADD COLUMN paid REAL`); err != nil {
				return fmt.Errorf("add sales.paid: %w", err)
			}
		}
		return nil
	})
}

func columnExists(db DBTX, table, column string) (bool, error) {
	var n int
	err := db.Get(&n, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s.%s: %w", table, column, err)
	}
	return n > 0, nil
}
