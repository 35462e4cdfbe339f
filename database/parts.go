package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"autoparts/model"

	"github.com/jmoiron/sqlx"
)

const partColumns = `
	id, article, name, brand, car_model, category, quantity,
	buy_price, sell_price, COALESCE(description, '') AS description,
	created_at, updated_at`

// CreatePart inserts a new part and returns it as stored.
func CreatePart(db DBTX, in model.PartInput) (*model.Part, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := timestamp()
	const q = `
		INSERT INTO parts (article, name, brand, car_model, category,
			quantity, buy_price, sell_price, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := db.Exec(q, in.Article, in.Name, in.Brand, in.CarModel, in.Category,
		in.Quantity, in.BuyPrice.Round(2), in.SellPrice.Round(2), in.Description, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateArticle, in.Article)
		}
		return nil, fmt.Errorf("CreatePart (Article: %s) failed: %w", in.Article, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("CreatePart: failed to read new id: %w", err)
	}
	return GetPartByID(db, id)
}

func GetAllParts(db DBTX) ([]model.Part, error) {
	parts := []model.Part{}
	if err := db.Select(&parts, `SELECT `+partColumns+` FROM parts ORDER BY article`); err != nil {
		return nil, fmt.Errorf("failed to get all parts: %w", err)
	}
	return parts, nil
}

func GetPartsInStock(db DBTX) ([]model.Part, error) {
	parts := []model.Part{}
	err := db.Select(&parts, `SELECT `+partColumns+` FROM parts WHERE quantity > 0 ORDER BY article`)
	if err != nil {
		return nil, fmt.Errorf("failed to get parts in stock: %w", err)
	}
	return parts, nil
}

func GetPartByID(db DBTX, id int64) (*model.Part, error) {
	var p model.Part
	err := db.Get(&p, `SELECT `+partColumns+` FROM parts WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w (ID: %d)", ErrPartNotFound, id)
		}
		return nil, fmt.Errorf("failed to get part %d: %w", id, err)
	}
	return &p, nil
}

func GetPartByArticle(db DBTX, article string) (*model.Part, error) {
	var p model.Part
	err := db.Get(&p, `SELECT `+partColumns+` FROM parts WHERE article = ?`, strings.TrimSpace(article))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w (Article: %s)", ErrPartNotFound, article)
		}
		return nil, fmt.Errorf("failed to get part by article %s: %w", article, err)
	}
	return &p, nil
}

// SearchParts matches query case-insensitively against article, name, brand,
// car model and category. An empty query returns every part.
func SearchParts(db DBTX, query string) ([]model.Part, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return GetAllParts(db)
	}

	pattern := "%" + escapeLike(Fold(query)) + "%"
	const q = `SELECT ` + partColumns + ` FROM parts
		WHERE casefold(article) LIKE ? ESCAPE '\'
		   OR casefold(name) LIKE ? ESCAPE '\'
		   OR casefold(brand) LIKE ? ESCAPE '\'
		   OR casefold(car_model) LIKE ? ESCAPE '\'
		   OR casefold(category) LIKE ? ESCAPE '\'
		ORDER BY article`

	parts := []model.Part{}
	if err := db.Select(&parts, q, pattern, pattern, pattern, pattern, pattern); err != nil {
		return nil, fmt.Errorf("failed to search parts for %q: %w", query, err)
	}
	return parts, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// GetLowStockParts returns parts with 0 < quantity <= threshold, lowest first.
func GetLowStockParts(db DBTX, threshold int) ([]model.Part, error) {
	parts := []model.Part{}
	const q = `SELECT ` + partColumns + ` FROM parts
		WHERE quantity > 0 AND quantity <= ?
		ORDER BY quantity, article`
	if err := db.Select(&parts, q, threshold); err != nil {
		return nil, fmt.Errorf("failed to get low stock parts: %w", err)
	}
	return parts, nil
}

func GetCategories(db DBTX) ([]string, error) {
	return distinctValues(db, "category")
}

func GetBrands(db DBTX) ([]string, error) {
	return distinctValues(db, "brand")
}

func distinctValues(db DBTX, column string) ([]string, error) {
	values := []string{}
	q := fmt.Sprintf(`SELECT DISTINCT %[1]s FROM parts WHERE TRIM(%[1]s) <> '' ORDER BY %[1]s`, column)
	if err := db.Select(&values, q); err != nil {
		return nil, fmt.Errorf("failed to get distinct %s: %w", column, err)
	}
	return values, nil
}

// UpdatePart overwrites every editable field of a part.
func UpdatePart(db DBTX, id int64, in model.PartInput) (*model.Part, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	const q = `
		UPDATE parts SET
			article = ?, name = ?, brand = ?, car_model = ?, category = ?,
			quantity = ?, buy_price = ?, sell_price = ?, description = ?,
			updated_at = ?
		WHERE id = ?`
	res, err := db.Exec(q, in.Article, in.Name, in.Brand, in.CarModel, in.Category,
		in.Quantity, in.BuyPrice.Round(2), in.SellPrice.Round(2), in.Description, timestamp(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateArticle, in.Article)
		}
		return nil, fmt.Errorf("UpdatePart (ID: %d) failed: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w (ID: %d)", ErrPartNotFound, id)
	}
	return GetPartByID(db, id)
}

// DeletePart removes a part that no sale or receipt refers to.
// Its stock adjustment history goes with it.
func DeletePart(db *sqlx.DB, id int64) error {
	return withTx(db, func(tx *sqlx.Tx) error {
		if _, err := GetPartByID(tx, id); err != nil {
			return err
		}

		var refs int
		const q = `SELECT
			(SELECT COUNT(*) FROM sale_items WHERE part_id = ?) +
			(SELECT COUNT(*) FROM receipt_items WHERE part_id = ?)`
		if err := tx.Get(&refs, q, id, id); err != nil {
			return fmt.Errorf("failed to count references of part %d: %w", id, err)
		}
		if refs > 0 {
			return fmt.Errorf("%w (ID: %d, documents: %d)", ErrPartInUse, id, refs)
		}

		if _, err := tx.Exec(`DELETE FROM stock_adjustments WHERE part_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete adjustments of part %d: %w", id, err)
		}
		if _, err := tx.Exec(`DELETE FROM parts WHERE id = ?`, id); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w (ID: %d)", ErrPartInUse, id)
			}
			return fmt.Errorf("failed to delete part %d: %w", id, err)
		}
		return nil
	})
}

// IsArticleAvailable reports whether article is free, ignoring the part excludeID (0 for none).
func IsArticleAvailable(db DBTX, article string, excludeID int64) (bool, error) {
	var n int
	err := db.Get(&n, `SELECT COUNT(*) FROM parts WHERE article = ? AND id <> ?`, strings.TrimSpace(article), excludeID)
	if err != nil {
		return false, fmt.Errorf("IsArticleAvailable failed: %w", err)
	}
	return n == 0, nil
}

// UpsertPartInTx creates the part or, when the article exists, overwrites its fields.
// It reports whether a new row was created.
func UpsertPartInTx(tx *sqlx.Tx, in model.PartInput) (bool, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	existing, err := GetPartByArticle(tx, in.Article)
	switch {
	case errors.Is(err, ErrPartNotFound):
		_, err := CreatePart(tx, in)
		return err == nil, err
	case err != nil:
		return false, err
	}
	_, err = UpdatePart(tx, existing.ID, in)
	return false, err
}
