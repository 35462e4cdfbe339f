package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrPartNotFound     = errors.New("part not found")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrReceiptNotFound  = errors.New("receipt not found")
	ErrDuplicateArticle = errors.New("a part with this article already exists")
	ErrPartInUse        = errors.New("part is referenced by sales or receipts")
	ErrEmptyDocument    = errors.New("document has no items")
	ErrInvalidInput     = errors.New("invalid input")
)

// InsufficientStockError is returned when a write would take a part's quantity below zero.
type InsufficientStockError struct {
	PartID    int64
	Article   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for part %s (ID: %d): available %d, requested %d",
		e.Article, e.PartID, e.Available, e.Requested)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
