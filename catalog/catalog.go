package catalog

import (
	"errors"
	"fmt"

	"autoparts/database"
	"autoparts/parsers"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ImportResult summarises a catalogue import.
type ImportResult struct {
	Created int                `json:"created"`
	Updated int                `json:"updated"`
	Errors  []parsers.RowError `json:"errors"`
}

// Import upserts parsed rows by article in one transaction. Rows the database
// rejects as invalid are reported; any other failure rolls everything back.
func Import(db *sqlx.DB, parts []parsers.ParsedPart, rowErrs []parsers.RowError) (*ImportResult, error) {
	result := &ImportResult{Errors: append([]parsers.RowError{}, rowErrs...)}

	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range parts {
		in := p.Input
		if !p.HasQuantity {
			existing, err := database.GetPartByArticle(tx, in.Article)
			switch {
			case err == nil:
				in.Quantity = existing.Quantity
			case !errors.Is(err, database.ErrPartNotFound):
				return nil, err
			}
		}

		// A savepoint lets one bad row fail without aborting the import.
		if _, err := tx.Exec(`SAVEPOINT import_row`); err != nil {
			return nil, err
		}
		created, err := database.UpsertPartInTx(tx, in)
		if err != nil {
			if _, rbErr := tx.Exec(`ROLLBACK TO import_row`); rbErr != nil {
				return nil, rbErr
			}
			if errors.Is(err, database.ErrInvalidInput) || errors.Is(err, database.ErrDuplicateArticle) {
				result.Errors = append(result.Errors, parsers.RowError{Line: p.Line, Message: err.Error()})
				continue
			}
			return nil, fmt.Errorf("line %d: %w", p.Line, err)
		}
		if _, err := tx.Exec(`RELEASE import_row`); err != nil {
			return nil, err
		}

		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	zap.L().Named("catalog").Info("catalogue imported",
		zap.Int("created", result.Created), zap.Int("updated", result.Updated), zap.Int("errors", len(result.Errors)))
	return result, nil
}
