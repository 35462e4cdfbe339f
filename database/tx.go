package database

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// withTx runs fn inside a transaction, committing when fn returns nil and
// rolling back on error or panic.
func withTx(db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			zap.L().Named("db").Debug("rolling back transaction", zap.Error(err))
			tx.Rollback()
		} else {
			err = tx.Commit()
			if err != nil {
				zap.L().Named("db").Error("commit failed", zap.Error(err))
			}
		}
	}()

	err = fn(tx)
	return err
}
