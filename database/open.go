package database

import (
	"database/sql"
	"fmt"
	"time"

	"autoparts/model"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

// DriverName is go-sqlite3 with the casefold() SQL function registered on every connection.
const DriverName = "sqlite3_autoparts"

// Now is the clock used for every timestamp written to the database.
var Now = time.Now

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", Fold, true)
		},
	})
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Fold is the Unicode case folding used for search on both sides of LIKE.
// SQLite's own LOWER() only knows ASCII, which breaks Cyrillic part names.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Open connects to the database file at path.
func Open(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", path)
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func timestamp() string {
	return Now().Format(model.DateTimeLayout)
}
