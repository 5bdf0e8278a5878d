package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(f Fill) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(fill_id, pair, symbol, side, amount, price, fee, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Pair, f.Symbol, f.Side, f.Amount, f.Price, f.Fee, f.Time,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, pair, cash, holdings_value, total_value)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Pair, e.Cash, e.HoldingsValue, e.TotalValue,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
