package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetFill returns a single fill by ID.
func (j *SQLite) GetFill(fillID string) (Fill, error) {
	var f Fill

	row := j.db.QueryRow(`
		SELECT fill_id, pair, symbol, side, amount, price, fee, time
		FROM fills
		WHERE fill_id = ?`, fillID)

	err := row.Scan(&f.ID, &f.Pair, &f.Symbol, &f.Side, &f.Amount, &f.Price, &f.Fee, &f.Time)
	if err != nil {
		if err == sql.ErrNoRows {
			return Fill{}, fmt.Errorf("fill %q not found", fillID)
		}
		return Fill{}, err
	}
	return f, nil
}

// ListFillsBetween returns fills with time within [start, end), ordered by time.
func (j *SQLite) ListFillsBetween(start, end time.Time) ([]Fill, error) {
	rows, err := j.db.Query(`
		SELECT fill_id, pair, symbol, side, amount, price, fee, time
		FROM fills
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, fill_id ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fill
	for rows.Next() {
		var f Fill
		if err := rows.Scan(&f.ID, &f.Pair, &f.Symbol, &f.Side, &f.Amount, &f.Price, &f.Fee, &f.Time); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity snapshots with time within [start, end),
// ordered by time.
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, pair, cash, holdings_value, total_value
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Pair, &e.Cash, &e.HoldingsValue, &e.TotalValue); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
