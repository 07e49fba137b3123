package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const tradeColumns = `trade_id, bot_id, symbol, side, price, quantity, time, chart_index`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (TradeRecord, error) {
	var rec TradeRecord
	err := row.Scan(
		&rec.TradeID,
		&rec.BotID,
		&rec.Symbol,
		&rec.Side,
		&rec.Price,
		&rec.Quantity,
		&rec.Time,
		&rec.ChartIndex,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesByBot returns the trades of botID in time order.
func (j *SQLite) ListTradesByBot(botID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE bot_id = ?
		ORDER BY time ASC, trade_id ASC`, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLedgerBetween returns ledger rows with time in [start, end).
func (j *SQLite) ListLedgerBetween(start, end time.Time) ([]LedgerRecord, error) {
	rows, err := j.db.Query(`
		SELECT seq, time, kind, bot_id, amount, main, available
		FROM ledger
		WHERE time >= ? AND time < ?
		ORDER BY seq ASC;`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerRecord
	for rows.Next() {
		var rec LedgerRecord
		if err := rows.Scan(
			&rec.Seq,
			&rec.Time,
			&rec.Kind,
			&rec.BotID,
			&rec.Amount,
			&rec.Main,
			&rec.Available,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
