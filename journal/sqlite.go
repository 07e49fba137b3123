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
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, bot_id, symbol, side, price, quantity, time, chart_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.BotID, t.Symbol, t.Side,
		t.Price, t.Quantity, t.Time, t.ChartIndex,
	)
	return err
}

// RecordLedger stores amounts as decimal text so they read back exactly.
func (j *SQLite) RecordLedger(e LedgerRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO ledger
		(seq, time, kind, bot_id, amount, main, available)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Seq, e.Time, e.Kind, e.BotID,
		e.Amount.String(), e.Main.String(), e.Available.String(),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
