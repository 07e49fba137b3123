// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	bot_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	time DATETIME NOT NULL,
	chart_index INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_bot ON trades(bot_id, time);

CREATE TABLE IF NOT EXISTS ledger (
	seq INTEGER NOT NULL,
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	bot_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	main TEXT NOT NULL,
	available TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_time ON ledger(time);
`
