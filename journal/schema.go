package journal

const schema = `
CREATE TABLE IF NOT EXISTS fills (
	order_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	qty INTEGER NOT NULL,
	price REAL NOT NULL,
	charges REAL NOT NULL,
	cash_delta REAL NOT NULL,
	origin TEXT NOT NULL,
	stop_loss REAL,
	target REAL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_symbol ON fills(symbol);
CREATE INDEX IF NOT EXISTS idx_fills_time ON fills(time);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	balance REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);

CREATE TABLE IF NOT EXISTS account (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	balance REAL NOT NULL,
	score INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS daily_stats (
	date TEXT PRIMARY KEY,
	pnl REAL NOT NULL,
	trade_count INTEGER NOT NULL,
	cautious INTEGER NOT NULL,
	yesterday_pnl REAL NOT NULL,
	status TEXT NOT NULL
);
`
