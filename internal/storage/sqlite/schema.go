package sqlite

const schemaSQL = `
CREATE TABLE IF NOT EXISTS statements (
	stock_id    TEXT NOT NULL,
	year        INTEGER NOT NULL,
	quarter     INTEGER NOT NULL,
	report_type TEXT NOT NULL,
	currency    TEXT,
	unit_scale  INTEGER NOT NULL DEFAULT 0,
	report_date TEXT,
	empty       INTEGER NOT NULL DEFAULT 0,
	verified    INTEGER NOT NULL DEFAULT 0,
	items_json  TEXT NOT NULL,
	fetched_at  INTEGER NOT NULL,
	PRIMARY KEY (stock_id, year, quarter, report_type)
);

CREATE TABLE IF NOT EXISTS revenue_rows (
	stock_id               TEXT NOT NULL,
	year                   INTEGER NOT NULL,
	month                  INTEGER NOT NULL,
	market                 TEXT NOT NULL,
	company_name           TEXT,
	revenue                TEXT NOT NULL,
	revenue_last_month     TEXT,
	revenue_last_year      TEXT,
	mom_change             TEXT,
	yoy_change             TEXT,
	accumulated_revenue    TEXT,
	accumulated_last_year  TEXT,
	accumulated_yoy_change TEXT,
	comment                TEXT,
	fetched_at             INTEGER NOT NULL,
	PRIMARY KEY (stock_id, year, month, market)
);

CREATE TABLE IF NOT EXISTS pledge_rows (
	stock_id       TEXT NOT NULL,
	year           INTEGER NOT NULL,
	month          INTEGER NOT NULL,
	title          TEXT NOT NULL,
	name           TEXT NOT NULL,
	company_name   TEXT,
	current_shares TEXT,
	pledged_shares TEXT NOT NULL,
	pledge_ratio   TEXT,
	fetched_at     INTEGER NOT NULL,
	PRIMARY KEY (stock_id, year, month, title, name)
);

CREATE TABLE IF NOT EXISTS dividend_rows (
	stock_id              TEXT NOT NULL,
	year                  INTEGER NOT NULL,
	quarter               INTEGER,
	cash_dividend         TEXT NOT NULL,
	stock_dividend        TEXT,
	board_resolution_date TEXT,
	fetched_at            INTEGER NOT NULL,
	PRIMARY KEY (stock_id, year, quarter)
);

CREATE TABLE IF NOT EXISTS disclosure_rows (
	stock_id            TEXT NOT NULL,
	year                INTEGER NOT NULL,
	month               INTEGER NOT NULL,
	kind                TEXT NOT NULL,
	entity              TEXT NOT NULL,
	has_balance         INTEGER NOT NULL DEFAULT 0,
	current_month       TEXT,
	previous_month      TEXT,
	max_limit           TEXT,
	accumulated_balance TEXT,
	fetched_at          INTEGER NOT NULL,
	PRIMARY KEY (stock_id, year, month, kind, entity)
);
`
