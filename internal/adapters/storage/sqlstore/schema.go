package sqlstore

// schema is applied on every Open. Statements are idempotent and portable
// between SQLite and PostgreSQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS source (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		created BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quote (
		id        TEXT PRIMARY KEY,
		text      TEXT NOT NULL,
		source_id TEXT NULL REFERENCES source(id) ON DELETE SET NULL,
		created   BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quote_text ON quote(text)`,
	`CREATE INDEX IF NOT EXISTS idx_quote_source_id ON quote(source_id)`,
	`CREATE INDEX IF NOT EXISTS idx_source_name ON source(name)`,
}
