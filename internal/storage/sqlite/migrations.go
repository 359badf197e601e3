package sqlite

import "database/sql"

// schema runs on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS staff (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    backend_id INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS payment_journal (
    id TEXT PRIMARY KEY,
    idempotency_key TEXT,
    billing_id INTEGER NOT NULL,
    member_id TEXT,
    amount TEXT NOT NULL,
    method TEXT,
    note TEXT,
    recorded_by INTEGER NOT NULL,
    staff_id TEXT,
    outcome TEXT NOT NULL,
    message TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payment_journal_created_at ON payment_journal(created_at);
CREATE INDEX IF NOT EXISTS idx_payment_journal_billing_id ON payment_journal(billing_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
