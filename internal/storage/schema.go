// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Data tables are created on save; only the backups table is fixed.
package storage

const backupsTable = "backups"

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS backups (
		name TEXT PRIMARY KEY,
		table_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		seq INTEGER NOT NULL,
		content BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_backups_table ON backups(table_name, created_at, seq);
	`

	_, err := d.db.Exec(schema)
	return err
}
