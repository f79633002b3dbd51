// ABOUTME: SQLite backend: tables as TEXT-column SQL tables, backups as CSV blobs.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection.
type DB struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Compile-time check that DB implements Backend.
var _ Backend = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Set file permissions
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	d := &DB{db: db, dbPath: dbPath, now: time.Now}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := d.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return d, nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "plantfit")
}

// DBPath returns the database file inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "plantfit.db")
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// configurePragmas sets up SQLite for optimal performance.
func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (d *DB) tableExists(name string) (bool, error) {
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

// LoadTable reads a table in insertion order. A missing table is empty.
func (d *DB) LoadTable(name string) (*Frame, error) {
	if name == backupsTable {
		return nil, fmt.Errorf("table name %q is reserved", name)
	}
	ok, err := d.tableExists(name)
	if err != nil || !ok {
		return &Frame{}, err
	}

	rows, err := d.db.Query(`SELECT * FROM ` + quoteIdent(name) + ` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}
	f := &Frame{Header: header}
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		dest := make([]any, len(header))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make([]string, len(header))
		for i, c := range cells {
			row[i] = c.String
		}
		f.Rows = append(f.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", name, err)
	}
	return f, nil
}

// SaveTable rebuilds the table inside one transaction and stores a CSV
// snapshot in the backups table.
func (d *DB) SaveTable(name string, f *Frame) error {
	if name == backupsTable {
		return fmt.Errorf("table name %q is reserved", name)
	}
	content, err := encodeFrame(f)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceTable(tx, name, f); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}

	if err := d.writeBackup(name, content); err != nil {
		return fmt.Errorf("backup %s: %w", name, err)
	}
	return nil
}

func replaceTable(tx *sql.Tx, name string, f *Frame) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + quoteIdent(name)); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if len(f.Header) == 0 {
		return nil
	}

	cols := make([]string, len(f.Header))
	marks := make([]string, len(f.Header))
	for i, h := range f.Header {
		cols[i] = quoteIdent(h) + " TEXT"
		marks[i] = "?"
	}
	if _, err := tx.Exec(`CREATE TABLE ` + quoteIdent(name) + ` (` + strings.Join(cols, ", ") + `)`); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO ` + quoteIdent(name) + ` VALUES (` + strings.Join(marks, ", ") + `)`)
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(f.Header))
	for _, row := range f.Rows {
		for i := range args {
			args[i] = nil
			if i < len(row) && row[i] != "" {
				args[i] = row[i]
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert into %s: %w", name, err)
		}
	}
	return nil
}

func (d *DB) writeBackup(name string, content []byte) error {
	at := d.now()
	for seq := 0; seq < 1000; seq++ {
		res, err := d.db.Exec(
			`INSERT OR IGNORE INTO backups (name, table_name, created_at, seq, content) VALUES (?, ?, ?, ?, ?)`,
			backupName(name, at, seq), name, at.Format(BackupTimeLayout), seq, content,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			return nil
		}
	}
	return fmt.Errorf("too many backups of %s within one second", name)
}

// Backups lists the snapshots of a table, oldest first.
func (d *DB) Backups(name string) ([]Backup, error) {
	rows, err := d.db.Query(`SELECT name FROM backups WHERE table_name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var out []Backup
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		if b, ok := parseBackupName(n); ok {
			out = append(out, b)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backups: %w", err)
	}
	sortBackups(out)
	return out, nil
}

// ReadBackup loads one snapshot.
func (d *DB) ReadBackup(b Backup) (*Frame, error) {
	var content []byte
	err := d.db.QueryRow(`SELECT content FROM backups WHERE name = ?`, b.Name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("backup %s: %w", b.Name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", b.Name, err)
	}
	return readFrame(strings.NewReader(string(content)))
}
