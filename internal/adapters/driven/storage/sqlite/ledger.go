package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/cardscrub/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.AuditLedger = (*Ledger)(nil)

// Ledger is an append-only audit trail of applied mutations.
type Ledger struct {
	db   *sqlx.DB
	path string
}

// changeRow maps a MutationRecord onto the changes table.
type changeRow struct {
	ID     int64          `db:"id"`
	ZohoID string         `db:"zoho_id"`
	RunID  string         `db:"run_id"`
	Before sql.NullString `db:"before"`
	After  sql.NullString `db:"after"`
	TS     string         `db:"ts"`
}

// NewLedger opens (or creates) the ledger file at path and applies the schema.
func NewLedger(path string) (*Ledger, error) {
	if path == "" {
		return nil, &domain.ValidationError{Field: "audit_db"}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Ledger{db: db, path: path}, nil
}

// Append inserts one record.
func (l *Ledger) Append(ctx context.Context, record domain.MutationRecord) error {
	if record.RemoteID == "" {
		return &domain.ValidationError{Field: "zoho_id"}
	}

	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	row := changeRow{
		ZohoID: record.RemoteID,
		RunID:  record.RunID,
		Before: nullJSON(record.Before),
		After:  nullJSON(record.After),
		TS:     ts.UTC().Format(time.RFC3339),
	}

	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO changes (zoho_id, run_id, before, after, ts)
		VALUES (:zoho_id, :run_id, :before, :after, :ts)
	`, row)
	if err != nil {
		return fmt.Errorf("appending change for %s: %w", record.RemoteID, err)
	}
	return nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply: %w", err)
	}
	return nil
}

func nullJSON(raw []byte) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
