package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/dataminer/internal/dedup"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "dataminer.db"

// ErrDuplicateContent is returned by PutPageRecord when a page with the same
// fingerprint is already stored.
var ErrDuplicateContent = dedup.ErrDuplicateContent

// CrawlDB is the SQLite store for pages and URL statuses.
// It is safe for concurrent use; writes are serialized on one connection.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	// Without it, opening a missing database fails.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging so readers
	// do not block the crawler's writes.
	EnableWAL bool
}

// DefaultOptions creates the database on first use with WAL enabled.
func DefaultOptions() Options {
	return Options{CreateIfNotExists: true, EnableWAL: true}
}

// pragmas run on every new database handle.
var pragmas = []string{
	"PRAGMA busy_timeout=5000",
}

// Open opens the database file in dbDir and ensures the schema exists.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)
	mode := "rw"

	switch {
	case opts.CreateIfNotExists:
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		mode = "rwc"
	default:
		if _, err := os.Stat(dbPath); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("database not found at %s", dbPath)
			}
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes every write, including the
	// check-and-reserve of a fingerprint.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	statements := pragmas
	if opts.EnableWAL {
		statements = append(slices.Clone(pragmas), "PRAGMA journal_mode=WAL")
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	cdb := &CrawlDB{db: db, dbPath: dbPath}
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return cdb, nil
}

// Close releases the database handle.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables applies the schema. It is idempotent.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per distinct page content
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		title TEXT,
		content TEXT,
		metadata TEXT,
		analysis TEXT,
		fetched_at TEXT NOT NULL,
		fingerprint TEXT NOT NULL UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_fetched_at ON pages(fetched_at);

	-- Crawl status per URL
	CREATE TABLE IF NOT EXISTS urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_urls_status ON urls(status);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// storedTimeFormat is fixed width so that text ordering matches time ordering.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(storedTimeFormat)
}

// timestampFormats are the layouts found in the database: the stored
// format and SQLite's CURRENT_TIMESTAMP, plus RFC 3339 for hand-edited rows.
var timestampFormats = []string{
	storedTimeFormat,
	time.DateTime,
	time.RFC3339Nano,
}

// parseTimestamp returns the zero time when s matches no known layout.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
