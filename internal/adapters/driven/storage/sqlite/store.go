package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/queryd/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.QueryStore = (*Store)(nil)

// createdAtLayout is a fixed-width RFC 3339 form. RFC3339Nano trims
// trailing fraction zeros, which breaks lexicographic ORDER BY for
// records within the same second.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed query record store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.queryd/data/queries.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".queryd", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "queries.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save appends a query record.
func (s *Store) Save(ctx context.Context, record *domain.QueryRecord) error {
	if record == nil || record.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queries (id, dispatch_id, question, answer, model_requested, model_used, fallback_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.DispatchID, record.Question, record.Answer,
		record.ModelRequested, record.ModelUsed, boolToInt(record.FallbackUsed),
		record.CreatedAt.UTC().Format(createdAtLayout))

	if err != nil {
		return fmt.Errorf("saving query record: %w", err)
	}
	return nil
}

// List returns a page of records ordered newest-first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]domain.QueryRecord, error) {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dispatch_id, question, answer, model_requested, model_used, fallback_used, created_at
		FROM queries ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queries")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// FindByDispatchID returns the newest record with the given dispatch id.
func (s *Store) FindByDispatchID(ctx context.Context, dispatchID string) (*domain.QueryRecord, error) {
	if dispatchID == "" {
		return nil, domain.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, dispatch_id, question, answer, model_requested, model_used, fallback_used, created_at
		FROM queries WHERE dispatch_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1
	`, dispatchID)

	record, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SearchByQuestion returns records whose question contains the given
// substring, newest first. The match is a plain substring, not a pattern.
func (s *Store) SearchByQuestion(ctx context.Context, substr string) ([]domain.QueryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dispatch_id, question, answer, model_requested, model_used, fallback_used, created_at
		FROM queries WHERE instr(question, ?) > 0 ORDER BY created_at DESC, rowid DESC
	`, substr)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanner abstracts *sql.Row and *sql.Rows for record scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.QueryRecord, error) {
	var record domain.QueryRecord
	var fallback int
	var createdAt string

	err := row.Scan(&record.ID, &record.DispatchID, &record.Question, &record.Answer,
		&record.ModelRequested, &record.ModelUsed, &fallback, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning query record: %w", err)
	}

	record.FallbackUsed = fallback != 0
	// RFC3339Nano parses the fixed-width layout and any rows written
	// before it.
	record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]domain.QueryRecord, error) {
	var records []domain.QueryRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query records: %w", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}
