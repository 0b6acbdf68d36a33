// Package ledger persists uploaded sound metadata in SQLite.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"yamble/internal/adapters/ledger/migrations"
	"yamble/internal/core/domain"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the SQLite ledger at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}

	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	dsn := clean + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Debug().Str("path", clean).Msg("ledger opened")

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records one uploaded sound. Entries are never updated.
func (s *Store) Append(ctx context.Context, entry domain.LedgerEntry) error {
	if entry.Reference == "" {
		return fmt.Errorf("reference is required")
	}
	if entry.FilePath == "" {
		return fmt.Errorf("file path is required")
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audio_ledger (link_or_name, downloaded, file_path, uploader, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.Reference,
		entry.Downloaded,
		entry.FilePath,
		entry.UploaderID,
		createdAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	return nil
}

// Latest returns the newest entry recorded under reference, or domain.ErrNotFound.
func (s *Store) Latest(ctx context.Context, reference string) (domain.LedgerEntry, error) {
	var (
		entry     domain.LedgerEntry
		createdAt int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, link_or_name, downloaded, file_path, uploader, created_at
		 FROM audio_ledger
		 WHERE link_or_name = ?
		 ORDER BY id DESC
		 LIMIT 1`,
		reference,
	).Scan(&entry.ID, &entry.Reference, &entry.Downloaded, &entry.FilePath, &entry.UploaderID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LedgerEntry{}, fmt.Errorf("ledger entry %q: %w", reference, domain.ErrNotFound)
	}
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("query ledger entry: %w", err)
	}

	entry.CreatedAt = time.UnixMilli(createdAt).UTC()

	return entry, nil
}
