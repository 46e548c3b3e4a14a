// Package store keeps a claimant corpus in SQLite. It is the caller-side
// persistence the pure match package deliberately lacks.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/masonvector/masonvector/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS claimants (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	dob         TEXT NOT NULL DEFAULT '',
	address     TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	amount      REAL NOT NULL DEFAULT 0,
	email       TEXT NOT NULL DEFAULT '',
	claim_id    TEXT NOT NULL DEFAULT '',
	external_id TEXT NOT NULL DEFAULT '',
	refs        TEXT NOT NULL DEFAULT '[]',
	extra       TEXT NOT NULL DEFAULT '{}',
	created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_claimants_email ON claimants(email);
CREATE INDEX IF NOT EXISTS idx_claimants_claim_id ON claimants(claim_id);
`

// Store is a SQLite-backed claimant corpus
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if needed) the corpus database at path.
// ":memory:" is accepted for tests.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logger.Debug("opened claimant store", zap.String("path", path))
	return &Store{db: db, path: path, logger: logger}, nil
}

// Path returns the database path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Count returns the number of stored claimants
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM claimants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count claimants: %w", err)
	}
	return n, nil
}

// Load returns the whole corpus in insertion order
func (s *Store) Load(ctx context.Context) ([]model.Claimant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, dob, address, state, amount, email, claim_id, external_id, refs, extra
		FROM claimants ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query claimants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	corpus := []model.Claimant{}
	for rows.Next() {
		var (
			c           model.Claimant
			refs, extra string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.DOB, &c.Address, &c.State, &c.Amount,
			&c.Email, &c.ClaimID, &c.ExternalID, &refs, &extra); err != nil {
			return nil, fmt.Errorf("scan claimant: %w", err)
		}
		if err := json.Unmarshal([]byte(refs), &c.References); err != nil {
			return nil, fmt.Errorf("decode references for %s: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(extra), &c.Extra); err != nil {
			return nil, fmt.Errorf("decode extra for %s: %w", c.ID, err)
		}
		if len(c.References) == 0 {
			c.References = nil
		}
		if len(c.Extra) == 0 {
			c.Extra = nil
		}
		corpus = append(corpus, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claimants: %w", err)
	}

	s.logger.Debug("loaded corpus", zap.Int("claimants", len(corpus)))
	return corpus, nil
}

// Insert writes records in one transaction and returns them with IDs
// assigned. Records without an ID get a random UUID.
func (s *Store) Insert(ctx context.Context, records []model.Claimant) ([]model.Claimant, error) {
	if len(records) == 0 {
		return []model.Claimant{}, nil
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO claimants (id, name, dob, address, state, amount, email, claim_id, external_id, refs, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := make([]model.Claimant, 0, len(records))
	for _, c := range records {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		refs, err := json.Marshal(nonNilRefs(c.References))
		if err != nil {
			return nil, fmt.Errorf("encode references: %w", err)
		}
		extra, err := json.Marshal(nonNilExtra(c.Extra))
		if err != nil {
			return nil, fmt.Errorf("encode extra: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.DOB, c.Address, c.State, c.Amount,
			c.Email, c.ClaimID, c.ExternalID, string(refs), string(extra)); err != nil {
			return nil, fmt.Errorf("insert claimant %s: %w", c.ID, err)
		}
		inserted = append(inserted, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("inserted claimants",
		zap.Int("count", len(inserted)),
		zap.Duration("took", time.Since(start)))
	return inserted, nil
}

func nonNilRefs(refs []string) []string {
	if refs == nil {
		return []string{}
	}
	return refs
}

func nonNilExtra(extra map[string]string) map[string]string {
	if extra == nil {
		return map[string]string{}
	}
	return extra
}
