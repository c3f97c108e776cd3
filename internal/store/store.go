package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/transaction"

	_ "modernc.org/sqlite"
)

// SchemaVersion is recorded in the meta table.
const SchemaVersion = "1"

// Store is a sqlite-backed change log.
type Store struct {
	db   *sql.DB
	path string
	id   string
}

// Change is one recorded transaction.
type Change struct {
	DocID         string
	Revision      uint64
	TransactionID uuid.UUID
	Reason        transaction.Reason
	Description   string
	Operations    []operation.Operation
	CommittedAt   time.Time
}

// Snapshot is a stored document at a revision.
type Snapshot struct {
	DocID    string
	Revision uint64
	Document *node.Document
	SavedAt  time.Time
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrating: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS changes (
			doc_id TEXT NOT NULL,
			revision INTEGER NOT NULL,
			transaction_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			description TEXT NOT NULL,
			operations_json TEXT NOT NULL,
			committed_at_unixms INTEGER NOT NULL,
			PRIMARY KEY(doc_id, revision)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_changes_tx ON changes(transaction_id);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			doc_id TEXT PRIMARY KEY,
			revision INTEGER NOT NULL,
			document_json TEXT NOT NULL,
			saved_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES('schema_version', ?)`, SchemaVersion); err != nil {
		return err
	}
	id, err := ensureMetaUUID(ctx, s.db, "store_id")
	if err != nil {
		return err
	}
	s.id = id
	return nil
}

func ensureMetaUUID(ctx context.Context, db *sql.DB, key string) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	if err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	v = uuid.NewString()
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, key, v); err != nil {
		return "", err
	}
	return v, nil
}

// ID returns the store's persistent identifier.
func (s *Store) ID() string {
	return s.id
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records a change. Revisions must be unique per document.
func (s *Store) Append(ctx context.Context, c Change) error {
	if strings.TrimSpace(c.DocID) == "" {
		return ErrEmptyDocID
	}
	ops, err := operation.EncodeList(c.Operations)
	if err != nil {
		return fmt.Errorf("store: encoding operations: %w", err)
	}
	at := c.CommittedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO changes(
		doc_id, revision, transaction_id, reason, description, operations_json, committed_at_unixms
	) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		c.DocID, int64(c.Revision), c.TransactionID.String(), c.Reason.String(), c.Description, ops, at.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("store: %s@%d: %w", c.DocID, c.Revision, ErrRevisionConflict)
		}
		return fmt.Errorf("store: appending %s@%d: %w", c.DocID, c.Revision, err)
	}
	return nil
}

// Changes returns the changes of docID after revision since, oldest first.
func (s *Store) Changes(ctx context.Context, docID string, since uint64) ([]Change, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, revision, transaction_id, reason, description, operations_json, committed_at_unixms
		FROM changes WHERE doc_id = ? AND revision > ? ORDER BY revision ASC`, docID, int64(since))
	if err != nil {
		return nil, fmt.Errorf("store: querying changes: %w", err)
	}
	return scanChanges(rows)
}

// Tail returns the last n changes of docID, oldest first.
func (s *Store) Tail(ctx context.Context, docID string, n int) ([]Change, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, revision, transaction_id, reason, description, operations_json, committed_at_unixms
		FROM changes WHERE doc_id = ? ORDER BY revision DESC LIMIT ?`, docID, n)
	if err != nil {
		return nil, fmt.Errorf("store: querying changes: %w", err)
	}
	out, err := scanChanges(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func scanChanges(rows *sql.Rows) ([]Change, error) {
	defer rows.Close()

	var out []Change
	for rows.Next() {
		var (
			c                  Change
			rev, atMS          int64
			txID, reason, opsJ string
		)
		if err := rows.Scan(&c.DocID, &rev, &txID, &reason, &c.Description, &opsJ, &atMS); err != nil {
			return nil, err
		}
		c.Revision = uint64(rev)
		c.CommittedAt = time.UnixMilli(atMS)
		id, err := uuid.Parse(txID)
		if err != nil {
			return nil, fmt.Errorf("store: %s@%d: transaction id: %w", c.DocID, rev, err)
		}
		c.TransactionID = id
		if c.Reason, err = transaction.ParseReason(reason); err != nil {
			return nil, fmt.Errorf("store: %s@%d: %w", c.DocID, rev, err)
		}
		if c.Operations, err = operation.DecodeList(opsJ); err != nil {
			return nil, fmt.Errorf("store: %s@%d: operations: %w", c.DocID, rev, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Head returns the highest revision stored for docID, from either the
// change log or the snapshot.
func (s *Store) Head(ctx context.Context, docID string) (uint64, error) {
	var rev sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(r) FROM (
		SELECT MAX(revision) AS r FROM changes WHERE doc_id = ?
		UNION ALL
		SELECT revision AS r FROM snapshots WHERE doc_id = ?
	)`, docID, docID).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("store: head of %s: %w", docID, err)
	}
	if !rev.Valid {
		return 0, nil
	}
	return uint64(rev.Int64), nil
}

// SaveSnapshot replaces the snapshot of docID.
func (s *Store) SaveSnapshot(ctx context.Context, docID string, revision uint64, doc *node.Document) error {
	if strings.TrimSpace(docID) == "" {
		return ErrEmptyDocID
	}
	data, err := node.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("store: encoding snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO snapshots(doc_id, revision, document_json, saved_at_unixms)
		VALUES(?, ?, ?, ?)`, docID, int64(revision), string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: saving snapshot of %s: %w", docID, err)
	}
	return nil
}

// LoadSnapshot returns the snapshot of docID, or ErrNoSnapshot.
func (s *Store) LoadSnapshot(ctx context.Context, docID string) (*Snapshot, error) {
	var (
		rev, atMS int64
		data      string
	)
	err := s.db.QueryRowContext(ctx, `SELECT revision, document_json, saved_at_unixms FROM snapshots WHERE doc_id = ?`, docID).
		Scan(&rev, &data, &atMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: %s: %w", docID, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("store: loading snapshot of %s: %w", docID, err)
	}
	doc, err := node.DecodeDocument([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("store: decoding snapshot of %s: %w", docID, err)
	}
	return &Snapshot{DocID: docID, Revision: uint64(rev), Document: doc, SavedAt: time.UnixMilli(atMS)}, nil
}

// Restore rebuilds docID from its snapshot and the later changes. Without
// a snapshot the changes are replayed onto an empty document.
func (s *Store) Restore(ctx context.Context, docID string) (*node.Document, uint64, error) {
	doc := node.NewDocument()
	var rev uint64
	snap, err := s.LoadSnapshot(ctx, docID)
	switch {
	case err == nil:
		doc, rev = snap.Document, snap.Revision
	case !errors.Is(err, ErrNoSnapshot):
		return nil, 0, err
	}

	changes, err := s.Changes(ctx, docID, rev)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range changes {
		for i, op := range c.Operations {
			if _, err := op.Apply(doc); err != nil {
				return nil, 0, fmt.Errorf("store: replaying %s@%d op %d: %w", docID, c.Revision, i, err)
			}
		}
		rev = c.Revision
	}
	return doc, rev, nil
}

// Documents lists the document IDs with recorded history.
func (s *Store) Documents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id FROM changes UNION SELECT doc_id FROM snapshots ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("store: listing documents: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
