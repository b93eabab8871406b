package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tagdock/internal/config"
	"tagdock/internal/fingerprint"
)

// Store manages document records backed by SQLite. Tag identifier uniqueness
// is enforced here (documents.tag_id is the primary key); per-tag fingerprint
// uniqueness is left to the duplicate-detection path.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the records database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "records.db"))
}

// OpenPath opens the records database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// EnsureDocument creates the document record for a tag if it does not exist.
// Used by tag pre-generation; idempotent.
func (s *Store) EnsureDocument(ctx context.Context, tagID string) error {
	tagID = strings.TrimSpace(tagID)
	if tagID == "" {
		return errors.New("tag identifier required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO documents (tag_id, created_at) VALUES (?, ?)
         ON CONFLICT(tag_id) DO NOTHING`,
		tagID,
		now,
	)
	if err != nil {
		return fmt.Errorf("ensure document: %w", err)
	}
	return nil
}

// AppendCopy atomically creates the document for tagID if absent and appends
// the copy to its list. Concurrent appends to the same tag compose; nothing
// is overwritten.
func (s *Store) AppendCopy(ctx context.Context, tagID string, copy Copy) error {
	tagID = strings.TrimSpace(tagID)
	if tagID == "" {
		return errors.New("tag identifier required")
	}
	if copy.Fingerprint == "" {
		return errors.New("copy fingerprint required")
	}

	uploadedAt := copy.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	return retryOnBusy(ensureContext(ctx), func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin append tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO documents (tag_id, created_at) VALUES (?, ?)
             ON CONFLICT(tag_id) DO NOTHING`,
			tagID,
			time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("ensure document for append: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO copies (tag_id, file_name, location, fingerprint, uploaded_at)
             VALUES (?, ?, ?, ?, ?)`,
			tagID,
			copy.FileName,
			copy.Location,
			string(copy.Fingerprint),
			uploadedAt.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("append copy: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit append: %w", err)
		}
		return nil
	})
}

// FindByFingerprint returns the first copy matching a fingerprint across all
// documents, or nil when the content is unknown.
func (s *Store) FindByFingerprint(ctx context.Context, fp fingerprint.Digest) (*Match, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT tag_id, file_name, location, fingerprint, uploaded_at
         FROM copies WHERE fingerprint = ? ORDER BY id LIMIT 1`,
		string(fp),
	)

	var (
		tagID       string
		fileName    string
		location    string
		fpRaw       string
		uploadedRaw string
	)
	err := row.Scan(&tagID, &fileName, &location, &fpRaw, &uploadedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by fingerprint: %w", err)
	}

	copy := Copy{
		FileName:    fileName,
		Location:    location,
		Fingerprint: fingerprint.Digest(fpRaw),
	}
	if uploaded, err := parseTimeString(uploadedRaw); err == nil {
		copy.UploadedAt = uploaded
	}
	return &Match{TagID: tagID, Copy: copy}, nil
}

// GetByTag fetches a document and its copies in insertion order. Returns nil
// when no document exists for the tag.
func (s *Store) GetByTag(ctx context.Context, tagID string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT tag_id, created_at FROM documents WHERE tag_id = ?`, tagID)

	var (
		id         string
		createdRaw string
	)
	err := row.Scan(&id, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	doc := &Document{TagID: id}
	if created, err := parseTimeString(createdRaw); err == nil {
		doc.CreatedAt = created
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT file_name, location, fingerprint, uploaded_at FROM copies WHERE tag_id = ? ORDER BY id`,
		tagID,
	)
	if err != nil {
		return nil, fmt.Errorf("list copies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			fileName    string
			location    string
			fpRaw       string
			uploadedRaw string
		)
		if err := rows.Scan(&fileName, &location, &fpRaw, &uploadedRaw); err != nil {
			return nil, fmt.Errorf("scan copy: %w", err)
		}
		copy := Copy{
			FileName:    fileName,
			Location:    location,
			Fingerprint: fingerprint.Digest(fpRaw),
		}
		if uploaded, err := parseTimeString(uploadedRaw); err == nil {
			copy.UploadedAt = uploaded
		}
		doc.Copies = append(doc.Copies, copy)
	}
	return doc, rows.Err()
}

// ReplaceCopy overwrites the single copy matching oldFp under tagID with
// newCopy, keeping its position in the list. Returns ErrCopyNotFound when no
// such copy exists.
func (s *Store) ReplaceCopy(ctx context.Context, tagID string, oldFp fingerprint.Digest, newCopy Copy) error {
	uploadedAt := newCopy.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE copies
         SET file_name = ?, location = ?, fingerprint = ?, uploaded_at = ?
         WHERE id = (
             SELECT id FROM copies WHERE tag_id = ? AND fingerprint = ? ORDER BY id LIMIT 1
         )`,
		newCopy.FileName,
		newCopy.Location,
		string(newCopy.Fingerprint),
		uploadedAt.Format(time.RFC3339Nano),
		tagID,
		string(oldFp),
	)
	if err != nil {
		return fmt.Errorf("replace copy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCopyNotFound
	}
	return nil
}

// Stats returns the number of documents and the total number of copies.
func (s *Store) Stats(ctx context.Context) (StatsSummary, error) {
	var summary StatsSummary
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM documents`).Scan(&summary.Tags); err != nil {
		return StatsSummary{}, fmt.Errorf("count documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM copies`).Scan(&summary.Copies); err != nil {
		return StatsSummary{}, fmt.Errorf("count copies: %w", err)
	}
	return summary, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
