package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/transfer"
)

// Revision describes one stored snapshot.
type Revision struct {
	Seq         int64     `json:"seq"`
	Fingerprint string    `json:"fingerprint"`
	SavedAt     time.Time `json:"savedAt"`
}

func unavailable(op string, err error) error {
	return kb.WrapError(kb.ErrCodePersistenceUnavailable, op, "storage failed", err)
}

// Defaults decodes a fresh copy of the default dataset.
func (s *Store) Defaults() (*kb.Database, error) {
	db, err := transfer.DecodeJSON(s.defaults)
	if err != nil {
		return nil, fmt.Errorf("decode default dataset: %w", err)
	}
	return db, nil
}

// Load returns the newest snapshot.
//
// With no snapshot stored, the default dataset is saved and returned. A
// corrupt newest snapshot is logged and replaced by the defaults the same
// way. SQL failures return a PERSISTENCE_UNAVAILABLE error.
func (s *Store) Load(ctx context.Context) (*kb.Database, error) {
	const op = "store.load"

	var (
		seq               int64
		fingerprint, body string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, fingerprint, body
		FROM snapshots
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&seq, &fingerprint, &body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.Debug("no snapshot stored, using defaults")
		return s.restoreDefaults(ctx, op)
	case err != nil:
		return nil, unavailable(op, err)
	}

	db, err := decodeSnapshot(fingerprint, body)
	if err != nil {
		s.logger.Warn("discarding corrupt snapshot", "seq", seq, "error", err)
		return s.restoreDefaults(ctx, op)
	}
	return db, nil
}

func decodeSnapshot(fingerprint, body string) (*kb.Database, error) {
	if got := Fingerprint([]byte(body)); got != fingerprint {
		return nil, fmt.Errorf("fingerprint mismatch: stored %.12s, computed %.12s", fingerprint, got)
	}
	return transfer.DecodeJSON([]byte(body))
}

func (s *Store) restoreDefaults(ctx context.Context, op string) (*kb.Database, error) {
	db, err := s.Defaults()
	if err != nil {
		return nil, err
	}
	if _, _, err := s.Save(ctx, db); err != nil {
		return nil, kb.WrapError(kb.ErrCodePersistenceUnavailable, op, "save defaults", err)
	}
	return db, nil
}

// LoadOrDefault is the boot path: any failure to load yields the default
// dataset without surfacing an error.
func (s *Store) LoadOrDefault(ctx context.Context) *kb.Database {
	db, err := s.Load(ctx)
	if err == nil {
		return db
	}
	s.logger.Debug("load failed, using defaults", "error", err)
	db, err = s.Defaults()
	if err != nil {
		// Open validated the defaults.
		panic(err)
	}
	return db
}

// Save appends db as a new snapshot unless it matches the newest one, then
// prunes the log to the configured size. Everything happens in one
// transaction. It returns the newest revision and whether a row was written.
func (s *Store) Save(ctx context.Context, db *kb.Database) (Revision, bool, error) {
	const op = "store.save"

	if err := db.Validate(); err != nil {
		return Revision{}, false, fmt.Errorf("%s: refusing to save invalid database: %w", op, err)
	}
	body, err := transfer.MarshalJSON(db)
	if err != nil {
		return Revision{}, false, fmt.Errorf("%s: %w", op, err)
	}
	fingerprint := Fingerprint(body)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, false, unavailable(op, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() // No-op if committed

	var latest Revision
	var savedAt string
	err = tx.QueryRowContext(ctx, `
		SELECT seq, fingerprint, saved_at
		FROM snapshots
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&latest.Seq, &latest.Fingerprint, &savedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Revision{}, false, unavailable(op, err)
	case latest.Fingerprint == fingerprint:
		latest.SavedAt, err = parseSavedAt(savedAt)
		if err != nil {
			return Revision{}, false, unavailable(op, err)
		}
		s.logger.Debug("snapshot unchanged", "seq", latest.Seq)
		return latest, false, nil
	}

	now := s.clock.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (fingerprint, body, saved_at)
		VALUES (?, ?, ?)
	`, fingerprint, string(body), now.Format(time.RFC3339Nano))
	if err != nil {
		return Revision{}, false, unavailable(op, fmt.Errorf("insert snapshot: %w", err))
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return Revision{}, false, unavailable(op, err)
	}

	pruned, err := tx.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE seq NOT IN (
			SELECT seq FROM snapshots ORDER BY seq DESC LIMIT ?
		)
	`, s.keep)
	if err != nil {
		return Revision{}, false, unavailable(op, fmt.Errorf("prune snapshots: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, false, unavailable(op, fmt.Errorf("commit: %w", err))
	}

	n, _ := pruned.RowsAffected()
	s.logger.Debug("snapshot saved", "seq", seq, "fingerprint", fingerprint[:12], "pruned", n)
	return Revision{Seq: seq, Fingerprint: fingerprint, SavedAt: now}, true, nil
}

// Reset replaces the current state with the default dataset. Failures are
// PERSISTENCE_UNAVAILABLE errors.
func (s *Store) Reset(ctx context.Context) (*kb.Database, error) {
	return s.restoreDefaults(ctx, "store.reset")
}

// Revisions lists stored snapshots, newest first.
func (s *Store) Revisions(ctx context.Context) ([]Revision, error) {
	const op = "store.revisions"
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, fingerprint, saved_at
		FROM snapshots
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	revisions := []Revision{}
	for rows.Next() {
		var r Revision
		var savedAt string
		if err := rows.Scan(&r.Seq, &r.Fingerprint, &savedAt); err != nil {
			return nil, unavailable(op, fmt.Errorf("scan revision: %w", err))
		}
		if r.SavedAt, err = parseSavedAt(savedAt); err != nil {
			return nil, unavailable(op, err)
		}
		revisions = append(revisions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, fmt.Errorf("iterate revisions: %w", err))
	}
	return revisions, nil
}

// LoadRevision decodes the snapshot with the given seq. A missing seq is a
// NOT_FOUND error; a corrupt one is returned as a plain error.
func (s *Store) LoadRevision(ctx context.Context, seq int64) (*kb.Database, error) {
	const op = "store.load_revision"
	var fingerprint, body string
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, body FROM snapshots WHERE seq = ?
	`, seq).Scan(&fingerprint, &body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, kb.NewError(kb.ErrCodeNotFound, op, fmt.Sprintf("revision %d not found", seq))
	case err != nil:
		return nil, unavailable(op, err)
	}
	db, err := decodeSnapshot(fingerprint, body)
	if err != nil {
		return nil, fmt.Errorf("%s: revision %d: %w", op, seq, err)
	}
	return db, nil
}

func parseSavedAt(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse saved_at %q: %w", s, err)
	}
	return t, nil
}
