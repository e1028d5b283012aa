package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dori/leadboard/internal/model"
)

// Load returns the document stored under key, or nil if there is none
func (db *DB) Load(ctx context.Context, key string) (*model.Document, error) {
	var body []byte
	err := db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %q: %w", key, err)
	}

	doc, err := DecodeDocument(body)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save stores doc under key and returns its new revision number. The previous
// revisions beyond the history limit are dropped in the same transaction.
func (db *DB) Save(ctx context.Context, key string, doc model.Document) (int64, error) {
	body, err := EncodeDocument(doc)
	if err != nil {
		return 0, err
	}

	var rev int64
	err = db.Transaction(func(tx *sql.Tx) error {
		rev, err = db.saveTx(ctx, tx, key, body)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save document %q: %w", key, err)
	}
	return rev, nil
}

// Revision reports the current revision of key, 0 when absent
func (db *DB) Revision(ctx context.Context, key string) (int64, error) {
	var rev int64
	err := db.QueryRowContext(ctx, `SELECT revision FROM documents WHERE key = ?`, key).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read revision of %q: %w", key, err)
	}
	return rev, nil
}

func (db *DB) saveTx(ctx context.Context, tx *sql.Tx, key string, body []byte) (int64, error) {
	now := time.Now().UTC()

	var rev int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO documents (key, body, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			revision = documents.revision + 1,
			updated_at = excluded.updated_at
		RETURNING revision
	`, key, body, now).Scan(&rev)
	if err != nil {
		return 0, err
	}

	if db.historyLimit <= 0 {
		return rev, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_history (key, revision, body, saved_at)
		VALUES (?, ?, ?, ?)
	`, key, rev, body, now)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM document_history WHERE key = ? AND revision <= ?
	`, key, rev-int64(db.historyLimit))
	if err != nil {
		return 0, err
	}

	return rev, nil
}
