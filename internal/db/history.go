package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dori/leadboard/internal/model"
)

// ErrRevisionNotFound is returned by Restore for a revision not in history
var ErrRevisionNotFound = errors.New("revision not found")

// Revision describes one saved version of a document
type Revision struct {
	Key      string
	Revision int64
	SavedAt  time.Time
	Size     int
}

// History lists the saved revisions of key, newest first. limit <= 0 lists
// everything kept.
func (db *DB) History(ctx context.Context, key string, limit int) ([]Revision, error) {
	query := `
		SELECT key, revision, saved_at, length(body)
		FROM document_history
		WHERE key = ?
		ORDER BY revision DESC
	`
	args := []any{key}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history of %q: %w", key, err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.Key, &r.Revision, &r.SavedAt, &r.Size); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// Restore makes an old revision of key current again. It is saved as a new
// revision so the restore itself can be undone.
func (db *DB) Restore(ctx context.Context, key string, revision int64) (model.Document, int64, error) {
	var (
		body []byte
		rev  int64
	)
	err := db.Transaction(func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT body FROM document_history WHERE key = ? AND revision = ?
		`, key, revision).Scan(&body)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRevisionNotFound
		}
		if err != nil {
			return err
		}

		// Same transaction: a second connection would deadlock
		rev, err = db.saveTx(ctx, tx, key, body)
		return err
	})
	if err != nil {
		return model.Document{}, 0, fmt.Errorf("failed to restore %q revision %d: %w", key, revision, err)
	}

	doc, err := DecodeDocument(body)
	if err != nil {
		return model.Document{}, 0, err
	}
	return doc, rev, nil
}
