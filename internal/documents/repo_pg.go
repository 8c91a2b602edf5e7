package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document record.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    owner_id,
    title,
    storage_key,
    mime_type,
    size_bytes,
    kind,
    normalized_text,
    caption,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}
	var caption sql.NullString
	if doc.Caption != "" {
		caption = sql.NullString{String: doc.Caption, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		storageKey,
		doc.MimeType,
		doc.SizeBytes,
		string(doc.Kind),
		doc.NormalizedText,
		caption,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches one document scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, documentID string) (Document, error) {
	const query = `
SELECT id, owner_id, title, storage_key, mime_type, size_bytes, kind, normalized_text, caption, created_at
FROM documents
WHERE owner_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, ownerID, documentID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByOwner lists an owner's documents newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, owner_id, title, storage_key, mime_type, size_bytes, kind, normalized_text, caption, created_at
FROM documents
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// ListKind returns corpus projections of one kind, oldest first so that
// ranking ties resolve toward earlier submissions.
func (r *PGRepo) ListKind(ctx context.Context, ownerID string, kind Kind, excludeID string) ([]CorpusDoc, error) {
	const query = `
SELECT id, title, normalized_text
FROM documents
WHERE owner_id = $1 AND kind = $2 AND ($3 = '' OR id <> $3)
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, string(kind), excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CorpusDoc
	for rows.Next() {
		var doc CorpusDoc
		var text sql.NullString
		if err := rows.Scan(&doc.ID, &doc.Title, &text); err != nil {
			return nil, err
		}
		doc.NormalizedText = text.String
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var storageKey sql.NullString
	var normalized sql.NullString
	var caption sql.NullString
	var kind string
	if err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&storageKey,
		&doc.MimeType,
		&doc.SizeBytes,
		&kind,
		&normalized,
		&caption,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.Kind = Kind(kind)
	doc.StorageKey = storageKey.String
	doc.NormalizedText = normalized.String
	doc.Caption = caption.String
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
