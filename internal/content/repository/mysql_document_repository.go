package repository

import (
	"context"
	"database/sql"
	"fmt"

	"repairflow/internal/domain"
	"repairflow/internal/errors"
)

// MySQLDocumentRepository stores content documents in the ContentDocuments
// table, a mirror of the CMS dataset keyed by document id and locale.
type MySQLDocumentRepository struct {
	db *sql.DB
}

func NewMySQLDocumentRepository(db *sql.DB) *MySQLDocumentRepository {
	return &MySQLDocumentRepository{db: db}
}

func (r *MySQLDocumentRepository) Documents(ctx context.Context, docType, locale string) ([]domain.Document, error) {
	query := `
		SELECT docId, docType, locale, body
		FROM ContentDocuments
		WHERE docType = ? AND (locale = '' OR locale = ?)
		ORDER BY docId
	`

	rows, err := r.db.QueryContext(ctx, query, docType, locale)
	if err != nil {
		return nil, fmt.Errorf("querying content documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		var body []byte
		if err := rows.Scan(&d.ID, &d.Type, &d.Locale, &body); err != nil {
			return nil, fmt.Errorf("scanning content document: %w", err)
		}
		d.Body = body
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content documents: %w", err)
	}

	return docs, nil
}

// FindByID returns the document for locale, falling back to the shared
// (empty locale) copy.
func (r *MySQLDocumentRepository) FindByID(ctx context.Context, id, locale string) (*domain.Document, error) {
	query := `
		SELECT docId, docType, locale, body
		FROM ContentDocuments
		WHERE docId = ? AND (locale = '' OR locale = ?)
		ORDER BY locale DESC
		LIMIT 1
	`

	var d domain.Document
	var body []byte
	err := r.db.QueryRowContext(ctx, query, id, locale).Scan(&d.ID, &d.Type, &d.Locale, &body)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("content document %q not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying content document by id: %w", err)
	}

	d.Body = body
	return &d, nil
}

// Upsert replaces every document in one transaction, so a seed run is never
// left half applied.
func (r *MySQLDocumentRepository) Upsert(ctx context.Context, docs []domain.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ContentDocuments (docId, locale, docType, body)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE docType = VALUES(docType), body = VALUES(body)
	`)
	if err != nil {
		return fmt.Errorf("preparing content upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, d.ID, d.Locale, d.Type, string(d.Body)); err != nil {
			return fmt.Errorf("upserting content document %q: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing content upsert: %w", err)
	}
	return nil
}
