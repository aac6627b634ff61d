package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"docshare/internal/model"
	"docshare/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// The grantee set is a TEXT[] column; union and remove are single statements,
// so concurrent mutations resolve last-writer-wins at the field level.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, filename, url, uploadedat, ownerid, sharedwith)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, filename, url, uploadedat, ownerid, sharedwith
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Filename,
		doc.URL,
		doc.UploadedAt,
		doc.OwnerID,
		pq.Array(doc.SharedWith),
	)
	return scanDocument(row)
}

// FindByID fetches a single record by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, filename, url, uploadedat, ownerid, sharedwith
		FROM documents
		WHERE id = $1
	`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// ListAll returns the complete record set in stable upload order.
func (r *DocumentPostgres) ListAll(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT id, filename, url, uploadedat, ownerid, sharedwith
		FROM documents
		ORDER BY uploadedat DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		var shared pq.StringArray
		if err := rows.Scan(
			&d.ID,
			&d.Filename,
			&d.URL,
			&d.UploadedAt,
			&d.OwnerID,
			&shared,
		); err != nil {
			return nil, err
		}
		d.SharedWith = shared
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Delete removes a record by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// AddGrantee appends granteeID to the sharedwith array unless already present.
func (r *DocumentPostgres) AddGrantee(ctx context.Context, id, granteeID string) error {
	const q = `
		UPDATE documents
		SET sharedwith = array_append(sharedwith, $2)
		WHERE id = $1 AND NOT ($2 = ANY(sharedwith))
	`
	// Zero rows affected means either the grantee was already present
	// (idempotent no-op) or the record is gone; the service layer has
	// already confirmed existence.
	_, err := r.db.ExecContext(ctx, q, id, granteeID)
	return err
}

// RemoveGrantee removes granteeID from the sharedwith array if present.
func (r *DocumentPostgres) RemoveGrantee(ctx context.Context, id, granteeID string) error {
	const q = `
		UPDATE documents
		SET sharedwith = array_remove(sharedwith, $2)
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q, id, granteeID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	var shared pq.StringArray
	if err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.URL,
		&d.UploadedAt,
		&d.OwnerID,
		&shared,
	); err != nil {
		return nil, err
	}
	d.SharedWith = shared
	return &d, nil
}
