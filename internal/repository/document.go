package repository

import (
	"context"
	"errors"

	"docshare/internal/model"
)

// ErrNotFound is returned when no record exists for the given ID.
var ErrNotFound = errors.New("document not found")

// DocumentRepository defines data access for document records.
// No business logic here — strictly persistence operations. Ownership and
// self-share guards are enforced by the service layer; implementations only
// provide set semantics on the grantee array.
type DocumentRepository interface {
	// Create inserts a new record with an empty grantee set.
	// ID and UploadedAt may be assigned by the backend; the stored record is returned.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a record by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListAll returns every record in the directory. Visibility filtering is
	// the caller's responsibility.
	ListAll(ctx context.Context) ([]model.Document, error)

	// Delete removes a record by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// AddGrantee adds granteeID to the record's grantee set.
	// Set semantics absorb duplicates; adding an existing grantee is a no-op.
	AddGrantee(ctx context.Context, id, granteeID string) error

	// RemoveGrantee removes granteeID from the record's grantee set.
	// Removing an absent grantee is a no-op.
	RemoveGrantee(ctx context.Context, id, granteeID string) error
}
