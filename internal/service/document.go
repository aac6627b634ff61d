package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"docshare/internal/access"
	"docshare/internal/feed"
	"docshare/internal/model"
	"docshare/internal/repository"
	"docshare/internal/storage"
)

var (
	ErrIdentityRequired = errors.New("identity is required")
	ErrIDRequired       = errors.New("id is required")
	ErrGranteeRequired  = errors.New("grantee id is required")
	ErrNotFound         = errors.New("document not found")
	ErrReaderNil        = errors.New("reader is nil")

	// ErrNotOwner guards delete/grant/revoke: only the record's owner may
	// perform them.
	ErrNotOwner = errors.New("caller does not own this document")

	// ErrInvalidGrantee rejects sharing a document with its own owner.
	ErrInvalidGrantee = errors.New("cannot share a document with yourself")
)

// DocumentService defines the use cases for storing and sharing documents.
// Every operation requires a resolved identity; authorization guards live
// here, not in the repositories.
type DocumentService interface {
	// Upload stores the blob in the object store, then records its metadata
	// with an empty grantee set. The two steps are not atomic: a failed
	// record insert leaves the uploaded blob behind with no record.
	Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename string, contentType string, size int64) (*model.Document, error)

	// List returns the records visible to the identity: owned or granted.
	List(ctx context.Context, identity string) ([]model.Document, error)

	// Get returns a single record if the identity may see it.
	Get(ctx context.Context, id, identity string) (*model.Document, error)

	// Delete removes a record. Fails with ErrNotOwner unless callerID owns it.
	Delete(ctx context.Context, id, callerID string) error

	// Grant adds granteeID to the record's grantee set. Owner-only;
	// self-sharing fails with ErrInvalidGrantee; duplicates are absorbed.
	Grant(ctx context.Context, id, callerID, granteeID string) error

	// Revoke removes granteeID from the record's grantee set. Owner-only;
	// revoking an absent grantee is a no-op.
	Revoke(ctx context.Context, id, callerID, granteeID string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	uploader storage.Uploader
	repo     repository.DocumentRepository
	feed     *feed.Broadcaster
}

// NewDocumentService constructs a new DocumentService. The broadcaster may be
// nil when no live subscription is wired (tests).
func NewDocumentService(uploader storage.Uploader, repo repository.DocumentRepository, b *feed.Broadcaster) DocumentService {
	return &documentService{uploader: uploader, repo: repo, feed: b}
}

func (s *documentService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename string, contentType string, size int64) (*model.Document, error) {
	if ownerID == "" {
		return nil, ErrIdentityRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	// Single attempt; a failure here means no record is created.
	url, err := s.uploader.Upload(ctx, r, originalFilename, storage.UploadOptions{
		Size:        size,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:         uuid.New().String(),
		Filename:   originalFilename,
		URL:        url,
		OwnerID:    ownerID,
		SharedWith: []string{},
		UploadedAt: time.Now().UTC(),
	}
	// No rollback of the uploaded blob: an insert failure leaves it
	// unreferenced, which is the recorded lifecycle of this operation.
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("record document: %w", err)
	}

	s.publish(feed.EventInsert, stored.ID)
	return stored, nil
}

func (s *documentService) List(ctx context.Context, identity string) ([]model.Document, error) {
	if identity == "" {
		return nil, ErrIdentityRequired
	}
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return access.Visible(records, identity), nil
}

func (s *documentService) Get(ctx context.Context, id, identity string) (*model.Document, error) {
	if identity == "" {
		return nil, ErrIdentityRequired
	}
	doc, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != identity && !doc.SharedWithContains(identity) {
		// Invisible records are indistinguishable from missing ones.
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id, callerID string) error {
	if callerID == "" {
		return ErrIdentityRequired
	}
	doc, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.OwnerID != callerID {
		return ErrNotOwner
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(feed.EventDelete, id)
	return nil
}

func (s *documentService) Grant(ctx context.Context, id, callerID, granteeID string) error {
	if callerID == "" {
		return ErrIdentityRequired
	}
	if granteeID == "" {
		return ErrGranteeRequired
	}
	if granteeID == callerID {
		return ErrInvalidGrantee
	}
	doc, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.OwnerID != callerID {
		return ErrNotOwner
	}
	if err := s.repo.AddGrantee(ctx, id, granteeID); err != nil {
		return err
	}
	s.publish(feed.EventGrant, id)
	return nil
}

func (s *documentService) Revoke(ctx context.Context, id, callerID, granteeID string) error {
	if callerID == "" {
		return ErrIdentityRequired
	}
	if granteeID == "" {
		return ErrGranteeRequired
	}
	doc, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.OwnerID != callerID {
		return ErrNotOwner
	}
	if err := s.repo.RemoveGrantee(ctx, id, granteeID); err != nil {
		return err
	}
	s.publish(feed.EventRevoke, id)
	return nil
}

func (s *documentService) findByID(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) publish(eventType, docID string) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(feed.Event{Type: eventType, DocumentID: docID})
}
