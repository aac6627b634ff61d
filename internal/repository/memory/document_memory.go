package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"docshare/internal/model"
	"docshare/internal/repository"
)

// DocumentMemory is an in-memory repository.DocumentRepository used by unit
// tests and local development. It mirrors the backend contracts: set
// semantics on grantees, no error for deleting a missing record.
type DocumentMemory struct {
	mu    sync.RWMutex
	store map[string]*model.Document
}

func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{store: make(map[string]*model.Document)}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

func (r *DocumentMemory) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneDocument(doc)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	if stored.SharedWith == nil {
		stored.SharedWith = []string{}
	}
	r.store[stored.ID] = stored
	return cloneDocument(stored), nil
}

func (r *DocumentMemory) FindByID(ctx context.Context, id string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.store[id]; ok {
		return cloneDocument(d), nil
	}
	return nil, repository.ErrNotFound
}

func (r *DocumentMemory) ListAll(ctx context.Context) ([]model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Document, 0, len(r.store))
	for _, d := range r.store {
		out = append(out, *cloneDocument(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *DocumentMemory) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

func (r *DocumentMemory) AddGrantee(ctx context.Context, id, granteeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.store[id]
	if !ok {
		return nil
	}
	if !d.SharedWithContains(granteeID) {
		d.SharedWith = append(d.SharedWith, granteeID)
	}
	return nil
}

func (r *DocumentMemory) RemoveGrantee(ctx context.Context, id, granteeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.store[id]
	if !ok {
		return nil
	}
	out := d.SharedWith[:0]
	for _, g := range d.SharedWith {
		if g != granteeID {
			out = append(out, g)
		}
	}
	d.SharedWith = out
	return nil
}

func cloneDocument(d *model.Document) *model.Document {
	c := *d
	c.SharedWith = append([]string(nil), d.SharedWith...)
	return &c
}
