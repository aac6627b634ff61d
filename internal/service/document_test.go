package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"docshare/internal/feed"
	"docshare/internal/model"
	"docshare/internal/repository"
	"docshare/internal/repository/memory"
	repoMocks "docshare/internal/repository/mocks"
	"docshare/internal/storage"
	storeMocks "docshare/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		ownerID          string
		originalFilename string
		contentType      string
		size             int64
		setupMocks       func(mStore *storeMocks.MockUploader, mRepo *repoMocks.MockDocumentRepository) io.Reader
		wantErr          error
		wantErrMsg       string
	}{
		{
			name:             "happy path",
			ownerID:          "owner-a",
			originalFilename: "report.pdf",
			contentType:      "application/pdf",
			size:             11,
			setupMocks: func(mStore *storeMocks.MockUploader, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				r := strings.NewReader("hello world")
				mStore.On("Upload", ctx, r, "report.pdf", storage.UploadOptions{
					Size:        11,
					ContentType: "application/pdf",
				}).Return("https://cdn.example.com/documents/report.pdf", nil)

				mRepo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.ID != "" &&
						doc.Filename == "report.pdf" &&
						doc.OwnerID == "owner-a" &&
						doc.URL == "https://cdn.example.com/documents/report.pdf" &&
						len(doc.SharedWith) == 0
				})).Return(&model.Document{ID: "gen-id", OwnerID: "owner-a"}, nil)

				return r
			},
			wantErr: nil,
		},
		{
			name:             "identity required",
			ownerID:          "",
			originalFilename: "report.pdf",
			setupMocks: func(mStore *storeMocks.MockUploader, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				return strings.NewReader("hello")
			},
			wantErr: ErrIdentityRequired,
		},
		{
			name:             "validation error - nil reader",
			ownerID:          "owner-a",
			originalFilename: "report.pdf",
			setupMocks: func(mStore *storeMocks.MockUploader, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:             "upload failure - no record inserted",
			ownerID:          "owner-a",
			originalFilename: "report.pdf",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockUploader, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Upload", ctx, r, "report.pdf", mock.Anything).
					Return("", storage.ErrUploadFailed)
				return r
			},
			wantErr: storage.ErrUploadFailed,
		},
		{
			name:             "record insert failure leaves blob behind",
			ownerID:          "owner-a",
			originalFilename: "report.pdf",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockUploader, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Upload", ctx, r, "report.pdf", mock.Anything).
					Return("https://cdn.example.com/documents/report.pdf", nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				return r
			},
			wantErrMsg: "record document: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockUploader)
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mStore, mRepo, nil)

			r := tt.setupMocks(mStore, mRepo)

			doc, err := svc.Upload(ctx, tt.ownerID, r, tt.originalFilename, tt.contentType, tt.size)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
			}

			if errors.Is(tt.wantErr, storage.ErrUploadFailed) {
				// Failed upload must never reach the directory.
				mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	records := []model.Document{
		{ID: "d1", OwnerID: "alice"},
		{ID: "d2", OwnerID: "alice", SharedWith: []string{"bob"}},
		{ID: "d3", OwnerID: "bob"},
	}

	t.Run("filters to visible records", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("ListAll", ctx).Return(records, nil)
		svc := NewDocumentService(nil, mRepo, nil)

		visible, err := svc.List(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, visible, 2)
		assert.Equal(t, "d2", visible[0].ID)
		assert.Equal(t, "d3", visible[1].ID)
		mRepo.AssertExpectations(t)
	})

	t.Run("identity required", func(t *testing.T) {
		svc := NewDocumentService(nil, new(repoMocks.MockDocumentRepository), nil)
		_, err := svc.List(ctx, "")
		assert.ErrorIs(t, err, ErrIdentityRequired)
	})

	t.Run("repository error", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("ListAll", ctx).Return(nil, errors.New("db fail"))
		svc := NewDocumentService(nil, mRepo, nil)

		_, err := svc.List(ctx, "alice")
		assert.Error(t, err)
	})
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()
	doc := &model.Document{ID: "d1", OwnerID: "alice", SharedWith: []string{"bob"}}

	tests := []struct {
		name     string
		id       string
		identity string
		setup    func(mRepo *repoMocks.MockDocumentRepository)
		wantErr  error
	}{
		{
			name: "owner sees record", id: "d1", identity: "alice",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
			},
		},
		{
			name: "grantee sees record", id: "d1", identity: "bob",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
			},
		},
		{
			name: "stranger gets not found", id: "d1", identity: "mallory",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "missing record", id: "nope", identity: "alice",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "nope").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "identity required", id: "d1", identity: "",
			setup:   func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr: ErrIdentityRequired,
		},
		{
			name: "id required", id: "", identity: "alice",
			setup:   func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr: ErrIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			tt.setup(mRepo)
			svc := NewDocumentService(nil, mRepo, nil)

			got, err := svc.Get(ctx, tt.id, tt.identity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "d1", got.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	doc := &model.Document{ID: "d1", OwnerID: "alice"}

	t.Run("owner deletes", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
		mRepo.On("Delete", ctx, "d1").Return(nil)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.NoError(t, svc.Delete(ctx, "d1", "alice"))
		mRepo.AssertExpectations(t)
	})

	t.Run("non-owner refused, record untouched", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.ErrorIs(t, svc.Delete(ctx, "d1", "bob"), ErrNotOwner)
		mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing record", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "nope").Return(nil, repository.ErrNotFound)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.ErrorIs(t, svc.Delete(ctx, "nope", "alice"), ErrNotFound)
	})

	t.Run("identity required", func(t *testing.T) {
		svc := NewDocumentService(nil, new(repoMocks.MockDocumentRepository), nil)
		assert.ErrorIs(t, svc.Delete(ctx, "d1", ""), ErrIdentityRequired)
	})
}

func TestDocumentService_Grant(t *testing.T) {
	ctx := context.Background()
	doc := &model.Document{ID: "d1", OwnerID: "alice"}

	t.Run("owner grants", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
		mRepo.On("AddGrantee", ctx, "d1", "bob").Return(nil)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.NoError(t, svc.Grant(ctx, "d1", "alice", "bob"))
		mRepo.AssertExpectations(t)
	})

	t.Run("self-share refused", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.ErrorIs(t, svc.Grant(ctx, "d1", "alice", "alice"), ErrInvalidGrantee)
		mRepo.AssertNotCalled(t, "AddGrantee", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-owner refused", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.ErrorIs(t, svc.Grant(ctx, "d1", "bob", "carol"), ErrNotOwner)
		mRepo.AssertNotCalled(t, "AddGrantee", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("grantee required", func(t *testing.T) {
		svc := NewDocumentService(nil, new(repoMocks.MockDocumentRepository), nil)
		assert.ErrorIs(t, svc.Grant(ctx, "d1", "alice", ""), ErrGranteeRequired)
	})
}

func TestDocumentService_Revoke(t *testing.T) {
	ctx := context.Background()
	doc := &model.Document{ID: "d1", OwnerID: "alice", SharedWith: []string{"bob"}}

	t.Run("owner revokes", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
		mRepo.On("RemoveGrantee", ctx, "d1", "bob").Return(nil)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.NoError(t, svc.Revoke(ctx, "d1", "alice", "bob"))
		mRepo.AssertExpectations(t)
	})

	t.Run("non-owner refused", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "d1").Return(doc, nil)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.ErrorIs(t, svc.Revoke(ctx, "d1", "carol", "bob"), ErrNotOwner)
		mRepo.AssertNotCalled(t, "RemoveGrantee", mock.Anything, mock.Anything, mock.Anything)
	})
}

// Scenario tests against the in-memory repository exercise the end-to-end
// sharing semantics: set behavior of the grantee array, visibility
// transitions, and feed publication.
func TestSharingScenarios(t *testing.T) {
	ctx := context.Background()

	newSvc := func(t *testing.T) (DocumentService, *memory.DocumentMemory, *feed.Broadcaster) {
		t.Helper()
		repo := memory.NewDocumentMemory()
		b := feed.NewBroadcaster()
		mStore := new(storeMocks.MockUploader)
		mStore.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("https://cdn.example.com/blob", nil)
		return NewDocumentService(mStore, repo, b), repo, b
	}

	upload := func(t *testing.T, svc DocumentService, owner, name string) *model.Document {
		t.Helper()
		doc, err := svc.Upload(ctx, owner, strings.NewReader("data"), name, "text/plain", 4)
		require.NoError(t, err)
		return doc
	}

	t.Run("fresh record invisible to others", func(t *testing.T) {
		svc, _, _ := newSvc(t)
		d := upload(t, svc, "alice", "a.txt")

		visible, err := svc.List(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, visible)

		visible, err = svc.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, d.ID, visible[0].ID)
	})

	t.Run("grant then revoke transitions visibility", func(t *testing.T) {
		svc, _, _ := newSvc(t)
		d := upload(t, svc, "alice", "a.txt")

		require.NoError(t, svc.Grant(ctx, d.ID, "alice", "bob"))

		visible, err := svc.List(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, d.ID, visible[0].ID)

		visible, err = svc.List(ctx, "carol")
		require.NoError(t, err)
		assert.Empty(t, visible)

		require.NoError(t, svc.Revoke(ctx, d.ID, "alice", "bob"))

		visible, err = svc.List(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, visible)
	})

	t.Run("grant is idempotent", func(t *testing.T) {
		svc, repo, _ := newSvc(t)
		d := upload(t, svc, "alice", "a.txt")

		require.NoError(t, svc.Grant(ctx, d.ID, "alice", "bob"))
		require.NoError(t, svc.Grant(ctx, d.ID, "alice", "bob"))

		stored, err := repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, stored.SharedWith)
	})

	t.Run("revoking an absent grantee is a no-op", func(t *testing.T) {
		svc, repo, _ := newSvc(t)
		d := upload(t, svc, "alice", "a.txt")

		require.NoError(t, svc.Revoke(ctx, d.ID, "alice", "bob"))

		stored, err := repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.SharedWith)
	})

	t.Run("non-owner delete leaves record in place", func(t *testing.T) {
		svc, repo, _ := newSvc(t)
		d := upload(t, svc, "alice", "a.txt")

		assert.ErrorIs(t, svc.Delete(ctx, d.ID, "bob"), ErrNotOwner)

		stored, err := repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.ID, stored.ID)
	})

	t.Run("mutations publish feed events", func(t *testing.T) {
		svc, _, b := newSvc(t)
		ch := b.Subscribe()
		defer b.Unsubscribe(ch)

		d := upload(t, svc, "alice", "a.txt")
		require.NoError(t, svc.Grant(ctx, d.ID, "alice", "bob"))
		require.NoError(t, svc.Revoke(ctx, d.ID, "alice", "bob"))
		require.NoError(t, svc.Delete(ctx, d.ID, "alice"))

		want := []string{feed.EventInsert, feed.EventGrant, feed.EventRevoke, feed.EventDelete}
		for _, typ := range want {
			select {
			case ev := <-ch:
				assert.Equal(t, typ, ev.Type)
				assert.Equal(t, d.ID, ev.DocumentID)
			case <-time.After(time.Second):
				t.Fatalf("timed out waiting for %s event", typ)
			}
		}
	})
}
