package mocks

import (
	"context"
	"io"

	"docshare/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename string, contentType string, size int64) (*model.Document, error) {
	args := m.Called(ctx, ownerID, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, identity string) ([]model.Document, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id, identity string) (*model.Document, error) {
	args := m.Called(ctx, id, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, callerID string) error {
	args := m.Called(ctx, id, callerID)
	return args.Error(0)
}

func (m *MockDocumentService) Grant(ctx context.Context, id, callerID, granteeID string) error {
	args := m.Called(ctx, id, callerID, granteeID)
	return args.Error(0)
}

func (m *MockDocumentService) Revoke(ctx context.Context, id, callerID, granteeID string) error {
	args := m.Called(ctx, id, callerID, granteeID)
	return args.Error(0)
}
