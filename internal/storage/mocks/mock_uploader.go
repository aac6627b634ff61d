package mocks

import (
	"context"
	"io"

	"docshare/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, r io.Reader, filename string, opt storage.UploadOptions) (string, error) {
	args := m.Called(ctx, r, filename, opt)
	return args.String(0), args.Error(1)
}
