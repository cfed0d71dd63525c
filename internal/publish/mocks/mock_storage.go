package mocks

import (
	"context"
	"io"

	"github.com/ephemera/internal/publish"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opt publish.PutObjectOptions) error {
	args := m.Called(ctx, key, r, opt)
	return args.Error(0)
}
