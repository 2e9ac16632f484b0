package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

// MockFileStorage is a testify mock of storage.FileStorage, used by the
// attachment handler tests to assert on save/delete calls without
// touching disk
type MockFileStorage struct {
	mock.Mock
}

// Save records the upload and returns the configured storage path
func (m *MockFileStorage) Save(filename string, content io.Reader) (string, error) {
	args := m.Called(filename, content)
	return args.String(0), args.Error(1)
}

// Get returns the configured reader for a stored path
func (m *MockFileStorage) Get(filePath string) (io.ReadCloser, error) {
	args := m.Called(filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// Delete records the removal of a stored path
func (m *MockFileStorage) Delete(filePath string) error {
	args := m.Called(filePath)
	return args.Error(0)
}
