package mocks

import (
	"fmt"
	"sync"

	"github.com/user/scanline/pkg/ports"
)

// FileSystem is an in-memory mock filesystem.
type FileSystem struct {
	mu    sync.Mutex
	Files map[string][]byte
}

// NewFileSystem creates an empty in-memory filesystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{Files: make(map[string][]byte)}
}

// ReadFile returns the stored contents.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return data, nil
}

// WriteFile stores the contents.
func (m *FileSystem) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[path] = append([]byte(nil), data...)
	return nil
}

// MkdirAll does nothing.
func (m *FileSystem) MkdirAll(path string) error { return nil }

// Ensure FileSystem implements ports.FileSystem
var _ ports.FileSystem = (*FileSystem)(nil)
