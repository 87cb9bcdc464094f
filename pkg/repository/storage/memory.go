package storage

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kagami-lab/kagami/pkg/domain/interfaces"
	"github.com/kagami-lab/kagami/pkg/domain/types"
)

// Memory implements interfaces.Storage with an in-process map. Used for
// tests and the memory storage backend (development mode).
type Memory struct {
	mu      sync.RWMutex
	files   map[string][]byte
	folders map[string]bool
}

var _ interfaces.Storage = (*Memory)(nil)

// NewMemory creates a new empty in-memory storage
func NewMemory() *Memory {
	return &Memory{
		files:   make(map[string][]byte),
		folders: make(map[string]bool),
	}
}

func (m *Memory) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[path]; ok {
		return true, nil
	}
	return m.folders[path], nil
}

func (m *Memory) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	if !ok {
		return nil, goerr.New("file not found",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

func (m *Memory) Write(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	m.files[path] = copied
	return nil
}

func (m *Memory) CreateFolder(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.folders[path] = true
	// Register implied parents as well
	for i := range path {
		if path[i] == '/' {
			m.folders[path[:i]] = true
		}
	}
	return nil
}
