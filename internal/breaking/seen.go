package breaking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SeenStore remembers the id of the last surfaced breaking item.
type SeenStore interface {
	LastSeen(ctx context.Context) (string, error)
	MarkSeen(ctx context.Context, id string) error
}

// MemorySeenStore is a SeenStore for a single process.
type MemorySeenStore struct {
	mu sync.Mutex
	id string
}

func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{}
}

func (s *MemorySeenStore) LastSeen(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemorySeenStore) MarkSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

// FileSeenStore keeps the id in a small state file. A missing file means
// nothing has been seen yet.
type FileSeenStore struct {
	path string
	mu   sync.Mutex
}

func NewFileSeenStore(path string) *FileSeenStore {
	return &FileSeenStore{path: path}
}

func (s *FileSeenStore) LastSeen(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read seen state: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileSeenStore) MarkSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(id+"\n"), 0o644); err != nil {
		return fmt.Errorf("write seen state: %w", err)
	}
	return os.Rename(tmp, s.path)
}
