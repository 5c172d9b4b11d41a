package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/oops"
)

// FileStorage implements Ledger using one JSON file per search.
// The file maps ad IDs to the time they were first evaluated. The single
// mutex makes check-and-insert atomic for in-process callers.
type FileStorage struct {
	basePath string
	mu       sync.Mutex
}

// NewFileStorage creates a new file-based seen-ad ledger
func NewFileStorage(basePath string) (Ledger, error) {
	seenPath := filepath.Join(basePath, "seen")
	if err := os.MkdirAll(seenPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create seen directory").Wrap(err)
	}

	return &FileStorage{basePath: seenPath}, nil
}

func (s *FileStorage) MarkSeen(ctx context.Context, searchID, adID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(searchID)
	if err != nil {
		return false, err
	}

	if _, ok := entries[adID]; ok {
		return false, nil
	}

	entries[adID] = time.Now().UTC()
	if err := s.save(searchID, entries); err != nil {
		return false, err
	}

	return true, nil
}

func (s *FileStorage) SeenCount(ctx context.Context, searchID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(searchID)
	if err != nil {
		return 0, err
	}

	return len(entries), nil
}

func (s *FileStorage) DeleteSearch(ctx context.Context, searchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(searchID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return oops.With("search_id", searchID, "context", "failed to delete seen ledger").Wrap(err)
	}

	return nil
}

func (s *FileStorage) path(searchID string) string {
	return filepath.Join(s.basePath, searchID+".json")
}

func (s *FileStorage) load(searchID string) (map[string]time.Time, error) {
	data, err := os.ReadFile(s.path(searchID))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]time.Time{}, nil
		}
		return nil, oops.With("search_id", searchID, "context", "failed to read seen ledger").Wrap(err)
	}

	var entries map[string]time.Time
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, oops.With("search_id", searchID, "context", "failed to unmarshal seen ledger").Wrap(err)
	}

	return entries, nil
}

func (s *FileStorage) save(searchID string, entries map[string]time.Time) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return oops.With("search_id", searchID, "context", "failed to marshal seen ledger").Wrap(err)
	}

	return os.WriteFile(s.path(searchID), data, 0644)
}
