package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage implements search.Repository using file system
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based search repository
func NewFileStorage(basePath string) (Repository, error) {
	searchPath := filepath.Join(basePath, "searches")
	if err := os.MkdirAll(searchPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create searches directory").Wrap(err)
	}

	return &FileStorage{basePath: searchPath}, nil
}

func (s *FileStorage) SaveSearch(search *domain.Search) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, search.ID+".json")
	data, err := json.MarshalIndent(search, "", "  ")
	if err != nil {
		return oops.With("search_id", search.ID, "context", "failed to marshal search").Wrap(err)
	}

	return os.WriteFile(path, data, 0644)
}

func (s *FileStorage) GetSearch(searchID string) (*domain.Search, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.basePath, searchID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrSearchNotFound
		}
		return nil, oops.With("search_id", searchID, "context", "failed to read search").Wrap(err)
	}

	var search domain.Search
	if err := json.Unmarshal(data, &search); err != nil {
		return nil, oops.With("search_id", searchID, "context", "failed to unmarshal search").Wrap(err)
	}

	return &search, nil
}

func (s *FileStorage) GetUserSearches(userID int64) ([]*domain.Search, error) {
	searches, err := s.getAll()
	if err != nil {
		return nil, err
	}

	return lo.Filter(searches, func(search *domain.Search, _ int) bool {
		return search.UserID == userID
	}), nil
}

func (s *FileStorage) GetActiveSearches() ([]*domain.Search, error) {
	searches, err := s.getAll()
	if err != nil {
		return nil, err
	}

	return lo.Filter(searches, func(search *domain.Search, _ int) bool {
		return search.IsActive
	}), nil
}

func (s *FileStorage) DeleteSearch(searchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, searchID+".json")
	return os.Remove(path)
}

func (s *FileStorage) getAll() ([]*domain.Search, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("directory", s.basePath, "context", "failed to read searches directory").Wrap(err)
	}

	searches := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*domain.Search, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}

		path := filepath.Join(s.basePath, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false
		}

		var search domain.Search
		if err := json.Unmarshal(data, &search); err != nil {
			return nil, false
		}

		return &search, true
	})

	return searches, nil
}
