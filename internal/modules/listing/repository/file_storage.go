package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// storedListing wraps a listing with the time it was admitted, so the feed
// can be served newest-first.
type storedListing struct {
	SavedAt time.Time       `json:"saved_at"`
	Listing *domain.Listing `json:"listing"`
}

// FileStorage implements listing.Repository using file system
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based listing repository
func NewFileStorage(basePath string) (Repository, error) {
	listingPath := filepath.Join(basePath, "listings")
	if err := os.MkdirAll(listingPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create listings directory").Wrap(err)
	}

	return &FileStorage{basePath: listingPath}, nil
}

func (s *FileStorage) SaveListing(searchID string, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, searchID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return oops.With("search_id", searchID, "context", "failed to create listing directory").Wrap(err)
	}

	stored := storedListing{SavedAt: time.Now().UTC(), Listing: listing}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return oops.With("search_id", searchID, "external_id", listing.ExternalID, "context", "failed to marshal listing").Wrap(err)
	}

	path := filepath.Join(dir, listing.ExternalID+".json")
	return os.WriteFile(path, data, 0644)
}

func (s *FileStorage) GetRecentListings(searchID string, limit int) ([]*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.basePath, searchID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Listing{}, nil
		}
		return nil, oops.With("search_id", searchID, "context", "failed to read listings directory").Wrap(err)
	}

	stored := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*storedListing, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, false
		}

		var item storedListing
		if err := json.Unmarshal(data, &item); err != nil || item.Listing == nil {
			return nil, false
		}

		return &item, true
	})

	sort.Slice(stored, func(i, j int) bool {
		return stored[i].SavedAt.After(stored[j].SavedAt)
	})

	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	return lo.Map(stored, func(item *storedListing, _ int) *domain.Listing {
		return item.Listing
	}), nil
}

func (s *FileStorage) DeleteSearch(searchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return os.RemoveAll(filepath.Join(s.basePath, searchID))
}
