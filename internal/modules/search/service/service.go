package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	listingRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/repository"
	"github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
	searchRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/search/repository"
	seenRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/seen/repository"
	"github.com/samber/oops"
)

// Service handles search configuration business logic
type Service struct {
	repo     searchRepo.Repository
	seen     seenRepo.Ledger
	listings listingRepo.Repository
}

// New creates a new search service
func New(repo searchRepo.Repository, seen seenRepo.Ledger, listings listingRepo.Repository) *Service {
	return &Service{
		repo:     repo,
		seen:     seen,
		listings: listings,
	}
}

// Create validates and saves a new search. The search starts active with
// its checkpoint at creation time, so the first poll happens one interval
// after creation.
func (s *Service) Create(search *domain.Search) error {
	if err := search.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	search.ID = uuid.NewString()
	search.IsActive = true
	search.CreatedAt = now
	search.LastCheckedAt = now

	if err := s.repo.SaveSearch(search); err != nil {
		return oops.With("search_id", search.ID, "context", "failed to save search").Wrap(err)
	}

	slog.Info("Search created", "search_id", search.ID, "user_id", search.UserID, "name", search.Name, "tags", search.Tags)
	return nil
}

// Get retrieves a search by ID
func (s *Service) Get(searchID string) (*domain.Search, error) {
	return s.repo.GetSearch(searchID)
}

// ListForUser retrieves all searches owned by a user
func (s *Service) ListForUser(userID int64) ([]*domain.Search, error) {
	return s.repo.GetUserSearches(userID)
}

// GetActive retrieves all active searches
func (s *Service) GetActive() ([]*domain.Search, error) {
	return s.repo.GetActiveSearches()
}

// Toggle flips a search between active and paused
func (s *Service) Toggle(searchID string) (*domain.Search, error) {
	search, err := s.repo.GetSearch(searchID)
	if err != nil {
		return nil, err
	}

	search.IsActive = !search.IsActive
	if err := s.repo.SaveSearch(search); err != nil {
		return nil, oops.With("search_id", searchID, "context", "failed to toggle search").Wrap(err)
	}

	return search, nil
}

// Delete removes a search and cascades into its seen ledger and stored
// listings, so re-creating an identical search treats every ad as new.
func (s *Service) Delete(ctx context.Context, searchID string) error {
	if err := s.repo.DeleteSearch(searchID); err != nil {
		return oops.With("search_id", searchID, "context", "failed to delete search").Wrap(err)
	}

	if err := s.seen.DeleteSearch(ctx, searchID); err != nil {
		return oops.With("search_id", searchID, "context", "failed to delete seen ledger").Wrap(err)
	}

	if err := s.listings.DeleteSearch(searchID); err != nil {
		return oops.With("search_id", searchID, "context", "failed to delete stored listings").Wrap(err)
	}

	return nil
}

// SeenCount returns the number of ads ever evaluated for a search
func (s *Service) SeenCount(ctx context.Context, searchID string) (int, error) {
	return s.seen.SeenCount(ctx, searchID)
}

// Checkpoint advances the search's last-checked time. Called only by the
// scheduler after a completed poll. It re-reads the search first, so edits
// made through the bot while the poll was running are preserved; a deleted
// search surfaces as ErrSearchNotFound and is not re-created.
func (s *Service) Checkpoint(searchID string, checkedAt time.Time) error {
	search, err := s.repo.GetSearch(searchID)
	if err != nil {
		return err
	}

	search.LastCheckedAt = checkedAt
	return s.repo.SaveSearch(search)
}
