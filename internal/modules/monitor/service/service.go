package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	listingDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	listingRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/repository"
	notifyDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/notify/domain"
	searchDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
	seenRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/seen/repository"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/config"
	apperrors "github.com/reshetovitsme/goofish-monitor/internal/shared/errors"
	"github.com/samber/oops"
)

// SearchStore is the slice of search persistence the scheduler uses.
// Checkpoint must be a read-modify-write of LastCheckedAt only: the bot
// handlers edit the same store while a poll is in flight, and a toggle or
// delete made mid-poll has to survive the checkpoint.
type SearchStore interface {
	GetActive() ([]*searchDomain.Search, error)
	Checkpoint(searchID string, checkedAt time.Time) error
}

// SearchProvider fans a query out to the marketplace, one request per tag,
// and unions the results. Duplicate external IDs across tags are allowed;
// the seen ledger decides novelty.
type SearchProvider interface {
	SearchTags(ctx context.Context, tags []string, priceMin, priceMax int) ([]*listingDomain.Listing, error)
}

// ImageComparer scores a listing image against a reference embedding,
// returning a similarity in [0,1].
type ImageComparer interface {
	Compare(ctx context.Context, reference []float64, imageURL string) (float64, error)
}

// Notifier delivers one message per admitted listing.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, listing *listingDomain.Listing, searchName string) (notifyDomain.DeliveryResult, error)
}

// Service is the monitoring engine: it wakes on a fixed tick, polls every
// due search, deduplicates, applies the similarity filter and dispatches
// notifications.
type Service struct {
	cfg      *config.Config
	searches SearchStore
	seen     seenRepo.Ledger
	listings listingRepo.Repository
	provider SearchProvider
	comparer ImageComparer
	notifier Notifier

	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new monitor service
func New(cfg *config.Config, searches SearchStore, seen seenRepo.Ledger, listings listingRepo.Repository, provider SearchProvider, comparer ImageComparer, notifier Notifier) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:      cfg,
		searches: searches,
		seen:     seen,
		listings: listings,
		provider: provider,
		comparer: comparer,
		notifier: notifier,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the monitoring loop
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.monitorLoop()
}

// Stop stops the monitoring loop and waits for the current tick to finish
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) monitorLoop() {
	defer s.wg.Done()

	slog.Info("Monitor started", "tick_seconds", s.cfg.UpdateInterval)

	ticker := time.NewTicker(time.Duration(s.cfg.UpdateInterval) * time.Second)
	defer ticker.Stop()

	// Initial check
	s.CheckSearches()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.CheckSearches()
		}
	}
}

// CheckSearches runs one poll tick: every active search whose interval has
// elapsed is polled sequentially. A failure in one search never prevents
// the remaining due searches from being processed.
func (s *Service) CheckSearches() {
	searches, err := s.searches.GetActive()
	if err != nil {
		slog.Error("Failed to load active searches", "error", err)
		return
	}

	now := s.now().UTC()
	for _, search := range searches {
		if !search.Due(now) {
			continue
		}

		newCount, err := s.pollSearch(search)
		if err != nil {
			slog.Error("Search poll failed", "search_id", search.ID, "name", search.Name, "error", err)
		}
		if newCount > 0 {
			slog.Info("New listings sent", "search_id", search.ID, "name", search.Name, "count", newCount)
		}

		// Checkpoint even after a failed poll, so a persistently broken
		// query is retried on its normal cadence instead of every tick.
		// The store re-reads the search, so a toggle made during the poll
		// is kept and a search deleted during the poll stays deleted.
		if err := s.searches.Checkpoint(search.ID, now); err != nil {
			if errors.Is(err, apperrors.ErrSearchNotFound) {
				slog.Info("Search deleted during poll, checkpoint skipped", "search_id", search.ID)
			} else {
				slog.Error("Failed to checkpoint search", "search_id", search.ID, "error", err)
			}
		}
	}
}

// pollSearch runs the pipeline for one search: fetch -> dedup -> similarity
// -> notify. Panics are contained here so one broken search cannot take
// down the scheduler loop.
func (s *Service) pollSearch(search *searchDomain.Search) (newCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = oops.With("search_id", search.ID, "panic", r).Errorf("search pipeline panicked")
		}
	}()

	slog.Info("Checking search", "search_id", search.ID, "name", search.Name, "tags", search.Tags)

	fetchCtx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout())
	listings, err := s.provider.SearchTags(fetchCtx, search.Tags, search.PriceMin, search.PriceMax)
	cancel()
	if err != nil {
		return 0, oops.With("search_id", search.ID, "context", "marketplace query failed").Wrap(err)
	}

	for _, listing := range listings {
		isNew, err := s.seen.MarkSeen(s.ctx, search.ID, listing.ExternalID)
		if err != nil {
			return newCount, oops.With("search_id", search.ID, "ad_id", listing.ExternalID, "context", "seen ledger failed").Wrap(err)
		}
		if !isNew {
			continue
		}

		if search.HasEmbedding() && listing.ImageURL != "" {
			admitted, err := s.applySimilarityFilter(search, listing)
			if err != nil {
				// The ad stays marked seen; scoring is not retried.
				slog.Warn("Similarity scoring failed, ad skipped", "search_id", search.ID, "ad_id", listing.ExternalID, "error", err)
				continue
			}
			if !admitted {
				continue
			}
		}

		s.dispatch(search, listing)
		newCount++
	}

	return newCount, nil
}

// applySimilarityFilter scores the listing image against the search's
// reference embedding. Listings below the threshold are dropped; they were
// already recorded as seen, so they are never re-evaluated, even if the
// threshold or the reference photo later change.
func (s *Service) applySimilarityFilter(search *searchDomain.Search, listing *listingDomain.Listing) (bool, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout())
	defer cancel()

	score, err := s.comparer.Compare(ctx, search.Embedding, listing.ImageURL)
	if err != nil {
		return false, err
	}

	if score < s.cfg.SimilarityThreshold {
		slog.Debug("Listing below similarity threshold", "search_id", search.ID, "ad_id", listing.ExternalID, "score", score)
		return false, nil
	}

	listing.Similarity = &score
	return true, nil
}

// dispatch sends the notification and records the admitted listing.
// Delivery is at-most-once: a lost notification is logged, never retried.
func (s *Service) dispatch(search *searchDomain.Search, listing *listingDomain.Listing) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout())
	defer cancel()

	result, err := s.notifier.Notify(ctx, search.UserID, listing, search.Name)
	switch result {
	case notifyDomain.DeliveryResultLost:
		slog.Error("Notification lost", "search_id", search.ID, "ad_id", listing.ExternalID, "error", err)
		return
	case notifyDomain.DeliveryResultDegraded:
		slog.Warn("Notification delivered without photo", "search_id", search.ID, "ad_id", listing.ExternalID)
	}

	if err := s.listings.SaveListing(search.ID, listing); err != nil {
		slog.Error("Failed to store admitted listing", "search_id", search.ID, "ad_id", listing.ExternalID, "error", err)
	}
}
