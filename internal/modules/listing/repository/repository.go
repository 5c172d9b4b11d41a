package repository

import (
	"github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
)

// Repository defines the interface for admitted-listing persistence.
// Only listings that passed dedup and the similarity filter are stored;
// they back the RSS feed and the per-search counters.
type Repository interface {
	SaveListing(searchID string, listing *domain.Listing) error
	GetRecentListings(searchID string, limit int) ([]*domain.Listing, error)
	DeleteSearch(searchID string) error
}
