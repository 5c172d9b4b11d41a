package service

import (
	"fmt"

	"github.com/gorilla/feeds"
	listingDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	listingRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/repository"
	searchRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/search/repository"
	"github.com/samber/oops"
)

// feedLimit is how many admitted listings a feed serves, newest first.
const feedLimit = 50

// Service generates RSS feeds of admitted listings so a search can be
// followed outside Telegram.
type Service struct {
	searchRepo  searchRepo.Repository
	listingRepo listingRepo.Repository
}

// New creates a new feed service
func New(searchRepo searchRepo.Repository, listingRepo listingRepo.Repository) *Service {
	return &Service{
		searchRepo:  searchRepo,
		listingRepo: listingRepo,
	}
}

// GenerateFeed generates an RSS feed for a search
func (s *Service) GenerateFeed(searchID string, baseURL string) (*feeds.Feed, error) {
	search, err := s.searchRepo.GetSearch(searchID)
	if err != nil {
		return nil, oops.With("search_id", searchID, "context", "search not found").Wrap(err)
	}

	listings, err := s.listingRepo.GetRecentListings(searchID, feedLimit)
	if err != nil {
		return nil, oops.With("search_id", searchID, "context", "failed to get listings").Wrap(err)
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - Goofish Monitor", search.Name),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed/%s", baseURL, search.ID)},
		Description: fmt.Sprintf("New Goofish listings for search: %s", search.Name),
		Created:     search.CreatedAt,
		Updated:     search.LastCheckedAt,
	}

	var items []*feeds.Item
	for _, listing := range listings {
		items = append(items, s.listingToFeedItem(search.ID, listing))
	}

	feed.Items = items
	return feed, nil
}

func (s *Service) listingToFeedItem(searchID string, listing *listingDomain.Listing) *feeds.Item {
	description := fmt.Sprintf("%d¥ — %s", listing.Price, listing.Seller)
	if listing.Description != "" {
		description += "\n\n" + listing.Description
	}
	if listing.Similarity != nil {
		description += fmt.Sprintf("\n\nSimilarity: %.0f%%", *listing.Similarity*100)
	}

	return &feeds.Item{
		Title:       listing.Title,
		Link:        &feeds.Link{Href: listing.URL},
		Description: description,
		Id:          fmt.Sprintf("%s-%s", searchID, listing.ExternalID),
	}
}
