package repository_test

import (
	"testing"
	"time"

	"github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	"github.com/reshetovitsme/goofish-monitor/internal/modules/listing/repository"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) repository.Repository {
	t.Helper()
	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return repo
}

func TestGetRecentListings_Empty(t *testing.T) {
	repo := newStorage(t)

	listings, err := repo.GetRecentListings("search-1", 10)
	require.NoError(t, err)
	require.Empty(t, listings)
}

func TestSaveAndGetRecentListings_NewestFirst(t *testing.T) {
	repo := newStorage(t)

	for _, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.SaveListing("search-1", &domain.Listing{
			ExternalID: id,
			Title:      "item " + id,
			Price:      100,
		}))
		time.Sleep(5 * time.Millisecond)
	}

	listings, err := repo.GetRecentListings("search-1", 10)
	require.NoError(t, err)
	require.Len(t, listings, 3)
	require.Equal(t, "new", listings[0].ExternalID)
	require.Equal(t, "mid", listings[1].ExternalID)
	require.Equal(t, "old", listings[2].ExternalID)
}

func TestGetRecentListings_Limit(t *testing.T) {
	repo := newStorage(t)

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, repo.SaveListing("search-1", &domain.Listing{ExternalID: id}))
		time.Sleep(5 * time.Millisecond)
	}

	listings, err := repo.GetRecentListings("search-1", 2)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, "d", listings[0].ExternalID)
}

func TestSaveListing_RoundTripsFields(t *testing.T) {
	repo := newStorage(t)

	similarity := 0.87
	in := &domain.Listing{
		ExternalID:  "ad-42",
		Title:       "瑞克欧文斯 Ramones",
		Description: "9成新",
		Price:       1800,
		Seller:      "seller-1",
		ImageURL:    "https://img.example/a.jpg",
		URL:         "https://goofish.example/item/42",
		PostedAt:    "2025-06-01",
		Similarity:  &similarity,
	}
	require.NoError(t, repo.SaveListing("search-1", in))

	listings, err := repo.GetRecentListings("search-1", 1)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, in, listings[0])
}

func TestDeleteSearch_RemovesListings(t *testing.T) {
	repo := newStorage(t)

	require.NoError(t, repo.SaveListing("search-1", &domain.Listing{ExternalID: "a"}))
	require.NoError(t, repo.SaveListing("search-2", &domain.Listing{ExternalID: "b"}))

	require.NoError(t, repo.DeleteSearch("search-1"))

	listings, err := repo.GetRecentListings("search-1", 10)
	require.NoError(t, err)
	require.Empty(t, listings)

	// Other searches are untouched.
	listings, err = repo.GetRecentListings("search-2", 10)
	require.NoError(t, err)
	require.Len(t, listings, 1)
}

func TestMatchesPrice(t *testing.T) {
	listing := &domain.Listing{Price: 1000}

	cases := []struct {
		name     string
		min, max int
		want     bool
	}{
		{"unbounded", 0, 0, true},
		{"inside range", 500, 2000, true},
		{"below min", 1500, 0, false},
		{"above max", 0, 800, false},
		{"exactly min", 1000, 0, true},
		{"exactly max", 0, 1000, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, listing.MatchesPrice(tc.min, tc.max))
		})
	}
}
