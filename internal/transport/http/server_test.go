package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	feedService "github.com/reshetovitsme/goofish-monitor/internal/modules/feed/service"
	listingDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	listingRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/repository"
	searchDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
	searchRepo "github.com/reshetovitsme/goofish-monitor/internal/modules/search/repository"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/config"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	searches, err := searchRepo.NewFileStorage(dir)
	require.NoError(t, err)
	listings, err := listingRepo.NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, searches.SaveSearch(&searchDomain.Search{
		ID:            "search-1",
		Name:          "Rick Owens",
		CreatedAt:     time.Now().UTC(),
		LastCheckedAt: time.Now().UTC(),
	}))
	require.NoError(t, listings.SaveListing("search-1", &listingDomain.Listing{
		ExternalID: "ad-1",
		Title:      "Ramones 42",
		Price:      1800,
		URL:        "https://goofish.example/item/1",
	}))

	return New(&config.Config{HTTPPort: "8080"}, feedService.New(searches, listings))
}

func TestHandleFeed(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/feed/search-1", nil)
	req.SetPathValue("searchID", "search-1")
	rec := httptest.NewRecorder()

	server.handleFeed(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.True(t, strings.Contains(body, "<rss"), "response must be RSS XML")
	require.Contains(t, body, "Rick Owens")
	require.Contains(t, body, "https://goofish.example/item/1")
}

func TestHandleFeed_UnknownSearch(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/feed/missing", nil)
	req.SetPathValue("searchID", "missing")
	rec := httptest.NewRecorder()

	server.handleFeed(rec, req)
	require.Equal(t, 500, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t)

	rec := httptest.NewRecorder()
	server.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, 200, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetScheme(t *testing.T) {
	req := httptest.NewRequest("GET", "/feed/x", nil)
	require.Equal(t, "http", getScheme(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	require.Equal(t, "https", getScheme(req))
}
