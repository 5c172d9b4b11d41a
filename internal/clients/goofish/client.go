package goofish

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Client queries the Goofish (闲鱼) search API. It is constructed once at
// startup and shared by the scheduler and the photo-search handler.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Goofish client with a bounded per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchTags issues one search per tag and unions the per-tag results.
// The union is not deduplicated across tags: the seen ledger is the single
// source of truth for novelty. Price bounds are passed to the provider and
// enforced again locally, since the provider treats them as hints.
// A failing tag is logged and skipped; an error is returned only when every
// tag fails.
func (c *Client) SearchTags(ctx context.Context, tags []string, priceMin, priceMax int) ([]*domain.Listing, error) {
	var results []*domain.Listing
	var lastErr error
	failed := 0

	for _, tag := range tags {
		listings, err := c.searchTag(ctx, tag, priceMin, priceMax)
		if err != nil {
			slog.Warn("Tag search failed", "tag", tag, "error", err)
			lastErr = err
			failed++
			continue
		}
		results = append(results, listings...)
	}

	if failed == len(tags) && len(tags) > 0 {
		return nil, oops.With("tags", tags, "context", "all tag searches failed").Wrap(lastErr)
	}

	return lo.Filter(results, func(l *domain.Listing, _ int) bool {
		return l.MatchesPrice(priceMin, priceMax)
	}), nil
}

// SearchEmbedding asks the provider for listings visually similar to the
// given reference embedding. Returned listings carry a similarity score.
func (c *Client) SearchEmbedding(ctx context.Context, embedding []float64, limit int) ([]*domain.Listing, error) {
	body, err := json.Marshal(embeddingSearchRequest{Embedding: embedding, Limit: limit})
	if err != nil {
		return nil, oops.With("context", "failed to marshal embedding search request").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/search/embedding", bytes.NewReader(body))
	if err != nil {
		return nil, oops.With("context", "failed to build embedding search request").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	var page searchResponse
	if err := c.do(req, &page); err != nil {
		return nil, err
	}

	return lo.Map(page.Items, func(item adItem, _ int) *domain.Listing {
		return item.toListing()
	}), nil
}

func (c *Client) searchTag(ctx context.Context, tag string, priceMin, priceMax int) ([]*domain.Listing, error) {
	u, err := url.Parse(c.baseURL + "/api/search")
	if err != nil {
		return nil, oops.With("base_url", c.baseURL, "context", "failed to parse search url").Wrap(err)
	}

	q := u.Query()
	q.Set("q", tag)
	if priceMin > 0 {
		q.Set("price_min", strconv.Itoa(priceMin))
	}
	if priceMax > 0 {
		q.Set("price_max", strconv.Itoa(priceMax))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, oops.With("tag", tag, "context", "failed to build search request").Wrap(err)
	}

	var page searchResponse
	if err := c.do(req, &page); err != nil {
		return nil, err
	}

	return lo.Map(page.Items, func(item adItem, _ int) *domain.Listing {
		return item.toListing()
	}), nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.With("url", req.URL.String(), "context", "search request failed").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oops.With("url", req.URL.String()).Errorf("unexpected status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return oops.With("url", req.URL.String(), "context", "failed to decode search response").Wrap(err)
	}

	return nil
}
