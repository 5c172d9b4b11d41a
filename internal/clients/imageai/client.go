package imageai

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/samber/oops"
)

// Client talks to the image embedding service. Embeddings are computed
// remotely; similarity between two embeddings is computed locally as
// normalized cosine similarity.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates an embedding client with a bounded per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	ImageURL string `json:"image_url"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed computes the embedding vector for the image at the given URL.
func (c *Client) Embed(ctx context.Context, imageURL string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{ImageURL: imageURL})
	if err != nil {
		return nil, oops.With("context", "failed to marshal embed request").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, oops.With("context", "failed to build embed request").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oops.With("image_url", imageURL, "context", "embed request failed").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.With("image_url", imageURL).Errorf("unexpected status %d from embedding service", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, oops.With("image_url", imageURL, "context", "failed to decode embed response").Wrap(err)
	}

	if len(out.Embedding) == 0 {
		return nil, oops.With("image_url", imageURL).Errorf("embedding service returned an empty vector")
	}

	return out.Embedding, nil
}

// Compare scores the image at imageURL against a reference embedding.
// The result is in [0,1]: cosine similarity shifted from [-1,1].
func (c *Client) Compare(ctx context.Context, reference []float64, imageURL string) (float64, error) {
	embedding, err := c.Embed(ctx, imageURL)
	if err != nil {
		return 0, err
	}

	cos, err := Cosine(reference, embedding)
	if err != nil {
		return 0, err
	}

	return (cos + 1) / 2, nil
}

// Cosine computes the cosine similarity between two vectors of equal length.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, oops.With("len_a", len(a), "len_b", len(b)).Errorf("embedding length mismatch")
	}
	if len(a) == 0 {
		return 0, oops.Errorf("empty embedding")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, oops.Errorf("zero-magnitude embedding")
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
