package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/oops"
)

// Client talks to the translation service (zh -> ru). Callers treat it as
// best-effort and fall back to the original text on failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a translation client with a bounded per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	Text string `json:"text"`
}

// Translate returns the translated text.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	body, err := json.Marshal(translateRequest{Text: text})
	if err != nil {
		return "", oops.With("context", "failed to marshal translate request").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", oops.With("context", "failed to build translate request").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", oops.With("context", "translate request failed").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", oops.Errorf("unexpected status %d from translation service", resp.StatusCode)
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", oops.With("context", "failed to decode translate response").Wrap(err)
	}

	return out.Text, nil
}
