package domain

// Listing represents a single marketplace ad as returned by the search
// provider. Price is in the marketplace currency (CNY). Similarity is set
// only when the ad was scored against a reference photo embedding.
type Listing struct {
	ExternalID  string   `json:"external_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Seller      string   `json:"seller"`
	ImageURL    string   `json:"image_url"`
	URL         string   `json:"url"`
	PostedAt    string   `json:"posted_at,omitempty"`
	Similarity  *float64 `json:"similarity,omitempty"`
}

// MatchesPrice reports whether the listing price falls within the given
// bounds. A zero bound means "unbounded" on that side.
func (l *Listing) MatchesPrice(priceMin, priceMax int) bool {
	if priceMin > 0 && l.Price < priceMin {
		return false
	}
	if priceMax > 0 && l.Price > priceMax {
		return false
	}
	return true
}
