package goofish

import (
	"github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
)

type searchResponse struct {
	Items []adItem `json:"items"`
}

type adItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Seller      string   `json:"seller"`
	ImageURL    string   `json:"image_url"`
	DetailURL   string   `json:"detail_url"`
	PostedAt    string   `json:"posted_at"`
	Similarity  *float64 `json:"similarity,omitempty"`
}

type embeddingSearchRequest struct {
	Embedding []float64 `json:"embedding"`
	Limit     int       `json:"limit"`
}

func (a adItem) toListing() *domain.Listing {
	return &domain.Listing{
		ExternalID:  a.ID,
		Title:       a.Title,
		Description: a.Description,
		Price:       a.Price,
		Seller:      a.Seller,
		ImageURL:    a.ImageURL,
		URL:         a.DetailURL,
		PostedAt:    a.PostedAt,
		Similarity:  a.Similarity,
	}
}
