package domain

import (
	"time"

	"github.com/reshetovitsme/goofish-monitor/internal/shared/errors"
)

// Search represents a saved marketplace query owned by a user.
// Tags are OR-combined: a listing matching any tag is a candidate.
type Search struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"user_id"`
	Name            string    `json:"name"`
	Tags            []string  `json:"tags"`
	PriceMin        int       `json:"price_min"`
	PriceMax        int       `json:"price_max"`
	IntervalMinutes int       `json:"interval_minutes"`
	Embedding       []float64 `json:"embedding,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	LastCheckedAt   time.Time `json:"last_checked_at"`
}

// Validate checks the user-supplied fields. A zero price bound means
// "unbounded" on that side.
func (s *Search) Validate() error {
	if s.Name == "" {
		return errors.ErrEmptyName
	}
	if len(s.Tags) == 0 {
		return errors.ErrEmptyTags
	}
	if s.PriceMin < 0 || s.PriceMax < 0 {
		return errors.ErrNegativePrice
	}
	if s.PriceMin > 0 && s.PriceMax > 0 && s.PriceMin > s.PriceMax {
		return errors.ErrPriceBounds
	}
	if s.IntervalMinutes <= 0 {
		return errors.ErrInvalidInterval
	}
	return nil
}

// Due reports whether the search should be polled at the given time.
func (s *Search) Due(now time.Time) bool {
	return now.Sub(s.LastCheckedAt) >= time.Duration(s.IntervalMinutes)*time.Minute
}

// HasEmbedding reports whether the search carries a reference photo embedding.
func (s *Search) HasEmbedding() bool {
	return len(s.Embedding) > 0
}
