package repository

import (
	"github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
)

// Repository defines the interface for search configuration persistence
// This abstraction allows easy replacement of storage implementations
// (e.g., FileStorage -> PostgreSQL -> MongoDB)
type Repository interface {
	SaveSearch(search *domain.Search) error
	GetSearch(searchID string) (*domain.Search, error)
	GetUserSearches(userID int64) ([]*domain.Search, error)
	GetActiveSearches() ([]*domain.Search, error)
	DeleteSearch(searchID string) error
}
