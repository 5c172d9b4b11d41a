package repository

import "context"

// Ledger records which (search, ad) pairs have already been evaluated.
// Records are append-only: a pair, once inserted, is only removed when its
// owning search is deleted.
type Ledger interface {
	// MarkSeen atomically tests for and inserts the pair. It returns true
	// exactly once per pair (the first sighting) and false on every
	// subsequent call.
	MarkSeen(ctx context.Context, searchID, adID string) (bool, error)
	// SeenCount returns the number of ads ever evaluated for a search.
	SeenCount(ctx context.Context, searchID string) (int, error)
	// DeleteSearch removes all entries for a search (cascade delete).
	DeleteSearch(ctx context.Context, searchID string) error
}
