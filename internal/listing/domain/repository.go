package domain

import "context"

// Filter narrows List results. Zero values mean "no constraint";
// Skip/Limit apply after filtering. Results come back in creation
// order (the store's documented, implementation-defined order).
type Filter struct {
	SellerID string
	State    ItemState
	Skip     int
	Limit    int
}

// SearchQuery drives the read-model lookup. Query is matched
// case-insensitively as a substring of the searchable text; an empty
// query matches every entry. Results are sorted by relevance score
// descending, ties broken by creation order.
type SearchQuery struct {
	Query        string
	MinRelevance float64
	Skip         int
	Limit        int
}

// ListingRepository owns both the aggregates and their search index
// entries. Every write re-derives the affected entry in the same call,
// so a read that follows a write always observes the updated
// projection. Implementations must provide at least per-listing mutual
// exclusion for Mutate.
type ListingRepository interface {
	// Create persists a new listing and derives its projection.
	Create(ctx context.Context, listing *Listing) error
	// FindByID returns a copy of the listing or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Listing, error)
	// FindByFilter returns copies in creation order.
	FindByFilter(ctx context.Context, filter Filter) ([]*Listing, error)
	// Mutate runs fn against the stored listing under the listing's
	// lock, persists the result and re-derives the projection. If fn
	// returns an error nothing is persisted.
	Mutate(ctx context.Context, id string, fn func(*Listing) error) (*Listing, error)
	// Delete removes the listing and its projection atomically. It is
	// not idempotent: a second delete returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Search queries the read model.
	Search(ctx context.Context, query SearchQuery) ([]*SearchIndexEntry, error)
	// Counts reports stored listings and index entries (health).
	Counts(ctx context.Context) (listings int, entries int, err error)
}
