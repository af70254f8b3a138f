package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bazario/listing-service/internal/listing/domain"
)

// ListingRepository is the in-process source of truth. It keeps every
// aggregate together with its search index entry and re-derives the
// entry inside the same critical section as the write, so readers never
// observe a listing without a projection or a stale score.
//
// A single RWMutex guards the store. Writes therefore get (more than)
// the required per-listing mutual exclusion; List and Search copy a
// snapshot under the read lock and do their filtering outside it.
type ListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
	index    map[string]*domain.SearchIndexEntry
	order    []string // listing ids in creation order
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		listings: make(map[string]*domain.Listing),
		index:    make(map[string]*domain.SearchIndexEntry),
	}
}

func (r *ListingRepository) Create(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.listings[listing.ListingID]; exists {
		return fmt.Errorf("listing %q already exists: %w", listing.ListingID, domain.ErrValidation)
	}
	stored := listing.Clone()
	r.listings[stored.ListingID] = stored
	r.index[stored.ListingID] = domain.NewSearchIndexEntry(stored)
	r.order = append(r.order, stored.ListingID)
	return nil
}

func (r *ListingRepository) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %q: %w", id, domain.ErrNotFound)
	}
	return listing.Clone(), nil
}

func (r *ListingRepository) FindByFilter(_ context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	r.mu.RLock()
	matched := make([]*domain.Listing, 0, len(r.order))
	for _, id := range r.order {
		l := r.listings[id]
		if filter.SellerID != "" && l.SellerID != filter.SellerID {
			continue
		}
		if filter.State != "" && l.ItemState != filter.State {
			continue
		}
		matched = append(matched, l.Clone())
	}
	r.mu.RUnlock()

	return paginate(matched, filter.Skip, filter.Limit), nil
}

func (r *ListingRepository) Mutate(_ context.Context, id string, fn func(*domain.Listing) error) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %q: %w", id, domain.ErrNotFound)
	}

	// fn works on a copy so a failed mutation leaves the store untouched.
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	r.listings[id] = working
	r.index[id] = domain.NewSearchIndexEntry(working)
	return working.Clone(), nil
}

func (r *ListingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return fmt.Errorf("listing %q: %w", id, domain.ErrNotFound)
	}
	delete(r.listings, id)
	delete(r.index, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ListingRepository) Search(_ context.Context, query domain.SearchQuery) ([]*domain.SearchIndexEntry, error) {
	r.mu.RLock()
	matched := make([]*domain.SearchIndexEntry, 0, len(r.order))
	for _, id := range r.order {
		entry := r.index[id]
		if !entry.Matches(query.Query) {
			continue
		}
		if entry.RelevanceScore < query.MinRelevance {
			continue
		}
		matched = append(matched, entry.Clone())
	}
	r.mu.RUnlock()

	// Stable sort keeps creation order for equal scores.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RelevanceScore > matched[j].RelevanceScore
	})

	return paginate(matched, query.Skip, query.Limit), nil
}

func (r *ListingRepository) Counts(_ context.Context) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listings), len(r.index), nil
}

// Clear drops all state. Tests construct one repository per case and
// reset it explicitly instead of sharing module-level maps.
func (r *ListingRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings = make(map[string]*domain.Listing)
	r.index = make(map[string]*domain.SearchIndexEntry)
	r.order = nil
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
