package domain

import "time"

// NATS subjects for listing events.
const (
	SubjectListingCreated  = "listing.created"
	SubjectListingUpdated  = "listing.updated"
	SubjectListingDelisted = "listing.delisted"
	SubjectListingSold     = "listing.sold"
	SubjectListingDeleted  = "listing.deleted"
	SubjectListingIndexed  = "listing.indexed"
)

// ListingIndexedEvent announces that the search projection for a
// listing has been (re)derived.
type ListingIndexedEvent struct {
	ListingID      string    `json:"listing_id"`
	RelevanceScore float64   `json:"relevance_score"`
	ItemState      ItemState `json:"item_state"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewListingIndexedEvent(l *Listing) ListingIndexedEvent {
	return ListingIndexedEvent{
		ListingID:      l.ListingID,
		RelevanceScore: l.RelevanceScore(),
		ItemState:      l.ItemState,
		Timestamp:      time.Now().UTC(),
	}
}

// ListingLifecycleEvent is published on create/update/delist/sold/delete.
type ListingLifecycleEvent struct {
	ListingID string    `json:"listing_id"`
	SellerID  string    `json:"seller_id"`
	ItemState ItemState `json:"item_state"`
	Timestamp time.Time `json:"timestamp"`
}

func NewListingLifecycleEvent(l *Listing) ListingLifecycleEvent {
	return ListingLifecycleEvent{
		ListingID: l.ListingID,
		SellerID:  l.SellerID,
		ItemState: l.ItemState,
		Timestamp: time.Now().UTC(),
	}
}
