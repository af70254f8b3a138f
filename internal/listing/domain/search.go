package domain

import "strings"

// SearchIndexEntry is the read model kept one-to-one with a listing.
// The repository re-derives it inside every write; it never drifts from
// the aggregate and is never mutated by callers.
type SearchIndexEntry struct {
	IndexID        string         `json:"index_id" bson:"index_id"`
	SearchableText string         `json:"searchable_text" bson:"searchable_text"`
	RelevanceScore float64        `json:"relevance_score" bson:"relevance_score"`
	SearchFilters  []SearchFilter `json:"search_filters" bson:"search_filters"`
}

// NewSearchIndexEntry derives the projection for a listing. The entry
// shares the listing's identity.
func NewSearchIndexEntry(l *Listing) *SearchIndexEntry {
	return &SearchIndexEntry{
		IndexID:        l.ListingID,
		SearchableText: SearchableText(l),
		RelevanceScore: l.RelevanceScore(),
		SearchFilters: []SearchFilter{
			{Name: "item_state", Value: string(l.ItemState)},
			{Name: "currency", Value: l.Price.Currency},
		},
	}
}

// SearchableText concatenates the title with every "name value"
// attribute pair. Case is preserved here; matching is case-insensitive
// at query time.
func SearchableText(l *Listing) string {
	parts := make([]string, 0, 1+len(l.Attributes))
	parts = append(parts, l.Title)
	for _, a := range l.Attributes {
		parts = append(parts, a.Name+" "+a.Value)
	}
	return strings.Join(parts, " ")
}

// Matches reports whether the entry satisfies a query string by
// case-insensitive substring match. An empty query matches everything.
func (e *SearchIndexEntry) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.SearchableText), strings.ToLower(query))
}

func (e *SearchIndexEntry) Clone() *SearchIndexEntry {
	if e == nil {
		return nil
	}
	c := *e
	c.SearchFilters = append([]SearchFilter(nil), e.SearchFilters...)
	return &c
}
