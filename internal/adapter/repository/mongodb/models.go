package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bazario/listing-service/internal/listing/domain"
)

// listingDocument is the persistence shape of the aggregate. The price
// amount is stored as its decimal string so nothing is lost to float
// rounding.
type listingDocument struct {
	ID           string                `bson:"_id"`
	SellerID     string                `bson:"seller_id"`
	Title        string                `bson:"title"`
	ItemState    string                `bson:"item_state"`
	Price        moneyDocument         `bson:"price"`
	Condition    conditionDocument     `bson:"condition"`
	Attributes   []attributeDocument   `bson:"attributes"`
	PhotoURLs    []string              `bson:"photo_urls,omitempty"`
	DelistReason *delistReasonDocument `bson:"delist_reason,omitempty"`
	CreatedAt    time.Time             `bson:"created_at"`
	UpdatedAt    time.Time             `bson:"updated_at"`
}

type moneyDocument struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"currency"`
}

type conditionDocument struct {
	Score               int      `bson:"score"`
	DetailedDescription string   `bson:"detailed_description"`
	KnownDefects        []string `bson:"known_defects"`
}

type attributeDocument struct {
	AttributeID string `bson:"attribute_id"`
	Name        string `bson:"name"`
	Value       string `bson:"value"`
}

type delistReasonDocument struct {
	ReasonType string `bson:"reason_type"`
	Detail     string `bson:"detail"`
}

// searchIndexDocument mirrors the read model. CreatedAt carries the
// listing's creation instant so search results keep creation-order
// tie-breaking across restarts.
type searchIndexDocument struct {
	ID             string                 `bson:"_id"`
	SearchableText string                 `bson:"searchable_text"`
	RelevanceScore float64                `bson:"relevance_score"`
	SearchFilters  []searchFilterDocument `bson:"search_filters"`
	CreatedAt      time.Time              `bson:"created_at"`
}

type searchFilterDocument struct {
	Name  string `bson:"name"`
	Value string `bson:"value"`
}

func toListingDocument(l *domain.Listing) *listingDocument {
	doc := &listingDocument{
		ID:        l.ListingID,
		SellerID:  l.SellerID,
		Title:     l.Title,
		ItemState: string(l.ItemState),
		Price: moneyDocument{
			Amount:   l.Price.Amount.String(),
			Currency: l.Price.Currency,
		},
		Condition: conditionDocument{
			Score:               l.Condition.Score,
			DetailedDescription: l.Condition.DetailedDescription,
			KnownDefects:        l.Condition.KnownDefects,
		},
		PhotoURLs: l.PhotoURLs,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
	doc.Attributes = make([]attributeDocument, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		doc.Attributes = append(doc.Attributes, attributeDocument{
			AttributeID: a.AttributeID,
			Name:        a.Name,
			Value:       a.Value,
		})
	}
	if l.DelistReason != nil {
		doc.DelistReason = &delistReasonDocument{
			ReasonType: string(l.DelistReason.ReasonType),
			Detail:     l.DelistReason.Detail,
		}
	}
	return doc
}

func toDomainListing(d *listingDocument) (*domain.Listing, error) {
	amount, err := decimal.NewFromString(d.Price.Amount)
	if err != nil {
		return nil, fmt.Errorf("toDomainListing: bad amount %q for listing %s: %w", d.Price.Amount, d.ID, err)
	}
	l := &domain.Listing{
		ListingID: d.ID,
		SellerID:  d.SellerID,
		Title:     d.Title,
		ItemState: domain.ItemState(d.ItemState),
		Price:     domain.Money{Amount: amount, Currency: d.Price.Currency},
		Condition: domain.Condition{
			Score:               d.Condition.Score,
			DetailedDescription: d.Condition.DetailedDescription,
			KnownDefects:        d.Condition.KnownDefects,
		},
		PhotoURLs: d.PhotoURLs,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	l.Attributes = make([]domain.Attribute, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		l.Attributes = append(l.Attributes, domain.Attribute{
			AttributeID: a.AttributeID,
			Name:        a.Name,
			Value:       a.Value,
		})
	}
	if d.DelistReason != nil {
		l.DelistReason = &domain.DelistReason{
			ReasonType: domain.ReasonType(d.DelistReason.ReasonType),
			Detail:     d.DelistReason.Detail,
		}
	}
	return l, nil
}

func toSearchIndexDocument(entry *domain.SearchIndexEntry, createdAt time.Time) *searchIndexDocument {
	doc := &searchIndexDocument{
		ID:             entry.IndexID,
		SearchableText: entry.SearchableText,
		RelevanceScore: entry.RelevanceScore,
		CreatedAt:      createdAt,
	}
	doc.SearchFilters = make([]searchFilterDocument, 0, len(entry.SearchFilters))
	for _, f := range entry.SearchFilters {
		doc.SearchFilters = append(doc.SearchFilters, searchFilterDocument{Name: f.Name, Value: f.Value})
	}
	return doc
}

func toDomainSearchIndexEntry(d *searchIndexDocument) *domain.SearchIndexEntry {
	entry := &domain.SearchIndexEntry{
		IndexID:        d.ID,
		SearchableText: d.SearchableText,
		RelevanceScore: d.RelevanceScore,
	}
	entry.SearchFilters = make([]domain.SearchFilter, 0, len(d.SearchFilters))
	for _, f := range d.SearchFilters {
		entry.SearchFilters = append(entry.SearchFilters, domain.SearchFilter{Name: f.Name, Value: f.Value})
	}
	return entry
}
