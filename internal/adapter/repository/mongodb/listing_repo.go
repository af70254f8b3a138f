package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bazario/listing-service/internal/listing/domain"
)

// ListingRepository is the Mongo-backed store. The search index lives
// in its own collection and is rewritten in the same call as every
// listing write; per-listing mutual exclusion comes from an in-process
// lock map (the service assumes a single writer node, see the
// repository contract).
type ListingRepository struct {
	listings *mongo.Collection
	index    *mongo.Collection
	locks    sync.Map // listing id -> *sync.Mutex
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{
		listings: db.Collection("listings"),
		index:    db.Collection("search_index"),
	}
}

func (r *ListingRepository) lockFor(id string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if _, err := r.listings.InsertOne(ctx, toListingDocument(listing)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("listing %q already exists: %w", listing.ListingID, domain.ErrValidation)
		}
		return err
	}
	entry := domain.NewSearchIndexEntry(listing)
	_, err := r.index.InsertOne(ctx, toSearchIndexDocument(entry, listing.CreatedAt))
	return err
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var doc listingDocument
	err := r.listings.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("listing %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return toDomainListing(&doc)
}

func (r *ListingRepository) FindByFilter(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	query := bson.M{}
	if filter.SellerID != "" {
		query["seller_id"] = filter.SellerID
	}
	if filter.State != "" {
		query["item_state"] = string(filter.State)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if filter.Skip > 0 {
		opts.SetSkip(int64(filter.Skip))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.listings.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	listings := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		l, err := toDomainListing(doc)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (r *ListingRepository) Mutate(ctx context.Context, id string, fn func(*domain.Listing) error) (*domain.Listing, error) {
	mu := r.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	listing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(listing); err != nil {
		return nil, err
	}

	if _, err := r.listings.ReplaceOne(ctx, bson.M{"_id": id}, toListingDocument(listing)); err != nil {
		return nil, err
	}
	entry := domain.NewSearchIndexEntry(listing)
	if _, err := r.index.ReplaceOne(ctx, bson.M{"_id": id},
		toSearchIndexDocument(entry, listing.CreatedAt),
		options.Replace().SetUpsert(true)); err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	mu := r.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	res, err := r.listings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("listing %q: %w", id, domain.ErrNotFound)
	}
	_, err = r.index.DeleteOne(ctx, bson.M{"_id": id})
	r.locks.Delete(id)
	return err
}

func (r *ListingRepository) Search(ctx context.Context, query domain.SearchQuery) ([]*domain.SearchIndexEntry, error) {
	// Substring matching and the tie-break contract are easier to keep
	// exact client-side than with $regex; the index set is small.
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.index.Find(ctx, bson.M{"relevance_score": bson.M{"$gte": query.MinRelevance}}, opts)
	if err != nil {
		return nil, err
	}
	var docs []*searchIndexDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	matched := make([]*domain.SearchIndexEntry, 0, len(docs))
	for _, doc := range docs {
		entry := toDomainSearchIndexEntry(doc)
		if !entry.Matches(query.Query) {
			continue
		}
		matched = append(matched, entry)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RelevanceScore > matched[j].RelevanceScore
	})

	if query.Skip < 0 {
		query.Skip = 0
	}
	if query.Skip >= len(matched) {
		return []*domain.SearchIndexEntry{}, nil
	}
	matched = matched[query.Skip:]
	if query.Limit > 0 && query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func (r *ListingRepository) Counts(ctx context.Context) (int, int, error) {
	listings, err := r.listings.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, err
	}
	entries, err := r.index.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, err
	}
	return int(listings), int(entries), nil
}
