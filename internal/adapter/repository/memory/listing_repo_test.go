package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario/listing-service/internal/listing/domain"
)

func mustListing(t *testing.T, sellerID, title string, condScore int, attrs ...domain.AttributeInput) *domain.Listing {
	t.Helper()
	price, err := domain.NewMoney(decimal.RequireFromString("100.00"), "USD")
	require.NoError(t, err)
	l, err := domain.NewListing(sellerID, title, price, domain.Condition{Score: condScore, DetailedDescription: "ok"}, attrs)
	require.NoError(t, err)
	return l
}

func TestCreateAndFindByID_ReturnsCopies(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	l := mustListing(t, "seller-1", "Bike", 5)
	require.NoError(t, repo.Create(ctx, l))

	got, err := repo.FindByID(ctx, l.ListingID)
	require.NoError(t, err)
	assert.Equal(t, l.ListingID, got.ListingID)
	assert.Equal(t, l.Title, got.Title)

	// Mutating the returned copy must not leak into the store.
	got.Title = "Hacked"
	again, err := repo.FindByID(ctx, l.ListingID)
	require.NoError(t, err)
	assert.Equal(t, "Bike", again.Title)
}

func TestFindByID_Missing(t *testing.T) {
	repo := NewListingRepository()
	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_DerivesProjectionInSameCall(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	l := mustListing(t, "seller-1", "Bike", 8)
	require.NoError(t, repo.Create(ctx, l))

	entries, err := repo.Search(ctx, domain.SearchQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, l.ListingID, entries[0].IndexID)
	assert.InDelta(t, 4.0, entries[0].RelevanceScore, 1e-9)
}

func TestFindByFilter_InsertionOrderAndPredicates(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	a := mustListing(t, "seller-1", "First", 5)
	b := mustListing(t, "seller-2", "Second", 5)
	c := mustListing(t, "seller-1", "Third", 5)
	for _, l := range []*domain.Listing{a, b, c} {
		require.NoError(t, repo.Create(ctx, l))
	}
	_, err := repo.Mutate(ctx, c.ListingID, func(l *domain.Listing) error {
		return l.Delist(domain.DelistReason{ReasonType: domain.ReasonOutOfStock, Detail: "gone"})
	})
	require.NoError(t, err)

	all, err := repo.FindByFilter(ctx, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{a.ListingID, b.ListingID, c.ListingID},
		[]string{all[0].ListingID, all[1].ListingID, all[2].ListingID})

	bySeller, err := repo.FindByFilter(ctx, domain.Filter{SellerID: "seller-1"})
	require.NoError(t, err)
	require.Len(t, bySeller, 2)

	active, err := repo.FindByFilter(ctx, domain.Filter{SellerID: "seller-1", State: domain.StateActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ListingID, active[0].ListingID)
}

func TestFindByFilter_SkipLimit(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	ids := make([]string, 0, 5)
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		l := mustListing(t, "seller-1", title, 5)
		require.NoError(t, repo.Create(ctx, l))
		ids = append(ids, l.ListingID)
	}

	page, err := repo.FindByFilter(ctx, domain.Filter{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].ListingID)
	assert.Equal(t, ids[2], page[1].ListingID)

	empty, err := repo.FindByFilter(ctx, domain.Filter{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)

	// Limit zero is the zero value, meaning no constraint.
	all, err := repo.FindByFilter(ctx, domain.Filter{Limit: 0})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMutate_RefreshesProjection(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	l := mustListing(t, "seller-1", "Bike", 5)
	require.NoError(t, repo.Create(ctx, l))

	_, err := repo.Mutate(ctx, l.ListingID, func(m *domain.Listing) error {
		return m.Delist(domain.DelistReason{ReasonType: domain.ReasonSellerRequest, Detail: "done"})
	})
	require.NoError(t, err)

	entries, err := repo.Search(ctx, domain.SearchQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 1.0, entries[0].RelevanceScore, 1e-9, "delisted listing loses the active bonus immediately")
}

func TestMutate_FailedMutationLeavesStoreUntouched(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	l := mustListing(t, "seller-1", "Bike", 5)
	require.NoError(t, repo.Create(ctx, l))

	_, err := repo.Mutate(ctx, l.ListingID, func(m *domain.Listing) error {
		m.Title = "Halfway"
		return domain.ErrValidation
	})
	require.Error(t, err)

	got, err := repo.FindByID(ctx, l.ListingID)
	require.NoError(t, err)
	assert.Equal(t, "Bike", got.Title)
}

func TestDelete_NotIdempotent(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	l := mustListing(t, "seller-1", "Bike", 5)
	require.NoError(t, repo.Create(ctx, l))

	require.NoError(t, repo.Delete(ctx, l.ListingID))

	_, err := repo.FindByID(ctx, l.ListingID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries, err := repo.Search(ctx, domain.SearchQuery{})
	require.NoError(t, err)
	assert.Empty(t, entries, "projection entry is removed with the listing")

	assert.ErrorIs(t, repo.Delete(ctx, l.ListingID), domain.ErrNotFound)
}

func TestSearch_FiltersAndOrdering(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	plain := mustListing(t, "seller-1", "Plain Mug", 5)
	fancy := mustListing(t, "seller-1", "Fancy Teapot", 9, domain.AttributeInput{Name: "material", Value: "porcelain"})
	require.NoError(t, repo.Create(ctx, plain))
	require.NoError(t, repo.Create(ctx, fancy))

	// Scores: plain 3.0, fancy 4.2 -> fancy first.
	entries, err := repo.Search(ctx, domain.SearchQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, fancy.ListingID, entries[0].IndexID)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].RelevanceScore, entries[i].RelevanceScore)
	}

	byQuery, err := repo.Search(ctx, domain.SearchQuery{Query: "porcelain"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, fancy.ListingID, byQuery[0].IndexID)

	byRelevance, err := repo.Search(ctx, domain.SearchQuery{MinRelevance: 4.0})
	require.NoError(t, err)
	require.Len(t, byRelevance, 1)
	assert.Equal(t, fancy.ListingID, byRelevance[0].IndexID)

	none, err := repo.Search(ctx, domain.SearchQuery{Query: "submarine"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch_TieBreaksByCreationOrder(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	// Condition 5 and 10 score identically at zero attributes (the
	// condition bonus is a single >=8 bucket): both 3.0. The earlier
	// listing must come first, consistently.
	first := mustListing(t, "seller-1", "Old Radio", 5)
	second := mustListing(t, "seller-1", "New Radio", 10)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	entries, err := repo.Search(ctx, domain.SearchQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.InDelta(t, entries[0].RelevanceScore, entries[1].RelevanceScore, 1e-9)
	assert.Equal(t, first.ListingID, entries[0].IndexID)
	assert.Equal(t, second.ListingID, entries[1].IndexID)
}

func TestSearch_SkipLimit(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C", "D"} {
		require.NoError(t, repo.Create(ctx, mustListing(t, "seller-1", title, 5)))
	}

	page, err := repo.Search(ctx, domain.SearchQuery{Skip: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestMutate_ConcurrentWritersStayConsistent(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	l := mustListing(t, "seller-1", "Bike", 5)
	require.NoError(t, repo.Create(ctx, l))

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(ctx, l.ListingID, func(m *domain.Listing) error {
				m.AddPhotoURL("http://example.com/p.jpg")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, l.ListingID)
	require.NoError(t, err)
	assert.Len(t, got.PhotoURLs, writers, "every read-modify-write must be applied exactly once")
}

func TestCounts_AndClear(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustListing(t, "seller-1", "Bike", 5)))
	listings, entries, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, listings)
	assert.Equal(t, 1, entries)

	repo.Clear()
	listings, entries, err = repo.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, listings)
	assert.Zero(t, entries)
}
