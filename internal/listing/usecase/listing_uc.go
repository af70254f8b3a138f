package usecase

import (
	"context"
	"fmt"

	"github.com/bazario/listing-service/internal/listing/domain"
	"github.com/bazario/listing-service/internal/platform/logger"
)

// Publisher emits domain events. Matches the NATS adapter.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ListingCache is a read-through cache for single-listing lookups.
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
}

// Mailer sends seller notifications.
type Mailer interface {
	SendListingCreatedEmail(toEmail, listingTitle string) error
}

// SellerDirectory resolves a seller id to a notification address.
type SellerDirectory interface {
	EmailByID(ctx context.Context, id string) (string, error)
}

// ListingUsecase orchestrates aggregate mutations and keeps the search
// projection, cache and event stream in step with them. Ownership
// enforcement lives here, above the aggregate: the aggregate itself has
// no notion of a calling user.
type ListingUsecase struct {
	repo      domain.ListingRepository
	cache     ListingCache    // optional
	publisher Publisher       // optional
	mailer    Mailer          // optional
	sellers   SellerDirectory // optional, only needed when mailer is set
	logger    *logger.Logger
}

func NewListingUsecase(repo domain.ListingRepository, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{repo: repo, logger: log}
}

// WithCache enables the read cache.
func (uc *ListingUsecase) WithCache(c ListingCache) *ListingUsecase {
	uc.cache = c
	return uc
}

// WithPublisher enables event publishing.
func (uc *ListingUsecase) WithPublisher(p Publisher) *ListingUsecase {
	uc.publisher = p
	return uc
}

// WithMailer enables the listing-created mail notice.
func (uc *ListingUsecase) WithMailer(m Mailer, sellers SellerDirectory) *ListingUsecase {
	uc.mailer = m
	uc.sellers = sellers
	return uc
}

func (uc *ListingUsecase) CreateListing(ctx context.Context, sellerID, title string, price domain.Money, condition domain.Condition, attrs []domain.AttributeInput) (*domain.Listing, error) {
	listing, err := domain.NewListing(sellerID, title, price, condition, attrs)
	if err != nil {
		uc.logger.Warn("CreateListing: rejected", "seller_id", sellerID, "error", err.Error())
		return nil, err
	}
	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("CreateListing: failed to persist", "seller_id", sellerID, "error", err.Error())
		return nil, err
	}
	uc.logger.Info("CreateListing: listing created", "listing_id", listing.ListingID, "seller_id", sellerID)

	uc.publish(ctx, domain.SubjectListingCreated, domain.NewListingLifecycleEvent(listing))
	uc.publish(ctx, domain.SubjectListingIndexed, domain.NewListingIndexedEvent(listing))
	uc.notifyCreated(ctx, listing)
	return listing, nil
}

func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.GetListing(ctx, id); err != nil {
			uc.logger.Warn("GetListing: cache read failed", "listing_id", id, "error", err.Error())
		} else if cached != nil {
			return cached, nil
		}
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.SetListing(ctx, listing); err != nil {
			uc.logger.Warn("GetListing: cache write failed", "listing_id", id, "error", err.Error())
		}
	}
	return listing, nil
}

func (uc *ListingUsecase) ListListings(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	return uc.repo.FindByFilter(ctx, filter)
}

func (uc *ListingUsecase) UpdatePrice(ctx context.Context, id, callerID string, newPrice domain.Money) (*domain.Listing, error) {
	listing, err := uc.mutateOwned(ctx, id, callerID, func(l *domain.Listing) error {
		return l.UpdatePrice(newPrice)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("UpdatePrice: price updated", "listing_id", id, "amount", newPrice.Amount.String())
	uc.afterMutation(ctx, domain.SubjectListingUpdated, listing)
	return listing, nil
}

func (uc *ListingUsecase) Activate(ctx context.Context, id, callerID string) (*domain.Listing, error) {
	listing, err := uc.mutateOwned(ctx, id, callerID, func(l *domain.Listing) error {
		return l.Activate()
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Activate: listing activated", "listing_id", id)
	uc.afterMutation(ctx, domain.SubjectListingUpdated, listing)
	return listing, nil
}

func (uc *ListingUsecase) Delist(ctx context.Context, id, callerID string, reason domain.DelistReason) (*domain.Listing, error) {
	listing, err := uc.mutateOwned(ctx, id, callerID, func(l *domain.Listing) error {
		return l.Delist(reason)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Delist: listing delisted", "listing_id", id, "reason_type", string(reason.ReasonType))
	uc.afterMutation(ctx, domain.SubjectListingDelisted, listing)
	return listing, nil
}

func (uc *ListingUsecase) UpdateAttribute(ctx context.Context, id, callerID, attributeID, value string) (*domain.Listing, error) {
	listing, err := uc.mutateOwned(ctx, id, callerID, func(l *domain.Listing) error {
		return l.UpdateAttribute(attributeID, value)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("UpdateAttribute: attribute updated", "listing_id", id, "attribute_id", attributeID)
	uc.afterMutation(ctx, domain.SubjectListingUpdated, listing)
	return listing, nil
}

// MarkSold is called by the order-fulfillment collaborator, not by a
// seller, so there is no ownership check.
func (uc *ListingUsecase) MarkSold(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := uc.repo.Mutate(ctx, id, func(l *domain.Listing) error {
		return l.MarkSold()
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("MarkSold: listing sold", "listing_id", id)
	uc.afterMutation(ctx, domain.SubjectListingSold, listing)
	return listing, nil
}

func (uc *ListingUsecase) DeleteListing(ctx context.Context, id, callerID string) error {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.SellerID != callerID {
		uc.logger.Warn("DeleteListing: forbidden", "listing_id", id, "owner_id", listing.SellerID, "caller_id", callerID)
		return fmt.Errorf("delete listing %q: %w", id, domain.ErrForbidden)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("DeleteListing: listing deleted", "listing_id", id)
	uc.invalidate(ctx, id)
	uc.publish(ctx, domain.SubjectListingDeleted, domain.NewListingLifecycleEvent(listing))
	return nil
}

func (uc *ListingUsecase) Search(ctx context.Context, query domain.SearchQuery) ([]*domain.SearchIndexEntry, error) {
	return uc.repo.Search(ctx, query)
}

func (uc *ListingUsecase) Counts(ctx context.Context) (listings int, entries int, err error) {
	return uc.repo.Counts(ctx)
}

// mutateOwned runs fn under the listing's lock with the ownership check
// first, so an authorization failure never half-applies a mutation.
func (uc *ListingUsecase) mutateOwned(ctx context.Context, id, callerID string, fn func(*domain.Listing) error) (*domain.Listing, error) {
	listing, err := uc.repo.Mutate(ctx, id, func(l *domain.Listing) error {
		if l.SellerID != callerID {
			return fmt.Errorf("listing %q is owned by another seller: %w", id, domain.ErrForbidden)
		}
		return fn(l)
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (uc *ListingUsecase) afterMutation(ctx context.Context, subject string, listing *domain.Listing) {
	uc.invalidate(ctx, listing.ListingID)
	uc.publish(ctx, subject, domain.NewListingLifecycleEvent(listing))
	uc.publish(ctx, domain.SubjectListingIndexed, domain.NewListingIndexedEvent(listing))
}

func (uc *ListingUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warn("cache invalidation failed", "listing_id", id, "error", err.Error())
	}
}

// publish is best-effort: event delivery never fails the operation.
func (uc *ListingUsecase) publish(ctx context.Context, subject string, event interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("event publish failed", "subject", subject, "error", err.Error())
	}
}

func (uc *ListingUsecase) notifyCreated(ctx context.Context, listing *domain.Listing) {
	if uc.mailer == nil || uc.sellers == nil {
		return
	}
	email, err := uc.sellers.EmailByID(ctx, listing.SellerID)
	if err != nil || email == "" {
		return
	}
	if err := uc.mailer.SendListingCreatedEmail(email, listing.Title); err != nil {
		uc.logger.Warn("listing-created mail failed", "listing_id", listing.ListingID, "error", err.Error())
	}
}
