package usecase

import (
	"context"
	"fmt"

	"github.com/bazario/listing-service/internal/listing/domain"
	"github.com/bazario/listing-service/internal/platform/logger"
)

// Storage uploads a file and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
}

type PhotoUsecase struct {
	storage Storage
	repo    domain.ListingRepository
	cache   ListingCache // optional
	logger  *logger.Logger
}

func NewPhotoUsecase(storage Storage, repo domain.ListingRepository, log *logger.Logger) *PhotoUsecase {
	return &PhotoUsecase{storage: storage, repo: repo, logger: log}
}

// WithCache enables read-cache invalidation after a photo attach. It
// must be the same cache the listing usecase reads through.
func (uc *PhotoUsecase) WithCache(c ListingCache) *PhotoUsecase {
	uc.cache = c
	return uc
}

// UploadPhoto stores the file and attaches its URL to the listing.
// Only the owner may attach photos.
func (uc *PhotoUsecase) UploadPhoto(ctx context.Context, listingID, callerID, fileName string, data []byte) (string, error) {
	url, err := uc.storage.Upload(ctx, fileName, data)
	if err != nil {
		uc.logger.Error("UploadPhoto: storage upload failed", "listing_id", listingID, "error", err.Error())
		return "", err
	}

	_, err = uc.repo.Mutate(ctx, listingID, func(l *domain.Listing) error {
		if l.SellerID != callerID {
			return fmt.Errorf("listing %q is owned by another seller: %w", listingID, domain.ErrForbidden)
		}
		l.AddPhotoURL(url)
		return nil
	})
	if err != nil {
		return "", err
	}

	// The attach is a mutation like any other: a cached copy without
	// the new URL must not outlive it.
	if uc.cache != nil {
		if err := uc.cache.DeleteListing(ctx, listingID); err != nil {
			uc.logger.Warn("UploadPhoto: cache invalidation failed", "listing_id", listingID, "error", err.Error())
		}
	}

	uc.logger.Info("UploadPhoto: photo attached", "listing_id", listingID, "url", url)
	return url, nil
}
