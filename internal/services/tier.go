package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/linkshort/internal/models"
	"github.com/avolkov/linkshort/internal/storage"
)

// CanBulkShorten is the tier capability check, kept free of storage so it is
// testable on its own.
func CanBulkShorten(tier string) bool {
	return tier == models.TierEnterprise
}

// AuthorizeBulk decides whether the requester may create links in bulk.
// Anonymous and unknown principals are refused outright.
func AuthorizeBulk(store storage.StoreHandler, ctx context.Context, requesterID string) error {
	if requesterID == "" {
		return models.ErrForbidden
	}
	user, err := store.FindUser(ctx, requesterID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrForbidden
		}
		return err
	}
	if !CanBulkShorten(user.Tier) {
		return models.ErrForbidden
	}
	return nil
}

// ShortenBatch creates one link per URL, every code freshly generated; no
// custom codes, no dedup. All URLs are validated before the first insert so
// a bad entry leaves the store untouched.
func ShortenBatch(store storage.StoreHandler, ctx context.Context, ownerID string, urls []string) ([]string, error) {
	for _, item := range urls {
		if item == "" {
			return nil, fmt.Errorf("%w: url is required", models.ErrInvalidInput)
		}
	}

	codes := make([]string, 0, len(urls))
	for _, item := range urls {
		code, err := createGenerated(store, ctx, ShortenParams{URL: item, OwnerID: ownerID})
		if err != nil {
			return codes, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}
