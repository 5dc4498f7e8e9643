package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/linkshort/internal/models"
	"github.com/avolkov/linkshort/internal/storage"
	"golang.org/x/sync/errgroup"
)

// ownedLive loads a live record and checks the requester owns it. Deleted
// and expired rows read as absent here, same as on resolution.
func ownedLive(store storage.StoreHandler, ctx context.Context, code, requesterID string) (*models.ShortLink, error) {
	link, err := store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !link.Live(time.Now()) {
		return nil, models.ErrNotFound
	}
	if link.OwnerID != requesterID {
		return nil, models.ErrForbidden
	}
	return link, nil
}

// SoftDelete retires a code. Not idempotent: the second call sees the row as
// absent and fails accordingly.
func SoftDelete(store storage.StoreHandler, ctx context.Context, code, requesterID string) error {
	if _, err := ownedLive(store, ctx, code, requesterID); err != nil {
		return err
	}
	return store.SoftDelete(ctx, code, time.Now())
}

// Update replaces the expiry and, when supplied, the password. Expiry is
// mandatory on every call; a nil password leaves the stored one as is.
func Update(store storage.StoreHandler, ctx context.Context, code, requesterID string, expiresAt *time.Time, password *string) error {
	if expiresAt == nil {
		return fmt.Errorf("%w: expiry is required", models.ErrInvalidInput)
	}
	if _, err := ownedLive(store, ctx, code, requesterID); err != nil {
		return err
	}
	return store.UpdateExpiryPassword(ctx, code, *expiresAt, password)
}

// List returns the requester's live links.
func List(store storage.StoreHandler, ctx context.Context, requesterID string) ([]models.ShortLink, error) {
	return store.ListByOwner(ctx, requesterID)
}

const (
	batchSize   = 100
	workerCount = 5
)

// BatchDelete soft-deletes the requester's codes with a small worker pool.
// Codes the requester does not own, or that are already gone, are skipped
// rather than failing the batch.
func BatchDelete(store storage.StoreHandler, ctx context.Context, requesterID string, codes []string) error {
	codesCh := batchesChannel(codes)
	g := new(errgroup.Group)

	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			for code := range codesCh {
				err := SoftDelete(store, ctx, code, requesterID)
				if err == nil || errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrForbidden) {
					continue
				}
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func batchesChannel(codes []string) chan string {
	channel := make(chan string, batchSize)
	go func() {
		defer close(channel)
		for _, item := range codes {
			channel <- item
		}
	}()
	return channel
}
