package services

import (
	"context"
	"time"

	"github.com/avolkov/linkshort/internal/models"
	"github.com/avolkov/linkshort/internal/storage"
)

// Resolve returns the redirect target for code and records the visit.
// Missing, soft-deleted and expired codes are indistinguishable to the
// caller; a password mismatch is reported without touching the counters.
func Resolve(store storage.StoreHandler, ctx context.Context, code, suppliedPassword string) (string, error) {
	link, err := store.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}

	now := time.Now()
	if !link.Live(now) {
		return "", models.ErrNotFound
	}

	if link.Password != nil && *link.Password != suppliedPassword {
		return "", models.ErrAccessDenied
	}

	if err := store.IncrementVisit(ctx, code, now); err != nil {
		return "", err
	}
	return link.OriginalURL, nil
}
