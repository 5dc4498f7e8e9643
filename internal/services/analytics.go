package services

import (
	"context"

	"github.com/avolkov/linkshort/internal/models"
	"github.com/avolkov/linkshort/internal/storage"
)

const defaultRecentLimit = 10

// Recent returns the newest live links, most recent first. No side effects.
func Recent(store storage.StoreHandler, ctx context.Context, limit int) ([]models.ShortLink, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return store.Recent(ctx, limit)
}
