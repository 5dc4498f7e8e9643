package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/linkshort/internal/models"
	"github.com/avolkov/linkshort/internal/storage"
	"github.com/avolkov/linkshort/internal/util"
)

const (
	codeLength          = 8
	maxGenerateAttempts = 3
)

// ShortenParams collects everything a single creation may carry. OwnerID is
// empty for anonymous callers, which act as one implicit owner for dedup.
type ShortenParams struct {
	URL        string
	OwnerID    string
	CustomCode string
	ExpiresAt  *time.Time
	Password   *string
}

// Shorten maps a URL to a code: verbatim custom code, an existing code for a
// URL this owner already shortened, or a fresh random one.
func Shorten(store storage.StoreHandler, ctx context.Context, params ShortenParams) (string, error) {
	if params.URL == "" {
		return "", fmt.Errorf("%w: url is required", models.ErrInvalidInput)
	}

	if params.CustomCode != "" {
		_, err := store.FindByCode(ctx, params.CustomCode)
		if err == nil {
			return "", models.ConflictError{Code: params.CustomCode}
		}
		if !errors.Is(err, models.ErrNotFound) {
			return "", err
		}
		return insertLink(store, ctx, params, params.CustomCode)
	}

	existing, err := store.FindByURL(ctx, params.OwnerID, params.URL)
	if err == nil {
		return existing.Code, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return "", err
	}

	return createGenerated(store, ctx, params)
}

// createGenerated inserts with a random code, retrying a bounded number of
// times on a collision before giving up with the conflict.
func createGenerated(store storage.StoreHandler, ctx context.Context, params ShortenParams) (string, error) {
	var err error
	for i := 0; i < maxGenerateAttempts; i++ {
		var code string
		code, err = insertLink(store, ctx, params, util.RandomString(codeLength))
		if err == nil {
			return code, nil
		}
		if !errors.As(err, &models.ConflictError{}) {
			return "", err
		}
	}
	return "", err
}

func insertLink(store storage.StoreHandler, ctx context.Context, params ShortenParams, code string) (string, error) {
	link := models.ShortLink{
		Code:        code,
		OriginalURL: params.URL,
		OwnerID:     params.OwnerID,
		CreatedAt:   time.Now(),
		ExpiresAt:   params.ExpiresAt,
		Password:    params.Password,
	}
	if err := store.Insert(ctx, &link); err != nil {
		return "", err
	}
	return code, nil
}
