package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avolkov/linkshort/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNotFoundCases(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	deletedCode, err := Shorten(store, ctx, ShortenParams{URL: "https://deleted.example.com", OwnerID: "owner-1"})
	require.NoError(t, err)
	require.NoError(t, SoftDelete(store, ctx, deletedCode, "owner-1"))

	past := time.Now().Add(-time.Minute)
	expiredCode, err := Shorten(store, ctx, ShortenParams{URL: "https://expired.example.com", ExpiresAt: &past})
	require.NoError(t, err)

	// Missing, soft-deleted and expired codes must be observationally
	// identical.
	tests := []struct {
		name string
		code string
	}{
		{"with unknown code", "zzzzzzzz"},
		{"with soft-deleted code", deletedCode},
		{"with expired code", expiredCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(store, ctx, tt.code, "")
			assert.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestResolveRecordsVisit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	code, err := Shorten(store, ctx, ShortenParams{URL: "https://example.com"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = Resolve(store, ctx, code, "")
		require.NoError(t, err)
	}

	link, err := store.FindByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(3), link.VisitCount)
	assert.NotNil(t, link.LastAccessedAt)
}

func TestResolveConcurrentVisits(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	code, err := Shorten(store, ctx, ShortenParams{URL: "https://example.com"})
	require.NoError(t, err)

	const visitors = 50
	var wg sync.WaitGroup
	errs := make(chan error, visitors)
	for i := 0; i < visitors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Resolve(store, ctx, code, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every resolution counts exactly once, no lost increments.
	link, err := store.FindByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(visitors), link.VisitCount)
}

func TestResolvePasswordGate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	password := "s3cret"

	code, err := Shorten(store, ctx, ShortenParams{URL: "https://example.com", Password: &password})
	require.NoError(t, err)

	tests := []struct {
		name     string
		supplied string
		wantErr  error
	}{
		{"with missing password", "", models.ErrAccessDenied},
		{"with wrong password", "nope", models.ErrAccessDenied},
		{"with correct password", "s3cret", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := Resolve(store, ctx, code, tt.supplied)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "https://example.com", resolved)
			}
		})
	}

	// Only the single successful resolution above may count.
	link, err := store.FindByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.VisitCount)
}

func TestResolveExpiredImmediately(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	past := time.Now().Add(-24 * time.Hour)

	code, err := Shorten(store, ctx, ShortenParams{URL: "https://example.com", ExpiresAt: &past})
	require.NoError(t, err)

	_, err = Resolve(store, ctx, code, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
