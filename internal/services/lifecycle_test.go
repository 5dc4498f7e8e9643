package services

import (
	"context"
	"testing"
	"time"

	"github.com/avolkov/linkshort/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	code, err := Shorten(store, ctx, ShortenParams{URL: "https://example.com", OwnerID: "owner-1"})
	require.NoError(t, err)

	t.Run("by non-owner", func(t *testing.T) {
		err := SoftDelete(store, ctx, code, "owner-2")
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("by owner", func(t *testing.T) {
		require.NoError(t, SoftDelete(store, ctx, code, "owner-1"))
		_, err := Resolve(store, ctx, code, "")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("repeated", func(t *testing.T) {
		// Deleted reads as nonexistent, so the second delete fails the
		// same way an unknown code would.
		err := SoftDelete(store, ctx, code, "owner-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("with unknown code", func(t *testing.T) {
		err := SoftDelete(store, ctx, "zzzzzzzz", "owner-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	password := "s3cret"

	code, err := Shorten(store, ctx, ShortenParams{URL: "https://example.com", OwnerID: "owner-1", Password: &password})
	require.NoError(t, err)
	future := time.Now().Add(time.Hour)

	t.Run("without expiry", func(t *testing.T) {
		err := Update(store, ctx, code, "owner-1", nil, nil)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("by non-owner", func(t *testing.T) {
		err := Update(store, ctx, code, "owner-2", &future, nil)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("keeps password when omitted", func(t *testing.T) {
		require.NoError(t, Update(store, ctx, code, "owner-1", &future, nil))
		_, err := Resolve(store, ctx, code, "")
		assert.ErrorIs(t, err, models.ErrAccessDenied)
		_, err = Resolve(store, ctx, code, password)
		assert.NoError(t, err)
	})

	t.Run("replaces password when supplied", func(t *testing.T) {
		newPassword := "changed"
		require.NoError(t, Update(store, ctx, code, "owner-1", &future, &newPassword))
		_, err := Resolve(store, ctx, code, password)
		assert.ErrorIs(t, err, models.ErrAccessDenied)
		_, err = Resolve(store, ctx, code, newPassword)
		assert.NoError(t, err)
	})

	t.Run("expiry in the past retires the link", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		require.NoError(t, Update(store, ctx, code, "owner-1", &past, nil))
		_, err := Resolve(store, ctx, code, "changed")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("expired link reads as absent", func(t *testing.T) {
		// Expiry is terminal through this interface, same as soft delete:
		// even the owner cannot revive the link with a fresh expiry.
		err := Update(store, ctx, code, "owner-1", &future, nil)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := Shorten(store, ctx, ShortenParams{URL: "https://one.example.com", OwnerID: "owner-1"})
	require.NoError(t, err)
	_, err = Shorten(store, ctx, ShortenParams{URL: "https://two.example.com", OwnerID: "owner-1"})
	require.NoError(t, err)
	_, err = Shorten(store, ctx, ShortenParams{URL: "https://three.example.com", OwnerID: "owner-2"})
	require.NoError(t, err)

	urls, err := List(store, ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, urls, 2)

	require.NoError(t, SoftDelete(store, ctx, first, "owner-1"))
	urls, err = List(store, ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, urls, 1)
	assert.Equal(t, "https://two.example.com", urls[0].OriginalURL)
}

func TestBatchDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var codes []string
	for _, item := range []string{"https://one.example.com", "https://two.example.com", "https://three.example.com"} {
		code, err := Shorten(store, ctx, ShortenParams{URL: item, OwnerID: "owner-1"})
		require.NoError(t, err)
		codes = append(codes, code)
	}
	foreign, err := Shorten(store, ctx, ShortenParams{URL: "https://keep.example.com", OwnerID: "owner-2"})
	require.NoError(t, err)

	// Foreign and unknown codes are skipped, not fatal.
	err = BatchDelete(store, ctx, "owner-1", append(codes, foreign, "zzzzzzzz"))
	require.NoError(t, err)

	urls, err := List(store, ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, urls)

	urls, err = List(store, ctx, "owner-2")
	require.NoError(t, err)
	assert.Len(t, urls, 1)
}
