package services

import (
	"context"
	"testing"

	"github.com/avolkov/linkshort/internal/models"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanBulkShorten(t *testing.T) {
	tests := []struct {
		name string
		tier string
		want bool
	}{
		{"with enterprise tier", models.TierEnterprise, true},
		{"with hobby tier", models.TierHobby, false},
		{"with unknown tier", "trial", false},
		{"with empty tier", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanBulkShorten(tt.tier))
		})
	}
}

func TestAuthorizeBulk(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SaveUser(ctx, &models.User{ID: "hobbyist", Tier: models.TierHobby}))
	require.NoError(t, store.SaveUser(ctx, &models.User{ID: "corp", Tier: models.TierEnterprise}))

	tests := []struct {
		name      string
		requester string
		wantErr   error
	}{
		{"with enterprise user", "corp", nil},
		{"with hobby user", "hobbyist", models.ErrForbidden},
		{"with unknown user", "ghost", models.ErrForbidden},
		{"with anonymous caller", "", models.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeBulk(store, ctx, tt.requester)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShortenBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("with an empty URL in the batch", func(t *testing.T) {
		store := newTestStore(t)
		urls := []string{gofakeit.URL(), "", gofakeit.URL()}

		_, err := ShortenBatch(store, ctx, "corp", urls)
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		// All-or-nothing validation: nothing was created.
		created, err := List(store, ctx, "corp")
		require.NoError(t, err)
		assert.Empty(t, created)
	})

	t.Run("with valid URLs", func(t *testing.T) {
		store := newTestStore(t)
		urls := []string{gofakeit.URL(), gofakeit.URL(), gofakeit.URL()}

		codes, err := ShortenBatch(store, ctx, "corp", urls)
		require.NoError(t, err)
		require.Len(t, codes, len(urls))

		created, err := List(store, ctx, "corp")
		require.NoError(t, err)
		assert.Len(t, created, len(urls))
		for _, item := range created {
			assert.Equal(t, "corp", item.OwnerID)
		}
	})

	t.Run("never dedups", func(t *testing.T) {
		store := newTestStore(t)
		original := "https://example.com"
		first, err := Shorten(store, ctx, ShortenParams{URL: original, OwnerID: "corp"})
		require.NoError(t, err)

		codes, err := ShortenBatch(store, ctx, "corp", []string{original})
		require.NoError(t, err)
		require.Len(t, codes, 1)
		assert.NotEqual(t, first, codes[0])
	})
}
