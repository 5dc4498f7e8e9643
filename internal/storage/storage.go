package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/avolkov/linkshort/internal/config"
	"github.com/avolkov/linkshort/internal/models"
)

type (
	// StoreHandler owns every read and write against persisted short-link
	// and user records. "Live" in the read contracts below means neither
	// soft-deleted nor expired.
	StoreHandler interface {
		Initialize() error
		Ping(ctx context.Context) error
		FindByCode(ctx context.Context, code string) (*models.ShortLink, error)
		FindByURL(ctx context.Context, ownerID, originalURL string) (*models.ShortLink, error)
		FindUser(ctx context.Context, id string) (*models.User, error)
		SaveUser(ctx context.Context, user *models.User) error
		Insert(ctx context.Context, link *models.ShortLink) error
		IncrementVisit(ctx context.Context, code string, now time.Time) error
		SoftDelete(ctx context.Context, code string, now time.Time) error
		UpdateExpiryPassword(ctx context.Context, code string, expiresAt time.Time, password *string) error
		ListByOwner(ctx context.Context, ownerID string) ([]models.ShortLink, error)
		Recent(ctx context.Context, limit int) ([]models.ShortLink, error)
	}

	MemoryStore struct {
		mu    sync.Mutex
		links []models.ShortLink
		users map[string]models.User
	}
)

func (store *MemoryStore) Initialize() error {
	store.users = map[string]models.User{}

	file, err := os.OpenFile(config.Current.FileStoragePath, os.O_RDONLY, 0666)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for {
		var item models.ShortLink
		if err := decoder.Decode(&item); err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		store.links = append(store.links, item)
	}
	return nil
}

func (store *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (store *MemoryStore) FindByCode(_ context.Context, code string) (*models.ShortLink, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i := range store.links {
		if store.links[i].Code == code {
			link := store.links[i]
			return &link, nil
		}
	}
	return nil, models.ErrNotFound
}

func (store *MemoryStore) FindByURL(_ context.Context, ownerID, originalURL string) (*models.ShortLink, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	for i := range store.links {
		item := &store.links[i]
		if item.OwnerID == ownerID && item.OriginalURL == originalURL && item.Live(now) {
			link := *item
			return &link, nil
		}
	}
	return nil, models.ErrNotFound
}

func (store *MemoryStore) FindUser(_ context.Context, id string) (*models.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	user, ok := store.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &user, nil
}

func (store *MemoryStore) SaveUser(_ context.Context, user *models.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.users[user.ID]; !ok {
		store.users[user.ID] = *user
	}
	return nil
}

func (store *MemoryStore) Insert(_ context.Context, link *models.ShortLink) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	// Collisions with soft-deleted rows count too: one namespace for all
	// codes, ever.
	for i := range store.links {
		if store.links[i].Code == link.Code {
			return models.ConflictError{Code: link.Code}
		}
	}

	link.UUID = len(store.links)
	store.links = append(store.links, *link)
	return store.appendToFile(link)
}

func (store *MemoryStore) appendToFile(link *models.ShortLink) error {
	if config.Current.FileStoragePath == "" {
		return nil
	}
	file, err := os.OpenFile(config.Current.FileStoragePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(link)
}

func (store *MemoryStore) IncrementVisit(_ context.Context, code string, now time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i := range store.links {
		item := &store.links[i]
		if item.Code == code && item.DeletedAt == nil {
			item.VisitCount++
			accessed := now
			item.LastAccessedAt = &accessed
			return nil
		}
	}
	return models.ErrNotFound
}

func (store *MemoryStore) SoftDelete(_ context.Context, code string, now time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i := range store.links {
		item := &store.links[i]
		if item.Code == code && item.DeletedAt == nil {
			deleted := now
			item.DeletedAt = &deleted
			return nil
		}
	}
	return models.ErrNotFound
}

func (store *MemoryStore) UpdateExpiryPassword(_ context.Context, code string, expiresAt time.Time, password *string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i := range store.links {
		item := &store.links[i]
		if item.Code == code && item.DeletedAt == nil {
			expiry := expiresAt
			item.ExpiresAt = &expiry
			if password != nil {
				item.Password = password
			}
			return nil
		}
	}
	return models.ErrNotFound
}

func (store *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]models.ShortLink, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	var result []models.ShortLink
	for i := range store.links {
		item := &store.links[i]
		if item.OwnerID == ownerID && item.Live(now) {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (store *MemoryStore) Recent(_ context.Context, limit int) ([]models.ShortLink, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	var result []models.ShortLink
	for i := range store.links {
		item := &store.links[i]
		if item.Live(now) {
			result = append(result, *item)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
