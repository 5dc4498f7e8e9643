package auth

import (
	"encoding/json"
	"os"
	"sync"
)

// Blacklist is the process-wide set of blocked user IDs, loaded from a JSON
// array at startup and reloaded on SIGHUP.
type Blacklist struct {
	mu   sync.RWMutex
	path string
	ids  map[string]struct{}
}

func NewBlacklist(path string) *Blacklist {
	return &Blacklist{path: path, ids: map[string]struct{}{}}
}

// Load replaces the blocked set from the configured file. An unset path or
// a missing file means an empty blacklist.
func (b *Blacklist) Load() error {
	if b.path == "" {
		return nil
	}

	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var blocked []string
	if err := json.Unmarshal(data, &blocked); err != nil {
		return err
	}

	ids := make(map[string]struct{}, len(blocked))
	for _, id := range blocked {
		ids[id] = struct{}{}
	}

	b.mu.Lock()
	b.ids = ids
	b.mu.Unlock()
	return nil
}

func (b *Blacklist) Blocked(id string) bool {
	if id == "" {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ids[id]
	return ok
}
