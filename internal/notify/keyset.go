package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/mediakit/asset-console/internal/store"
	"go.uber.org/zap"
)

// KeySets manages the durable id sets the reconciliation protocol depends on.
// Every mutation is a read-modify-write against the latest persisted value,
// serialized by a mutex so interleaved call sites (poll cycle, tray open,
// auto-close timer, dismissal) never clobber each other. A corrupt or absent
// value degrades to the empty set.
type KeySets struct {
	mu sync.Mutex
	kv store.KV
}

func NewKeySets(kv store.KV) *KeySets {
	return &KeySets{kv: kv}
}

// Get returns the ids stored under key, in insertion order.
func (k *KeySets) Get(ctx context.Context, key string) []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.get(ctx, key)
}

// Set replaces the whole set under key.
func (k *KeySets) Set(ctx context.Context, key string, ids []string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.set(ctx, key, ids)
}

// Add appends id to the set under key if not already present.
func (k *KeySets) Add(ctx context.Context, key string, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	ids := k.get(ctx, key)
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return k.set(ctx, key, append(ids, id))
}

// Remove deletes id from the set under key. Removing an absent id is a no-op.
func (k *KeySets) Remove(ctx context.Context, key string, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	ids := k.get(ctx, key)
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return k.set(ctx, key, kept)
}

// RemoveByPrefix deletes every id with the given prefix from the set under key.
func (k *KeySets) RemoveByPrefix(ctx context.Context, key string, prefix string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	ids := k.get(ctx, key)
	kept := ids[:0]
	for _, existing := range ids {
		if !strings.HasPrefix(existing, prefix) {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return k.set(ctx, key, kept)
}

// Contains reports whether id is in the set under key.
func (k *KeySets) Contains(ctx context.Context, key string, id string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, existing := range k.get(ctx, key) {
		if existing == id {
			return true
		}
	}
	return false
}

// Clear empties the set under key.
func (k *KeySets) Clear(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.set(ctx, key, []string{})
}

func (k *KeySets) get(ctx context.Context, key string) []string {
	raw, err := k.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			zap.S().Named("keysets").Warnf("failed to read %q: %v", key, err)
		}
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		zap.S().Named("keysets").Warnf("discarding corrupt value for %q: %v", key, err)
		return []string{}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}

func (k *KeySets) set(ctx context.Context, key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return k.kv.Set(ctx, key, string(data))
}
