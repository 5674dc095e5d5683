package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mediakit/asset-console/internal/store"
	"go.uber.org/zap"
)

// Store is the single source of truth for the tray feed: an ordered,
// in-memory list of notifications whose full serialized form is written to
// the durable notifications key after every mutation. It is a process-wide
// singleton for the lifetime of the session.
type Store struct {
	mu    sync.Mutex
	kv    store.KV
	items []Notification
	log   *zap.SugaredLogger
	now   func() time.Time
}

// NewNotificationStore loads the persisted feed. Entries whose expiresAt has
// already passed are dropped here, at load time only. A corrupt persisted
// value degrades to an empty feed.
func NewNotificationStore(ctx context.Context, kv store.KV) *Store {
	s := &Store{
		kv:  kv,
		log: zap.S().Named("notification_store"),
		now: time.Now,
	}

	raw, err := kv.Get(ctx, KeyNotifications)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			s.log.Warnf("failed to load persisted notifications: %v", err)
		}
		return s
	}

	var persisted []Notification
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		s.log.Warnf("discarding corrupt persisted notifications: %v", err)
		return s
	}

	now := s.now()
	for _, n := range persisted {
		if n.ExpiresAt != nil && n.ExpiresAt.Before(now) {
			continue
		}
		s.items = append(s.items, n)
	}
	return s
}

// List returns a copy of the feed in insertion order.
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the notification with the given id.
func (s *Store) Get(id string) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.items {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

// Add inserts the notification under a fresh collision-resistant id with
// seen=false and returns the id.
func (s *Store) Add(ctx context.Context, n Notification) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	n.Seen = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	s.items = append(s.items, n)
	s.persist(ctx)
	return n.ID, nil
}

// Update applies the mutation to the notification with the given id. Absent
// ids are a no-op.
func (s *Store) Update(ctx context.Context, id string, apply func(n *Notification)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			apply(&s.items[i])
			s.items[i].UpdatedAt = s.now()
			s.persist(ctx)
			return
		}
	}
}

// Dismiss removes the notification with the given id. Absent ids are a no-op.
func (s *Store) Dismiss(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// MarkAsSeen flips the transient read marker on the notification.
func (s *Store) MarkAsSeen(ctx context.Context, id string) {
	s.Update(ctx, id, func(n *Notification) {
		n.Seen = true
	})
}

// persist writes the full feed to the durable key. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []Notification{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.log.Errorf("failed to serialize notifications: %v", err)
		return
	}
	if err := s.kv.Set(ctx, KeyNotifications, string(data)); err != nil {
		s.log.Errorf("failed to persist notifications: %v", err)
	}
}
